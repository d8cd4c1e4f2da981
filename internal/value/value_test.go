package value

import (
	"math"
	"testing"
)

func TestFloatTotalOrder(t *testing.T) {
	ordered := []float64{
		math.NaN(),
		math.Inf(-1),
		-1,
		math.Copysign(0, -1),
		0,
		1,
		math.Inf(1),
	}
	for i := 0; i < len(ordered)-1; i++ {
		if CompareFloat(ordered[i], ordered[i+1]) >= 0 {
			t.Fatalf("expected %v < %v in total order, index %d", ordered[i], ordered[i+1], i)
		}
	}
}

func TestSignedZeroDistinguishable(t *testing.T) {
	pos := Float(0)
	neg := Float(math.Copysign(0, -1))
	if pos.Equal(neg) {
		t.Fatal("+0 and -0 should not compare equal under the total order")
	}
	if CompareFloat(0, math.Copysign(0, -1)) <= 0 {
		t.Fatal("expected -0 to sort below +0")
	}
}

func TestStrAndOwnValueStringEquivalence(t *testing.T) {
	borrowed := Str("hello")
	owned := OwnString("hello")
	if !borrowed.Equal(owned.AsValue()) {
		t.Fatal("Value::Str and OwnValue::String of equal content should compare equal")
	}
	if borrowed.Hash() != owned.AsValue().Hash() {
		t.Fatal("Value::Str and OwnValue::String of equal content should hash equal")
	}
}

func TestIntComparesAs128BitSigned(t *testing.T) {
	hi := Uint(math.MaxUint64, U64)
	lo := Int(-1, I64)
	a, _ := hi.AsBig()
	b, _ := lo.AsBig()
	if a.Cmp(b) <= 0 {
		t.Fatal("max uint64 should compare greater than -1 under signed semantics")
	}
}

func TestNoneKind(t *testing.T) {
	if !None().IsNone() {
		t.Fatal("None() should report IsNone")
	}
	if Int(0, I32).IsNone() {
		t.Fatal("a zero int is not None")
	}
}
