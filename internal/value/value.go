// Package value implements the scalar model shared by every cell: a
// tagged None/Bool/Int/Float/Str/Bytes variant, in both a borrowed Value
// form (what readers hand back) and an owned OwnValue form (what writers
// and elevation parameters carry across a backend boundary). Integers
// carry width metadata but compare as signed 128-bit; floats use a total
// order where NaN sorts below -Inf and +0/-0 are distinguishable.
package value

import (
	"fmt"
	"math"
	"math/big"
)

type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// IntKind records the original integer width/signedness so that
// round-tripped writes can pick a sensible concrete encoding; comparisons
// themselves always go through the signed 128-bit path.
type IntKind uint8

const (
	I32 IntKind = iota
	U32
	I64
	U64
)

// Value is a read-only, possibly backend-borrowed scalar.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	u     uint64
	ik    IntKind
	f     float64
	s     string
	bytes []byte
}

func None() Value                  { return Value{kind: KindNone} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Int(i int64, k IntKind) Value { return Value{kind: KindInt, i: i, ik: k} }
func Uint(u uint64, k IntKind) Value {
	return Value{kind: KindInt, u: u, ik: k, i: int64(u)}
}
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Str(s string) Value     { return Value{kind: KindStr, s: s} }
func Bytes(b []byte) Value   { return Value{kind: KindBytes, bytes: b} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNone() bool { return v.kind == KindNone }

func (v Value) AsBool() (bool, bool)   { return v.b, v.kind == KindBool }
func (v Value) AsFloat() (float64, bool) {
	if v.kind == KindFloat {
		return v.f, true
	}
	return 0, false
}
func (v Value) AsStr() (string, bool)   { return v.s, v.kind == KindStr }
func (v Value) AsBytes() ([]byte, bool) { return v.bytes, v.kind == KindBytes }

// AsInt returns the value as a signed int64 plus its recorded width. It is
// lossy for the high half of unsigned 64-bit values larger than MaxInt64;
// use AsBig for exact 128-bit-safe comparisons.
func (v Value) AsInt() (int64, IntKind, bool) {
	if v.kind != KindInt {
		return 0, 0, false
	}
	if v.ik == U64 {
		return int64(v.u), v.ik, true
	}
	return v.i, v.ik, true
}

// AsBig returns the integer as an exact big.Int, used for the spec's
// "compares as 128-bit signed" integer ordering.
func (v Value) AsBig() (*big.Int, bool) {
	if v.kind != KindInt {
		return nil, false
	}
	if v.ik == U64 {
		return new(big.Int).SetUint64(v.u), true
	}
	return big.NewInt(v.i), true
}

func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "<none>"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		if v.ik == U64 {
			return fmt.Sprintf("%d", v.u)
		}
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%v", v.f)
	case KindStr:
		return v.s
	case KindBytes:
		return fmt.Sprintf("<%d bytes>", len(v.bytes))
	default:
		return "<?>"
	}
}

// Equal compares two values across the borrowed/owned boundary: a Str and
// an equal-content OwnValue String must compare and hash equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		// Ints and floats of equal numeric value are still distinct kinds.
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		a, _ := v.AsBig()
		b, _ := o.AsBig()
		return a.Cmp(b) == 0
	case KindFloat:
		return CompareFloat(v.f, o.f) == 0
	case KindStr:
		return v.s == o.s
	case KindBytes:
		if len(v.bytes) != len(o.bytes) {
			return false
		}
		for i := range v.bytes {
			if v.bytes[i] != o.bytes[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Hash produces a hash consistent with Equal and with the float total
// order (so +0 and -0 hash differently, matching their distinguishability
// under CompareFloat, while still comparing equal under ==).
func (v Value) Hash() uint64 {
	const offset = 1469598103934645824
	const prime = 1099511628211
	h := uint64(offset)
	mix := func(b byte) {
		h ^= uint64(b)
		h *= prime
	}
	mix(byte(v.kind))
	switch v.kind {
	case KindBool:
		if v.b {
			mix(1)
		}
	case KindInt:
		n, _ := v.AsBig()
		for _, b := range n.Bytes() {
			mix(b)
		}
		if n.Sign() < 0 {
			mix(0xff)
		}
	case KindFloat:
		bits := floatOrderKey(v.f)
		for i := 0; i < 8; i++ {
			mix(byte(bits >> (8 * i)))
		}
	case KindStr:
		for i := 0; i < len(v.s); i++ {
			mix(v.s[i])
		}
	case KindBytes:
		for _, b := range v.bytes {
			mix(b)
		}
	}
	return h
}

// floatOrderKey maps a float64 to a uint64 whose natural order matches the
// spec's total order: NaN < -Inf < ... < -0 < +0 < ... < +Inf.
func floatOrderKey(f float64) uint64 {
	if math.IsNaN(f) {
		return 0
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		// Negative (including -Inf, -0): flip every bit, including the
		// sign bit, so larger magnitude sorts lower and the whole range
		// lands strictly below the positive range.
		return ^bits
	}
	// Positive (including +Inf, +0): flip only the sign bit, so +0 sorts
	// just above -0's key instead of colliding with it.
	return bits | (uint64(1) << 63)
}

// CompareFloat implements the spec's total order over float64, including
// NaN and signed zero, returning -1/0/1.
func CompareFloat(a, b float64) int {
	ka, kb := floatOrderKey(a), floatOrderKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}

// OwnValue is an owned scalar, used for writer arguments, elevation
// parameters and path-language rvalues, where no backend buffer is being
// borrowed from.
type OwnValue struct {
	v Value
}

func OwnNone() OwnValue             { return OwnValue{None()} }
func OwnBool(b bool) OwnValue       { return OwnValue{Bool(b)} }
func OwnInt(i int64, k IntKind) OwnValue { return OwnValue{Int(i, k)} }
func OwnUint(u uint64, k IntKind) OwnValue { return OwnValue{Uint(u, k)} }
func OwnFloat(f float64) OwnValue   { return OwnValue{Float(f)} }
func OwnString(s string) OwnValue   { return OwnValue{Str(s)} }
func OwnBytes(b []byte) OwnValue    { return OwnValue{Bytes(b)} }

func FromValue(v Value) OwnValue { return OwnValue{v} }

func (o OwnValue) AsValue() Value    { return o.v }
func (o OwnValue) Kind() Kind        { return o.v.kind }
func (o OwnValue) IsNone() bool      { return o.v.IsNone() }
func (o OwnValue) String() string    { return o.v.String() }
func (o OwnValue) Equal(p OwnValue) bool { return o.v.Equal(p.v) }
