package pathlang

import (
	"testing"

	"treenav/internal/backend/ownvalue"
	"treenav/internal/cell"
	"treenav/internal/elevreg"
	"treenav/internal/value"

	_ "treenav/internal/backend/json"
)

func jsonRoot(t *testing.T, doc string) cell.Cell {
	t.Helper()
	v := ownvalue.New(value.OwnString(doc), cell.NoAutoWrite)
	root, err := elevreg.Elevate(v, "json", elevreg.Params{})
	if err != nil {
		t.Fatalf("elevate json: %v", err)
	}
	return root
}

func mustPath(t *testing.T, s string) Path {
	t.Helper()
	p, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return p
}

func TestSearcherLabelLookup(t *testing.T) {
	root := jsonRoot(t, `{"a":1,"b":2}`)
	s := NewSearcher(root, mustPath(t, "/b"))
	c, ok, err := s.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	reader, _ := c.Read()
	v, err := reader.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	i, _, _ := v.AsInt()
	if i != 2 {
		t.Fatalf("expected 2, got %v", i)
	}
}

func TestSearcherWildcardEnumeratesInOrder(t *testing.T) {
	root := jsonRoot(t, `{"a":1,"b":2,"c":3}`)
	s := NewSearcher(root, mustPath(t, "/*"))
	var labels []string
	for {
		c, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		reader, _ := c.Read()
		label, _ := reader.Label()
		labels = append(labels, label)
	}
	if len(labels) != 3 || labels[0] != "a" || labels[1] != "b" || labels[2] != "c" {
		t.Fatalf("unexpected order: %v", labels)
	}
}

func TestSearcherDoubleStarMatchesZeroLevels(t *testing.T) {
	root := jsonRoot(t, `{"a":{"x":1},"b":{"c":{"x":2}}}`)
	s := NewSearcher(root, mustPath(t, "/**/x"))
	var found int
	for {
		_, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		found++
	}
	if found != 2 {
		t.Fatalf("expected 2 matches for **, got %d", found)
	}
}

func TestSearcherTypeFilter(t *testing.T) {
	root := jsonRoot(t, `{"a":1,"b":"s","c":2}`)
	s := NewSearcher(root, mustPath(t, "/*[:number]"))
	var count int
	for {
		_, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 numeric children, got %d", count)
	}
}

func TestSearcherTernaryFilter(t *testing.T) {
	root := jsonRoot(t, `{"items":[{"name":"x","v":1},{"name":"y","v":2}]}`)
	s := NewSearcher(root, mustPath(t, `/items/*[/name=="y"]`))
	c, ok, err := s.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	sub, err := c.Sub()
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	nameCell, err := sub.At(0)
	if err != nil {
		t.Fatalf("At(0): %v", err)
	}
	reader, _ := nameCell.Read()
	v, _ := reader.Value()
	s2, _ := v.AsStr()
	if s2 != "y" {
		t.Fatalf("expected name y, got %q", s2)
	}
}

// TestSearcherTernaryFilterOnIntegerField guards against a document-sourced
// integer field never comparing equal to a bare integer literal: both sides
// must land on value.KindInt, not one as KindInt and the other as KindFloat.
func TestSearcherTernaryFilterOnIntegerField(t *testing.T) {
	root := jsonRoot(t, `{"items":[{"id":1,"name":"x"},{"id":2,"name":"y"}]}`)
	s := NewSearcher(root, mustPath(t, `/items/*[/id==2]`))
	c, ok, err := s.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	sub, err := c.Sub()
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	nameCell, err := sub.GetAll("name")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	nc, ok := nameCell.Next()
	if !ok {
		t.Fatal("expected a name child")
	}
	reader, _ := nc.Read()
	v, _ := reader.Value()
	s2, _ := v.AsStr()
	if s2 != "y" {
		t.Fatalf("expected name y for id==2, got %q", s2)
	}
}

func TestSearcherNestedLabelPath(t *testing.T) {
	root := jsonRoot(t, `{"a":{"b":42}}`)
	s := NewSearcher(root, mustPath(t, "/a/b"))
	c, ok, err := s.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	reader, _ := c.Read()
	v, _ := reader.Value()
	i, _, _ := v.AsInt()
	if i != 42 {
		t.Fatalf("expected 42, got %v", i)
	}
}

func TestSearcherUnmatchedPathReportsPrefix(t *testing.T) {
	root := jsonRoot(t, `{"a":1}`)
	s := NewSearcher(root, mustPath(t, "/missing/deeper"))
	_, ok, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ok {
		t.Fatal("expected no match")
	}
	if s.UnmatchedPath() == "" {
		t.Fatal("expected a non-empty unmatched path prefix")
	}
}

// A repeated label under a repeated double-star legitimately matches the
// same cell along more than one distinct descent, so "**/b/**/b" against
// three nested "b" objects must emit more than one match; this is not a
// deduplication bug, it is how an unbounded double-star frontier works.
func TestSearcherDoubleStarCanEmitSameShapeMatchTwice(t *testing.T) {
	root := jsonRoot(t, `{"b":{"b":{"b":1}}}`)
	s := NewSearcher(root, mustPath(t, "/**/b/**/b"))
	var found int
	for {
		_, ok, err := s.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		found++
	}
	if found < 2 {
		t.Fatalf("expected at least 2 matches from the repeated double-star/label pattern, got %d", found)
	}
}
