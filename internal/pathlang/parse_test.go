package pathlang

import (
	"testing"

	"treenav/internal/cell"
)

func TestParseNormalItemRoundTrips(t *testing.T) {
	path, err := Parse("/a/b@c#value")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(path.Items) != 4 {
		t.Fatalf("expected 4 items, got %d: %s", len(path.Items), path.String())
	}
	ni, ok := path.Items[0].(NormalItem)
	if !ok || ni.Relation != cell.Sub || ni.Selector.Label != "a" {
		t.Fatalf("unexpected first item: %+v", path.Items[0])
	}
	if path.String() != "/a/b@c#value" {
		t.Fatalf("round-trip mismatch: %s", path.String())
	}
}

func TestParseWildcardAndIndex(t *testing.T) {
	path, err := Parse("/*[2]/**[-1]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	first := path.Items[0].(NormalItem)
	if first.Selector.Kind != SelStar || first.Index == nil || *first.Index != 2 {
		t.Fatalf("unexpected first item: %+v", first)
	}
	second := path.Items[1].(NormalItem)
	if second.Selector.Kind != SelDoubleStar || second.Index == nil || *second.Index != -1 {
		t.Fatalf("unexpected second item: %+v", second)
	}
}

func TestParseElevationWithParams(t *testing.T) {
	path, err := Parse("^regex[pattern=\"a(b)c\"]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ei, ok := path.Items[0].(ElevationItem)
	if !ok || ei.Target != "regex" {
		t.Fatalf("unexpected item: %+v", path.Items[0])
	}
	if len(ei.Params) != 1 || ei.Params[0].Name != "pattern" {
		t.Fatalf("unexpected params: %+v", ei.Params)
	}
	s, ok := ei.Params[0].Value.AsValue().AsStr()
	if !ok || s != "a(b)c" {
		t.Fatalf("unexpected param value: %+v", ei.Params[0].Value)
	}
}

func TestParseFilterTernaryAndType(t *testing.T) {
	path, err := Parse("/item[/name==\"x\"][:int]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ni := path.Items[0].(NormalItem)
	if len(ni.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(ni.Filters))
	}
	tern, ok := ni.Filters[0].Expr.(Ternary)
	if !ok || tern.Op != "==" {
		t.Fatalf("expected ternary filter, got %+v", ni.Filters[0].Expr)
	}
	if _, ok := ni.Filters[1].Expr.(TypeExpr); !ok {
		t.Fatalf("expected type filter, got %+v", ni.Filters[1].Expr)
	}
}

func TestParseOrExpression(t *testing.T) {
	path, err := Parse("/x[:int|:float]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ni := path.Items[0].(NormalItem)
	or, ok := ni.Filters[0].Expr.(Or)
	if !ok || len(or.Alternatives) != 2 {
		t.Fatalf("expected Or with 2 alternatives, got %+v", ni.Filters[0].Expr)
	}
}

func TestFieldRelationRejectsFilters(t *testing.T) {
	if _, err := Parse("#value[:int]"); err == nil {
		t.Fatal("expected an error for a filtered field item")
	}
}

func TestParseWithStarterFile(t *testing.T) {
	start, path, err := ParseWithStarter("./data/a.json^json/k")
	if err != nil {
		t.Fatalf("ParseWithStarter: %v", err)
	}
	if start.Kind != StartFile || start.Value != "./data/a.json" {
		t.Fatalf("unexpected start: %+v", start)
	}
	if len(path.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(path.Items))
	}
}

func TestParseWithStarterURL(t *testing.T) {
	start, _, err := ParseWithStarter("http://example.com/a^http")
	if err != nil {
		t.Fatalf("ParseWithStarter: %v", err)
	}
	if start.Kind != StartURL || start.Value != "http://example.com/a" {
		t.Fatalf("unexpected start: %+v", start)
	}
}

func TestParseWithStarterQuotedString(t *testing.T) {
	start, path, err := ParseWithStarter(`"hello world"^split[" "]`)
	if err != nil {
		t.Fatalf("ParseWithStarter: %v", err)
	}
	if start.Kind != StartString || start.Value != "hello world" {
		t.Fatalf("unexpected start: %+v", start)
	}
	if len(path.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(path.Items))
	}
}

func TestParseTrailingGarbageFails(t *testing.T) {
	if _, err := Parse("/a extra garbage"); err == nil {
		t.Fatal("expected trailing input to fail")
	}
}
