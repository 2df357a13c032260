package transmute

import "testing"

func noop(v any) (any, error) { return v, nil }

func TestEdgeTableOrdersByCost(t *testing.T) {
	et := NewEdgeTable()
	a, b := CatKey("a"), CatKey("b")

	cheap := et.Register(1, a, nil, b, nil, noop)
	cheap.Name = "cheap"
	pricey := et.Register(5, a, nil, b, nil, noop)
	pricey.Name = "pricey"
	mid := et.Register(3, a, nil, b, nil, noop)
	mid.Name = "mid"

	got := et.EdgesFrom(a)
	if len(got) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(got))
	}
	if got[0] != cheap || got[1] != mid || got[2] != pricey {
		t.Fatalf("edges not in cost order: %v %v %v", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestEdgeTableFIFOTieBreak(t *testing.T) {
	et := NewEdgeTable()
	a, b := CatKey("a"), CatKey("b")

	first := et.Register(1, a, nil, b, nil, noop)
	first.Name = "first"
	second := et.Register(1, a, nil, b, nil, noop)
	second.Name = "second"

	got := et.EdgesFrom(a)
	if got[0] != first || got[1] != second {
		t.Fatalf("expected FIFO order for equal costs, got %v then %v", got[0].Name, got[1].Name)
	}
}

func TestEdgesFromUnknownCategoryIsEmpty(t *testing.T) {
	et := NewEdgeTable()
	if got := et.EdgesFrom(CatKey("nowhere")); len(got) != 0 {
		t.Fatalf("expected no edges, got %d", len(got))
	}
}

func TestEdgeTableIndexesBothDirections(t *testing.T) {
	et := NewEdgeTable()
	a, b := CatKey("a"), CatKey("b")
	e := et.Register(1, a, nil, b, nil, noop)

	if from := et.EdgesFrom(a); len(from) != 1 || from[0] != e {
		t.Fatalf("EdgesFrom did not return the registered edge")
	}
	if to := et.EdgesTo(b); len(to) != 1 || to[0] != e {
		t.Fatalf("EdgesTo did not return the registered edge")
	}
}

func TestEdgeTableLen(t *testing.T) {
	et := NewEdgeTable()
	a, b := CatKey("a"), CatKey("b")
	et.Register(1, a, nil, b, nil, noop)
	et.Register(2, a, nil, b, nil, noop)
	if et.Len() != 2 {
		t.Fatalf("expected Len()=2, got %d", et.Len())
	}
}
