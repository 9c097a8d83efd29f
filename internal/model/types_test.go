package model

import "testing"

func TestNewLinkIdCanonicalizes(t *testing.T) {
	a := NewLinkId(3, 1)
	b := NewLinkId(1, 3)
	if a != b {
		t.Fatalf("got %+v and %+v, want equal canonical keys", a, b)
	}
	if a.U != 1 || a.V != 3 {
		t.Fatalf("got %+v, want U=1 V=3", a)
	}
}

func TestGraphCapsPowerCostDefault(t *testing.T) {
	g := NewGraphCaps()
	link := NewLinkId(1, 2)
	g.CapacityMbps[link] = 1000
	if got := g.PowerCostOf(link); got != 100 {
		t.Fatalf("got %v, want default power cost 100", got)
	}
	g.PowerCost[link] = 42
	if got := g.PowerCostOf(link); got != 42 {
		t.Fatalf("got %v, want explicit power cost 42", got)
	}
}
