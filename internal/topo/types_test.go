package topo

import "testing"

func TestBoundsEmpty(t *testing.T) {
	var b Bounds
	if b.Empty() {
		t.Errorf("zero-value Bounds is the degenerate box at the origin and should not be empty")
	}
	nb := Bounds{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}
	if nb.Empty() {
		t.Errorf("non-degenerate Bounds reported empty")
	}
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}
	b := Bounds{MinX: 2, MinY: -1, MaxX: 3, MaxY: 0.5}
	u := a.Union(b)
	want := Bounds{MinX: 0, MinY: -1, MaxX: 3, MaxY: 1}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}

	var empty Bounds
	empty.MinX, empty.MaxX = 1, 0 // force Empty()
	if got := empty.Union(a); got != a {
		t.Errorf("Union with empty should return the other operand unchanged, got %+v", got)
	}
}

func TestBoundsExpand(t *testing.T) {
	b := Bounds{MinX: 1, MinY: 1, MaxX: 1, MaxY: 1}
	got := b.Expand(2)
	want := Bounds{MinX: -1, MinY: -1, MaxX: 3, MaxY: 3}
	if got != want {
		t.Errorf("Expand = %+v, want %+v", got, want)
	}
}

func TestBoundsIntersects(t *testing.T) {
	a := Bounds{MinX: 0, MinY: 0, MaxX: 2, MaxY: 2}
	tests := []struct {
		name string
		b    Bounds
		want bool
	}{
		{"overlapping", Bounds{MinX: 1, MinY: 1, MaxX: 3, MaxY: 3}, true},
		{"touching edge", Bounds{MinX: 2, MinY: 0, MaxX: 4, MaxY: 2}, true},
		{"disjoint", Bounds{MinX: 5, MinY: 5, MaxX: 6, MaxY: 6}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects(%+v, %+v) = %v, want %v", a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBoundsOf(t *testing.T) {
	if b := BoundsOf(nil); !b.Empty() {
		t.Errorf("BoundsOf(nil) should be empty, got %+v", b)
	}

	line := Line{{X: 3, Y: -1}, {X: -2, Y: 5}, {X: 0, Y: 0}}
	got := BoundsOf(line)
	want := Bounds{MinX: -2, MinY: -1, MaxX: 3, MaxY: 5}
	if got != want {
		t.Errorf("BoundsOf = %+v, want %+v", got, want)
	}
}

func TestNodeIsolated(t *testing.T) {
	n := Node{ContainingFace: Universe}
	if !n.Isolated() {
		t.Errorf("node with a containing face should be isolated")
	}
	n.ContainingFace = Unset
	if n.Isolated() {
		t.Errorf("node with Unset containing face should not be isolated")
	}
}

func TestEdgeClosedAndDangling(t *testing.T) {
	e := Edge{StartNode: 1, EndNode: 1, FaceLeft: 0, FaceRight: 0}
	if !e.Closed() {
		t.Errorf("edge sharing start/end node should be Closed")
	}
	if !e.Dangling() {
		t.Errorf("edge with equal left/right face should be Dangling")
	}

	e.EndNode = 2
	e.FaceRight = 1
	if e.Closed() {
		t.Errorf("edge with distinct nodes should not be Closed")
	}
	if e.Dangling() {
		t.Errorf("edge with distinct faces should not be Dangling")
	}
}
