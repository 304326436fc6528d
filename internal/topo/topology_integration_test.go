package topo_test

import (
	"math"
	"testing"

	"github.com/rttopo/topology/internal/memstore"
	"github.com/rttopo/topology/internal/topo"
)

func newTestTopology(t *testing.T) *topo.Topology {
	tp, _ := newTestTopologyWithBackend(t)
	return tp
}

// newTestTopologyWithBackend additionally returns the raw Backend handle
// backing tp, for tests that need to inspect edge rows directly (the
// public Topology API has no by-id edge accessor of its own).
func newTestTopologyWithBackend(t *testing.T) (*topo.Topology, topo.Backend) {
	t.Helper()
	kernel := memstore.NewKernel()
	factory := memstore.NewFactory(kernel, 0, 0, false)
	tp, err := topo.LoadTopology(factory, kernel, "test")
	if err != nil {
		t.Fatalf("LoadTopology: %v", err)
	}
	t.Cleanup(func() {
		if err := topo.FreeTopology(tp); err != nil {
			t.Errorf("FreeTopology: %v", err)
		}
	})
	be, err := factory.Open("test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tp, be
}

func pt(x, y float64) topo.Point { return topo.Point{X: x, Y: y, Z: math.NaN()} }

func absID(id topo.ElemID) topo.ElemID {
	if id < 0 {
		return -id
	}
	return id
}

// ringPoints rebuilds the polyline traced by a signed edge-id sequence
// as returned by GetFaceEdges, reversing any edge walked backward.
func ringPoints(t *testing.T, be topo.Backend, ids []topo.ElemID) []topo.Point {
	t.Helper()
	var pts []topo.Point
	for _, id := range ids {
		rows, err := be.GetEdgeByID([]topo.ElemID{absID(id)}, topo.EdgeFieldGeom)
		if err != nil {
			t.Fatalf("GetEdgeByID(%d): %v", absID(id), err)
		}
		if len(rows) != 1 {
			t.Fatalf("GetEdgeByID(%d): expected 1 row, got %d", absID(id), len(rows))
		}
		geom := rows[0].Geom
		if id < 0 {
			reversed := make(topo.Line, len(geom))
			for i, p := range geom {
				reversed[len(geom)-1-i] = p
			}
			geom = reversed
		}
		if len(pts) == 0 {
			pts = append(pts, geom...)
		} else {
			pts = append(pts, geom[1:]...)
		}
	}
	return pts
}

// sameVertexSet reports whether a and b contain the same multiset of
// points, tolerant of which vertex each ring starts at.
func sameVertexSet(a, b []topo.Point) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, pa := range a {
		for j, pb := range b {
			if used[j] {
				continue
			}
			if pa.X == pb.X && pa.Y == pb.Y {
				used[j] = true
				continue outer
			}
		}
		return false
	}
	return true
}

func TestAddIsoNodeAndMove(t *testing.T) {
	tp := newTestTopology(t)

	id, err := tp.AddIsoNode(topo.Universe, pt(1, 1), false)
	if err != nil {
		t.Fatalf("AddIsoNode: %v", err)
	}

	if err := tp.MoveIsoNode(id, pt(2, 2)); err != nil {
		t.Fatalf("MoveIsoNode: %v", err)
	}

	if _, err := tp.AddIsoNode(topo.Universe, pt(2, 2), false); err == nil {
		t.Fatalf("expected AddIsoNode to reject a point coincident with an existing node")
	}

	if err := tp.RemoveIsoNode(id); err != nil {
		t.Fatalf("RemoveIsoNode: %v", err)
	}
}

func TestAddIsoEdgeInsertsAndRejectsClosedEdge(t *testing.T) {
	tp := newTestTopology(t)

	a, err := tp.AddIsoNode(topo.Universe, pt(0, 0), false)
	if err != nil {
		t.Fatalf("AddIsoNode a: %v", err)
	}
	b, err := tp.AddIsoNode(topo.Universe, pt(10, 0), false)
	if err != nil {
		t.Fatalf("AddIsoNode b: %v", err)
	}

	edgeID, err := tp.AddIsoEdge(a, b, topo.Line{pt(0, 0), pt(10, 0)})
	if err != nil {
		t.Fatalf("AddIsoEdge: %v", err)
	}
	if edgeID == topo.Unset {
		t.Fatalf("AddIsoEdge returned Unset id")
	}

	if _, err := tp.AddIsoEdge(a, a, topo.Line{pt(0, 0), pt(0, 0)}); err == nil {
		t.Fatalf("expected AddIsoEdge to reject a closed edge")
	}
}

func TestAddPolygonSplitsUniverseFace(t *testing.T) {
	tp, be := newTestTopologyWithBackend(t)

	square := topo.Polygon{
		Outer: topo.Ring{
			pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10), pt(0, 0),
		},
	}
	if _, err := tp.AddPolygon(square, 1e-9); err != nil {
		t.Fatalf("AddPolygon: %v", err)
	}

	// The ring closes on itself, so inserting it must split the universe
	// face and create the topology's first bounded face (id 1).
	edges, err := tp.GetFaceEdges(1)
	if err != nil {
		t.Fatalf("GetFaceEdges(1): %v", err)
	}
	if len(edges) == 0 {
		t.Fatalf("expected the new bounded face to have boundary edges")
	}
	for _, id := range edges {
		if id == 0 {
			t.Fatalf("GetFaceEdges returned an unsigned (zero) id: %v", edges)
		}
	}

	poly, err := tp.GetFaceGeometry(1)
	if err != nil {
		t.Fatalf("GetFaceGeometry(1): %v", err)
	}
	if len(poly.Outer) < 4 {
		t.Fatalf("expected a closed outer ring, got %v", poly.Outer)
	}

	// Round-trip property (§8): rebuilding the polygon from GetFaceEdges's
	// signed ids must reproduce GetFaceGeometry's polygon.
	rebuilt := ringPoints(t, be, edges)
	if !sameVertexSet(rebuilt, poly.Outer) {
		t.Errorf("GetFaceEdges round-trip mismatch: rebuilt %v, GetFaceGeometry outer %v", rebuilt, poly.Outer)
	}
}

func TestGetFaceEdgesAllowsUniverse(t *testing.T) {
	tp := newTestTopology(t)

	square := topo.Polygon{
		Outer: topo.Ring{
			pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10), pt(0, 0),
		},
	}
	if _, err := tp.AddPolygon(square, 1e-9); err != nil {
		t.Fatalf("AddPolygon: %v", err)
	}

	edges, err := tp.GetFaceEdges(topo.Universe)
	if err != nil {
		t.Fatalf("GetFaceEdges(Universe) should succeed, got: %v", err)
	}
	if len(edges) == 0 {
		t.Fatalf("expected the universe face to have boundary edges after adding the ring")
	}
}

func TestModEdgeSplitAndHeal(t *testing.T) {
	tp := newTestTopology(t)

	a, err := tp.AddIsoNode(topo.Universe, pt(0, 0), false)
	if err != nil {
		t.Fatalf("AddIsoNode a: %v", err)
	}
	b, err := tp.AddIsoNode(topo.Universe, pt(10, 0), false)
	if err != nil {
		t.Fatalf("AddIsoNode b: %v", err)
	}
	edgeID, err := tp.AddIsoEdge(a, b, topo.Line{pt(0, 0), pt(10, 0)})
	if err != nil {
		t.Fatalf("AddIsoEdge: %v", err)
	}

	newNode, err := tp.ModEdgeSplit(edgeID, pt(5, 0), true)
	if err != nil {
		t.Fatalf("ModEdgeSplit: %v", err)
	}
	if newNode == topo.Unset {
		t.Fatalf("ModEdgeSplit returned Unset node id")
	}

	// NextEdgeID is a monotonic per-topology counter and this test's only
	// other edge-producing call was the initial AddIsoEdge, so the split's
	// new edge is the very next id handed out.
	secondHalf := edgeID + 1

	if _, err := tp.ModEdgeHeal(edgeID, secondHalf); err != nil {
		t.Fatalf("ModEdgeHeal: %v", err)
	}
}

func TestRemIsoEdgeRestoresIsolation(t *testing.T) {
	tp := newTestTopology(t)

	a, err := tp.AddIsoNode(topo.Universe, pt(0, 0), false)
	if err != nil {
		t.Fatalf("AddIsoNode a: %v", err)
	}
	b, err := tp.AddIsoNode(topo.Universe, pt(10, 0), false)
	if err != nil {
		t.Fatalf("AddIsoNode b: %v", err)
	}
	edgeID, err := tp.AddIsoEdge(a, b, topo.Line{pt(0, 0), pt(10, 0)})
	if err != nil {
		t.Fatalf("AddIsoEdge: %v", err)
	}

	if err := tp.RemIsoEdge(edgeID); err != nil {
		t.Fatalf("RemIsoEdge: %v", err)
	}

	if err := tp.MoveIsoNode(a, pt(1, 1)); err != nil {
		t.Fatalf("node should be isolated again after RemIsoEdge: %v", err)
	}
}
