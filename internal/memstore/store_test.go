package memstore

import (
	"testing"

	"github.com/rttopo/topology/internal/topo"
)

func newTestBackend(t *testing.T) topo.Backend {
	t.Helper()
	factory := NewFactory(NewKernel(), 4326, 0, false)
	be, err := factory.Open("t1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := be.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return be
}

func TestFactoryOpenReusesSameName(t *testing.T) {
	factory := NewFactory(NewKernel(), 0, 0, false)
	a, err := factory.Open("shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, err := factory.Open("shared")
	if err != nil {
		t.Fatalf("Open (second time): %v", err)
	}
	if a != b {
		t.Errorf("Open with the same name twice should return the same backend instance")
	}
}

func TestFactoryOpenAnonymous(t *testing.T) {
	factory := NewFactory(NewKernel(), 0, 0, false)
	a, err := factory.Open("")
	if err != nil {
		t.Fatalf("Open(\"\"): %v", err)
	}
	b, err := factory.Open("")
	if err != nil {
		t.Fatalf("Open(\"\") (second time): %v", err)
	}
	if a == b {
		t.Errorf("two anonymous Open(\"\") calls should not collide on the same backend")
	}
}

func TestInsertNodesAssignsIDs(t *testing.T) {
	be := newTestBackend(t)
	ids, err := be.InsertNodes([]topo.Node{
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 1, Y: 1}},
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 2, Y: 2}},
	})
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Fatalf("expected two distinct assigned ids, got %v", ids)
	}

	rows, err := be.GetNodeByID(ids, topo.NodeFieldAll)
	if err != nil {
		t.Fatalf("GetNodeByID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows back, got %d", len(rows))
	}
}

func TestInsertEdgesRespectsPresetID(t *testing.T) {
	be := newTestBackend(t)
	nodeIDs, err := be.InsertNodes([]topo.Node{
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 0, Y: 0}},
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 10, Y: 0}},
	})
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}

	edgeID, err := be.NextEdgeID()
	if err != nil {
		t.Fatalf("NextEdgeID: %v", err)
	}
	e := topo.Edge{
		ID:        edgeID,
		StartNode: nodeIDs[0],
		EndNode:   nodeIDs[1],
		FaceLeft:  topo.Universe,
		FaceRight: topo.Universe,
		NextLeft:  -edgeID,
		NextRight: edgeID,
		Geom:      topo.Line{{X: 0, Y: 0}, {X: 10, Y: 0}},
	}
	ids, err := be.InsertEdges([]topo.Edge{e})
	if err != nil {
		t.Fatalf("InsertEdges: %v", err)
	}
	if len(ids) != 1 || ids[0] != edgeID {
		t.Fatalf("InsertEdges should preserve the pre-assigned id %d, got %v", edgeID, ids)
	}
}

func TestGetNodeWithinBox2D(t *testing.T) {
	be := newTestBackend(t)
	_, err := be.InsertNodes([]topo.Node{
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 1, Y: 1}},
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 100, Y: 100}},
	})
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}

	rows, err := be.GetNodeWithinBox2D(topo.Bounds{MinX: 0, MinY: 0, MaxX: 5, MaxY: 5}, topo.NodeFieldAll, 0)
	if err != nil {
		t.Fatalf("GetNodeWithinBox2D: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 node within the box, got %d", len(rows))
	}
	if rows[0].Geom != (topo.Point{X: 1, Y: 1}) {
		t.Errorf("unexpected node returned: %+v", rows[0])
	}
}

func TestGetNodeWithinDistance2D(t *testing.T) {
	be := newTestBackend(t)
	ids, err := be.InsertNodes([]topo.Node{
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 0, Y: 0}},
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 50, Y: 50}},
	})
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}

	rows, err := be.GetNodeWithinDistance2D(topo.Point{X: 0, Y: 0}, 1, topo.NodeFieldID, 0)
	if err != nil {
		t.Fatalf("GetNodeWithinDistance2D: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != ids[0] {
		t.Fatalf("expected only the near node within distance 1, got %v", rows)
	}
}

func TestUpdateNodesByID(t *testing.T) {
	be := newTestBackend(t)
	ids, err := be.InsertNodes([]topo.Node{{ContainingFace: topo.Universe, Geom: topo.Point{X: 1, Y: 1}}})
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}

	moved := topo.Node{ID: ids[0], Geom: topo.Point{X: 9, Y: 9}}
	if err := be.UpdateNodesByID([]topo.Node{moved}, topo.NodeFieldGeom); err != nil {
		t.Fatalf("UpdateNodesByID: %v", err)
	}

	rows, err := be.GetNodeByID(ids, topo.NodeFieldAll)
	if err != nil {
		t.Fatalf("GetNodeByID: %v", err)
	}
	if rows[0].Geom != (topo.Point{X: 9, Y: 9}) {
		t.Errorf("expected node geometry to be updated, got %+v", rows[0])
	}
	if rows[0].ContainingFace != topo.Universe {
		t.Errorf("UpdateNodesByID should not touch fields outside its mask, got %+v", rows[0])
	}
}

func TestDeleteNodesByID(t *testing.T) {
	be := newTestBackend(t)
	ids, err := be.InsertNodes([]topo.Node{{ContainingFace: topo.Universe, Geom: topo.Point{X: 1, Y: 1}}})
	if err != nil {
		t.Fatalf("InsertNodes: %v", err)
	}
	if err := be.DeleteNodesByID(ids); err != nil {
		t.Fatalf("DeleteNodesByID: %v", err)
	}
	rows, err := be.GetNodeByID(ids, topo.NodeFieldID)
	if err != nil {
		t.Fatalf("GetNodeByID: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected node to be gone after delete, got %v", rows)
	}
}

func TestGetFaceContainingPointFallsBackToUniverse(t *testing.T) {
	be := newTestBackend(t)
	face, err := be.GetFaceContainingPoint(topo.Point{X: 42, Y: 42})
	if err != nil {
		t.Fatalf("GetFaceContainingPoint: %v", err)
	}
	if face != topo.Universe {
		t.Errorf("expected Universe for a topology with no bounded faces, got %v", face)
	}
}

func TestNextEdgeIDMonotonic(t *testing.T) {
	be := newTestBackend(t)
	a, err := be.NextEdgeID()
	if err != nil {
		t.Fatalf("NextEdgeID: %v", err)
	}
	b, err := be.NextEdgeID()
	if err != nil {
		t.Fatalf("NextEdgeID: %v", err)
	}
	if b <= a {
		t.Errorf("expected NextEdgeID to increase monotonically, got %v then %v", a, b)
	}
}
