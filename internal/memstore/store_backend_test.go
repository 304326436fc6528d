package memstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rttopo/topology/internal/topo"
)

func TestInsertFacesAndGetFaceByID(t *testing.T) {
	be := newTestBackend(t)
	ids, err := be.InsertFaces([]topo.Face{{MBR: topo.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}}})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	rows, err := be.GetFaceByID(ids, topo.FaceFieldAll)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, topo.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}, rows[0].MBR)
}

func TestUpdateFacesByID(t *testing.T) {
	be := newTestBackend(t)
	ids, err := be.InsertFaces([]topo.Face{{MBR: topo.Bounds{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}}})
	require.NoError(t, err)

	grown := topo.Face{ID: ids[0], MBR: topo.Bounds{MinX: -5, MinY: -5, MaxX: 5, MaxY: 5}}
	require.NoError(t, be.UpdateFacesByID([]topo.Face{grown}, topo.FaceFieldMBR))

	rows, err := be.GetFaceByID(ids, topo.FaceFieldAll)
	require.NoError(t, err)
	require.Equal(t, grown.MBR, rows[0].MBR)
}

func TestDeleteFacesByID(t *testing.T) {
	be := newTestBackend(t)
	ids, err := be.InsertFaces([]topo.Face{{MBR: topo.Bounds{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}}})
	require.NoError(t, err)
	require.NoError(t, be.DeleteFacesByID(ids))

	rows, err := be.GetFaceByID(ids, topo.FaceFieldID)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestGetEdgeByNode(t *testing.T) {
	be := newTestBackend(t)
	nodeIDs, err := be.InsertNodes([]topo.Node{
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 0, Y: 0}},
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 10, Y: 0}},
	})
	require.NoError(t, err)

	edgeID, err := be.NextEdgeID()
	require.NoError(t, err)
	_, err = be.InsertEdges([]topo.Edge{{
		ID: edgeID, StartNode: nodeIDs[0], EndNode: nodeIDs[1],
		FaceLeft: topo.Universe, FaceRight: topo.Universe,
		NextLeft: -edgeID, NextRight: edgeID,
		Geom: topo.Line{{X: 0, Y: 0}, {X: 10, Y: 0}},
	}})
	require.NoError(t, err)

	rows, err := be.GetEdgeByNode([]topo.ElemID{nodeIDs[0]}, topo.EdgeFieldAll)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, edgeID, rows[0].ID)
}

func TestDeleteEdgesBySelector(t *testing.T) {
	be := newTestBackend(t)
	nodeIDs, err := be.InsertNodes([]topo.Node{
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 0, Y: 0}},
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 10, Y: 0}},
	})
	require.NoError(t, err)

	edgeID, err := be.NextEdgeID()
	require.NoError(t, err)
	_, err = be.InsertEdges([]topo.Edge{{
		ID: edgeID, StartNode: nodeIDs[0], EndNode: nodeIDs[1],
		FaceLeft: topo.Universe, FaceRight: topo.Universe,
		NextLeft: -edgeID, NextRight: edgeID,
		Geom: topo.Line{{X: 0, Y: 0}, {X: 10, Y: 0}},
	}})
	require.NoError(t, err)

	n, err := be.DeleteEdges(topo.Edge{ID: edgeID}, topo.EdgeFieldID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	rows, err := be.GetEdgeByID([]topo.ElemID{edgeID}, topo.EdgeFieldID)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestUpdateEdgesBySelector(t *testing.T) {
	be := newTestBackend(t)
	nodeIDs, err := be.InsertNodes([]topo.Node{
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 0, Y: 0}},
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 10, Y: 0}},
	})
	require.NoError(t, err)

	edgeID, err := be.NextEdgeID()
	require.NoError(t, err)
	_, err = be.InsertEdges([]topo.Edge{{
		ID: edgeID, StartNode: nodeIDs[0], EndNode: nodeIDs[1],
		FaceLeft: topo.Universe, FaceRight: topo.Universe,
		NextLeft: -edgeID, NextRight: edgeID,
		Geom: topo.Line{{X: 0, Y: 0}, {X: 10, Y: 0}},
	}})
	require.NoError(t, err)

	n, err := be.UpdateEdges(
		topo.Edge{ID: edgeID}, topo.EdgeFieldID,
		topo.Edge{NextRight: 99}, topo.EdgeFieldNextRight,
		topo.Edge{}, 0,
	)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	rows, err := be.GetEdgeByID([]topo.ElemID{edgeID}, topo.EdgeFieldAll)
	require.NoError(t, err)
	require.EqualValues(t, 99, rows[0].NextRight)
}

func TestGetRingEdgesWalksClosedLoop(t *testing.T) {
	be := newTestBackend(t)
	nodeIDs, err := be.InsertNodes([]topo.Node{
		{ContainingFace: topo.Universe, Geom: topo.Point{X: 0, Y: 0}},
	})
	require.NoError(t, err)
	a := nodeIDs[0]

	edgeID, err := be.NextEdgeID()
	require.NoError(t, err)
	_, err = be.InsertEdges([]topo.Edge{{
		ID: edgeID, StartNode: a, EndNode: a,
		FaceLeft: 1, FaceRight: topo.Universe,
		NextLeft: edgeID, NextRight: -edgeID,
		Geom: topo.Line{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}},
	}})
	require.NoError(t, err)

	ring, err := be.GetRingEdges(edgeID, 100)
	require.NoError(t, err)
	require.Equal(t, []topo.ElemID{edgeID}, ring)
}
