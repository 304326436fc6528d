package memstore

import "github.com/rttopo/topology/internal/topo"

// projectNode/projectEdge/projectFace zero every column not named by
// fields, the in-memory equivalent of a back end only SELECTing the
// columns the core asked for (§4.2).

func projectNode(n topo.Node, fields topo.NodeField) topo.Node {
	var out topo.Node
	if fields&topo.NodeFieldID != 0 {
		out.ID = n.ID
	}
	if fields&topo.NodeFieldContainingFace != 0 {
		out.ContainingFace = n.ContainingFace
	}
	if fields&topo.NodeFieldGeom != 0 {
		out.Geom = n.Geom
	}
	return out
}

func projectEdge(e topo.Edge, fields topo.EdgeField) topo.Edge {
	var out topo.Edge
	if fields&topo.EdgeFieldID != 0 {
		out.ID = e.ID
	}
	if fields&topo.EdgeFieldStartNode != 0 {
		out.StartNode = e.StartNode
	}
	if fields&topo.EdgeFieldEndNode != 0 {
		out.EndNode = e.EndNode
	}
	if fields&topo.EdgeFieldFaceLeft != 0 {
		out.FaceLeft = e.FaceLeft
	}
	if fields&topo.EdgeFieldFaceRight != 0 {
		out.FaceRight = e.FaceRight
	}
	if fields&topo.EdgeFieldNextLeft != 0 {
		out.NextLeft = e.NextLeft
	}
	if fields&topo.EdgeFieldNextRight != 0 {
		out.NextRight = e.NextRight
	}
	if fields&topo.EdgeFieldGeom != 0 {
		out.Geom = e.Geom
	}
	return out
}

func projectFace(f topo.Face, fields topo.FaceField) topo.Face {
	var out topo.Face
	if fields&topo.FaceFieldID != 0 {
		out.ID = f.ID
	}
	if fields&topo.FaceFieldMBR != 0 {
		out.MBR = f.MBR
	}
	return out
}

// matchNode/matchEdge report whether row agrees with crit on every field
// named by mask. A zero mask matches nothing: UpdateEdges and friends
// pass a zero exclusion mask to mean "exclude nothing", which only works
// if an empty selector is vacuously false rather than vacuously true.

func matchNode(row, crit topo.Node, mask topo.NodeField) bool {
	if mask == 0 {
		return false
	}
	if mask&topo.NodeFieldID != 0 && row.ID != crit.ID {
		return false
	}
	if mask&topo.NodeFieldContainingFace != 0 && row.ContainingFace != crit.ContainingFace {
		return false
	}
	if mask&topo.NodeFieldGeom != 0 && row.Geom != crit.Geom {
		return false
	}
	return true
}

func matchEdge(row, crit topo.Edge, mask topo.EdgeField) bool {
	if mask == 0 {
		return false
	}
	if mask&topo.EdgeFieldID != 0 && row.ID != crit.ID {
		return false
	}
	if mask&topo.EdgeFieldStartNode != 0 && row.StartNode != crit.StartNode {
		return false
	}
	if mask&topo.EdgeFieldEndNode != 0 && row.EndNode != crit.EndNode {
		return false
	}
	if mask&topo.EdgeFieldFaceLeft != 0 && row.FaceLeft != crit.FaceLeft {
		return false
	}
	if mask&topo.EdgeFieldFaceRight != 0 && row.FaceRight != crit.FaceRight {
		return false
	}
	if mask&topo.EdgeFieldNextLeft != 0 && row.NextLeft != crit.NextLeft {
		return false
	}
	if mask&topo.EdgeFieldNextRight != 0 && row.NextRight != crit.NextRight {
		return false
	}
	return true
}

func applyNode(row *topo.Node, upd topo.Node, mask topo.NodeField) {
	if mask&topo.NodeFieldID != 0 {
		row.ID = upd.ID
	}
	if mask&topo.NodeFieldContainingFace != 0 {
		row.ContainingFace = upd.ContainingFace
	}
	if mask&topo.NodeFieldGeom != 0 {
		row.Geom = upd.Geom
	}
}

func applyEdge(row *topo.Edge, upd topo.Edge, mask topo.EdgeField) {
	if mask&topo.EdgeFieldID != 0 {
		row.ID = upd.ID
	}
	if mask&topo.EdgeFieldStartNode != 0 {
		row.StartNode = upd.StartNode
	}
	if mask&topo.EdgeFieldEndNode != 0 {
		row.EndNode = upd.EndNode
	}
	if mask&topo.EdgeFieldFaceLeft != 0 {
		row.FaceLeft = upd.FaceLeft
	}
	if mask&topo.EdgeFieldFaceRight != 0 {
		row.FaceRight = upd.FaceRight
	}
	if mask&topo.EdgeFieldNextLeft != 0 {
		row.NextLeft = upd.NextLeft
	}
	if mask&topo.EdgeFieldNextRight != 0 {
		row.NextRight = upd.NextRight
	}
	if mask&topo.EdgeFieldGeom != 0 {
		row.Geom = upd.Geom
	}
}
