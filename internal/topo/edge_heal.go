package topo

import "github.com/sirupsen/logrus"

// concatLines appends b onto a, dropping b's first point since it is
// expected to coincide with a's last (the shared node being healed
// away).
func concatLines(a, b Line) Line {
	out := make(Line, 0, len(a)+len(b)-1)
	out = append(out, a...)
	out = append(out, b[1:]...)
	return out
}

// healPlan is the geometry and linkage of the single edge that results
// from healing e1 and e2 together, derived from which pair of endpoints
// turned out to be the shared node (§4.3.10's four cases).
type healPlan struct {
	start, end         ElemID
	nextLeft, nextRight ElemID
	geom               Line
	e1FreeNode         ElemID // sign of references to e1's still-dangling endpoint
	e2FreeNode         ElemID // sign of references to e2's still-dangling endpoint
	e2Sign             ElemID // -1 when e2 runs opposite e1 in the merged edge
}

func buildHealPlan(caseNo int, e1, e2 Edge) healPlan {
	switch caseNo {
	case 1: // e1.end == e2.start
		return healPlan{
			start: e1.StartNode, end: e2.EndNode,
			nextLeft: e2.NextLeft, nextRight: e1.NextRight,
			geom:       concatLines(e1.Geom, e2.Geom),
			e1FreeNode: 1, e2FreeNode: -1, e2Sign: 1,
		}
	case 2: // e1.end == e2.end
		return healPlan{
			start: e1.StartNode, end: e2.StartNode,
			nextLeft: e2.NextRight, nextRight: e1.NextRight,
			geom:       concatLines(e1.Geom, reverseLine(e2.Geom)),
			e1FreeNode: 1, e2FreeNode: 1, e2Sign: -1,
		}
	case 3: // e1.start == e2.start
		return healPlan{
			start: e2.EndNode, end: e1.EndNode,
			nextLeft: e1.NextLeft, nextRight: e2.NextLeft,
			geom:       concatLines(reverseLine(e2.Geom), e1.Geom),
			e1FreeNode: -1, e2FreeNode: -1, e2Sign: -1,
		}
	default: // case 4: e1.start == e2.end
		return healPlan{
			start: e2.StartNode, end: e1.EndNode,
			nextLeft: e1.NextLeft, nextRight: e2.NextRight,
			geom:       concatLines(e2.Geom, e1.Geom),
			e1FreeNode: -1, e2FreeNode: 1, e2Sign: 1,
		}
	}
}

// otherEdgesAtNode returns every edge id incident to node other than
// eid1 and eid2.
func otherEdgesAtNode(be Backend, node, eid1, eid2 ElemID) ([]ElemID, error) {
	edges, err := be.GetEdgeByNode([]ElemID{node}, EdgeFieldID)
	if err != nil {
		return nil, err
	}
	var others []ElemID
	for _, e := range edges {
		if e.ID == eid1 || e.ID == eid2 {
			continue
		}
		others = append(others, e.ID)
	}
	return others, nil
}

// findHealCommonNode locates the single node shared by e1 and e2 with
// nothing else attached to it, trying the end-node pairing first and
// falling back to the start-node pairing (§4.3.10). interferers
// accumulates the ids of any edges found blocking a candidate, for the
// error message when no pairing succeeds.
func findHealCommonNode(be Backend, eid1, eid2 ElemID, e1, e2 Edge) (node ElemID, caseNo int, interferers []ElemID, err error) {
	try := func(candidate ElemID, cn int) (ElemID, int, bool, error) {
		others, err := otherEdgesAtNode(be, candidate, eid1, eid2)
		if err != nil {
			return Unset, 0, false, err
		}
		if len(others) > 0 {
			interferers = append(interferers, others...)
			return Unset, 0, false, nil
		}
		return candidate, cn, true, nil
	}

	if e1.EndNode == e2.StartNode {
		if n, cn, ok, e := try(e1.EndNode, 1); e != nil {
			return Unset, 0, nil, e
		} else if ok {
			return n, cn, nil, nil
		}
	} else if e1.EndNode == e2.EndNode {
		if n, cn, ok, e := try(e1.EndNode, 2); e != nil {
			return Unset, 0, nil, e
		} else if ok {
			return n, cn, nil, nil
		}
	}

	if e1.StartNode == e2.StartNode {
		if n, cn, ok, e := try(e1.StartNode, 3); e != nil {
			return Unset, 0, nil, e
		} else if ok {
			return n, cn, nil, nil
		}
	} else if e1.StartNode == e2.EndNode {
		if n, cn, ok, e := try(e1.StartNode, 4); e != nil {
			return Unset, 0, nil, e
		} else if ok {
			return n, cn, nil, nil
		}
	}

	return Unset, 0, interferers, nil
}

// healEdges is the shared body of ModEdgeHeal and NewEdgeHeal
// (§4.3.10): it finds the node shared by exactly these two edges and
// nothing else, builds the merged edge's geometry and linkage, redirects
// every other edge's next_left/next_right away from the two originals,
// and drops the shared node. modEdge selects whether e1's row is
// overwritten in place or a brand new edge is inserted and both
// originals dropped.
func healEdges(t *Topology, op string, eid1, eid2 ElemID, modEdge bool) (ElemID, *Error) {
	if eid1 == eid2 {
		return Unset, newErr(op, KindSelfHeal, "cannot heal edge %d with itself", eid1)
	}

	rows, err := t.be.GetEdgeByID([]ElemID{eid1, eid2}, EdgeFieldAll)
	if err != nil {
		return Unset, wrapBackend(op, err)
	}
	var e1, e2 *Edge
	for i := range rows {
		switch rows[i].ID {
		case eid1:
			if e1 != nil {
				return Unset, newErr(op, KindCorruptedTopology, "more than one edge has id %d", eid1)
			}
			e1 = &rows[i]
		case eid2:
			if e2 != nil {
				return Unset, newErr(op, KindCorruptedTopology, "more than one edge has id %d", eid2)
			}
			e2 = &rows[i]
		}
	}
	if e1 == nil {
		return Unset, newErr(op, KindNonExistentEdge, "edge %d does not exist", eid1)
	}
	if e2 == nil {
		return Unset, newErr(op, KindNonExistentEdge, "edge %d does not exist", eid2)
	}
	if e1.Closed() {
		return Unset, newErr(op, KindClosedEdge, "edge %d is closed, cannot heal to edge %d", eid1, eid2)
	}
	if e2.Closed() {
		return Unset, newErr(op, KindClosedEdge, "edge %d is closed, cannot heal to edge %d", eid2, eid1)
	}

	commonNode, caseNo, interferers, gerr := findHealCommonNode(t.be, eid1, eid2, *e1, *e2)
	if gerr != nil {
		return Unset, wrapBackend(op, gerr)
	}
	if commonNode == Unset {
		if len(interferers) > 0 {
			return Unset, newErr(op, KindOtherEdgesConnected, "other edges connected: %v", interferers)
		}
		return Unset, newErr(op, KindEdgesNotConnected, "edges %d and %d are not connected", eid1, eid2)
	}

	if verr := t.be.CheckTopoGeomRemNode(commonNode); verr != nil {
		return Unset, wrapBackend(op, verr)
	}

	plan := buildHealPlan(caseNo, *e1, *e2)

	var mergedID ElemID
	if modEdge {
		mergedID = eid1
		updated := Edge{
			ID:        eid1,
			StartNode: plan.start,
			EndNode:   plan.end,
			NextLeft:  plan.nextLeft,
			NextRight: plan.nextRight,
			Geom:      plan.geom,
		}
		if err := t.be.UpdateEdgesByID([]Edge{updated}, EdgeFieldStartNode|EdgeFieldEndNode|EdgeFieldNextLeft|EdgeFieldNextRight|EdgeFieldGeom); err != nil {
			return Unset, wrapBackend(op, err)
		}
	} else {
		id, err := t.be.NextEdgeID()
		if err != nil {
			return Unset, wrapBackend(op, err)
		}
		mergedID = id
		newEdge := Edge{
			ID:        id,
			StartNode: plan.start,
			EndNode:   plan.end,
			FaceLeft:  e1.FaceLeft,
			FaceRight: e1.FaceRight,
			NextLeft:  plan.nextLeft,
			NextRight: plan.nextRight,
			Geom:      plan.geom,
		}
		if _, err := t.be.InsertEdges([]Edge{newEdge}); err != nil {
			return Unset, wrapBackend(op, err)
		}
	}

	if _, err := t.be.UpdateEdges(
		Edge{NextLeft: plan.e2FreeNode * eid2}, EdgeFieldNextLeft,
		Edge{NextLeft: plan.e2FreeNode * mergedID * plan.e2Sign}, EdgeFieldNextLeft,
		Edge{}, 0,
	); err != nil {
		return Unset, wrapBackend(op, err)
	}
	if _, err := t.be.UpdateEdges(
		Edge{NextRight: plan.e2FreeNode * eid2}, EdgeFieldNextRight,
		Edge{NextRight: plan.e2FreeNode * mergedID * plan.e2Sign}, EdgeFieldNextRight,
		Edge{}, 0,
	); err != nil {
		return Unset, wrapBackend(op, err)
	}

	if !modEdge {
		if _, err := t.be.UpdateEdges(
			Edge{NextLeft: plan.e1FreeNode * eid1}, EdgeFieldNextLeft,
			Edge{NextLeft: plan.e1FreeNode * mergedID}, EdgeFieldNextLeft,
			Edge{}, 0,
		); err != nil {
			return Unset, wrapBackend(op, err)
		}
		if _, err := t.be.UpdateEdges(
			Edge{NextRight: plan.e1FreeNode * eid1}, EdgeFieldNextRight,
			Edge{NextRight: plan.e1FreeNode * mergedID}, EdgeFieldNextRight,
			Edge{}, 0,
		); err != nil {
			return Unset, wrapBackend(op, err)
		}
	}

	if _, err := t.be.DeleteEdges(Edge{ID: eid2}, EdgeFieldID); err != nil {
		return Unset, wrapBackend(op, err)
	}
	if !modEdge {
		if _, err := t.be.DeleteEdges(Edge{ID: eid1}, EdgeFieldID); err != nil {
			return Unset, wrapBackend(op, err)
		}
	}

	if err := t.be.DeleteNodesByID([]ElemID{commonNode}); err != nil {
		return Unset, wrapBackend(op, err)
	}

	if err := t.be.UpdateTopoGeomEdgeHeal(eid1, eid2, mergedID); err != nil {
		return Unset, wrapBackend(op, err)
	}

	if modEdge {
		return commonNode, nil
	}
	return mergedID, nil
}

// ModEdgeHeal merges e1 and e2 into a single edge, keeping e1's row and
// geometry extended with e2's, and drops the node they shared
// (§4.3.10). Returns the id of the node that was removed.
func (t *Topology) ModEdgeHeal(e1, e2 ElemID) (ElemID, error) {
	const op = "ModEdgeHeal"
	if ierr := checkInterrupt(op); ierr != nil {
		return Unset, ierr
	}
	node, err := healEdges(t, op, e1, e2, true)
	if err != nil {
		return Unset, err
	}
	t.log.WithFields(logrus.Fields{"edge1": e1, "edge2": e2, "node": node}).Debug("ModEdgeHeal")
	return node, nil
}

// NewEdgeHeal merges e1 and e2 into a brand new edge row, deleting both
// originals along with the node they shared (§4.3.10). Returns the new
// edge's id.
func (t *Topology) NewEdgeHeal(e1, e2 ElemID) (ElemID, error) {
	const op = "NewEdgeHeal"
	if ierr := checkInterrupt(op); ierr != nil {
		return Unset, ierr
	}
	newID, err := healEdges(t, op, e1, e2, false)
	if err != nil {
		return Unset, err
	}
	t.log.WithFields(logrus.Fields{"edge1": e1, "edge2": e2, "newEdge": newID}).Debug("NewEdgeHeal")
	return newID, nil
}
