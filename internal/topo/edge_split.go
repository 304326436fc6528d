package topo

// splitEdgeAt validates and executes the geometric split of edge at pt,
// shared by ModEdgeSplit and NewEdgesSplit (§4.3.5): it fetches the edge
// being split, optionally checks for a coincident node, and asks the
// geometry kernel to cut its line in two.
func splitEdgeAt(t *Topology, op string, edgeID ElemID, pt Point, skipISOChecks bool) (Edge, Line, Line, *Error) {
	rows, err := t.be.GetEdgeByID([]ElemID{edgeID}, EdgeFieldAll)
	if err != nil {
		return Edge{}, nil, nil, wrapBackend(op, err)
	}
	if len(rows) == 0 {
		return Edge{}, nil, nil, newErr(op, KindNonExistentEdge, "edge %d does not exist", edgeID)
	}
	old := rows[0]

	if !skipISOChecks {
		tol := t.tolerance(0, pt)
		near, err := t.be.GetNodeWithinDistance2D(pt, tol, NodeFieldID, 1)
		if err != nil {
			return Edge{}, nil, nil, wrapBackend(op, err)
		}
		if len(near) > 0 {
			return Edge{}, nil, nil, newErr(op, KindCoincidentNode, "node %d coincides with split point", near[0].ID)
		}
	}

	parts, gerr := t.geom.Split(old.Geom, pt)
	if len(parts) < 2 {
		return Edge{}, nil, nil, newErr(op, KindPointNotOnEdge, "point is not on edge %d", edgeID)
	}
	if gerr != nil {
		return Edge{}, nil, nil, wrapGeom(op, gerr)
	}
	return old, parts[0], parts[1], nil
}

// ModEdgeSplit splits edge at pt, adding a new node and a new edge for
// the portion past the split point while the original edge row keeps
// its id and now ends at the new node (§4.3.5). Returns the new node.
func (t *Topology) ModEdgeSplit(edgeID ElemID, pt Point, skipISOChecks bool) (ElemID, error) {
	const op = "ModEdgeSplit"
	if ierr := checkInterrupt(op); ierr != nil {
		return Unset, ierr
	}

	old, before, after, serr := splitEdgeAt(t, op, edgeID, pt, skipISOChecks)
	if serr != nil {
		return Unset, serr
	}

	nodeIDs, err := t.be.InsertNodes([]Node{{ContainingFace: Unset, Geom: pt}})
	if err != nil {
		return Unset, wrapBackend(op, err)
	}
	node := nodeIDs[0]

	newID, err := t.be.NextEdgeID()
	if err != nil {
		return Unset, wrapBackend(op, err)
	}

	newEdge := Edge{
		ID:        newID,
		StartNode: node,
		EndNode:   old.EndNode,
		FaceLeft:  old.FaceLeft,
		FaceRight: old.FaceRight,
		NextRight: -old.ID,
		Geom:      after,
	}
	if old.NextLeft == -old.ID {
		newEdge.NextLeft = -newID
	} else {
		newEdge.NextLeft = old.NextLeft
	}
	if _, err := t.be.InsertEdges([]Edge{newEdge}); err != nil {
		return Unset, wrapBackend(op, err)
	}

	updated := old
	updated.Geom = before
	updated.NextLeft = newID
	updated.EndNode = node
	if err := t.be.UpdateEdgesByID([]Edge{updated}, EdgeFieldGeom|EdgeFieldNextLeft|EdgeFieldEndNode); err != nil {
		return Unset, wrapBackend(op, err)
	}

	if _, err := t.be.UpdateEdges(
		Edge{NextRight: -old.ID, StartNode: old.EndNode}, EdgeFieldNextRight|EdgeFieldStartNode,
		Edge{NextRight: -newID}, EdgeFieldNextRight,
		Edge{ID: newID}, EdgeFieldID,
	); err != nil {
		return Unset, wrapBackend(op, err)
	}
	if _, err := t.be.UpdateEdges(
		Edge{NextLeft: -old.ID, EndNode: old.EndNode}, EdgeFieldNextLeft|EdgeFieldEndNode,
		Edge{NextLeft: -newID}, EdgeFieldNextLeft,
		Edge{ID: newID}, EdgeFieldID,
	); err != nil {
		return Unset, wrapBackend(op, err)
	}

	if err := t.be.UpdateTopoGeomEdgeSplit(old.ID, newID, Unset); err != nil {
		return Unset, wrapBackend(op, err)
	}

	t.log.WithField("node", node).Debug("ModEdgeSplit")
	return node, nil
}

// NewEdgesSplit splits edge at pt into two brand new edges and deletes
// the original row entirely (§4.3.5). Returns the new node.
func (t *Topology) NewEdgesSplit(edgeID ElemID, pt Point, skipISOChecks bool) (ElemID, error) {
	const op = "NewEdgesSplit"
	if ierr := checkInterrupt(op); ierr != nil {
		return Unset, ierr
	}

	old, before, after, serr := splitEdgeAt(t, op, edgeID, pt, skipISOChecks)
	if serr != nil {
		return Unset, serr
	}

	nodeIDs, err := t.be.InsertNodes([]Node{{ContainingFace: Unset, Geom: pt}})
	if err != nil {
		return Unset, wrapBackend(op, err)
	}
	node := nodeIDs[0]

	if _, err := t.be.DeleteEdges(Edge{ID: edgeID}, EdgeFieldID); err != nil {
		return Unset, wrapBackend(op, err)
	}

	id0, err := t.be.NextEdgeID()
	if err != nil {
		return Unset, wrapBackend(op, err)
	}
	id1, err := t.be.NextEdgeID()
	if err != nil {
		return Unset, wrapBackend(op, err)
	}

	e0 := Edge{ID: id0, StartNode: old.StartNode, EndNode: node, FaceLeft: old.FaceLeft, FaceRight: old.FaceRight, NextLeft: id1, Geom: before}
	switch old.NextRight {
	case edgeID:
		e0.NextRight = id0
	case -edgeID:
		e0.NextRight = -id1
	default:
		e0.NextRight = old.NextRight
	}

	e1 := Edge{ID: id1, StartNode: node, EndNode: old.EndNode, FaceLeft: old.FaceLeft, FaceRight: old.FaceRight, NextRight: -id0, Geom: after}
	switch old.NextLeft {
	case -edgeID:
		e1.NextLeft = -id1
	case edgeID:
		e1.NextLeft = id0
	default:
		e1.NextLeft = old.NextLeft
	}

	if _, err := t.be.InsertEdges([]Edge{e0, e1}); err != nil {
		return Unset, wrapBackend(op, err)
	}

	if _, err := t.be.UpdateEdges(
		Edge{NextRight: edgeID, StartNode: old.StartNode}, EdgeFieldNextRight|EdgeFieldStartNode,
		Edge{NextRight: id1}, EdgeFieldNextRight, Edge{}, 0,
	); err != nil {
		return Unset, wrapBackend(op, err)
	}
	if _, err := t.be.UpdateEdges(
		Edge{NextRight: -edgeID, StartNode: old.EndNode}, EdgeFieldNextRight|EdgeFieldStartNode,
		Edge{NextRight: -id0}, EdgeFieldNextRight, Edge{}, 0,
	); err != nil {
		return Unset, wrapBackend(op, err)
	}
	if _, err := t.be.UpdateEdges(
		Edge{NextLeft: edgeID, EndNode: old.StartNode}, EdgeFieldNextLeft|EdgeFieldEndNode,
		Edge{NextLeft: id0}, EdgeFieldNextLeft, Edge{}, 0,
	); err != nil {
		return Unset, wrapBackend(op, err)
	}
	if _, err := t.be.UpdateEdges(
		Edge{NextLeft: -edgeID, EndNode: old.EndNode}, EdgeFieldNextLeft|EdgeFieldEndNode,
		Edge{NextLeft: -id1}, EdgeFieldNextLeft, Edge{}, 0,
	); err != nil {
		return Unset, wrapBackend(op, err)
	}

	if err := t.be.UpdateTopoGeomEdgeSplit(edgeID, id0, id1); err != nil {
		return Unset, wrapBackend(op, err)
	}

	t.log.WithField("node", node).Debug("NewEdgesSplit")
	return node, nil
}

// ChangeEdgeGeom replaces edge's geometry in place without touching its
// topology: endpoints, winding (for closed edges) and adjacency ordering
// at both nodes must all be preserved, and the new line's "motion area"
// swept between old and new position must not engulf any third-party
// node (§4.3.6).
func (t *Topology) ChangeEdgeGeom(edgeID ElemID, line Line) error {
	const op = "ChangeEdgeGeom"
	if ierr := checkInterrupt(op); ierr != nil {
		return ierr
	}
	if !t.geom.IsSimple(line) {
		return newErr(op, KindGeometryNotSimple, "edge geometry is not simple")
	}
	if len(line) < 2 {
		return newErr(op, KindEmptyGeometry, "edge requires two distinct vertices")
	}

	rows, err := t.be.GetEdgeByID([]ElemID{edgeID}, EdgeFieldAll)
	if err != nil {
		return wrapBackend(op, err)
	}
	if len(rows) == 0 {
		return newErr(op, KindNonExistentEdge, "edge %d does not exist", edgeID)
	}
	old := rows[0]

	if !samePoint(old.Geom[0], line[0]) {
		return newErr(op, KindEndpointMismatch, "start node not geometry start point")
	}
	if !samePoint(old.Geom[len(old.Geom)-1], line[len(line)-1]) {
		return newErr(op, KindEndpointMismatch, "end node not geometry end point")
	}

	isClosed := old.Closed()
	if isClosed {
		if t.geom.CCW(Ring(old.Geom)) != t.geom.CCW(Ring(line)) {
			return newErr(op, KindEdgeTwistAroundEndpoint, "edge winding changed at node %d", old.StartNode)
		}
	}

	if cerr := checkEdgeCrossing(t, op, old.StartNode, old.EndNode, line, edgeID); cerr != nil {
		return cerr
	}

	box := BoundsOf(old.Geom).Union(BoundsOf(line))
	nodes, err := t.be.GetNodeWithinBox2D(box, NodeFieldAll, 0)
	if err != nil {
		return wrapBackend(op, err)
	}
	if len(nodes) > 1 {
		oldArea, newArea, merr := t.geom.MotionArea(old.Geom, line)
		if merr != nil {
			return wrapGeom(op, merr)
		}
		for _, n := range nodes {
			if n.ID == old.StartNode || n.ID == old.EndNode {
				continue
			}
			inOld := t.geom.PreparedCovers(oldArea, n.Geom)
			inNew := t.geom.PreparedCovers(newArea, n.Geom)
			if inOld != inNew {
				return newErr(op, KindEdgeMotionCollision, "edge motion collision at node %d", n.ID)
			}
		}
	}

	startAzOld, gerr := t.geom.Azimuth(old.Geom[0], old.Geom[1])
	if gerr != nil {
		return wrapGeom(op, gerr)
	}
	endAzOld, gerr := t.geom.Azimuth(old.Geom[len(old.Geom)-1], old.Geom[len(old.Geom)-2])
	if gerr != nil {
		return wrapGeom(op, gerr)
	}
	startAdjOld, _, _, aerr := findAdjacentEdges(t.be, t.geom, op, old.StartNode, edgeID, startAzOld)
	if aerr != nil {
		return aerr
	}
	endAdjOld, _, _, aerr := findAdjacentEdges(t.be, t.geom, op, old.EndNode, edgeID, endAzOld)
	if aerr != nil {
		return aerr
	}

	updated := old
	updated.Geom = line
	if err := t.be.UpdateEdgesByID([]Edge{updated}, EdgeFieldGeom); err != nil {
		return wrapBackend(op, err)
	}

	startAzNew, gerr := t.geom.Azimuth(line[0], line[1])
	if gerr != nil {
		return wrapGeom(op, gerr)
	}
	endAzNew, gerr := t.geom.Azimuth(line[len(line)-1], line[len(line)-2])
	if gerr != nil {
		return wrapGeom(op, gerr)
	}
	startAdjNew, _, _, aerr := findAdjacentEdges(t.be, t.geom, op, old.StartNode, edgeID, startAzNew)
	if aerr != nil {
		return aerr
	}
	endAdjNew, _, _, aerr := findAdjacentEdges(t.be, t.geom, op, old.EndNode, edgeID, endAzNew)
	if aerr != nil {
		return aerr
	}

	if startAdjOld.cw.signed != startAdjNew.cw.signed || startAdjOld.ccw.signed != startAdjNew.ccw.signed {
		return newErr(op, KindEdgeTwistAroundEndpoint, "edge changed disposition around start node %d", old.StartNode)
	}
	if endAdjOld.cw.signed != endAdjNew.cw.signed || endAdjOld.ccw.signed != endAdjNew.ccw.signed {
		return newErr(op, KindEdgeTwistAroundEndpoint, "edge changed disposition around end node %d", old.EndNode)
	}

	var faceUpdates []Face
	if old.FaceLeft != Universe {
		poly, ferr := t.GetFaceGeometry(old.FaceLeft)
		if ferr != nil {
			return ferr
		}
		faceUpdates = append(faceUpdates, Face{ID: old.FaceLeft, MBR: BoundsOf(Line(poly.Outer))})
	}
	if old.FaceRight != Universe && old.FaceRight != old.FaceLeft {
		poly, ferr := t.GetFaceGeometry(old.FaceRight)
		if ferr != nil {
			return ferr
		}
		faceUpdates = append(faceUpdates, Face{ID: old.FaceRight, MBR: BoundsOf(Line(poly.Outer))})
	}
	if len(faceUpdates) > 0 {
		if err := t.be.UpdateFacesByID(faceUpdates, FaceFieldMBR); err != nil {
			return wrapBackend(op, err)
		}
	}

	t.log.WithField("edge", edgeID).Debug("ChangeEdgeGeom")
	return nil
}
