package topo

// AddIsoNode adds an isolated node, optionally inside face (Unset means
// "resolve via the back end's point-in-polygon test"). Preconditions are
// skipped entirely when skipChecks is true (§4.3.1); the face lookup is
// skipped too, and an Unset face is then stored as Universe.
func (t *Topology) AddIsoNode(face ElemID, point Point, skipChecks bool) (ElemID, error) {
	const op = "AddIsoNode"
	if ierr := checkInterrupt(op); ierr != nil {
		return Unset, ierr
	}

	resolvedFace := face
	if !skipChecks {
		tol := t.tolerance(0, point)
		near, err := t.be.GetNodeWithinDistance2D(point, tol, NodeFieldID, 1)
		if err != nil {
			return Unset, wrapBackend(op, err)
		}
		if len(near) > 0 {
			return Unset, newErr(op, KindCoincidentNode, "node %d coincides with point within tolerance", near[0].ID)
		}

		box := Bounds{MinX: point.X, MinY: point.Y, MaxX: point.X, MaxY: point.Y}.Expand(tol)
		edges, err := t.be.GetEdgeWithinBox2D(box, EdgeFieldID|EdgeFieldGeom, 0)
		if err != nil {
			return Unset, wrapBackend(op, err)
		}
		for _, e := range edges {
			if t.geom.PointOnLineInterior(e.Geom, point) {
				return Unset, newErr(op, KindEdgeCrossesNode, "edge %d passes through point", e.ID)
			}
		}

		if face != Unset {
			actual, err := t.be.GetFaceContainingPoint(point)
			if err != nil {
				return Unset, wrapBackend(op, err)
			}
			if actual != face {
				return Unset, newErr(op, KindFaceMismatch, "point is contained by face %d, not %d", actual, face)
			}
		} else {
			actual, err := t.be.GetFaceContainingPoint(point)
			if err != nil {
				return Unset, wrapBackend(op, err)
			}
			resolvedFace = actual
		}
	} else if resolvedFace == Unset {
		resolvedFace = Universe
	}

	ids, err := t.be.InsertNodes([]Node{{ContainingFace: resolvedFace, Geom: point}})
	if err != nil {
		return Unset, wrapBackend(op, err)
	}
	t.log.WithField("node", ids[0]).Debug("AddIsoNode")
	return ids[0], nil
}

// MoveIsoNode relocates an isolated node, preserving its containing
// face. Fails if the new position collides with another node or edge
// (§4.3.7).
func (t *Topology) MoveIsoNode(node ElemID, to Point) error {
	const op = "MoveIsoNode"
	if ierr := checkInterrupt(op); ierr != nil {
		return ierr
	}

	rows, err := t.be.GetNodeByID([]ElemID{node}, NodeFieldAll)
	if err != nil {
		return wrapBackend(op, err)
	}
	if len(rows) == 0 {
		return newErr(op, KindNonExistentNode, "node %d does not exist", node)
	}
	n := rows[0]
	if n.ContainingFace == Unset {
		return newErr(op, KindNotIsolated, "node %d is not isolated", node)
	}

	tol := t.tolerance(0, to)
	near, err := t.be.GetNodeWithinDistance2D(to, tol, NodeFieldID, 1)
	if err != nil {
		return wrapBackend(op, err)
	}
	for _, other := range near {
		if other.ID != node {
			return newErr(op, KindCoincidentNode, "node %d coincides with destination", other.ID)
		}
	}

	box := Bounds{MinX: to.X, MinY: to.Y, MaxX: to.X, MaxY: to.Y}.Expand(tol)
	edges, err := t.be.GetEdgeWithinBox2D(box, EdgeFieldID|EdgeFieldGeom, 0)
	if err != nil {
		return wrapBackend(op, err)
	}
	for _, e := range edges {
		if t.geom.PointOnLineInterior(e.Geom, to) {
			return newErr(op, KindEdgeCrossesNode, "edge %d passes through destination", e.ID)
		}
	}

	n.Geom = to
	if err := t.be.UpdateNodesByID([]Node{n}, NodeFieldGeom); err != nil {
		return wrapBackend(op, err)
	}
	return nil
}

// RemoveIsoNode deletes an isolated node.
func (t *Topology) RemoveIsoNode(node ElemID) error {
	const op = "RemoveIsoNode"
	rows, err := t.be.GetNodeByID([]ElemID{node}, NodeFieldContainingFace)
	if err != nil {
		return wrapBackend(op, err)
	}
	if len(rows) == 0 {
		return newErr(op, KindNonExistentNode, "node %d does not exist", node)
	}
	if rows[0].ContainingFace == Unset {
		return newErr(op, KindNotIsolated, "node %d is not isolated", node)
	}
	if err := t.be.DeleteNodesByID([]ElemID{node}); err != nil {
		return wrapBackend(op, err)
	}
	return nil
}
