package topo

// de9imMatches reports whether matrix satisfies pattern, where pattern
// characters '0'/'1'/'2'/'F' require an exact match and 'T' requires
// matrix's character to be anything but 'F'; '*' matches unconditionally.
func de9imMatches(matrix, pattern string) bool {
	if len(matrix) != len(pattern) {
		return false
	}
	for i := range pattern {
		switch pattern[i] {
		case '*':
			continue
		case 'T':
			if matrix[i] == 'F' {
				return false
			}
		default:
			if matrix[i] != pattern[i] {
				return false
			}
		}
	}
	return true
}

// checkEdgeCrossing implements §4.3.3: it fails if line passes through a
// non-endpoint node, or crosses/overlaps/coincides with an existing edge.
// self names an edge id to exclude from the edge check (used by
// ChangeEdgeGeom to compare a line against everything but itself).
func checkEdgeCrossing(t *Topology, op string, start, end ElemID, line Line, self ElemID) *Error {
	box := BoundsOf(line)

	nodes, err := t.be.GetNodeWithinBox2D(box, NodeFieldAll, 0)
	if err != nil {
		return wrapBackend(op, err)
	}
	for _, n := range nodes {
		if n.ID == start || n.ID == end {
			continue
		}
		if t.geom.PointOnLineInterior(line, n.Geom) {
			return newErr(op, KindNodeOnEdge, "node %d lies on the new edge's interior", n.ID)
		}
	}

	edges, err := t.be.GetEdgeWithinBox2D(box, EdgeFieldAll, 0)
	if err != nil {
		return wrapBackend(op, err)
	}
	for _, e := range edges {
		if e.ID == self {
			continue
		}
		im, gerr := t.geom.DE9IM(line, e.Geom)
		if gerr != nil {
			return wrapGeom(op, gerr)
		}
		switch {
		case de9imMatches(im, "1FFF*FFF2"):
			return newErr(op, KindCoincidentEdge, "coincident with edge %d", e.ID)
		case de9imMatches(im, "1********"):
			return newErr(op, KindEdgesOverlap, "overlaps edge %d", e.ID)
		case de9imMatches(im, "T********"):
			return newErr(op, KindEdgesCross, "crosses edge %d", e.ID)
		}
	}
	return nil
}
