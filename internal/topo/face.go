package topo

// GetFaceEdges rebuilds face's boundary as one signed edge-id sequence
// per ring (§4.4). Unlike GetFaceGeometry, the universal face is a valid
// input here: it has no outer-ring/hole orientation to force, but its
// bounding rings (the outer shells of the faces adjacent to it) are
// still walkable.
//
// Each ring is walked via Backend.GetRingEdges starting from whichever
// signed half of a boundary edge has this face on its left
// (sideFace(e, signed) == face), so every id in the result is already
// positive iff face_left == face. If face is not the universe, the
// ring with the largest absolute area is reoriented clockwise and every
// other ring counter-clockwise; reorienting a ring reverses its point
// order, which means reversing its signed-id sequence and negating
// every id. Finally each ring's subsequence is rotated so its
// numerically smallest absolute edge id comes first.
func (t *Topology) GetFaceEdges(face ElemID) ([]ElemID, error) {
	const op = "GetFaceEdges"

	edges, err := t.be.GetEdgeByFace([]ElemID{face}, EdgeFieldID|EdgeFieldFaceLeft|EdgeFieldFaceRight|EdgeFieldGeom, nil)
	if err != nil {
		return nil, wrapBackend(op, err)
	}
	if len(edges) == 0 {
		return nil, nil
	}

	visited := map[ElemID]bool{}
	var rings [][]ElemID
	var areas []float64
	for _, e := range edges {
		for _, signed := range [2]ElemID{e.ID, -e.ID} {
			if sideFace(e, signed) != face || visited[signed] {
				continue
			}
			walk, werr := t.be.GetRingEdges(signed, maxRingWalk)
			if werr != nil {
				return nil, wrapBackend(op, werr)
			}
			for _, se := range walk {
				visited[se] = true
			}
			pts, berr := buildRingLine(t, op, walk)
			if berr != nil {
				return nil, berr
			}
			rings = append(rings, walk)
			areas = append(areas, ringArea(Ring(pts)))
		}
	}
	if len(rings) == 0 {
		return nil, nil
	}

	if face != Universe {
		outer := 0
		for i := 1; i < len(rings); i++ {
			if areas[i] > areas[outer] {
				outer = i
			}
		}
		for i := range rings {
			ring, berr := buildRingLine(t, op, rings[i])
			if berr != nil {
				return nil, berr
			}
			ccw := t.geom.CCW(Ring(ring))
			wantCCW := i != outer
			if ccw != wantCCW {
				rings[i] = reverseSignedRing(rings[i])
			}
		}
		if outer != 0 {
			rings[0], rings[outer] = rings[outer], rings[0]
		}
	}

	var out []ElemID
	for _, ring := range rings {
		out = append(out, rotateToMinAbsID(ring)...)
	}
	return out, nil
}

// reverseSignedRing reverses the traversal direction of a signed-edge
// ring: point order reverses, so both the sequence order and the sign
// of every id flip.
func reverseSignedRing(ids []ElemID) []ElemID {
	out := make([]ElemID, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = -id
	}
	return out
}

// rotateToMinAbsID cyclically rotates a ring's signed-id sequence so
// the entry with the smallest absolute edge id comes first.
func rotateToMinAbsID(ids []ElemID) []ElemID {
	if len(ids) <= 1 {
		return ids
	}
	minIdx := 0
	minAbs := abs(ids[0])
	for i := 1; i < len(ids); i++ {
		if a := abs(ids[i]); a < minAbs {
			minAbs, minIdx = a, i
		}
	}
	if minIdx == 0 {
		return ids
	}
	rotated := make([]ElemID, len(ids))
	n := copy(rotated, ids[minIdx:])
	copy(rotated[n:], ids[:minIdx])
	return rotated
}

// sideFace returns the face bounded by walking signedEdge in ring order:
// face_left when traversing forward, face_right when traversing the
// edge's reverse.
func sideFace(e Edge, signed ElemID) ElemID {
	if signed > 0 {
		return e.FaceLeft
	}
	return e.FaceRight
}

// GetFaceGeometry reconstructs face's polygon by grouping its bounding
// edges into rings (via Backend.GetRingEdges) and treating the ring
// with the largest absolute area as the outer shell, every other ring
// as a hole (§4.4). The universal face has no geometry.
func (t *Topology) GetFaceGeometry(face ElemID) (Polygon, error) {
	const op = "GetFaceGeometry"
	if face == Universe {
		return Polygon{}, newErr(op, KindUniverseHasNoGeometry, "universal face has no geometry")
	}

	edges, err := t.be.GetEdgeByFace([]ElemID{face}, EdgeFieldID|EdgeFieldFaceLeft|EdgeFieldFaceRight|EdgeFieldGeom, nil)
	if err != nil {
		return Polygon{}, wrapBackend(op, err)
	}
	if len(edges) == 0 {
		rows, err := t.be.GetFaceByID([]ElemID{face}, FaceFieldID)
		if err != nil {
			return Polygon{}, wrapBackend(op, err)
		}
		if len(rows) == 0 {
			return Polygon{}, newErr(op, KindNonExistentFace, "face %d does not exist", face)
		}
		return Polygon{}, nil
	}

	visited := map[ElemID]bool{}
	var rings []Ring
	for _, e := range edges {
		for _, signed := range [2]ElemID{e.ID, -e.ID} {
			if sideFace(e, signed) != face || visited[signed] {
				continue
			}
			ring, rerr := t.be.GetRingEdges(signed, maxRingWalk)
			if rerr != nil {
				return Polygon{}, wrapBackend(op, rerr)
			}
			for _, se := range ring {
				visited[se] = true
			}
			pts, berr := buildRingLine(t, op, ring)
			if berr != nil {
				return Polygon{}, berr
			}
			if len(pts) >= 4 {
				rings = append(rings, Ring(pts))
			}
		}
	}
	if len(rings) == 0 {
		return Polygon{}, nil
	}

	outer := 0
	outerArea := ringArea(rings[0])
	for i := 1; i < len(rings); i++ {
		if a := ringArea(rings[i]); a > outerArea {
			outer, outerArea = i, a
		}
	}
	var holes []Ring
	for i, r := range rings {
		if i == outer {
			continue
		}
		holes = append(holes, r)
	}
	return Polygon{Outer: rings[outer], Holes: holes}, nil
}

// ringArea returns the absolute value of the shoelace area of ring,
// used only to rank candidate rings by size when picking a face's outer
// shell.
func ringArea(r Ring) float64 {
	if len(r) < 4 {
		return 0
	}
	var sum float64
	for i := 0; i < len(r)-1; i++ {
		sum += r[i].X*r[i+1].Y - r[i+1].X*r[i].Y
	}
	if sum < 0 {
		return -sum / 2
	}
	return sum / 2
}
