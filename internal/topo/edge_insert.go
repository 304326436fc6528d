package topo

import "github.com/sirupsen/logrus"

// maxRingWalk bounds a single face-ring walk (§4.3.4's face-split
// analysis). A walk exceeding it means the next_left/next_right linkage
// never closes the ring: corrupted topology, not a slow query.
const maxRingWalk = 1_000_000

// interiorEdgePoint picks a point on line guaranteed not to be one of
// its own endpoints, for use as a polygon containment probe.
func interiorEdgePoint(line Line) Point {
	if len(line) > 2 {
		return line[len(line)/2]
	}
	a, b := line[0], line[len(line)-1]
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// addEdgeCore implements the shared body of AddEdgeModFace and
// AddEdgeNewFaces (§4.3.4): validation, azimuth/adjacency analysis at
// both endpoints, linkage assignment and insertion. It returns the
// inserted edge and whether its start and end nodes were isolated before
// the insert; the caller handles the face split once the edge exists.
func (t *Topology) addEdgeCore(op string, start, end ElemID, line Line, skipChecks bool) (Edge, bool, bool, *Error) {
	if ierr := checkInterrupt(op); ierr != nil {
		return Edge{}, false, false, ierr
	}
	if len(line) < 2 {
		return Edge{}, false, false, newErr(op, KindEmptyGeometry, "edge requires two distinct vertices")
	}
	if !skipChecks && !t.geom.IsSimple(line) {
		return Edge{}, false, false, newErr(op, KindGeometryNotSimple, "edge geometry is not simple")
	}

	startAz, gerr := t.geom.Azimuth(line[0], line[1])
	if gerr != nil {
		return Edge{}, false, false, wrapGeom(op, gerr)
	}
	endAz, gerr := t.geom.Azimuth(line[len(line)-1], line[len(line)-2])
	if gerr != nil {
		return Edge{}, false, false, wrapGeom(op, gerr)
	}

	ids := []ElemID{start, end}
	if start == end {
		ids = []ElemID{start}
	}
	nodes, err := t.be.GetNodeByID(ids, NodeFieldAll)
	if err != nil {
		return Edge{}, false, false, wrapBackend(op, err)
	}
	byID := map[ElemID]Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}

	e := Edge{StartNode: start, EndNode: end, FaceLeft: Unset, FaceRight: Unset, Geom: line}
	for _, n := range nodes {
		if n.ContainingFace == Unset {
			continue
		}
		if e.FaceLeft == Unset {
			e.FaceLeft, e.FaceRight = n.ContainingFace, n.ContainingFace
		} else if e.FaceLeft != n.ContainingFace {
			return Edge{}, false, false, newErr(op, KindFaceMismatch,
				"geometry crosses an edge (endnodes in faces %d and %d)", e.FaceLeft, n.ContainingFace)
		}
	}

	if !skipChecks {
		sn, ok := byID[start]
		if !ok {
			return Edge{}, false, false, newErr(op, KindNonExistentNode, "node %d does not exist", start)
		}
		if !samePoint(line[0], sn.Geom) {
			return Edge{}, false, false, newErr(op, KindEndpointMismatch, "start node not geometry start point")
		}
		en, ok := byID[end]
		if !ok {
			return Edge{}, false, false, newErr(op, KindNonExistentNode, "node %d does not exist", end)
		}
		if !samePoint(line[len(line)-1], en.Geom) {
			return Edge{}, false, false, newErr(op, KindEndpointMismatch, "end node not geometry end point")
		}
		if cerr := checkEdgeCrossing(t, op, start, end, line, Unset); cerr != nil {
			return Edge{}, false, false, cerr
		}
	}

	id, err := t.be.NextEdgeID()
	if err != nil {
		return Edge{}, false, false, wrapBackend(op, err)
	}
	e.ID = id
	isClosed := start == end

	var nextRight, prevLeft ElemID
	startAdj, cwFaceS, ccwFaceS, aerr := findAdjacentEdges(t.be, t.geom, op, start, Unset, startAz)
	if aerr != nil {
		return Edge{}, false, false, aerr
	}
	startIsolated := !startAdj.hasNeighbor
	if startAdj.hasNeighbor {
		nextRight = startAdj.cw.signed
		prevLeft = -startAdj.ccw.signed
		if e.FaceRight == Unset {
			e.FaceRight = cwFaceS
		}
		if e.FaceLeft == Unset {
			e.FaceLeft = ccwFaceS
		}
	} else if isClosed {
		nextRight, prevLeft = -id, id
	} else {
		nextRight, prevLeft = id, -id
	}

	var nextLeft, prevRight ElemID
	endAdj, cwFaceE, ccwFaceE, aerr := findAdjacentEdges(t.be, t.geom, op, end, Unset, endAz)
	if aerr != nil {
		return Edge{}, false, false, aerr
	}
	endIsolated := !endAdj.hasNeighbor
	if endAdj.hasNeighbor {
		nextLeft = endAdj.cw.signed
		prevRight = -endAdj.ccw.signed
		if e.FaceRight == Unset {
			e.FaceRight = ccwFaceE
		}
		if e.FaceLeft == Unset {
			e.FaceLeft = cwFaceE
		}
	} else if isClosed {
		nextLeft, prevRight = id, -id
	} else {
		nextLeft, prevRight = -id, id
	}

	if e.FaceLeft != e.FaceRight {
		return Edge{}, false, false, newErr(op, KindCorruptedTopology,
			"left(%d)/right(%d) face mismatch deriving edge face", e.FaceLeft, e.FaceRight)
	}
	if e.FaceLeft == Unset {
		return Edge{}, false, false, newErr(op, KindCorruptedTopology, "could not derive edge face from linked primitives")
	}

	e.NextRight = nextRight
	e.NextLeft = nextLeft

	if _, err := t.be.InsertEdges([]Edge{e}); err != nil {
		return Edge{}, false, false, wrapBackend(op, err)
	}

	if abs(prevLeft) != id {
		if err := relinkNeighbor(t.be, prevLeft, id); err != nil {
			return Edge{}, false, false, wrapBackend(op, err)
		}
	}
	if abs(prevRight) != id {
		if err := relinkNeighbor(t.be, prevRight, -id); err != nil {
			return Edge{}, false, false, wrapBackend(op, err)
		}
	}

	if startIsolated || endIsolated {
		var clear []Node
		if startIsolated {
			sn := byID[start]
			sn.ContainingFace = Unset
			clear = append(clear, sn)
		}
		if endIsolated {
			if !startIsolated || start != end {
				en := byID[end]
				en.ContainingFace = Unset
				clear = append(clear, en)
			}
		}
		if err := t.be.UpdateNodesByID(clear, NodeFieldContainingFace); err != nil {
			return Edge{}, false, false, wrapBackend(op, err)
		}
	}

	return e, startIsolated, endIsolated, nil
}

func abs(id ElemID) ElemID {
	if id < 0 {
		return -id
	}
	return id
}

// relinkNeighbor rewrites the next_left/next_right pointer of the
// existing edge at signed id neighbor so that it now continues into
// newSignedTarget, the newly-inserted edge (in whichever direction it
// was reached from).
func relinkNeighbor(be Backend, neighbor, newSignedTarget ElemID) error {
	if neighbor > 0 {
		rows, err := be.GetEdgeByID([]ElemID{neighbor}, EdgeFieldID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		row := rows[0]
		row.NextLeft = newSignedTarget
		return be.UpdateEdgesByID([]Edge{row}, EdgeFieldNextLeft)
	}
	rows, err := be.GetEdgeByID([]ElemID{-neighbor}, EdgeFieldID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	row := rows[0]
	row.NextRight = newSignedTarget
	return be.UpdateEdgesByID([]Edge{row}, EdgeFieldNextRight)
}

// addFaceSplit is the core of §4.3.4's face-split analysis: it walks the
// ring reachable from signedEdge, and if the ring is not degenerate
// (doesn't fold back through -signedEdge) it builds the ring's polygon,
// tests its winding, and — unless mbrOnly asks only for an MBR touch-up
// — inserts the new face and reassigns the edges and isolated nodes that
// fall inside it. Returns 0 when signedEdge does not close a ring, -1
// when no new face was created (including the universe special case and
// the mbrOnly path), otherwise the new face id.
func addFaceSplit(t *Topology, op string, signedEdge, face ElemID, mbrOnly bool) (ElemID, *Error) {
	ring, err := t.be.GetRingEdges(signedEdge, maxRingWalk)
	if err != nil {
		return 0, wrapBackend(op, err)
	}
	for _, se := range ring {
		if se == -signedEdge {
			return 0, nil
		}
	}

	pts, err2 := buildRingLine(t, op, ring)
	if err2 != nil {
		return 0, err2
	}
	ringGeom := Ring(pts)
	isCCW := t.geom.CCW(ringGeom)
	shellBounds := BoundsOf(pts)

	if face == Universe && !isCCW {
		return -1, nil
	}

	if mbrOnly {
		if face != Universe && isCCW {
			if err := t.be.UpdateFacesByID([]Face{{ID: face, MBR: shellBounds}}, FaceFieldMBR); err != nil {
				return 0, wrapBackend(op, err)
			}
		}
		return -1, nil
	}

	var newMBR Bounds
	if face != Universe && !isCCW {
		old, err := t.be.GetFaceByID([]ElemID{face}, FaceFieldMBR)
		if err != nil {
			return 0, wrapBackend(op, err)
		}
		if len(old) != 1 {
			return 0, newErr(op, KindCorruptedTopology, "face %d not found splitting ring", face)
		}
		newMBR = old[0].MBR
	} else {
		newMBR = shellBounds
	}

	newIDs, err := t.be.InsertFaces([]Face{{MBR: newMBR}})
	if err != nil {
		return 0, wrapBackend(op, err)
	}
	newFace := newIDs[0]

	newfaceOutside := face != Universe && !isCCW

	faceEdges, err := t.be.GetEdgeByFace([]ElemID{face}, EdgeFieldID|EdgeFieldFaceLeft|EdgeFieldFaceRight|EdgeFieldGeom, &newMBR)
	if err != nil {
		return 0, wrapBackend(op, err)
	}

	var forward, backward []Edge
	for _, e := range faceEdges {
		inRing := false
		for _, se := range ring {
			if se == e.ID {
				forward = append(forward, Edge{ID: e.ID, FaceLeft: newFace})
				inRing = true
			} else if -se == e.ID {
				backward = append(backward, Edge{ID: e.ID, FaceRight: newFace})
				inRing = true
			}
		}
		if inRing {
			continue
		}

		pt := interiorEdgePoint(e.Geom)
		contains := t.geom.Contains(ringGeom, pt)
		if newfaceOutside {
			if contains {
				continue
			}
		} else if !contains {
			continue
		}

		if e.FaceLeft == face {
			forward = append(forward, Edge{ID: e.ID, FaceLeft: newFace})
		}
		if e.FaceRight == face {
			backward = append(backward, Edge{ID: e.ID, FaceRight: newFace})
		}
	}
	if len(forward) > 0 {
		if err := t.be.UpdateEdgesByID(forward, EdgeFieldFaceLeft); err != nil {
			return 0, wrapBackend(op, err)
		}
	}
	if len(backward) > 0 {
		if err := t.be.UpdateEdgesByID(backward, EdgeFieldFaceRight); err != nil {
			return 0, wrapBackend(op, err)
		}
	}

	isoNodes, err := t.be.GetNodeByFace([]ElemID{face}, NodeFieldID|NodeFieldGeom, &newMBR)
	if err != nil {
		return 0, wrapBackend(op, err)
	}
	var movedNodes []Node
	for _, n := range isoNodes {
		contains := t.geom.Contains(ringGeom, n.Geom)
		if newfaceOutside {
			if contains {
				continue
			}
		} else if !contains {
			continue
		}
		movedNodes = append(movedNodes, Node{ID: n.ID, ContainingFace: newFace})
	}
	if len(movedNodes) > 0 {
		if err := t.be.UpdateNodesByID(movedNodes, NodeFieldContainingFace); err != nil {
			return 0, wrapBackend(op, err)
		}
	}

	return newFace, nil
}

// buildRingLine concatenates the geometries of a signed-edge ring (as
// returned by Backend.GetRingEdges), reversing each edge's geometry
// where the ring traverses it backward, and dropping the duplicate
// vertex at each edge-to-edge join.
func buildRingLine(t *Topology, op string, ring []ElemID) (Line, *Error) {
	var edgeIDs []ElemID
	seen := map[ElemID]bool{}
	for _, se := range ring {
		id := abs(se)
		if !seen[id] {
			seen[id] = true
			edgeIDs = append(edgeIDs, id)
		}
	}
	rows, err := t.be.GetEdgeByID(edgeIDs, EdgeFieldID|EdgeFieldGeom)
	if err != nil {
		return nil, wrapBackend(op, err)
	}
	byID := map[ElemID]Edge{}
	for _, r := range rows {
		byID[r.ID] = r
	}

	var pts []Point
	for _, se := range ring {
		e, ok := byID[abs(se)]
		if !ok {
			return nil, newErr(op, KindCorruptedTopology, "missing edge %d building face ring", abs(se))
		}
		geom := e.Geom
		if se < 0 {
			geom = reverseLine(geom)
		}
		if len(pts) == 0 {
			pts = append(pts, geom...)
		} else {
			pts = append(pts, geom[1:]...)
		}
	}
	return pts, nil
}

func reverseLine(l Line) Line {
	r := make(Line, len(l))
	for i, p := range l {
		r[len(l)-1-i] = p
	}
	return r
}

// AddEdgeNewFaces inserts a new edge between start and end, splitting
// whichever face it closes a ring within into two distinct new faces and
// dropping the original (§4.3.4). Returns the new edge's id.
func (t *Topology) AddEdgeNewFaces(start, end ElemID, line Line, skipChecks bool) (ElemID, error) {
	const op = "AddEdgeNewFaces"
	e, _, _, err := t.addEdgeCore(op, start, end, line, skipChecks)
	if err != nil {
		return Unset, err
	}

	newFace1, aerr := addFaceSplit(t, op, -e.ID, e.FaceLeft, false)
	if aerr != nil {
		return Unset, aerr
	}
	if newFace1 == 0 {
		t.log.WithField("edge", e.ID).Debug("AddEdgeNewFaces")
		return e.ID, nil
	}

	newFace2, aerr := addFaceSplit(t, op, e.ID, e.FaceLeft, false)
	if aerr != nil {
		return Unset, aerr
	}

	if e.FaceLeft != Universe {
		if err := t.be.UpdateTopoGeomFaceSplit(e.FaceLeft, newFace2, newFace1); err != nil {
			return Unset, wrapBackend(op, err)
		}
		if err := t.be.DeleteFacesByID([]ElemID{e.FaceLeft}); err != nil {
			return Unset, wrapBackend(op, err)
		}
	}

	t.log.WithFields(logrus.Fields{"edge": e.ID, "face1": newFace1, "face2": newFace2}).Debug("AddEdgeNewFaces")
	return e.ID, nil
}

// AddEdgeModFace inserts a new edge between start and end. When it
// closes a new ring, the bounded face is created and the original face
// keeps the remainder — only one new row is ever inserted (§4.3.4).
func (t *Topology) AddEdgeModFace(start, end ElemID, line Line, skipChecks bool) (ElemID, error) {
	const op = "AddEdgeModFace"
	e, _, _, err := t.addEdgeCore(op, start, end, line, skipChecks)
	if err != nil {
		return Unset, err
	}

	newFace, aerr := addFaceSplit(t, op, e.ID, e.FaceLeft, false)
	if aerr != nil {
		return Unset, aerr
	}
	if newFace == 0 {
		t.log.WithField("edge", e.ID).Debug("AddEdgeModFace")
		return e.ID, nil
	}
	if newFace < 0 {
		// Left face of the forward ring is the universe: the bounded
		// ring must be on the other side.
		newFace, aerr = addFaceSplit(t, op, -e.ID, e.FaceLeft, false)
		if aerr != nil {
			return Unset, aerr
		}
		if newFace < 0 {
			t.log.WithField("edge", e.ID).Debug("AddEdgeModFace")
			return e.ID, nil
		}
	} else {
		if _, aerr := addFaceSplit(t, op, -e.ID, e.FaceLeft, true); aerr != nil {
			return Unset, aerr
		}
	}

	if e.FaceLeft != Universe {
		if err := t.be.UpdateTopoGeomFaceSplit(e.FaceLeft, newFace, Unset); err != nil {
			return Unset, wrapBackend(op, err)
		}
	}

	t.log.WithFields(logrus.Fields{"edge": e.ID, "face": newFace}).Debug("AddEdgeModFace")
	return e.ID, nil
}
