package topo

// AddIsoEdge connects two isolated nodes sharing the same containing
// face with a new isolated edge (§4.3.2). A closed edge (start == end)
// can never be isolated and is rejected.
func (t *Topology) AddIsoEdge(start, end ElemID, line Line) (ElemID, error) {
	const op = "AddIsoEdge"
	if ierr := checkInterrupt(op); ierr != nil {
		return Unset, ierr
	}

	if start == end {
		return Unset, newErr(op, KindClosedEdge, "a closed edge cannot be isolated")
	}
	if !t.geom.IsSimple(line) {
		return Unset, newErr(op, KindGeometryNotSimple, "edge geometry is not simple")
	}

	nodes, err := t.be.GetNodeByID([]ElemID{start, end}, NodeFieldAll)
	if err != nil {
		return Unset, wrapBackend(op, err)
	}
	byID := map[ElemID]Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	sn, ok := byID[start]
	if !ok {
		return Unset, newErr(op, KindNonExistentNode, "node %d does not exist", start)
	}
	en, ok := byID[end]
	if !ok {
		return Unset, newErr(op, KindNonExistentNode, "node %d does not exist", end)
	}
	if sn.ContainingFace == Unset {
		return Unset, newErr(op, KindNotIsolated, "node %d is not isolated", start)
	}
	if en.ContainingFace == Unset {
		return Unset, newErr(op, KindNotIsolated, "node %d is not isolated", end)
	}
	if sn.ContainingFace != en.ContainingFace {
		return Unset, newErr(op, KindFaceMismatch, "nodes %d and %d are in different faces", start, end)
	}

	if !samePoint(line[0], sn.Geom) || !samePoint(line[len(line)-1], en.Geom) {
		return Unset, newErr(op, KindEndpointMismatch, "line endpoints do not match node coordinates")
	}

	if cerr := checkEdgeCrossing(t, op, start, end, line, Unset); cerr != nil {
		return Unset, cerr
	}

	id, err := t.be.NextEdgeID()
	if err != nil {
		return Unset, wrapBackend(op, err)
	}

	e := Edge{
		ID:        id,
		StartNode: start,
		EndNode:   end,
		FaceLeft:  sn.ContainingFace,
		FaceRight: sn.ContainingFace,
		NextLeft:  -id,
		NextRight: id,
		Geom:      line,
	}
	if _, err := t.be.InsertEdges([]Edge{e}); err != nil {
		return Unset, wrapBackend(op, err)
	}

	sn.ContainingFace, en.ContainingFace = Unset, Unset
	if err := t.be.UpdateNodesByID([]Node{sn, en}, NodeFieldContainingFace); err != nil {
		return Unset, wrapBackend(op, err)
	}

	t.log.WithField("edge", id).Debug("AddIsoEdge")
	return id, nil
}

func samePoint(a, b Point) bool {
	return a.X == b.X && a.Y == b.Y
}
