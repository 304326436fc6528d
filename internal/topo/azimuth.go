package topo

import "sort"

// edgeEnd is one (edge, sign, azimuth) triple at a node, per the Design
// Notes' recommendation to represent edge-ends this way and sort instead
// of replicating librttopo's running minaz/maxaz accumulation.
type edgeEnd struct {
	edge   Edge
	signed ElemID // positive: edge.StartNode is the shared node; negative: edge.EndNode is
	az     float64
}

func azimuthAtStart(geom GeometryKernel, e Edge) (float64, error) {
	return geom.Azimuth(e.Geom[0], e.Geom[1])
}

func azimuthAtEnd(geom GeometryKernel, e Edge) (float64, error) {
	n := len(e.Geom)
	return geom.Azimuth(e.Geom[n-1], e.Geom[n-2])
}

// collectEdgeEnds returns every edge-end incident to node, excluding the
// ends belonging to excludeEdge (used while re-linking the edge being
// inserted/changed, which may already be visible to GetEdgeByNode).
func collectEdgeEnds(be Backend, geom GeometryKernel, node ElemID, excludeEdge ElemID) ([]edgeEnd, error) {
	edges, err := be.GetEdgeByNode([]ElemID{node}, EdgeFieldAll)
	if err != nil {
		return nil, wrapBackend("collectEdgeEnds", err)
	}
	var ends []edgeEnd
	for _, e := range edges {
		if e.ID == excludeEdge {
			continue
		}
		if e.StartNode == node {
			az, err := azimuthAtStart(geom, e)
			if err != nil {
				return nil, wrapGeom("collectEdgeEnds", err)
			}
			ends = append(ends, edgeEnd{edge: e, signed: e.ID, az: az})
		}
		if e.EndNode == node {
			az, err := azimuthAtEnd(geom, e)
			if err != nil {
				return nil, wrapGeom("collectEdgeEnds", err)
			}
			ends = append(ends, edgeEnd{edge: e, signed: -e.ID, az: az})
		}
	}
	return ends, nil
}

const twoPi = 6.283185307179586476925286766559

// angleDiff normalizes (az - ref) into [0, 2π).
func angleDiff(az, ref float64) float64 {
	d := az - ref
	for d < 0 {
		d += twoPi
	}
	for d >= twoPi {
		d -= twoPi
	}
	return d
}

// adjacency is the result of the azimuth/adjacency analysis at one
// endpoint of a new or changed edge (§4.3.4).
type adjacency struct {
	cw, ccw     edgeEnd
	hasNeighbor bool
}

// analyzeAdjacency finds, among ends, the next-clockwise and
// next-counter-clockwise neighbors of a new outgoing direction theta.
// Ties break on the lowest absolute edge id: librttopo leaves the
// tie-break to iteration order over _rtt_FindAdjacentEdges's edge set,
// so this is our own deterministic rule rather than a ported one.
func analyzeAdjacency(ends []edgeEnd, theta float64) adjacency {
	if len(ends) == 0 {
		return adjacency{}
	}
	sorted := make([]edgeEnd, len(ends))
	copy(sorted, ends)
	sort.Slice(sorted, func(i, j int) bool {
		di, dj := angleDiff(sorted[i].az, theta), angleDiff(sorted[j].az, theta)
		if di != dj {
			return di < dj
		}
		ai, aj := sorted[i].signed, sorted[j].signed
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		return ai < aj
	})
	return adjacency{cw: sorted[0], ccw: sorted[len(sorted)-1], hasNeighbor: true}
}

// findAdjacentEdges locates, among the edges already incident to node,
// the ones immediately clockwise and counter-clockwise of theta, and
// derives the single face currently occupying the gap between them.
// cwFace and ccwFace must agree: nothing yet subdivides that gap, so it
// can only belong to one face — the same invariant that forces a
// degree-1 edge end to be dangling. A mismatch means the stored
// adjacency is inconsistent.
func findAdjacentEdges(be Backend, geom GeometryKernel, op string, node, exclude ElemID, theta float64) (adj adjacency, cwFace, ccwFace ElemID, err *Error) {
	ends, gerr := collectEdgeEnds(be, geom, node, exclude)
	if gerr != nil {
		return adjacency{}, Unset, Unset, gerr.(*Error)
	}
	if len(ends) == 0 {
		return adjacency{}, Unset, Unset, nil
	}
	adj = analyzeAdjacency(ends, theta)
	cwFace = boundedFace(adj.cw, true)
	ccwFace = boundedFace(adj.ccw, false)
	if cwFace != ccwFace {
		return adj, cwFace, ccwFace, newErr(op, KindCorruptedTopology,
			"adjacent edges %d and %d bind different faces (%d and %d)",
			adj.cw.signed, adj.ccw.signed, cwFace, ccwFace)
	}
	return adj, cwFace, ccwFace, nil
}

// boundedFace returns the face that would be bounded by a new edge
// inserted on the cw/ccw side of a neighbor edge-end, per §4.3.4's rule:
// face_left when the neighbor is outgoing and it is the CW pick (or
// incoming and the CCW pick); face_right symmetrically.
func boundedFace(end edgeEnd, isCW bool) ElemID {
	outgoing := end.signed > 0
	if outgoing == isCW {
		return end.edge.FaceLeft
	}
	return end.edge.FaceRight
}
