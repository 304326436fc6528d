package topo

import (
	"math"
	"sort"
)

// AddPoint finds or creates a node at point (§4.5.1): reuse a node
// already within tol, otherwise split the closest edge within tol at
// point's projection, otherwise insert a brand new isolated node.
func (t *Topology) AddPoint(point Point, tol float64) (ElemID, error) {
	const op = "AddPoint"
	if ierr := checkInterrupt(op); ierr != nil {
		return Unset, ierr
	}
	tol = t.tolerance(tol, point)

	near, err := t.be.GetNodeWithinDistance2D(point, tol, NodeFieldID, 0)
	if err != nil {
		return Unset, wrapBackend(op, err)
	}
	if len(near) > 0 {
		sort.Slice(near, func(i, j int) bool { return near[i].ID < near[j].ID })
		return near[0].ID, nil
	}

	edges, err := t.be.GetEdgeWithinDistance2D(point, tol, EdgeFieldID|EdgeFieldGeom, 0)
	if err != nil {
		return Unset, wrapBackend(op, err)
	}
	if len(edges) > 0 {
		dist := func(e Edge) float64 {
			prj, ok := t.geom.Project(e.Geom, point)
			if !ok {
				return math.Inf(1)
			}
			return math.Hypot(prj.X-point.X, prj.Y-point.Y)
		}
		sort.SliceStable(edges, func(i, j int) bool {
			di, dj := dist(edges[i]), dist(edges[j])
			if di != dj {
				return di < dj
			}
			return edges[i].ID < edges[j].ID
		})
		for _, e := range edges {
			prj, ok := t.geom.Project(e.Geom, point)
			if !ok {
				continue
			}
			snapTol := t.geom.MinTolerance(prj)
			snapped := t.geom.Snap(e.Geom, Line{prj}, snapTol)
			if len(snapped) > 0 && !samePoint(snapped[0], e.Geom[0]) {
				snapped = append(Line{e.Geom[0]}, snapped[1:]...)
			}
			if err := t.ChangeEdgeGeom(e.ID, snapped); err != nil {
				continue
			}
			node, err := t.ModEdgeSplit(e.ID, prj, false)
			if err != nil {
				return Unset, err
			}
			return node, nil
		}
	}

	return t.AddIsoNode(Unset, point, false)
}

// AddLine nodes line against the existing topology and inserts an edge
// for every resulting component that isn't already present, returning
// the full (possibly duplicate-containing) list of edge ids it touched
// (§4.5.2).
func (t *Topology) AddLine(line Line, tol float64) ([]ElemID, error) {
	const op = "AddLine"
	if ierr := checkInterrupt(op); ierr != nil {
		return nil, ierr
	}
	if len(line) < 2 {
		return nil, newErr(op, KindEmptyGeometry, "line requires two distinct vertices")
	}
	tol = t.tolerance(tol, line[0])

	noded, gerr := t.geom.SelfNode(line)
	if gerr != nil {
		return nil, wrapGeom(op, gerr)
	}

	box := BoundsOf(noded).Expand(tol)
	edges, err := t.be.GetEdgeWithinBox2D(box, EdgeFieldID|EdgeFieldGeom, 0)
	if err != nil {
		return nil, wrapBackend(op, err)
	}
	for _, e := range edges {
		dist := nearestDistance(noded, e.Geom)
		if dist > tol {
			continue
		}
		snapped := t.geom.Snap(noded, e.Geom, tol)
		diff := t.geom.Difference(snapped, e.Geom)
		shared := t.geom.Intersection(snapped, e.Geom)
		var mergedShared Line
		for _, m := range t.geom.LineMerge([]Line{shared}) {
			mergedShared = t.geom.Union(mergedShared, m)
		}
		noded = t.geom.Union(mergedShared, diff)
	}

	nodes, err := t.be.GetNodeWithinBox2D(box, NodeFieldID|NodeFieldGeom, 0)
	if err != nil {
		return nil, wrapBackend(op, err)
	}
	components := []Line{noded}
	for _, n := range nodes {
		snapPts := Line{n.Geom}
		var next []Line
		for _, c := range components {
			snapped := t.geom.Snap(c, snapPts, tol)
			parts, gerr := t.geom.Split(snapped, n.Geom)
			if gerr != nil || len(parts) < 2 {
				next = append(next, snapped)
				continue
			}
			next = append(next, parts...)
		}
		components = next
	}

	var merged []Line
	for _, c := range components {
		merged = append(merged, t.geom.LineMerge([]Line{c})...)
	}

	var ids []ElemID
	for _, comp := range merged {
		if len(comp) < 2 {
			continue
		}
		startID, err := t.AddPoint(comp[0], tol)
		if err != nil {
			return ids, err
		}
		endID, err := t.AddPoint(comp[len(comp)-1], tol)
		if err != nil {
			return ids, err
		}

		startRows, err := t.be.GetNodeByID([]ElemID{startID}, NodeFieldGeom)
		if err != nil {
			return ids, wrapBackend(op, err)
		}
		endRows, err := t.be.GetNodeByID([]ElemID{endID}, NodeFieldGeom)
		if err != nil {
			return ids, wrapBackend(op, err)
		}
		if len(startRows) == 1 {
			comp[0] = startRows[0].Geom
		}
		if len(endRows) == 1 {
			comp[len(comp)-1] = endRows[0].Geom
		}

		existing, eerr := t.be.GetEdgeWithinBox2D(BoundsOf(comp), EdgeFieldID|EdgeFieldGeom, 0)
		if eerr != nil {
			return ids, wrapBackend(op, eerr)
		}
		reused := ElemID(-1)
		for _, e := range existing {
			if sameLine(e.Geom, comp) {
				reused = e.ID
				break
			}
		}
		if reused != -1 {
			ids = append(ids, reused)
			continue
		}

		edgeID, eerr := t.AddEdgeModFace(startID, endID, comp, false)
		if eerr != nil {
			return ids, eerr
		}
		ids = append(ids, edgeID)
	}

	return ids, nil
}

// AddPolygon adds every ring of polygon via AddLine, then reports which
// existing faces the polygon now covers (§4.5.3).
func (t *Topology) AddPolygon(polygon Polygon, tol float64) ([]ElemID, error) {
	const op = "AddPolygon"
	if ierr := checkInterrupt(op); ierr != nil {
		return nil, ierr
	}

	rings := append([]Ring{polygon.Outer}, polygon.Holes...)
	for _, r := range rings {
		if _, err := t.AddLine(Line(r), tol); err != nil {
			return nil, err
		}
	}

	box := BoundsOf(Line(polygon.Outer)).Expand(t.tolerance(tol, polygon.Outer[0]))
	faces, err := t.be.GetFaceWithinBox2D(box, FaceFieldID, 0)
	if err != nil {
		return nil, wrapBackend(op, err)
	}

	var covered []ElemID
	for _, f := range faces {
		if f.ID == Universe {
			continue
		}
		faceGeom, ferr := t.GetFaceGeometry(f.ID)
		if ferr != nil {
			continue
		}
		pt, gerr := t.geom.PointOnSurface(faceGeom)
		if gerr != nil {
			continue
		}
		if t.geom.PreparedCovers(polygon, pt) {
			covered = append(covered, f.ID)
		}
	}
	return covered, nil
}

// nearestDistance returns the minimum point-to-point distance between
// any vertex of a and any vertex of b, a cheap proxy for line-to-line
// proximity used only to gate the snap/difference/union pipeline.
func nearestDistance(a, b Line) float64 {
	best := -1.0
	for _, p := range a {
		for _, q := range b {
			dx, dy := p.X-q.X, p.Y-q.Y
			d := dx*dx + dy*dy
			if best < 0 || d < best {
				best = d
			}
		}
	}
	if best < 0 {
		return best
	}
	return math.Sqrt(best)
}

func sameLine(a, b Line) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !samePoint(a[i], b[i]) {
			return false
		}
	}
	return true
}
