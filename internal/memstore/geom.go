package memstore

import (
	"math"
	"sort"

	"github.com/rttopo/topology/internal/topo"
)

// Kernel is a reference implementation of topo.GeometryKernel built
// entirely on the standard library. No example in this corpus reaches
// for an ecosystem 2D-geometry library — the examples that touch
// geometry at all either shell out to a database engine (PostGIS-style
// ST_* functions) or hand-roll their own predicates over plain
// []float64 coordinates — so there is no third-party dependency to
// ground a kernel on. This one exists only so the in-memory backend is
// self-sufficient for tests and demos; a production deployment plugs in
// a kernel backed by a real geometry engine instead.
type Kernel struct{}

// NewKernel returns the reference geometry kernel.
func NewKernel() *Kernel { return &Kernel{} }

const epsilon = 1e-9

func samePoint(a, b topo.Point) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon
}

// --- segment primitives ---------------------------------------------------

// segIntersect classifies the intersection of segments (a1,a2) and
// (b1,b2): "none", "point" (with the point) or "collinear" (with the
// overlapping sub-segment, when the overlap has positive length).
type segHit struct {
	kind     string // "none", "point", "collinear"
	pt       topo.Point
	overlap  [2]topo.Point
}

func cross(ox, oy, ax, ay, bx, by float64) float64 {
	return (ax-ox)*(by-oy) - (ay-oy)*(bx-ox)
}

func segIntersect(a1, a2, b1, b2 topo.Point) segHit {
	d1 := cross(b1.X, b1.Y, b2.X, b2.Y, a1.X, a1.Y)
	d2 := cross(b1.X, b1.Y, b2.X, b2.Y, a2.X, a2.Y)
	d3 := cross(a1.X, a1.Y, a2.X, a2.Y, b1.X, b1.Y)
	d4 := cross(a1.X, a1.Y, a2.X, a2.Y, b2.X, b2.Y)

	if math.Abs(d1) < epsilon && math.Abs(d2) < epsilon {
		return collinearOverlap(a1, a2, b1, b2)
	}

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		t := d1 / (d1 - d2)
		return segHit{kind: "point", pt: topo.Point{
			X: a1.X + t*(a2.X-a1.X),
			Y: a1.Y + t*(a2.Y-a1.Y),
		}}
	}

	// Endpoint-touching cases (d_i == 0 for one endpoint), reported as a
	// point hit at the shared coordinate.
	for _, p := range [][2]topo.Point{{a1, b1}, {a1, b2}, {a2, b1}, {a2, b2}} {
		if samePoint(p[0], p[1]) {
			return segHit{kind: "point", pt: p[0]}
		}
	}
	if onSegment(a1, a2, b1) {
		return segHit{kind: "point", pt: b1}
	}
	if onSegment(a1, a2, b2) {
		return segHit{kind: "point", pt: b2}
	}
	if onSegment(b1, b2, a1) {
		return segHit{kind: "point", pt: a1}
	}
	if onSegment(b1, b2, a2) {
		return segHit{kind: "point", pt: a2}
	}
	return segHit{kind: "none"}
}

func onSegment(a, b, p topo.Point) bool {
	if math.Abs(cross(a.X, a.Y, b.X, b.Y, p.X, p.Y)) > epsilon {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-epsilon && p.X <= math.Max(a.X, b.X)+epsilon &&
		p.Y >= math.Min(a.Y, b.Y)-epsilon && p.Y <= math.Max(a.Y, b.Y)+epsilon
}

// collinearOverlap assumes a1/a2/b1/b2 are already known collinear and
// finds the overlapping sub-segment, if any, by projecting onto the
// dominant axis.
func collinearOverlap(a1, a2, b1, b2 topo.Point) segHit {
	dx, dy := a2.X-a1.X, a2.Y-a1.Y
	param := func(p topo.Point) float64 {
		if math.Abs(dx) >= math.Abs(dy) {
			if dx == 0 {
				return 0
			}
			return (p.X - a1.X) / dx
		}
		if dy == 0 {
			return 0
		}
		return (p.Y - a1.Y) / dy
	}
	ta1, ta2 := 0.0, 1.0
	tb1, tb2 := param(b1), param(b2)
	lo := math.Max(math.Min(ta1, ta2), math.Min(tb1, tb2))
	hi := math.Min(math.Max(ta1, ta2), math.Max(tb1, tb2))
	if lo > hi+epsilon {
		return segHit{kind: "none"}
	}
	at := func(t float64) topo.Point {
		return topo.Point{X: a1.X + t*dx, Y: a1.Y + t*dy}
	}
	p1, p2 := at(lo), at(hi)
	if samePoint(p1, p2) {
		return segHit{kind: "point", pt: p1}
	}
	return segHit{kind: "collinear", overlap: [2]topo.Point{p1, p2}}
}

// --- topo.GeometryKernel ---------------------------------------------------

func (k *Kernel) IsSimple(l topo.Line) bool {
	n := len(l)
	for i := 0; i+1 < n; i++ {
		for j := i + 1; j+1 < n; j++ {
			if j == i {
				continue
			}
			adjacent := j == i+1
			hit := segIntersect(l[i], l[i+1], l[j], l[j+1])
			if hit.kind == "none" {
				continue
			}
			if adjacent {
				// Sharing only the joint vertex is fine; anything else
				// (backtracking, collinear overlap) is not simple.
				if hit.kind == "point" && samePoint(hit.pt, l[i+1]) {
					continue
				}
				return false
			}
			// Non-adjacent segments may only touch at the line's own
			// closing vertex (a closed ring).
			if hit.kind == "point" && i == 0 && j+1 == n-1 && samePoint(l[0], l[n-1]) {
				continue
			}
			return false
		}
	}
	return true
}

func (k *Kernel) DE9IM(a, b topo.Line) (string, error) {
	if sameCurve(a, b) {
		return "1FFF*FFF2", nil
	}
	best := "none"
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			hit := segIntersect(a[i], a[i+1], b[j], b[j+1])
			switch hit.kind {
			case "collinear":
				return "1*F**F***", nil
			case "point":
				interior := !samePoint(hit.pt, a[0]) && !samePoint(hit.pt, a[len(a)-1]) &&
					!samePoint(hit.pt, b[0]) && !samePoint(hit.pt, b[len(b)-1])
				if interior {
					best = "point"
				} else if best == "none" {
					best = "boundary"
				}
			}
		}
	}
	switch best {
	case "point":
		return "0********", nil
	case "boundary":
		return "F0F******", nil
	default:
		return "FF*FF****", nil
	}
}

func sameCurve(a, b topo.Line) bool {
	if len(a) != len(b) {
		return false
	}
	forward, backward := true, true
	for i := range a {
		if !samePoint(a[i], b[i]) {
			forward = false
		}
		if !samePoint(a[i], b[len(b)-1-i]) {
			backward = false
		}
	}
	return forward || backward
}

func (k *Kernel) Contains(ring topo.Ring, pt topo.Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) {
			xint := (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if pt.X < xint {
				inside = !inside
			}
		}
	}
	return inside
}

func (k *Kernel) PointOnLineInterior(l topo.Line, pt topo.Point) bool {
	if samePoint(pt, l[0]) || samePoint(pt, l[len(l)-1]) {
		return false
	}
	for i := 0; i+1 < len(l); i++ {
		if onSegment(l[i], l[i+1], pt) {
			return true
		}
	}
	return false
}

func (k *Kernel) PointOnSurface(poly topo.Polygon) (topo.Point, error) {
	if len(poly.Outer) < 4 {
		return topo.Point{}, errGeom("empty polygon")
	}
	cx, cy := ringCentroid(poly.Outer)
	candidate := topo.Point{X: cx, Y: cy}
	if k.Contains(poly.Outer, candidate) && !inAnyHole(k, poly.Holes, candidate) {
		return candidate, nil
	}
	// Centroid fell outside (concave ring) or inside a hole: fall back
	// to the first outer-edge midpoint that passes the same test, and to
	// the centroid itself if none does.
	for i := 0; i+1 < len(poly.Outer); i++ {
		mid := topo.Point{X: (poly.Outer[i].X + poly.Outer[i+1].X) / 2, Y: (poly.Outer[i].Y + poly.Outer[i+1].Y) / 2}
		if k.Contains(poly.Outer, mid) && !inAnyHole(k, poly.Holes, mid) {
			return mid, nil
		}
	}
	return candidate, nil
}

func inAnyHole(k *Kernel, holes []topo.Ring, pt topo.Point) bool {
	for _, h := range holes {
		if k.Contains(h, pt) {
			return true
		}
	}
	return false
}

func ringCentroid(r topo.Ring) (float64, float64) {
	var sx, sy float64
	n := len(r)
	if n <= 1 {
		return 0, 0
	}
	for _, p := range r[:n-1] {
		sx += p.X
		sy += p.Y
	}
	return sx / float64(n-1), sy / float64(n-1)
}

func (k *Kernel) MakeValid(poly topo.Polygon) (topo.Polygon, error) {
	out := poly
	if !k.CCW(out.Outer) {
		out.Outer = reverseRing(out.Outer)
	}
	for i, h := range out.Holes {
		if k.CCW(h) {
			out.Holes[i] = reverseRing(h)
		}
	}
	return out, nil
}

func reverseRing(r topo.Ring) topo.Ring {
	out := make(topo.Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

func (k *Kernel) BuildArea(lines []topo.Line) (topo.Polygon, error) {
	merged := k.LineMerge(lines)
	var rings []topo.Ring
	for _, m := range merged {
		if len(m) >= 4 && samePoint(m[0], m[len(m)-1]) {
			rings = append(rings, topo.Ring(m))
		}
	}
	if len(rings) == 0 {
		return topo.Polygon{}, errGeom("no closed ring among input lines")
	}
	sort.Slice(rings, func(i, j int) bool { return ringArea(rings[i]) > ringArea(rings[j]) })
	return topo.Polygon{Outer: rings[0], Holes: rings[1:]}, nil
}

func ringArea(r topo.Ring) float64 {
	var sum float64
	for i := 0; i+1 < len(r); i++ {
		sum += r[i].X*r[i+1].Y - r[i+1].X*r[i].Y
	}
	if sum < 0 {
		return -sum / 2
	}
	return sum / 2
}

func (k *Kernel) Azimuth(from, to topo.Point) (float64, error) {
	if samePoint(from, to) {
		return 0, errGeom("azimuth undefined for coincident points")
	}
	az := math.Atan2(to.Y-from.Y, to.X-from.X)
	if az < 0 {
		az += 2 * math.Pi
	}
	return az, nil
}

func (k *Kernel) CCW(ring topo.Ring) bool {
	var sum float64
	for i := 0; i+1 < len(ring); i++ {
		sum += (ring[i+1].X - ring[i].X) * (ring[i+1].Y + ring[i].Y)
	}
	return sum < 0
}

func (k *Kernel) Snap(target, to topo.Line, tol float64) topo.Line {
	out := make(topo.Line, len(target))
	copy(out, target)
	for i, p := range out {
		best := -1.0
		var bestPt topo.Point
		for _, q := range to {
			d := math.Hypot(p.X-q.X, p.Y-q.Y)
			if d <= tol && (best < 0 || d < best) {
				best, bestPt = d, q
			}
		}
		if best >= 0 {
			out[i] = bestPt
		}
	}
	return out
}

func (k *Kernel) Split(l topo.Line, pt topo.Point) ([]topo.Line, error) {
	for i := 0; i+1 < len(l); i++ {
		if !onSegment(l[i], l[i+1], pt) {
			continue
		}
		if samePoint(pt, l[i]) || samePoint(pt, l[i+1]) {
			continue
		}
		first := append(topo.Line{}, l[:i+1]...)
		first = append(first, pt)
		second := topo.Line{pt}
		second = append(second, l[i+1:]...)
		return []topo.Line{first, second}, nil
	}
	return []topo.Line{l}, errGeom("point not on line")
}

func (k *Kernel) SelfNode(l topo.Line) (topo.Line, error) {
	type hit struct {
		segIdx int
		param  float64
		pt     topo.Point
	}
	var hits []hit
	for i := 0; i+1 < len(l); i++ {
		for j := i + 2; j+1 < len(l); j++ {
			if i == 0 && j+1 == len(l)-1 && samePoint(l[0], l[len(l)-1]) {
				continue // closed ring's own joint, not a self-intersection
			}
			h := segIntersect(l[i], l[i+1], l[j], l[j+1])
			if h.kind != "point" {
				continue
			}
			if samePoint(h.pt, l[i]) || samePoint(h.pt, l[i+1]) {
				continue
			}
			dx, dy := l[i+1].X-l[i].X, l[i+1].Y-l[i].Y
			var t float64
			if math.Abs(dx) >= math.Abs(dy) && dx != 0 {
				t = (h.pt.X - l[i].X) / dx
			} else if dy != 0 {
				t = (h.pt.Y - l[i].Y) / dy
			}
			hits = append(hits, hit{segIdx: i, param: t, pt: h.pt})
		}
	}
	if len(hits) == 0 {
		return l, nil
	}
	bySeg := map[int][]hit{}
	for _, h := range hits {
		bySeg[h.segIdx] = append(bySeg[h.segIdx], h)
	}
	var out topo.Line
	for i := 0; i+1 < len(l); i++ {
		out = append(out, l[i])
		segHits := bySeg[i]
		sort.Slice(segHits, func(a, b int) bool { return segHits[a].param < segHits[b].param })
		for _, h := range segHits {
			out = append(out, h.pt)
		}
	}
	out = append(out, l[len(l)-1])
	return out, nil
}

func (k *Kernel) Difference(a, b topo.Line) topo.Line {
	var out topo.Line
	for _, p := range a {
		if !k.PointOnLineInterior(b, p) && !samePoint(p, b[0]) && !samePoint(p, b[len(b)-1]) {
			out = append(out, p)
		}
	}
	return out
}

func (k *Kernel) Intersection(a, b topo.Line) topo.Line {
	var out topo.Line
	for _, p := range a {
		onB := samePoint(p, b[0]) || samePoint(p, b[len(b)-1]) || k.PointOnLineInterior(b, p)
		if onB {
			out = append(out, p)
		}
	}
	return out
}

func (k *Kernel) LineMerge(lines []topo.Line) []topo.Line {
	remaining := make([]topo.Line, 0, len(lines))
	for _, l := range lines {
		if len(l) >= 2 {
			remaining = append(remaining, l)
		}
	}
	var merged []topo.Line
	for len(remaining) > 0 {
		cur := remaining[0]
		remaining = remaining[1:]
		changed := true
		for changed {
			changed = false
			for i, l := range remaining {
				switch {
				case samePoint(cur[len(cur)-1], l[0]):
					cur = append(cur, l[1:]...)
				case samePoint(cur[len(cur)-1], l[len(l)-1]):
					cur = append(cur, reverseLine(l)[1:]...)
				case samePoint(cur[0], l[len(l)-1]):
					cur = append(append(topo.Line{}, l...), cur[1:]...)
				case samePoint(cur[0], l[0]):
					cur = append(reverseLine(l), cur[1:]...)
				default:
					continue
				}
				remaining = append(remaining[:i], remaining[i+1:]...)
				changed = true
				break
			}
		}
		merged = append(merged, cur)
	}
	return merged
}

func (k *Kernel) Union(a, b topo.Line) topo.Line {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	merged := k.LineMerge([]topo.Line{a, b})
	if len(merged) == 1 {
		return merged[0]
	}
	out := append(topo.Line{}, a...)
	out = append(out, b...)
	return out
}

func (k *Kernel) Project(l topo.Line, pt topo.Point) (topo.Point, bool) {
	best := math.Inf(1)
	var bestPt topo.Point
	for i := 0; i+1 < len(l); i++ {
		a, b := l[i], l[i+1]
		dx, dy := b.X-a.X, b.Y-a.Y
		if dx == 0 && dy == 0 {
			continue
		}
		t := ((pt.X-a.X)*dx + (pt.Y-a.Y)*dy) / (dx*dx + dy*dy)
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		cand := topo.Point{X: a.X + t*dx, Y: a.Y + t*dy}
		d := math.Hypot(pt.X-cand.X, pt.Y-cand.Y)
		if d < best {
			best, bestPt = d, cand
		}
	}
	if math.IsInf(best, 1) {
		return pt, false
	}
	interior := !samePoint(bestPt, l[0]) && !samePoint(bestPt, l[len(l)-1])
	return bestPt, interior
}

func (k *Kernel) MotionArea(oldLine, newLine topo.Line) (topo.Polygon, topo.Polygon, error) {
	closeRing := func(l topo.Line) topo.Ring {
		if samePoint(l[0], l[len(l)-1]) {
			return topo.Ring(l)
		}
		r := append(topo.Ring{}, l...)
		return append(r, l[0])
	}
	oldP := topo.Polygon{Outer: closeRing(oldLine)}
	newP := topo.Polygon{Outer: closeRing(newLine)}
	return oldP, newP, nil
}

func (k *Kernel) PreparedCovers(poly topo.Polygon, pt topo.Point) bool {
	if !k.Contains(poly.Outer, pt) {
		return false
	}
	return !inAnyHole(k, poly.Holes, pt)
}

func (k *Kernel) MinTolerance(pt topo.Point) float64 {
	scale := math.Max(math.Abs(pt.X), math.Abs(pt.Y))
	return math.Max(1e-9, scale*1e-9)
}

type geomErr string

func (e geomErr) Error() string { return string(e) }

func errGeom(msg string) error { return geomErr(msg) }
