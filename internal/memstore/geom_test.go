package memstore

import (
	"math"
	"testing"

	"github.com/rttopo/topology/internal/topo"
)

func TestIsSimplePlainLine(t *testing.T) {
	k := NewKernel()
	line := topo.Line{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 1}}
	if !k.IsSimple(line) {
		t.Errorf("expected a non-self-intersecting polyline to be simple")
	}
}

func TestIsSimpleClosedRingIsSimple(t *testing.T) {
	k := NewKernel()
	ring := topo.Line{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}
	if !k.IsSimple(ring) {
		t.Errorf("a closed rectangular ring should be simple")
	}
}

func TestIsSimpleSelfCrossing(t *testing.T) {
	k := NewKernel()
	bowtie := topo.Line{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	if k.IsSimple(bowtie) {
		t.Errorf("a bowtie-shaped line should not be simple")
	}
}

func TestDE9IMSameCurve(t *testing.T) {
	k := NewKernel()
	a := topo.Line{{X: 0, Y: 0}, {X: 1, Y: 1}}
	b := topo.Line{{X: 1, Y: 1}, {X: 0, Y: 0}}
	matrix, err := k.DE9IM(a, a)
	if err != nil {
		t.Fatalf("DE9IM(a, a): %v", err)
	}
	if matrix != "1FFF*FFF2" {
		t.Errorf("DE9IM for identical curves = %q, want %q", matrix, "1FFF*FFF2")
	}

	matrix, err = k.DE9IM(a, b)
	if err != nil {
		t.Fatalf("DE9IM(a, reversed a): %v", err)
	}
	if matrix != "1FFF*FFF2" {
		t.Errorf("DE9IM for a curve and its reverse = %q, want %q", matrix, "1FFF*FFF2")
	}
}

func TestDE9IMDisjoint(t *testing.T) {
	k := NewKernel()
	a := topo.Line{{X: 0, Y: 0}, {X: 1, Y: 0}}
	b := topo.Line{{X: 0, Y: 5}, {X: 1, Y: 5}}
	matrix, err := k.DE9IM(a, b)
	if err != nil {
		t.Fatalf("DE9IM: %v", err)
	}
	if matrix != "FF*FF****" {
		t.Errorf("DE9IM for disjoint lines = %q, want %q", matrix, "FF*FF****")
	}
}

func TestDE9IMCrossing(t *testing.T) {
	k := NewKernel()
	a := topo.Line{{X: -1, Y: 0}, {X: 1, Y: 0}}
	b := topo.Line{{X: 0, Y: -1}, {X: 0, Y: 1}}
	matrix, err := k.DE9IM(a, b)
	if err != nil {
		t.Fatalf("DE9IM: %v", err)
	}
	if matrix != "0********" {
		t.Errorf("DE9IM for two crossing segments = %q, want %q", matrix, "0********")
	}
}

func TestDE9IMCollinearOverlap(t *testing.T) {
	k := NewKernel()
	a := topo.Line{{X: 0, Y: 0}, {X: 2, Y: 0}}
	b := topo.Line{{X: 1, Y: 0}, {X: 3, Y: 0}}
	matrix, err := k.DE9IM(a, b)
	if err != nil {
		t.Fatalf("DE9IM: %v", err)
	}
	if matrix != "1*F**F***" {
		t.Errorf("DE9IM for overlapping collinear segments = %q, want %q", matrix, "1*F**F***")
	}
}

func TestContains(t *testing.T) {
	k := NewKernel()
	square := topo.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}}
	if !k.Contains(square, topo.Point{X: 5, Y: 5}) {
		t.Errorf("expected center point to be contained")
	}
	if k.Contains(square, topo.Point{X: 50, Y: 50}) {
		t.Errorf("expected far-away point not to be contained")
	}
}

func TestPointOnLineInterior(t *testing.T) {
	k := NewKernel()
	l := topo.Line{{X: 0, Y: 0}, {X: 10, Y: 0}}
	if !k.PointOnLineInterior(l, topo.Point{X: 5, Y: 0}) {
		t.Errorf("midpoint should be interior")
	}
	if k.PointOnLineInterior(l, topo.Point{X: 0, Y: 0}) {
		t.Errorf("endpoint should not count as interior")
	}
}

func TestCCW(t *testing.T) {
	k := NewKernel()
	ccw := topo.Ring{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}
	cw := topo.Ring{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	if !k.CCW(ccw) {
		t.Errorf("expected ring wound counter-clockwise to report CCW")
	}
	if k.CCW(cw) {
		t.Errorf("expected clockwise ring not to report CCW")
	}
}

func TestMakeValidReordersHoles(t *testing.T) {
	k := NewKernel()
	cw := topo.Ring{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	poly := topo.Polygon{
		Outer: cw,
		Holes: []topo.Ring{{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 3, Y: 3}, {X: 2, Y: 3}, {X: 2, Y: 2}}},
	}
	out, err := k.MakeValid(poly)
	if err != nil {
		t.Fatalf("MakeValid: %v", err)
	}
	if !k.CCW(out.Outer) {
		t.Errorf("expected outer ring to be reoriented CCW")
	}
	if k.CCW(out.Holes[0]) {
		t.Errorf("expected hole ring to be reoriented CW")
	}
}

func TestSplit(t *testing.T) {
	k := NewKernel()
	l := topo.Line{{X: 0, Y: 0}, {X: 10, Y: 0}}
	parts, err := k.Split(l, topo.Point{X: 5, Y: 0})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0][len(parts[0])-1] != (topo.Point{X: 5, Y: 0}) || parts[1][0] != (topo.Point{X: 5, Y: 0}) {
		t.Errorf("split halves do not meet at the split point: %+v / %+v", parts[0], parts[1])
	}
}

func TestSplitPointNotOnLine(t *testing.T) {
	k := NewKernel()
	l := topo.Line{{X: 0, Y: 0}, {X: 10, Y: 0}}
	parts, err := k.Split(l, topo.Point{X: 5, Y: 5})
	if err == nil {
		t.Fatalf("expected an error when the point is not on the line")
	}
	if len(parts) >= 2 {
		t.Errorf("on error, Split should not report two usable parts, got %d", len(parts))
	}
}

func TestSelfNodeInsertsCrossing(t *testing.T) {
	k := NewKernel()
	// Segment 0 crosses segment 2 at (2,2); the fifth point keeps the line
	// open and its last segment clear of the other segments.
	bowtie := topo.Line{{X: 0, Y: 0}, {X: 4, Y: 4}, {X: 4, Y: 0}, {X: 0, Y: 4}, {X: 5, Y: 5}}
	noded, err := k.SelfNode(bowtie)
	if err != nil {
		t.Fatalf("SelfNode: %v", err)
	}
	if len(noded) <= len(bowtie) {
		t.Errorf("expected SelfNode to insert at least one crossing point, got %d points from %d", len(noded), len(bowtie))
	}
}

func TestLineMergeChainsSharedEndpoints(t *testing.T) {
	k := NewKernel()
	a := topo.Line{{X: 0, Y: 0}, {X: 1, Y: 0}}
	b := topo.Line{{X: 1, Y: 0}, {X: 2, Y: 0}}
	merged := k.LineMerge([]topo.Line{a, b})
	if len(merged) != 1 {
		t.Fatalf("expected one merged line, got %d", len(merged))
	}
	if len(merged[0]) != 3 {
		t.Errorf("expected merged line to have 3 points, got %d", len(merged[0]))
	}
}

func TestProjectInteriorVsEndpoint(t *testing.T) {
	k := NewKernel()
	l := topo.Line{{X: 0, Y: 0}, {X: 10, Y: 0}}
	p, interior := k.Project(l, topo.Point{X: 5, Y: 3})
	if p != (topo.Point{X: 5, Y: 0}) {
		t.Errorf("Project = %+v, want {5 0}", p)
	}
	if !interior {
		t.Errorf("expected projection onto the middle of the segment to be interior")
	}

	_, interior = k.Project(l, topo.Point{X: -5, Y: 3})
	if interior {
		t.Errorf("expected a projection clamped to an endpoint not to be interior")
	}
}

func TestAzimuth(t *testing.T) {
	k := NewKernel()
	az, err := k.Azimuth(topo.Point{X: 0, Y: 0}, topo.Point{X: 1, Y: 0})
	if err != nil {
		t.Fatalf("Azimuth: %v", err)
	}
	if math.Abs(az) > epsilon {
		t.Errorf("Azimuth due east should be 0, got %v", az)
	}

	if _, err := k.Azimuth(topo.Point{X: 1, Y: 1}, topo.Point{X: 1, Y: 1}); err == nil {
		t.Errorf("expected Azimuth of coincident points to error")
	}
}

func TestMinTolerance(t *testing.T) {
	k := NewKernel()
	if got := k.MinTolerance(topo.Point{X: 0, Y: 0}); got != 1e-9 {
		t.Errorf("MinTolerance at origin = %v, want the floor value 1e-9", got)
	}
	if got := k.MinTolerance(topo.Point{X: 1e6, Y: 0}); got <= 1e-9 {
		t.Errorf("MinTolerance should scale up for large coordinates, got %v", got)
	}
}
