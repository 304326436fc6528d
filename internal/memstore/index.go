package memstore

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"github.com/rttopo/topology/internal/topo"
)

// The R-trees are rebuilt wholesale whenever dirtied rather than patched
// incrementally: rtreego.Rtree.Delete matches entries by interface
// equality, which is unsafe once an entry's Rect carries a backing slice,
// and a full rebuild keeps that whole class of bug off the table. Store
// sizes this package is meant for (tests, demos, one topology per
// process) never make an O(n log n) rebuild per mutation a real cost.

func pointRect(p topo.Point) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{p.X - spatialEpsilon, p.Y - spatialEpsilon},
		[]float64{2 * spatialEpsilon, 2 * spatialEpsilon},
	)
}

func boundsRect(b topo.Bounds) (rtreego.Rect, error) {
	w := b.MaxX - b.MinX
	h := b.MaxY - b.MinY
	if w < spatialEpsilon {
		w = spatialEpsilon
	}
	if h < spatialEpsilon {
		h = spatialEpsilon
	}
	return rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
}

func (s *Store) rebuildNodeIndexLocked() {
	tree := rtreego.NewTree(2, 25, 50)
	for id, n := range s.nodes {
		rect, err := pointRect(n.Geom)
		if err != nil {
			continue
		}
		tree.Insert(nodeSpatial{id: id, rect: rect})
	}
	s.nodeIndex = tree
	s.nodeIndexDirty = false
}

func (s *Store) rebuildEdgeIndexLocked() {
	tree := rtreego.NewTree(2, 25, 50)
	for id, e := range s.edges {
		rect, err := boundsRect(topo.BoundsOf(e.Geom))
		if err != nil {
			continue
		}
		tree.Insert(edgeSpatial{id: id, rect: rect})
	}
	s.edgeIndex = tree
	s.edgeIndexDirty = false
}

func (s *Store) rebuildFaceIndexLocked() {
	tree := rtreego.NewTree(2, 25, 50)
	for id, f := range s.faces {
		rect, err := boundsRect(f.MBR)
		if err != nil {
			continue
		}
		tree.Insert(faceSpatial{id: id, rect: rect})
	}
	s.faceIndex = tree
	s.faceIndexDirty = false
}

// nodesInBoxLocked and edgesInBoxLocked return full (unprojected) rows
// for every primitive whose indexed rectangle intersects box; callers
// apply the exact geometric test and field projection themselves.
func (s *Store) nodesInBoxLocked(box topo.Bounds) []topo.Node {
	if s.nodeIndexDirty {
		s.rebuildNodeIndexLocked()
	}
	rect, err := boundsRect(box)
	if err != nil {
		return nil
	}
	hits := s.nodeIndex.SearchIntersect(rect)
	out := make([]topo.Node, 0, len(hits))
	for _, h := range hits {
		ns := h.(nodeSpatial)
		if n, ok := s.nodes[ns.id]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) edgesInBoxLocked(box topo.Bounds) []topo.Edge {
	if s.edgeIndexDirty {
		s.rebuildEdgeIndexLocked()
	}
	rect, err := boundsRect(box)
	if err != nil {
		return nil
	}
	hits := s.edgeIndex.SearchIntersect(rect)
	out := make([]topo.Edge, 0, len(hits))
	for _, h := range hits {
		es := h.(edgeSpatial)
		if e, ok := s.edges[es.id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func pointInBounds(p topo.Point, b topo.Bounds) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

func mbrArea(b topo.Bounds) float64 {
	if b.Empty() {
		return math.Inf(1)
	}
	return (b.MaxX - b.MinX) * (b.MaxY - b.MinY)
}

// distancePointToLine returns the minimum distance from pt to any
// segment of l. A real backend would hand this to its own spatial
// engine (ST_DWithin and the like); this one has no engine but its own
// maps, so it computes the segment distance directly.
func distancePointToLine(pt topo.Point, l topo.Line) float64 {
	best := math.Inf(1)
	for i := 0; i+1 < len(l); i++ {
		d := distancePointToSegment(pt, l[i], l[i+1])
		if d < best {
			best = d
		}
	}
	return best
}

func distancePointToSegment(pt, a, b topo.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(pt.X-a.X, pt.Y-a.Y)
	}
	t := ((pt.X-a.X)*dx + (pt.Y-a.Y)*dy) / (dx*dx + dy*dy)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	px, py := a.X+t*dx, a.Y+t*dy
	return math.Hypot(pt.X-px, pt.Y-py)
}

func toSet(ids []topo.ElemID) map[topo.ElemID]bool {
	m := make(map[topo.ElemID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func limitNodes(rows []topo.Node, limit int) []topo.Node {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func limitEdges(rows []topo.Edge, limit int) []topo.Edge {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func limitFaces(rows []topo.Face, limit int) []topo.Face {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
