// Package memstore is a reference in-memory implementation of
// topo.Backend and topo.BackendFactory. It keeps every node, edge and
// face in plain maps guarded by a mutex, and layers an rtreego R-tree on
// top for the bounding-box and distance queries the core issues on every
// structural edit.
//
// It exists so the topology core can be exercised without a real
// spatial database: tests and cmd/topoctl open a named in-memory
// topology the same way a production deployment would open one backed
// by PostGIS.
package memstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rttopo/topology/internal/topo"
)

// spatialEpsilon pads degenerate (zero-area) query/index rectangles:
// rtreego rejects a Rect whose lengths are not strictly positive.
const spatialEpsilon = 1e-9

// maxRingWalk mirrors the core's own ring-walk bound (internal/topo's
// addFaceSplit uses the same constant) so a corrupted backend can never
// spin GetFaceContainingPoint forever.
const maxRingWalk = 1_000_000

type nodeSpatial struct {
	id   topo.ElemID
	rect rtreego.Rect
}

func (n nodeSpatial) Bounds() rtreego.Rect { return n.rect }

type edgeSpatial struct {
	id   topo.ElemID
	rect rtreego.Rect
}

func (e edgeSpatial) Bounds() rtreego.Rect { return e.rect }

type faceSpatial struct {
	id   topo.ElemID
	rect rtreego.Rect
}

func (f faceSpatial) Bounds() rtreego.Rect { return f.rect }

// Factory opens named in-memory topologies, handing back the same
// *Store for repeated Opens of the same name so callers in one process
// can share a topology.
type Factory struct {
	mu   sync.Mutex
	open map[string]*Store

	geom      topo.GeometryKernel
	srid      int32
	precision float64
	hasZ      bool
}

// NewFactory builds a Factory. geom is handed to every Store it opens,
// since GetFaceContainingPoint needs a containment predicate and the
// in-memory backend has no geometry engine of its own beyond that.
func NewFactory(geom topo.GeometryKernel, srid int32, precision float64, hasZ bool) *Factory {
	return &Factory{
		open:      map[string]*Store{},
		geom:      geom,
		srid:      srid,
		precision: precision,
		hasZ:      hasZ,
	}
}

// Open implements topo.BackendFactory. An empty name opens a fresh,
// anonymously-named scratch topology — useful for tests and one-shot
// CLI invocations that don't care to pick a name.
func (f *Factory) Open(name string) (topo.Backend, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if name == "" {
		name = uuid.NewString()
	}
	if s, ok := f.open[name]; ok {
		return s, nil
	}
	s := newStore(name, f.geom, f.srid, f.precision, f.hasZ)
	f.open[name] = s
	return s, nil
}

// Store is a single in-memory topology.
type Store struct {
	name string

	mu    sync.RWMutex
	nodes map[topo.ElemID]topo.Node
	edges map[topo.ElemID]topo.Edge
	faces map[topo.ElemID]topo.Face

	nextNodeID topo.ElemID
	nextEdgeID topo.ElemID
	nextFaceID topo.ElemID

	nodeIndex      *rtreego.Rtree
	edgeIndex      *rtreego.Rtree
	faceIndex      *rtreego.Rtree
	nodeIndexDirty bool
	edgeIndexDirty bool
	faceIndexDirty bool

	geom topo.GeometryKernel

	srid      int32
	precision float64
	hasZ      bool

	log *logrus.Entry
}

func newStore(name string, geom topo.GeometryKernel, srid int32, precision float64, hasZ bool) *Store {
	return &Store{
		name:       name,
		nodes:      map[topo.ElemID]topo.Node{},
		edges:      map[topo.ElemID]topo.Edge{},
		faces:      map[topo.ElemID]topo.Face{},
		nextNodeID: 1,
		nextEdgeID: 1,
		nextFaceID: 1,
		geom:       geom,
		srid:       srid,
		precision:  precision,
		hasZ:       hasZ,
		log:        logrus.WithFields(logrus.Fields{"backend": "memstore", "topology": name}),
	}
}

func (s *Store) Close() error {
	s.log.Debug("closing in-memory topology")
	return nil
}

func (s *Store) SRID() int32        { return s.srid }
func (s *Store) Precision() float64 { return s.precision }
func (s *Store) HasZ() bool         { return s.hasZ }

// --- id-based reads ---------------------------------------------------

func (s *Store) GetNodeByID(ids []topo.ElemID, fields topo.NodeField) ([]topo.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]topo.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.nodes[id]; ok {
			out = append(out, projectNode(n, fields))
		}
	}
	return out, nil
}

func (s *Store) GetEdgeByID(ids []topo.ElemID, fields topo.EdgeField) ([]topo.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]topo.Edge, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.edges[id]; ok {
			out = append(out, projectEdge(e, fields))
		}
	}
	return out, nil
}

func (s *Store) GetFaceByID(ids []topo.ElemID, fields topo.FaceField) ([]topo.Face, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]topo.Face, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.faces[id]; ok {
			out = append(out, projectFace(f, fields))
		}
	}
	return out, nil
}

// --- spatial reads ------------------------------------------------------

func (s *Store) GetNodeWithinBox2D(box topo.Bounds, fields topo.NodeField, limit int) ([]topo.Node, error) {
	s.mu.Lock()
	raw := s.nodesInBoxLocked(box)
	s.mu.Unlock()

	out := make([]topo.Node, 0, len(raw))
	for _, n := range raw {
		if !pointInBounds(n.Geom, box) {
			continue
		}
		out = append(out, projectNode(n, fields))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return limitNodes(out, limit), nil
}

func (s *Store) GetEdgeWithinBox2D(box topo.Bounds, fields topo.EdgeField, limit int) ([]topo.Edge, error) {
	s.mu.Lock()
	raw := s.edgesInBoxLocked(box)
	s.mu.Unlock()

	out := make([]topo.Edge, 0, len(raw))
	for _, e := range raw {
		if !box.Intersects(topo.BoundsOf(e.Geom)) {
			continue
		}
		out = append(out, projectEdge(e, fields))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return limitEdges(out, limit), nil
}

func (s *Store) GetFaceWithinBox2D(box topo.Bounds, fields topo.FaceField, limit int) ([]topo.Face, error) {
	s.mu.Lock()
	if s.faceIndexDirty {
		s.rebuildFaceIndexLocked()
	}
	rect, err := boundsRect(box)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	hits := s.faceIndex.SearchIntersect(rect)
	out := make([]topo.Face, 0, len(hits))
	for _, h := range hits {
		fs := h.(faceSpatial)
		f, ok := s.faces[fs.id]
		if !ok || !box.Intersects(f.MBR) {
			continue
		}
		out = append(out, projectFace(f, fields))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return limitFaces(out, limit), nil
}

func (s *Store) GetNodeWithinDistance2D(pt topo.Point, dist float64, fields topo.NodeField, limit int) ([]topo.Node, error) {
	box := topo.Bounds{MinX: pt.X - dist, MinY: pt.Y - dist, MaxX: pt.X + dist, MaxY: pt.Y + dist}
	s.mu.Lock()
	raw := s.nodesInBoxLocked(box)
	s.mu.Unlock()

	out := make([]topo.Node, 0, len(raw))
	d2 := dist * dist
	for _, n := range raw {
		dx, dy := n.Geom.X-pt.X, n.Geom.Y-pt.Y
		if dx*dx+dy*dy > d2 {
			continue
		}
		out = append(out, projectNode(n, fields))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return limitNodes(out, limit), nil
}

func (s *Store) GetEdgeWithinDistance2D(pt topo.Point, dist float64, fields topo.EdgeField, limit int) ([]topo.Edge, error) {
	box := topo.Bounds{MinX: pt.X - dist, MinY: pt.Y - dist, MaxX: pt.X + dist, MaxY: pt.Y + dist}
	s.mu.Lock()
	raw := s.edgesInBoxLocked(box)
	s.mu.Unlock()

	out := make([]topo.Edge, 0, len(raw))
	for _, e := range raw {
		if distancePointToLine(pt, e.Geom) > dist {
			continue
		}
		out = append(out, projectEdge(e, fields))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return limitEdges(out, limit), nil
}

// --- topology-shaped reads ----------------------------------------------

func (s *Store) GetEdgeByNode(nodeIDs []topo.ElemID, fields topo.EdgeField) ([]topo.Edge, error) {
	want := toSet(nodeIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []topo.Edge
	for _, e := range s.edges {
		if want[e.StartNode] || want[e.EndNode] {
			out = append(out, projectEdge(e, fields))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetEdgeByFace(faceIDs []topo.ElemID, fields topo.EdgeField, box *topo.Bounds) ([]topo.Edge, error) {
	want := toSet(faceIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []topo.Edge
	for _, e := range s.edges {
		if !want[e.FaceLeft] && !want[e.FaceRight] {
			continue
		}
		if box != nil && !box.Intersects(topo.BoundsOf(e.Geom)) {
			continue
		}
		out = append(out, projectEdge(e, fields))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetNodeByFace(faceIDs []topo.ElemID, fields topo.NodeField, box *topo.Bounds) ([]topo.Node, error) {
	want := toSet(faceIDs)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []topo.Node
	for _, n := range s.nodes {
		if !want[n.ContainingFace] {
			continue
		}
		if box != nil && !pointInBounds(n.Geom, *box) {
			continue
		}
		out = append(out, projectNode(n, fields))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) NextEdgeID() (topo.ElemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextEdgeID
	s.nextEdgeID++
	return id, nil
}

// --- writes --------------------------------------------------------------

func (s *Store) InsertNodes(rows []topo.Node) ([]topo.ElemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]topo.ElemID, len(rows))
	for i, n := range rows {
		id := s.nextNodeID
		s.nextNodeID++
		n.ID = id
		s.nodes[id] = n
		ids[i] = id
	}
	s.nodeIndexDirty = true
	return ids, nil
}

func (s *Store) InsertEdges(rows []topo.Edge) ([]topo.ElemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]topo.ElemID, len(rows))
	for i, e := range rows {
		if e.ID == 0 {
			e.ID = s.nextEdgeID
			s.nextEdgeID++
		} else if e.ID >= s.nextEdgeID {
			s.nextEdgeID = e.ID + 1
		}
		s.edges[e.ID] = e
		ids[i] = e.ID
	}
	s.edgeIndexDirty = true
	return ids, nil
}

func (s *Store) InsertFaces(rows []topo.Face) ([]topo.ElemID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]topo.ElemID, len(rows))
	for i, f := range rows {
		id := s.nextFaceID
		s.nextFaceID++
		f.ID = id
		s.faces[id] = f
		ids[i] = id
	}
	s.faceIndexDirty = true
	return ids, nil
}

func (s *Store) UpdateNodes(sel topo.Node, selMask topo.NodeField, upd topo.Node, updMask topo.NodeField, exc topo.Node, excMask topo.NodeField) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, node := range s.nodes {
		if !matchNode(node, sel, selMask) || matchNode(node, exc, excMask) {
			continue
		}
		applyNode(&node, upd, updMask)
		s.nodes[id] = node
		n++
	}
	if updMask&topo.NodeFieldGeom != 0 {
		s.nodeIndexDirty = true
	}
	return n, nil
}

func (s *Store) UpdateEdges(sel topo.Edge, selMask topo.EdgeField, upd topo.Edge, updMask topo.EdgeField, exc topo.Edge, excMask topo.EdgeField) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, edge := range s.edges {
		if !matchEdge(edge, sel, selMask) || matchEdge(edge, exc, excMask) {
			continue
		}
		applyEdge(&edge, upd, updMask)
		s.edges[id] = edge
		n++
	}
	if updMask&topo.EdgeFieldGeom != 0 {
		s.edgeIndexDirty = true
	}
	return n, nil
}

func (s *Store) UpdateNodesByID(rows []topo.Node, fields topo.NodeField) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		cur, ok := s.nodes[row.ID]
		if !ok {
			return fmt.Errorf("memstore: node %d does not exist", row.ID)
		}
		applyNode(&cur, row, fields)
		s.nodes[row.ID] = cur
	}
	if fields&topo.NodeFieldGeom != 0 {
		s.nodeIndexDirty = true
	}
	return nil
}

func (s *Store) UpdateEdgesByID(rows []topo.Edge, fields topo.EdgeField) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		cur, ok := s.edges[row.ID]
		if !ok {
			return fmt.Errorf("memstore: edge %d does not exist", row.ID)
		}
		applyEdge(&cur, row, fields)
		s.edges[row.ID] = cur
	}
	if fields&topo.EdgeFieldGeom != 0 {
		s.edgeIndexDirty = true
	}
	return nil
}

func (s *Store) UpdateFacesByID(rows []topo.Face, fields topo.FaceField) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		cur, ok := s.faces[row.ID]
		if !ok {
			return fmt.Errorf("memstore: face %d does not exist", row.ID)
		}
		if fields&topo.FaceFieldMBR != 0 {
			cur.MBR = row.MBR
		}
		s.faces[row.ID] = cur
	}
	if fields&topo.FaceFieldMBR != 0 {
		s.faceIndexDirty = true
	}
	return nil
}

func (s *Store) DeleteNodesByID(ids []topo.ElemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.nodes, id)
	}
	s.nodeIndexDirty = true
	return nil
}

func (s *Store) DeleteFacesByID(ids []topo.ElemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.faces, id)
	}
	s.faceIndexDirty = true
	return nil
}

func (s *Store) DeleteEdges(sel topo.Edge, selMask topo.EdgeField) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.edges {
		if !matchEdge(e, sel, selMask) {
			continue
		}
		delete(s.edges, id)
		n++
	}
	s.edgeIndexDirty = true
	return n, nil
}

// --- face containment and ring walking ------------------------------------

func (s *Store) GetFaceContainingPoint(pt topo.Point) (topo.ElemID, error) {
	s.mu.RLock()
	ids := make([]topo.ElemID, 0, len(s.faces))
	for id := range s.faces {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	best := topo.Universe
	haveBest := false
	var bestArea float64
	for _, id := range ids {
		s.mu.RLock()
		f := s.faces[id]
		s.mu.RUnlock()
		if !pointInBounds(pt, f.MBR) {
			continue
		}
		rings, err := s.ringsOfFace(id)
		if err != nil {
			return topo.Unset, err
		}
		inside := false
		for _, r := range rings {
			if s.geom.Contains(r, pt) {
				inside = !inside
			}
		}
		if !inside {
			continue
		}
		area := mbrArea(f.MBR)
		if !haveBest || area < bestArea {
			best, bestArea, haveBest = id, area, true
		}
	}
	return best, nil
}

// GetRingEdges walks signedEdge's face ring via next_left/next_right
// linkage, following the same convention as the core's own ring
// consumers: a positive signed id continues via NextLeft, a negative one
// via NextRight, until the walk returns to signedEdge.
func (s *Store) GetRingEdges(signedEdge topo.ElemID, limit int) ([]topo.ElemID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ring []topo.ElemID
	current := signedEdge
	for i := 0; i < limit; i++ {
		ring = append(ring, current)
		e, ok := s.edges[absID(current)]
		if !ok {
			return nil, fmt.Errorf("memstore: ring edge %d does not exist", absID(current))
		}
		var next topo.ElemID
		if current > 0 {
			next = e.NextLeft
		} else {
			next = e.NextRight
		}
		if next == signedEdge {
			return ring, nil
		}
		current = next
	}
	return nil, fmt.Errorf("memstore: ring walk from %d exceeded %d edges, corrupted topology", signedEdge, limit)
}

// ringsOfFace reconstructs every boundary ring of face by grouping its
// bounding edges, mirroring internal/topo's GetFaceGeometry but kept
// local: a real back end computes face containment with its own spatial
// engine rather than by calling back into the core.
func (s *Store) ringsOfFace(face topo.ElemID) ([]topo.Ring, error) {
	edges, err := s.GetEdgeByFace([]topo.ElemID{face}, topo.EdgeFieldID|topo.EdgeFieldFaceLeft|topo.EdgeFieldFaceRight|topo.EdgeFieldGeom, nil)
	if err != nil {
		return nil, err
	}
	visited := map[topo.ElemID]bool{}
	var rings []topo.Ring
	for _, e := range edges {
		for _, signed := range [2]topo.ElemID{e.ID, -e.ID} {
			side := e.FaceLeft
			if signed < 0 {
				side = e.FaceRight
			}
			if side != face || visited[signed] {
				continue
			}
			ring, err := s.GetRingEdges(signed, maxRingWalk)
			if err != nil {
				return nil, err
			}
			for _, se := range ring {
				visited[se] = true
			}
			pts, err := s.buildRingLine(ring)
			if err != nil {
				return nil, err
			}
			if len(pts) >= 4 {
				rings = append(rings, topo.Ring(pts))
			}
		}
	}
	return rings, nil
}

func (s *Store) buildRingLine(ring []topo.ElemID) (topo.Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pts []topo.Point
	for _, se := range ring {
		e, ok := s.edges[absID(se)]
		if !ok {
			return nil, fmt.Errorf("memstore: missing edge %d building face ring", absID(se))
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

func reverseLine(l topo.Line) topo.Line {
	r := make(topo.Line, len(l))
	for i, p := range l {
		r[len(l)-1-i] = p
	}
	return r
}

func absID(id topo.ElemID) topo.ElemID {
	if id < 0 {
		return -id
	}
	return id
}

// --- topogeom hooks --------------------------------------------------------
//
// This reference backend maintains no topogeom/TopoLayer bookkeeping of
// its own — there is nothing here for the structural editors to rebind
// or veto against — so every hook is a no-op. A real back end (e.g. one
// fronting the topology.layer/topology.TopoGeometry tables) would rewrite
// its layer references here and return KindUserFeaturesVeto when a
// feature still needs the primitive being removed.

func (s *Store) UpdateTopoGeomEdgeSplit(oldEdge, newEdge1, newEdge2 topo.ElemID) error { return nil }
func (s *Store) UpdateTopoGeomFaceSplit(splitFace, newFace1, newFace2 topo.ElemID) error {
	return nil
}
func (s *Store) UpdateTopoGeomFaceHeal(face1, face2, newFace topo.ElemID) error { return nil }
func (s *Store) UpdateTopoGeomEdgeHeal(edge1, edge2, newEdge topo.ElemID) error { return nil }
func (s *Store) CheckTopoGeomRemEdge(edgeID topo.ElemID) error                  { return nil }
func (s *Store) CheckTopoGeomRemNode(nodeID topo.ElemID) error                  { return nil }
