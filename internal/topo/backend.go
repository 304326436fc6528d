package topo

// BackendFactory resolves a topology name to an open Backend. It is the
// Go shape of §6's loadTopologyByName/freeTopology pair: Open binds the
// opaque back-end handle, and Backend.Close releases it.
type BackendFactory interface {
	Open(name string) (Backend, error)
}

// Backend is the storage contract (C2, §6): a persistent store of
// nodes/edges/faces with bbox and id queries, bulk mutation, next-id
// allocation and topogeom hooks. The core never holds back-end records
// across calls; every returned slice belongs to the caller of the method
// that returned it.
type Backend interface {
	Close() error

	SRID() int32
	Precision() float64
	HasZ() bool

	GetNodeByID(ids []ElemID, fields NodeField) ([]Node, error)
	GetEdgeByID(ids []ElemID, fields EdgeField) ([]Edge, error)
	GetFaceByID(ids []ElemID, fields FaceField) ([]Face, error)

	GetNodeWithinBox2D(box Bounds, fields NodeField, limit int) ([]Node, error)
	GetEdgeWithinBox2D(box Bounds, fields EdgeField, limit int) ([]Edge, error)
	GetFaceWithinBox2D(box Bounds, fields FaceField, limit int) ([]Face, error)

	GetNodeWithinDistance2D(pt Point, dist float64, fields NodeField, limit int) ([]Node, error)
	GetEdgeWithinDistance2D(pt Point, dist float64, fields EdgeField, limit int) ([]Edge, error)

	GetEdgeByNode(nodeIDs []ElemID, fields EdgeField) ([]Edge, error)
	GetEdgeByFace(faceIDs []ElemID, fields EdgeField, box *Bounds) ([]Edge, error)
	GetNodeByFace(faceIDs []ElemID, fields NodeField, box *Bounds) ([]Node, error)

	NextEdgeID() (ElemID, error)

	InsertNodes(rows []Node) ([]ElemID, error)
	InsertEdges(rows []Edge) ([]ElemID, error)
	InsertFaces(rows []Face) ([]ElemID, error)

	// UpdateNodes/UpdateEdges select rows matching sel on selMask fields,
	// write upd's updMask fields onto them, excluding rows matching exc
	// on excMask. Returns the updated row count.
	UpdateNodes(sel Node, selMask NodeField, upd Node, updMask NodeField, exc Node, excMask NodeField) (int, error)
	UpdateEdges(sel Edge, selMask EdgeField, upd Edge, updMask EdgeField, exc Edge, excMask EdgeField) (int, error)

	UpdateNodesByID(rows []Node, fields NodeField) error
	UpdateEdgesByID(rows []Edge, fields EdgeField) error
	UpdateFacesByID(rows []Face, fields FaceField) error

	DeleteNodesByID(ids []ElemID) error
	DeleteFacesByID(ids []ElemID) error
	DeleteEdges(sel Edge, selMask EdgeField) (int, error)

	// GetFaceContainingPoint returns Universe when no face contains pt.
	GetFaceContainingPoint(pt Point) (ElemID, error)

	// GetRingEdges walks a face ring via next_left/next_right linkage,
	// returning at most limit signed edge ids. A walk that would exceed
	// limit indicates a corrupted ring.
	GetRingEdges(signedEdge ElemID, limit int) ([]ElemID, error)

	UpdateTopoGeomEdgeSplit(oldEdge, newEdge1, newEdge2 ElemID) error
	// UpdateTopoGeomFaceSplit rebinds topogeoms referencing splitFace onto
	// newFace1 and newFace2. newFace2 is Unset for AddEdgeModFace, where the
	// original face row survives as splitFace and newFace1 is the one face
	// created by the split.
	UpdateTopoGeomFaceSplit(splitFace, newFace1, newFace2 ElemID) error
	UpdateTopoGeomFaceHeal(face1, face2, newFace ElemID) error
	UpdateTopoGeomEdgeHeal(edge1, edge2, newEdge ElemID) error

	// CheckTopoGeomRemEdge/RemNode may veto a structural removal on
	// user-feature grounds (return a *Error with KindUserFeaturesVeto).
	CheckTopoGeomRemEdge(edgeID ElemID) error
	CheckTopoGeomRemNode(nodeID ElemID) error
}

// GeometryKernel is the 2D predicate contract (C1, §1/§6). The core
// consults it for every intersection, containment and orientation test;
// the core's own arithmetic is limited to bounding boxes, ring areas used
// to rank rings, and point-to-point distances used by the inserters.
type GeometryKernel interface {
	IsSimple(l Line) bool

	// DE9IM returns the DE-9IM intersection matrix of a and b under
	// boundary-node-rule 2, as used by _CheckEdgeCrossing (§4.3.3).
	DE9IM(a, b Line) (string, error)

	Contains(ring Ring, pt Point) bool

	// PointOnLineInterior reports whether pt lies on l but is not one of
	// l's two endpoints, used by _CheckEdgeCrossing (§4.3.3).
	PointOnLineInterior(l Line, pt Point) bool

	PointOnSurface(poly Polygon) (Point, error)
	MakeValid(poly Polygon) (Polygon, error)
	BuildArea(lines []Line) (Polygon, error)

	// Azimuth returns the CCW angle from the positive x-axis to the
	// directed segment from->to.
	Azimuth(from, to Point) (float64, error)

	// CCW reports whether ring is wound counter-clockwise.
	CCW(ring Ring) bool

	Snap(target, to Line, tol float64) Line

	// Split divides l at pt; PointNotOnEdge is signalled by returning
	// fewer than two lines.
	Split(l Line, pt Point) ([]Line, error)

	SelfNode(l Line) (Line, error)
	Difference(a, b Line) Line
	Intersection(a, b Line) Line
	LineMerge(lines []Line) []Line
	Union(a, b Line) Line

	// Project returns pt projected onto l and whether the projection
	// falls within l's interior (robustness failures return false).
	Project(l Line, pt Point) (Point, bool)

	// MotionArea returns the valid polygons swept by closing oldLine and
	// newLine (repeating the first vertex when open), for ChangeEdgeGeom's
	// motion-area check.
	MotionArea(oldLine, newLine Line) (old, new_ Polygon, err error)

	PreparedCovers(poly Polygon, pt Point) bool

	// MinTolerance estimates a coordinate-scale-dependent snapping
	// tolerance for a single point, used when no topology precision is
	// configured (§6, "Coordinate precision").
	MinTolerance(pt Point) float64
}
