// Package topo implements the planar topology core: the half-edge/face
// data model and the structural editing algebra that keeps it valid.
//
// The package is self-contained — it defines its own primitive types,
// back-end contract (Backend) and geometry-kernel contract
// (GeometryKernel) rather than depending on the public pkg/topo wrapper.
// pkg/topo re-exports the pieces callers need and adds nothing to the
// semantics defined here.
package topo

// ElemID identifies a node, edge or face within one topology.
//
// Edge ids are always positive. Signed edge ids (as used in next_left,
// next_right and ring walks) encode direction: positive means "traverse
// the edge forward, start to end", negative means "traverse it reversed".
type ElemID int64

const (
	// Unset marks an absent reference (e.g. a node with an incident edge
	// has Unset as its ContainingFace).
	Unset ElemID = -1

	// Universe is the id of the unbounded exterior face. It is never
	// stored as a face row but is a legal value of Edge.FaceLeft/
	// Edge.FaceRight and of Node.ContainingFace.
	Universe ElemID = 0
)

// Point is a 2D (optionally 3D) coordinate. Z is NaN when the topology
// has no Z dimension.
type Point struct {
	X, Y, Z float64
}

// Line is a simple polyline: Line[0] is its start point, Line[len-1] its
// end point.
type Line []Point

// Ring is a closed Line (first and last points equal) used as a face
// boundary component.
type Ring []Point

// Polygon is an outer ring plus zero or more hole rings.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// Bounds is an axis-aligned minimum bounding rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty reports whether b is inverted (a minimum above its maximum), the
// sentinel BoundsOf returns for an empty line. The zero value is the
// degenerate box at the origin and is not empty.
func (b Bounds) Empty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Union returns the smallest bounds enclosing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Bounds{
		MinX: min(b.MinX, o.MinX),
		MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// Expand returns b grown by margin in every direction.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinX: b.MinX - margin,
		MinY: b.MinY - margin,
		MaxX: b.MaxX + margin,
		MaxY: b.MaxY + margin,
	}
}

// Intersects reports whether b and o share any point.
func (b Bounds) Intersects(o Bounds) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return !(o.MaxX < b.MinX || o.MinX > b.MaxX || o.MaxY < b.MinY || o.MinY > b.MaxY)
}

// BoundsOf computes the MBR of a point sequence. Returns an Empty Bounds
// for an empty line.
func BoundsOf(l Line) Bounds {
	if len(l) == 0 {
		return Bounds{MinX: 1, MaxX: 0}
	}
	b := Bounds{MinX: l[0].X, MaxX: l[0].X, MinY: l[0].Y, MaxY: l[0].Y}
	for _, p := range l[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}

// Node is a point primitive. ContainingFace is set only while the node
// is isolated (invariant 5, §3).
type Node struct {
	ID             ElemID
	ContainingFace ElemID
	Geom           Point
}

// Isolated reports whether n currently has no incident edge.
func (n Node) Isolated() bool {
	return n.ContainingFace != Unset
}

// Edge is a directed curve bounded by two nodes and carrying a face on
// each side.
type Edge struct {
	ID         ElemID
	StartNode  ElemID
	EndNode    ElemID
	FaceLeft   ElemID
	FaceRight  ElemID
	NextLeft   ElemID // signed: traversal continuation walking face_left CCW
	NextRight  ElemID // signed: traversal continuation walking face_right CW
	Geom       Line
}

// Closed reports whether e's endpoints coincide.
func (e Edge) Closed() bool {
	return e.StartNode == e.EndNode
}

// Dangling reports whether e bounds the same face on both sides. Face
// reconstruction does not skip such an edge: a ring walk visits it once
// in each direction.
func (e Edge) Dangling() bool {
	return e.FaceLeft == e.FaceRight
}

// Face is a polygonal region. The universe face (id 0) is never stored
// as a row and has no MBR.
type Face struct {
	ID  ElemID
	MBR Bounds
}
