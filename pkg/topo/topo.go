// Package topo is the public façade over the planar topology core
// (internal/topo). It re-exports the types and operations callers need
// and wires a default in-memory backend and geometry kernel
// (internal/memstore) so a caller who has no spatial database handy can
// still open a working topology in one call.
package topo

import (
	"github.com/rttopo/topology/internal/memstore"
	"github.com/rttopo/topology/internal/topo"
)

// Re-exported primitive types: callers build requests with these rather
// than importing internal/topo directly.
type (
	ElemID  = topo.ElemID
	Point   = topo.Point
	Line    = topo.Line
	Ring    = topo.Ring
	Polygon = topo.Polygon
	Bounds  = topo.Bounds
	Node    = topo.Node
	Edge    = topo.Edge
	Face    = topo.Face

	NodeField = topo.NodeField
	EdgeField = topo.EdgeField
	FaceField = topo.FaceField

	Backend        = topo.Backend
	BackendFactory = topo.BackendFactory
	GeometryKernel = topo.GeometryKernel

	Kind  = topo.Kind
	Error = topo.Error

	Topology = topo.Topology
)

const (
	Unset    = topo.Unset
	Universe = topo.Universe
)

var BoundsOf = topo.BoundsOf

// Re-exported error kinds, for callers that want to switch on them
// without importing internal/topo.
const (
	KindNoSuchTopology          = topo.KindNoSuchTopology
	KindNonExistentNode         = topo.KindNonExistentNode
	KindNonExistentEdge         = topo.KindNonExistentEdge
	KindNonExistentFace         = topo.KindNonExistentFace
	KindEmptyGeometry           = topo.KindEmptyGeometry
	KindGeometryNotSimple       = topo.KindGeometryNotSimple
	KindCoincidentNode          = topo.KindCoincidentNode
	KindEdgeCrossesNode         = topo.KindEdgeCrossesNode
	KindNodeOnEdge              = topo.KindNodeOnEdge
	KindEdgesCross              = topo.KindEdgesCross
	KindEdgesOverlap            = topo.KindEdgesOverlap
	KindCoincidentEdge          = topo.KindCoincidentEdge
	KindEndpointMismatch        = topo.KindEndpointMismatch
	KindNotIsolated             = topo.KindNotIsolated
	KindFaceMismatch            = topo.KindFaceMismatch
	KindCrossesFaceBoundary     = topo.KindCrossesFaceBoundary
	KindPointNotOnEdge          = topo.KindPointNotOnEdge
	KindClosedEdge              = topo.KindClosedEdge
	KindSelfHeal                = topo.KindSelfHeal
	KindEdgesNotConnected       = topo.KindEdgesNotConnected
	KindOtherEdgesConnected     = topo.KindOtherEdgesConnected
	KindEdgeTwistAroundEndpoint = topo.KindEdgeTwistAroundEndpoint
	KindEdgeMotionCollision     = topo.KindEdgeMotionCollision
	KindUniverseHasNoGeometry   = topo.KindUniverseHasNoGeometry
	KindBackendError            = topo.KindBackendError
	KindGeometryEngineError     = topo.KindGeometryEngineError
	KindUserFeaturesVeto        = topo.KindUserFeaturesVeto
	KindCorruptedTopology       = topo.KindCorruptedTopology
	KindInterrupted             = topo.KindInterrupted
)

// LoadTopology opens an existing topology by name through factory,
// binding it to geom. The returned handle must be released with
// FreeTopology.
func LoadTopology(factory BackendFactory, geom GeometryKernel, name string) (*Topology, error) {
	return topo.LoadTopology(factory, geom, name)
}

// FreeTopology releases the back-end handle bound to t.
func FreeTopology(t *Topology) error {
	return topo.FreeTopology(t)
}

// Interrupt/ResetInterrupt control the process-wide cooperative abort
// flag checked by every long-running structural editor (§5).
func Interrupt()      { topo.Interrupt() }
func ResetInterrupt() { topo.ResetInterrupt() }

// NewMemoryFactory returns a BackendFactory backed entirely by
// process memory (internal/memstore), paired with its reference
// geometry kernel. Open("") gets you a fresh, anonymously-named scratch
// topology; Open(name) with a name you've used before reopens the same
// one within this process.
func NewMemoryFactory(srid int32, precision float64, hasZ bool) (BackendFactory, GeometryKernel) {
	kernel := memstore.NewKernel()
	return memstore.NewFactory(kernel, srid, precision, hasZ), kernel
}
