package topo

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Topology is the in-memory descriptor threaded through every core call
// (C3, §4.1). It caches the back end's metadata and carries the geometry
// kernel and an optional logger. It introduces no process-wide state of
// its own beyond the package-level interrupt flag (§5).
type Topology struct {
	Name string

	be   Backend
	geom GeometryKernel
	log  *logrus.Entry

	srid      int32
	hasZ      bool
	precision float64
}

// LoadTopology opens an existing topology by name through factory and
// binds it to a geometry kernel. The returned handle must be released
// with FreeTopology.
func LoadTopology(factory BackendFactory, geom GeometryKernel, name string) (*Topology, error) {
	be, err := factory.Open(name)
	if err != nil {
		return nil, &Error{Op: "LoadTopology", Kind: KindNoSuchTopology, Msg: name, Err: err}
	}

	t := &Topology{
		Name:      name,
		be:        be,
		geom:      geom,
		srid:      be.SRID(),
		hasZ:      be.HasZ(),
		precision: be.Precision(),
		log:       logrus.WithField("topology", name),
	}
	return t, nil
}

// FreeTopology releases the back-end handle. t must not be used
// afterwards.
func FreeTopology(t *Topology) error {
	if t == nil || t.be == nil {
		return nil
	}
	err := t.be.Close()
	t.be = nil
	if err != nil {
		return wrapBackend("FreeTopology", err)
	}
	return nil
}

// SRID, HasZ and Precision expose the cached topology metadata.
func (t *Topology) SRID() int32        { return t.srid }
func (t *Topology) HasZ() bool         { return t.hasZ }
func (t *Topology) Precision() float64 { return t.precision }

// tolerance resolves a caller-supplied tolerance: 0 means "use topology
// precision, or a machine-scale estimate if that is also 0" (§4.5, §6).
func (t *Topology) tolerance(tol float64, pt Point) float64 {
	if tol > 0 {
		return tol
	}
	if t.precision > 0 {
		return t.precision
	}
	return t.geom.MinTolerance(pt)
}

// interruptFlag is a process-wide diagnostic flag (§5): checked between
// heavy inner loops so a caller can request a clean abort. It is not
// per-topology — the contract explicitly allows only this one piece of
// shared mutable state in the core.
var interruptFlag atomic.Bool

// Interrupt requests that any in-flight or future operation abort at its
// next check point until ResetInterrupt is called.
func Interrupt() { interruptFlag.Store(true) }

// ResetInterrupt clears a pending interrupt request.
func ResetInterrupt() { interruptFlag.Store(false) }

// checkInterrupt returns an Interrupted error iff an interrupt is
// pending; it performs no cleanup beyond what the caller does on its own
// error path, per §5's resource policy.
func checkInterrupt(op string) *Error {
	if interruptFlag.Load() {
		return newErr(op, KindInterrupted, "operation interrupted")
	}
	return nil
}
