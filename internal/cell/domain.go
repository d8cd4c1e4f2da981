package cell

import (
	"sync"

	"treenav/internal/herr"
	"treenav/internal/value"
)

// WritePolicy controls whether, and how eagerly, a domain's writes are
// propagated back to its origin.
type WritePolicy int

const (
	// ReadOnly rejects every write against this domain's cells.
	ReadOnly WritePolicy = iota
	// NoAutoWrite accepts writes and tracks dirty state, but requires an
	// explicit Save call; nothing happens automatically.
	NoAutoWrite
	// WriteBackOnDrop additionally triggers Save from Close if the
	// domain is dirty, the idiomatic stand-in for the original's
	// destructor-triggered write-back (Go has no destructors, so callers
	// must call Close explicitly, typically via defer).
	WriteBackOnDrop
)

// Domain is the ownership unit for one subtree: the write policy it was
// opened with, the origin cell it was elevated from (nil for a true
// root), the lazily materialized root backend handle, and a dirty flag.
type Domain struct {
	mu     sync.Mutex
	policy WritePolicy
	origin *Cell
	root   Backend
	dirty  bool
}

// NewDomain creates a fresh domain with no origin (a true root).
func NewDomain(policy WritePolicy) *Domain {
	return &Domain{policy: policy}
}

// NewElevatedDomain creates a domain whose write-back sink is origin.
func NewElevatedDomain(policy WritePolicy, origin Cell) *Domain {
	o := origin
	return &Domain{policy: policy, origin: &o}
}

func (d *Domain) Policy() WritePolicy {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.policy
}

func (d *Domain) SetPolicy(p WritePolicy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.policy = p
}

func (d *Domain) Origin() (Cell, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.origin == nil {
		return Cell{}, false
	}
	return *d.origin, true
}

func (d *Domain) MarkDirty() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = true
}

func (d *Domain) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// SetRoot records the backend handle first materialized at this domain's
// root. It is idempotent: later calls are ignored, matching the
// write-once set_self_as_domain_root semantics.
func (d *Domain) SetRoot(b Backend) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.root == nil {
		d.root = b
	}
}

func (d *Domain) Root() (Backend, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.root, d.root != nil
}

// Save serializes this domain's root and writes it into the origin
// cell's value, then saves the origin cell's domain in turn, since that
// write marked it dirty. It is idempotent when nothing has changed since
// the last save.
func (d *Domain) Save() error {
	if !d.Dirty() {
		return nil
	}
	root, ok := d.Root()
	if !ok {
		return herr.Internal("domain has no materialized root to save")
	}
	reader, err := root.Read()
	if err != nil {
		return err
	}
	serial, err := reader.Serial()
	if err != nil {
		if herr.IsNone(err) {
			// Backend does not support serialization (e.g. http); this is
			// a no-op, not an error, per the write-back invariant.
			d.clearDirty()
			return nil
		}
		return err
	}
	origin, ok := d.Origin()
	if !ok {
		// Outermost real sink: nothing further to propagate to.
		d.clearDirty()
		return nil
	}
	w, err := origin.Write()
	if err != nil {
		return err
	}
	if err := w.SetValue(value.FromValue(serial)); err != nil {
		return err
	}
	d.clearDirty()
	if parent := origin.Domain(); parent != nil && parent != d {
		return parent.Save()
	}
	return nil
}

func (d *Domain) clearDirty() {
	d.mu.Lock()
	d.dirty = false
	d.mu.Unlock()
}

// Close runs write-back-on-drop semantics. Callers that open a domain
// with WriteBackOnDrop should defer Close and log (not panic on) any
// returned error, since by the time Close runs there is no caller left
// to hand the error back to.
func (d *Domain) Close() error {
	if d.Policy() == WriteBackOnDrop && d.Dirty() {
		return d.Save()
	}
	return nil
}
