package batch

import "github.com/ochrecore/flowcore/internal/pdu"

// Transform applies a mutating closure to every packet in the parent's
// batch, in place. A latch ensures a re-entered Act against the same
// un-Done batch is a no-op, since the closure has already run once over
// this exact batch.
type Transform struct {
	parent  Operator
	fn      func(*pdu.PDU)
	applied bool
}

// NewTransform wraps parent, applying fn to every packet on each fresh
// batch.
func NewTransform(parent Operator, fn func(*pdu.PDU)) *Transform {
	return &Transform{parent: parent, fn: fn}
}

func (t *Transform) Act() (int, int) {
	processed, depth := t.parent.Act()
	if !t.applied {
		for _, p := range t.parent.Batch().PDUs() {
			t.fn(p)
		}
		t.applied = true
	}
	return processed, depth
}

func (t *Transform) Batch() *PacketBatch { return t.parent.Batch() }
func (t *Transform) Queued() int         { return t.parent.Queued() }
func (t *Transform) Done() {
	t.applied = false
	t.parent.Done()
}

// Map applies a closure once per batch like Transform, but documents the
// caller's promise that fn treats each PDU as logically read-only even
// though, for zero-copy reasons, it is handed the same mutable view.
type Map struct {
	parent  Operator
	fn      func(*pdu.PDU)
	applied bool
}

// NewMap wraps parent, applying fn to every packet on each fresh batch.
func NewMap(parent Operator, fn func(*pdu.PDU)) *Map {
	return &Map{parent: parent, fn: fn}
}

func (m *Map) Act() (int, int) {
	processed, depth := m.parent.Act()
	if !m.applied {
		for _, p := range m.parent.Batch().PDUs() {
			m.fn(p)
		}
		m.applied = true
	}
	return processed, depth
}

func (m *Map) Batch() *PacketBatch { return m.parent.Batch() }
func (m *Map) Queued() int         { return m.parent.Queued() }
func (m *Map) Done() {
	m.applied = false
	m.parent.Done()
}
