package batch

import "github.com/ochrecore/flowcore/internal/pdu"

// AddMetadata writes a caller-supplied per-packet value into one of an
// MBuf's 16 metadata slots, for every packet in the batch — used to
// stash a computed value (e.g. a flow hash) for a downstream operator to
// read without recomputing it. Ported from NetBricks'
// add_metadata_mut operator.
type AddMetadata struct {
	parent Operator
	slot   int
	fn     func(*pdu.PDU) uint64
}

// NewAddMetadata wraps parent, writing fn(packet) into slot for every
// packet on each fresh batch.
func NewAddMetadata(parent Operator, slot int, fn func(*pdu.PDU) uint64) *AddMetadata {
	return &AddMetadata{parent: parent, slot: slot, fn: fn}
}

func (a *AddMetadata) Act() (int, int) {
	processed, depth := a.parent.Act()
	for _, p := range a.parent.Batch().PDUs() {
		if buf := p.Buffer(); buf != nil {
			_ = buf.SetMetadata(a.slot, a.fn(p))
		}
	}
	return processed, depth
}

func (a *AddMetadata) Batch() *PacketBatch { return a.parent.Batch() }
func (a *AddMetadata) Queued() int         { return a.parent.Queued() }
func (a *AddMetadata) Done()               { a.parent.Done() }
