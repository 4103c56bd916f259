package batch

import "github.com/ochrecore/flowcore/internal/pdu"

// Filter applies a predicate to every packet and drops the rejected
// ones, compacting the batch in place and preserving order.
type Filter struct {
	parent Operator
	pred   func(*pdu.PDU) bool
}

// NewFilter wraps parent, keeping only packets for which pred returns
// true.
func NewFilter(parent Operator, pred func(*pdu.PDU) bool) *Filter {
	return &Filter{parent: parent, pred: pred}
}

func (f *Filter) Act() (int, int) {
	_, depth := f.parent.Act()
	batch := f.parent.Batch()
	var drop []int
	for i, p := range batch.PDUs() {
		if !f.pred(p) {
			drop = append(drop, i)
		}
	}
	batch.DropIndices(drop)
	return batch.Len(), depth
}

func (f *Filter) Batch() *PacketBatch { return f.parent.Batch() }
func (f *Filter) Queued() int         { return f.parent.Queued() }
func (f *Filter) Done()               { f.parent.Done() }

// Drop discards the entire upstream batch — the terminal operator for a
// blackhole pipeline.
type Drop struct {
	parent Operator
}

// NewDrop wraps parent, discarding everything it produces.
func NewDrop(parent Operator) *Drop {
	return &Drop{parent: parent}
}

func (d *Drop) Act() (int, int) {
	_, depth := d.parent.Act()
	batch := d.parent.Batch()
	n := batch.Len()
	batch.DropAll()
	return n, depth
}

func (d *Drop) Batch() *PacketBatch { return d.parent.Batch() }
func (d *Drop) Queued() int         { return d.parent.Queued() }
func (d *Drop) Done()               { d.parent.Done() }
