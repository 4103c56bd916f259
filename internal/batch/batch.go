// Package batch implements the pull-based batch operator algebra:
// Receive, Transform, Map, Filter, Drop, GroupBy, Send, Merge (static and
// auto), Compose, and the add_metadata_mut supplemental operator. Each
// operator pulls work from its parent on Act and reports how many
// packets it processed plus the closest upstream queue depth, which
// propagates toward the scheduler for its heuristics.
package batch

import (
	"github.com/ochrecore/flowcore/internal/constants"
	"github.com/ochrecore/flowcore/internal/pdu"
)

// Operator is the uniform contract every node in a pipeline tree
// implements.
type Operator interface {
	// Act pulls work from upstream, applies this node's behavior, and
	// returns the number of packets processed plus the closest RX
	// source's observed queue depth.
	Act() (processed int, queueDepth int)
	// Batch returns this node's current output batch, valid until the
	// next Act or Done call.
	Batch() *PacketBatch
	// Done resets any per-batch cached state (latches, classifier
	// results) ahead of the next Act.
	Done()
	// Queued exposes upstream readiness for scheduler/Merge heuristics.
	Queued() int
}

// PacketBatch is a bounded vector of parsed packets, capped at
// constants.MaxBatchSize.
type PacketBatch struct {
	pdus []*pdu.PDU
}

// NewPacketBatch returns an empty batch with capacity for
// constants.MaxBatchSize entries.
func NewPacketBatch() *PacketBatch {
	return &PacketBatch{pdus: make([]*pdu.PDU, 0, constants.MaxBatchSize)}
}

// Len returns the number of packets currently in the batch.
func (b *PacketBatch) Len() int { return len(b.pdus) }

// At returns the packet at index i.
func (b *PacketBatch) At(i int) *pdu.PDU { return b.pdus[i] }

// PDUs returns the batch's backing slice directly, for operators that
// need to range over or replace the whole batch.
func (b *PacketBatch) PDUs() []*pdu.PDU { return b.pdus }

// SetPDUs replaces the batch's contents wholesale (used by Receive and
// GroupBy's consumer side after a fresh pull).
func (b *PacketBatch) SetPDUs(pdus []*pdu.PDU) { b.pdus = pdus }

// DropIndices removes the packets at the given indices, freeing their
// MBufs back to the pool, and compacts the remainder in place,
// preserving relative order. indices must be strictly ascending;
// violating callers get false back and the batch is left untouched,
// matching the "unrecoverable" contract on a malformed drop list.
func (b *PacketBatch) DropIndices(indices []int) bool {
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			return false
		}
	}
	if len(indices) == 0 {
		return true
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(b.pdus) {
			return false
		}
		if buf := b.pdus[idx].Buffer(); buf != nil {
			buf.Dereference()
		}
	}
	kept := b.pdus[:0]
	di := 0
	for i, p := range b.pdus {
		if di < len(indices) && indices[di] == i {
			di++
			continue
		}
		kept = append(kept, p)
	}
	b.pdus = kept
	return true
}

// DropAll frees every packet currently in the batch and empties it.
func (b *PacketBatch) DropAll() {
	for _, p := range b.pdus {
		if buf := p.Buffer(); buf != nil {
			buf.Dereference()
		}
	}
	b.pdus = b.pdus[:0]
}

// Reset empties the batch without freeing anything — used when ownership
// of every packet has already moved elsewhere (Send, GroupBy producer).
func (b *PacketBatch) Reset() { b.pdus = b.pdus[:0] }
