package batch

import (
	"github.com/ochrecore/flowcore/internal/constants"
	"github.com/ochrecore/flowcore/internal/mbuf"
	"github.com/ochrecore/flowcore/internal/pdu"
	"github.com/ochrecore/flowcore/internal/port"
)

// Receive is a pipeline head: it owns a per-core PacketBatch and an RX
// source. Each Act call frees the previous batch's MBufs (unless
// keepMbuf is set, because a downstream consumer already took
// ownership — the GroupBy consumer shape), pulls a fresh burst from the
// driver, and parses each buffer into a PDU.
type Receive struct {
	rx       port.RxQueue
	batch    *PacketBatch
	keepMbuf bool
}

// NewReceive creates a Receive operator pulling from rx.
func NewReceive(rx port.RxQueue) *Receive {
	return &Receive{rx: rx, batch: NewPacketBatch()}
}

// NewReceiveKeepMbuf creates a Receive variant that skips freeing the
// previous batch — used when downstream has already taken ownership of
// its packets (e.g. the ingress side of a GroupBy consumer, which draws
// from an MPSC queue that already transferred buffer ownership out of
// the producer).
func NewReceiveKeepMbuf(rx port.RxQueue) *Receive {
	return &Receive{rx: rx, keepMbuf: true, batch: NewPacketBatch()}
}

func (r *Receive) Act() (int, int) {
	if !r.keepMbuf {
		r.batch.DropAll()
	} else {
		r.batch.Reset()
	}

	slots := make([]*mbuf.Buffer, constants.MaxBatchSize)
	n, depth := r.rx.Recv(slots)

	parsed := make([]*pdu.PDU, 0, n)
	for i := 0; i < n; i++ {
		if slots[i] == nil {
			continue
		}
		parsed = append(parsed, pdu.Parse(slots[i]))
	}
	r.batch.SetPDUs(parsed)
	return len(parsed), depth
}

func (r *Receive) Batch() *PacketBatch { return r.batch }
func (r *Receive) Done()               {}
func (r *Receive) Queued() int         { return 0 }
