package batch

import (
	"github.com/ochrecore/flowcore/internal/mbuf"
	"github.com/ochrecore/flowcore/internal/port"
)

// Send is a pipeline tail: it takes ownership of every packet in the
// parent's batch and drives a TX queue with them.
type Send struct {
	parent Operator
	tx     port.TxQueue
}

// NewSend wraps parent, transmitting its output through tx.
func NewSend(parent Operator, tx port.TxQueue) *Send {
	return &Send{parent: parent, tx: tx}
}

// Act pulls from parent, releases each packet's MBuf into a TX burst,
// and drives the TX queue. The return value is (packets sent, upstream
// queue depth).
func (s *Send) Act() (int, int) {
	_, depth := s.parent.Act()
	batch := s.parent.Batch()
	pdus := batch.PDUs()
	bufs := make([]*mbuf.Buffer, 0, len(pdus))
	for _, p := range pdus {
		if buf := p.ReleaseMbuf(); buf != nil {
			bufs = append(bufs, buf)
		}
	}
	batch.Reset()
	sent := s.tx.Send(bufs)
	return sent, depth
}

func (s *Send) Batch() *PacketBatch { return s.parent.Batch() }
func (s *Send) Queued() int         { return s.parent.Queued() }
func (s *Send) Done()               { s.parent.Done() }
