package batch

import (
	"github.com/ochrecore/flowcore/internal/constants"
	"github.com/ochrecore/flowcore/internal/mbuf"
	"github.com/ochrecore/flowcore/internal/mpsc"
	"github.com/ochrecore/flowcore/internal/pdu"
)

// GroupByProducer classifies every packet in the parent's batch into one
// of N groups and enqueues it onto that group's MPSC queue, transferring
// MBuf ownership into the queue. It is an ordinary Operator and does not
// install itself anywhere; installed as its own scheduler task (e.g. via
// InstallPipeline) it runs independently of whichever task drains each
// group's consumer.
type GroupByProducer struct {
	parent   Operator
	queues   []*mpsc.Queue
	classify func(*pdu.PDU) int
}

// NewGroupByProducer wraps parent, routing each packet to queues[g] where
// g = classify(packet). A classify result outside [0, len(queues)) drops
// the packet.
func NewGroupByProducer(parent Operator, queues []*mpsc.Queue, classify func(*pdu.PDU) int) *GroupByProducer {
	return &GroupByProducer{parent: parent, queues: queues, classify: classify}
}

func (g *GroupByProducer) Act() (int, int) {
	processed, depth := g.parent.Act()
	batch := g.parent.Batch()
	sent := 0
	for _, p := range batch.PDUs() {
		group := g.classify(p)
		if group < 0 || group >= len(g.queues) {
			if buf := p.Buffer(); buf != nil {
				buf.Dereference()
			}
			continue
		}
		buf := p.ReleaseMbuf()
		if buf == nil {
			continue
		}
		if n := g.queues[group].Enqueue([]*mbuf.Buffer{buf}); n == 0 {
			// queue full: drop rather than leak the reservation protocol
			buf.Dereference()
			continue
		}
		sent++
	}
	batch.Reset()
	return processed, depth
}

func (g *GroupByProducer) Batch() *PacketBatch { return g.parent.Batch() }
func (g *GroupByProducer) Queued() int         { return g.parent.Queued() }
func (g *GroupByProducer) Done()               { g.parent.Done() }

// GroupByConsumer is a Receive-shaped batch source reading from one
// group's MPSC queue consumer end.
type GroupByConsumer struct {
	queue *mpsc.Queue
	batch *PacketBatch
}

// NewGroupByConsumer creates a consumer draining queue.
func NewGroupByConsumer(queue *mpsc.Queue) *GroupByConsumer {
	return &GroupByConsumer{queue: queue, batch: NewPacketBatch()}
}

func (c *GroupByConsumer) Act() (int, int) {
	c.batch.Reset()
	raw := make([]*mbuf.Buffer, constants.MaxBatchSize)
	n := c.queue.Dequeue(raw)
	parsed := make([]*pdu.PDU, 0, n)
	for i := 0; i < n; i++ {
		if raw[i] == nil {
			continue
		}
		parsed = append(parsed, pdu.Parse(raw[i]))
	}
	c.batch.SetPDUs(parsed)
	return len(parsed), c.queue.Len()
}

func (c *GroupByConsumer) Batch() *PacketBatch { return c.batch }
func (c *GroupByConsumer) Queued() int         { return c.queue.Len() }
func (c *GroupByConsumer) Done()               {}
