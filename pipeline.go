package flowcore

import (
	"github.com/ochrecore/flowcore/internal/batch"
	"github.com/ochrecore/flowcore/internal/headers"
	"github.com/ochrecore/flowcore/internal/mbuf"
	"github.com/ochrecore/flowcore/internal/mpsc"
	"github.com/ochrecore/flowcore/internal/pdu"
	"github.com/ochrecore/flowcore/internal/port"
	"github.com/ochrecore/flowcore/internal/sched"
)

// Operator is the pull-based contract every pipeline node implements:
// Receive, Transform, Map, Filter, Drop, GroupBy, Send, Merge, and
// Compose, re-exported from internal/batch so pipeline builders never
// need to import it directly.
type Operator = batch.Operator

// PDU is a parsed packet: an MBuf plus its header stack.
type PDU = pdu.PDU

// Buffer is a zero-copy packet buffer view drawn from a Pool.
type Buffer = mbuf.Buffer

// Pool is a sharded MBuf free-list.
type Pool = mbuf.Pool

// Queue is the lock-free MPSC ring used by GroupBy to fan work out to
// independently scheduled consumers.
type Queue = mpsc.Queue

// Scheduler is the per-core cooperative run loop a Context starts one of
// per active core. AddPipelineToRunQueue hands a caller's closure one of
// these to install pipelines against.
type Scheduler = sched.Scheduler

// HeaderKind identifies a parsed header's protocol.
type HeaderKind = headers.Kind

// Re-exported header kind constants.
const (
	KindMac  = headers.KindMac
	KindIPv4 = headers.KindIPv4
	KindTCP  = headers.KindTCP
	KindUDP  = headers.KindUDP
	KindArp  = headers.KindArp
)

// NewPool creates a sharded MBuf pool of capacity buffers, each with
// dataroom bytes of backing storage.
func NewPool(capacity, dataroom int) *Pool { return mbuf.NewPool(capacity, dataroom) }

// NewQueue creates an MPSC ring sized to the next power of two ≥
// capacity.
func NewQueue(capacity int) *Queue { return mpsc.NewQueue(capacity) }

// Pipeline construction. Each constructor mirrors spec.md §4.4's
// operator algebra one-for-one; see internal/batch for the
// implementation each of these forwards to.
func Receive(rx port.RxQueue) *batch.Receive { return batch.NewReceive(rx) }

// ReceiveKeepMbuf is the Receive variant used on the consumer side of a
// GroupBy, where a downstream MPSC dequeue has already taken ownership
// of each batch's MBufs.
func ReceiveKeepMbuf(rx port.RxQueue) *batch.Receive { return batch.NewReceiveKeepMbuf(rx) }

func Transform(parent Operator, fn func(*PDU)) *batch.Transform {
	return batch.NewTransform(parent, fn)
}

func Map(parent Operator, fn func(*PDU)) *batch.Map { return batch.NewMap(parent, fn) }

func Filter(parent Operator, pred func(*PDU) bool) *batch.Filter {
	return batch.NewFilter(parent, pred)
}

func Drop(parent Operator) *batch.Drop { return batch.NewDrop(parent) }

func GroupByProducer(parent Operator, queues []*Queue, classify func(*PDU) int) *batch.GroupByProducer {
	return batch.NewGroupByProducer(parent, queues, classify)
}

func GroupByConsumer(queue *Queue) *batch.GroupByConsumer { return batch.NewGroupByConsumer(queue) }

func Send(parent Operator, tx port.TxQueue) *batch.Send { return batch.NewSend(parent, tx) }

// BufferedTxQueue absorbs short-term TX overflow in software ahead of a
// driver queue, per spec.md §4.5's buffered-TX design.
type BufferedTxQueue = port.BufferedTxQueue

// NewBufferedTxQueue wraps driver with software TX queuing, publishing
// queue-depth statistics into stats.
func NewBufferedTxQueue(driver port.TxQueue, stats *PortStats) *BufferedTxQueue {
	return port.NewBufferedTxQueue(driver, stats)
}

func MergeStatic(parents []Operator) *batch.MergeStatic { return batch.NewMergeStatic(parents) }

// MergePolicy selects which parent MergeAuto drives on a given Act call.
type MergePolicy = batch.MergePolicy

const (
	MergeRoundRobin   = batch.MergeRoundRobin
	MergeLongestQueue = batch.MergeLongestQueue
)

func MergeAuto(parents []Operator, policy MergePolicy) *batch.MergeAuto {
	return batch.NewMergeAuto(parents, policy)
}

func Compose(parent Operator) *batch.Compose { return batch.NewCompose(parent) }

func AddMetadata(parent Operator, slot int, fn func(*PDU) uint64) *batch.AddMetadata {
	return batch.NewAddMetadata(parent, slot, fn)
}

// InstallPipeline wraps tail's Act call as a scheduler task named name
// and appends it directly to s's run queue. Call this only from inside
// the closure a Context.AddPipelineToRunQueue call dispatches — that
// closure runs on the scheduler's own goroutine, which is what makes a
// direct run-queue mutation safe here instead of needing a further
// control-channel round trip.
func InstallPipeline(s *sched.Scheduler, name string, tail Operator) *sched.Task {
	task := sched.NewTask(name, func() int {
		n, _ := tail.Act()
		tail.Done()
		return n
	})
	s.InstallTask(task)
	return task
}
