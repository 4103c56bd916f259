package port

import (
	"sync"

	"github.com/ochrecore/flowcore/internal/mbuf"
)

// BufferedTxQueue absorbs short-term TX overflow: a software-side deque
// of burst-sized vectors, drained before any new burst is attempted, with
// ordering preserved end to end.
type BufferedTxQueue struct {
	mu     sync.Mutex
	driver TxQueue
	queue  [][]*mbuf.Buffer
	total  int
	stats  *Stats
}

// NewBufferedTxQueue wraps driver with software TX queuing, publishing
// queue-depth statistics into stats.
func NewBufferedTxQueue(driver TxQueue, stats *Stats) *BufferedTxQueue {
	return &BufferedTxQueue{driver: driver, stats: stats}
}

// Send implements the three-step buffering protocol: drive straight
// through when the software queue is empty, otherwise drain queued
// bursts first (pushing any partial remainder back to the front to
// preserve order) before attempting the fresh batch. The caller's
// packets are always considered "accepted" — either transmitted or
// queued — so Send returns len(pkts) unconditionally.
func (q *BufferedTxQueue) Send(pkts []*mbuf.Buffer) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.queue) == 0 {
		q.driveOrQueue(pkts)
	} else {
		q.drainThenAttempt(pkts)
	}

	q.stats.PacketsProcessed.Add(uint64(len(pkts)))
	q.stats.LastQueueDepth.Store(uint64(q.total))
	q.stats.recordMax(uint64(q.total))
	q.stats.PacketsQueued.Store(int64(q.total))
	return len(pkts)
}

// driveOrQueue tries pkts against the driver directly, pushing any unsent
// tail onto the back of the software queue.
func (q *BufferedTxQueue) driveOrQueue(pkts []*mbuf.Buffer) {
	sent := q.driver.Send(pkts)
	if sent < len(pkts) {
		remainder := append([]*mbuf.Buffer(nil), pkts[sent:]...)
		q.queue = append(q.queue, remainder)
		q.total += len(remainder)
	}
}

// drainThenAttempt pops and drives queued bursts in order. On the first
// partial send it stops draining, pushes the unsent remainder back to the
// front, and enqueues the fresh batch at the back. If draining empties
// the queue entirely, it falls through to attempting the fresh batch
// directly.
func (q *BufferedTxQueue) drainThenAttempt(pkts []*mbuf.Buffer) {
	for len(q.queue) > 0 {
		head := q.queue[0]
		sent := q.driver.Send(head)
		q.total -= sent
		if sent < len(head) {
			q.queue[0] = head[sent:]
			fresh := append([]*mbuf.Buffer(nil), pkts...)
			q.queue = append(q.queue, fresh)
			q.total += len(fresh)
			return
		}
		q.queue = q.queue[1:]
	}
	q.driveOrQueue(pkts)
}

// Len returns the total number of MBufs currently queued in software.
func (q *BufferedTxQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}
