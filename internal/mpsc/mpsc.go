// Package mpsc implements a lock-free, power-of-two-capacity,
// multi-producer/single-consumer ring buffer of MBuf pointers — the
// cross-core fan-out primitive GroupBy hands its consumer pipelines.
package mpsc

import (
	"math/bits"
	"runtime"
	"sync/atomic"

	"github.com/ochrecore/flowcore/internal/mbuf"
)

// Queue is a fixed-capacity MPSC ring. Capacity is rounded up to the next
// power of two.
type Queue struct {
	mask  uint64
	slots []atomic.Pointer[mbuf.Buffer]

	producerHead atomic.Uint64
	producerTail atomic.Uint64
	consumerHead atomic.Uint64
	consumerTail atomic.Uint64

	producers atomic.Int64
}

// NewQueue creates a queue with capacity rounded up to the next power of
// two (minimum 2).
func NewQueue(capacity int) *Queue {
	if capacity < 2 {
		capacity = 2
	}
	size := nextPow2(capacity)
	q := &Queue{
		mask:  uint64(size - 1),
		slots: make([]atomic.Pointer[mbuf.Buffer], size),
	}
	q.producers.Store(1)
	return q
}

func nextPow2(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}

// Capacity returns the ring's slot count.
func (q *Queue) Capacity() int { return int(q.mask) + 1 }

// NewProducer registers an additional producer handle, switching the
// queue onto the CAS-reservation enqueue path once more than one producer
// is registered.
func (q *Queue) NewProducer() { q.producers.Add(1) }

// DropProducer releases a producer handle.
func (q *Queue) DropProducer() { q.producers.Add(-1) }

// Enqueue pushes up to len(bufs) buffer pointers, returning the number
// actually accepted (bounded by available free slots). Chooses the
// single-producer fast path or the multi-producer CAS path based on the
// current producer count.
func (q *Queue) Enqueue(bufs []*mbuf.Buffer) int {
	if q.producers.Load() <= 1 {
		return q.enqueueSingle(bufs)
	}
	return q.enqueueMulti(bufs)
}

func (q *Queue) enqueueSingle(bufs []*mbuf.Buffer) int {
	ph := q.producerHead.Load()
	ct := q.consumerTail.Load()
	free := q.Capacity() - int(ph-ct)
	n := len(bufs)
	if n > free {
		n = free
	}
	if n <= 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		q.slots[(ph+uint64(i))&q.mask].Store(bufs[i])
	}
	q.producerHead.Store(ph + uint64(n))
	q.producerTail.Store(ph + uint64(n))
	return n
}

func (q *Queue) enqueueMulti(bufs []*mbuf.Buffer) int {
	want := len(bufs)
	var reserved int
	var ph uint64
	for {
		ph = q.producerHead.Load()
		ct := q.consumerTail.Load()
		free := q.Capacity() - int(ph-ct)
		if free <= 0 {
			return 0
		}
		reserved = want
		if reserved > free {
			reserved = free
		}
		if q.producerHead.CompareAndSwap(ph, ph+uint64(reserved)) {
			break
		}
		// reservation lost the race; reload and retry
	}

	for i := 0; i < reserved; i++ {
		q.slots[(ph+uint64(i))&q.mask].Store(bufs[i])
	}

	// spin until every earlier reservation has published its tail, then
	// commit ours. Approximates the x86 PAUSE spin the original ring uses
	// in its commit step; Go has no portable PAUSE intrinsic, so each
	// iteration yields the processor via runtime.Gosched.
	for q.producerTail.Load() != ph {
		runtime.Gosched()
	}
	q.producerTail.Store(ph + uint64(reserved))
	return reserved
}

// Dequeue pops up to len(dst) buffer pointers into dst, returning the
// number actually popped. Single-consumer only.
func (q *Queue) Dequeue(dst []*mbuf.Buffer) int {
	ch := q.consumerHead.Load()
	pt := q.producerTail.Load()
	avail := int(pt - ch)
	n := len(dst)
	if n > avail {
		n = avail
	}
	if n <= 0 {
		return 0
	}
	for i := 0; i < n; i++ {
		dst[i] = q.slots[(ch+uint64(i))&q.mask].Load()
	}
	q.consumerHead.Store(ch + uint64(n))
	q.consumerTail.Store(ch + uint64(n))
	return n
}

// Len reports the number of entries currently queued, for scheduler
// queue-depth heuristics.
func (q *Queue) Len() int {
	return int(q.producerTail.Load() - q.consumerHead.Load())
}
