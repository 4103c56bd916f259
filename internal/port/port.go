// Package port implements the NIC RX/TX queue contract, per-queue
// statistics, and the software TX buffering layer that absorbs transient
// overflow. Three concrete queue pairs ship: NullPort (drops everything),
// VirtualPort (in-memory, for tests), and the buffered TX wrapper any
// driver-backed TxQueue can be wrapped in.
package port

import (
	"sync/atomic"

	"github.com/ochrecore/flowcore/internal/mbuf"
)

// RxQueue is a single NIC receive queue. Recv is non-blocking, never
// exceeds len(slots), and is single-consumer.
type RxQueue interface {
	// Recv fills slots with up to len(slots) received MBufs, returning the
	// count actually received and the driver-observed queue depth at the
	// moment of the call.
	Recv(slots []*mbuf.Buffer) (n int, queueDepth int)
}

// TxQueue is a single NIC transmit queue. Send returns the count actually
// accepted onto the wire; unsent pointers (the tail of pkts) remain owned
// by the caller.
type TxQueue interface {
	Send(pkts []*mbuf.Buffer) (nSent int)
}

// Stats holds the per-queue counters spec.md §3 names. All fields are
// single-writer (the owning core) / many-reader atomics; relaxed ordering
// is sufficient since these are diagnostic, not synchronizing, values.
type Stats struct {
	PacketsProcessed atomic.Uint64
	PacketsQueued    atomic.Int64
	LastQueueDepth   atomic.Uint64
	MaxQueueDepth    atomic.Uint64
	CyclesRx         atomic.Uint64
}

// recordMax updates MaxQueueDepth if depth exceeds the stored maximum.
func (s *Stats) recordMax(depth uint64) {
	for {
		cur := s.MaxQueueDepth.Load()
		if depth <= cur {
			return
		}
		if s.MaxQueueDepth.CompareAndSwap(cur, depth) {
			return
		}
	}
}

// InstrumentedRxQueue wraps a driver RxQueue, updating Stats on every
// call: packets processed and, when n>0, an elapsed-cycle accumulation
// bracketing the driver call, measured in units of the injected nowFn tick
// source (Go exposes no portable TSC read).
type InstrumentedRxQueue struct {
	driver RxQueue
	stats  *Stats
	nowFn  func() uint64 // injected cycle/tick source, for testability
}

// NewInstrumentedRxQueue wraps driver with stats tracking. nowFn, if nil,
// defaults to a monotonic counter unrelated to wall time — callers caring
// about actual elapsed cycles should inject a TSC-backed function.
func NewInstrumentedRxQueue(driver RxQueue, stats *Stats, nowFn func() uint64) *InstrumentedRxQueue {
	if nowFn == nil {
		nowFn = defaultTick
	}
	return &InstrumentedRxQueue{driver: driver, stats: stats, nowFn: nowFn}
}

func (q *InstrumentedRxQueue) Recv(slots []*mbuf.Buffer) (int, int) {
	start := q.nowFn()
	n, depth := q.driver.Recv(slots)
	q.stats.PacketsProcessed.Add(uint64(n))
	q.stats.LastQueueDepth.Store(uint64(depth))
	q.stats.recordMax(uint64(depth))
	if n > 0 {
		q.stats.CyclesRx.Add(q.nowFn() - start)
	}
	return n, depth
}

var tickCounter atomic.Uint64

func defaultTick() uint64 { return tickCounter.Add(1) }
