package mbuf

import (
	"sync"
	"sync/atomic"

	"github.com/ochrecore/flowcore/internal/rerr"
)

// numShards controls how many independent free lists a Pool splits its
// buffers across, sized for parallel allocation from several scheduler
// cores at once. Grounded on backend/mem.go's shard-locked memory regions:
// there the sharding spreads *data* access across locks; here it spreads
// *free-list* access, since allocation/free, not payload read/write, is
// this pool's contention point.
const numShards = 16

type shard struct {
	mu   sync.Mutex
	free []*Buffer
}

// Pool is a fixed-capacity, refcounted MBuf mempool: a bounded emulation of
// the DPDK-style driver pool the runtime allocates from. Allocation fails
// with CodeFailedAllocation once every shard's free list is drained, rather
// than growing unboundedly like sync.Pool — the spec requires an
// observable exhaustion condition.
type Pool struct {
	dataroom int
	shards   [numShards]shard
	next     atomic.Uint32
	capacity int
}

// NewPool creates a pool of capacity buffers, each with dataroom bytes of
// backing storage, distributed evenly across the pool's shards.
func NewPool(capacity, dataroom int) *Pool {
	p := &Pool{dataroom: dataroom, capacity: capacity}
	for i := 0; i < capacity; i++ {
		b := &Buffer{data: make([]byte, dataroom), shard: i % numShards, pool: p}
		b.refcnt.Store(1)
		p.shards[b.shard].free = append(p.shards[b.shard].free, b)
	}
	return p
}

// Capacity returns the total number of buffers the pool was constructed
// with.
func (p *Pool) Capacity() int { return p.capacity }

// Available returns the number of buffers currently free, across all
// shards. Intended for diagnostics, not hot-path decisions (the count is
// read without a consistent snapshot across shards).
func (p *Pool) Available() int {
	n := 0
	for i := range p.shards {
		p.shards[i].mu.Lock()
		n += len(p.shards[i].free)
		p.shards[i].mu.Unlock()
	}
	return n
}

// Allocate obtains one buffer from the pool with refcnt=1, headroom/tailroom
// reset to the full dataroom. Fails with CodeFailedAllocation if every
// shard is drained.
func (p *Pool) Allocate() (*Buffer, error) {
	start := int(p.next.Add(1)) % numShards
	for i := 0; i < numShards; i++ {
		idx := (start + i) % numShards
		s := &p.shards[idx]
		s.mu.Lock()
		n := len(s.free)
		if n > 0 {
			b := s.free[n-1]
			s.free = s.free[:n-1]
			s.mu.Unlock()
			b.reset()
			return b, nil
		}
		s.mu.Unlock()
	}
	return nil, rerr.New("pool.Allocate", rerr.CodeFailedAllocation, "mempool exhausted")
}

// AllocateBulk obtains n buffers. On partial exhaustion, every buffer
// already drawn is returned to the pool before the error propagates, so a
// failed bulk allocation never leaks capacity.
func (p *Pool) AllocateBulk(n int) ([]*Buffer, error) {
	bufs := make([]*Buffer, 0, n)
	for i := 0; i < n; i++ {
		b, err := p.Allocate()
		if err != nil {
			for _, taken := range bufs {
				p.put(taken)
			}
			return nil, rerr.Wrap("pool.AllocateBulk", rerr.CodeFailedAllocation, err)
		}
		bufs = append(bufs, b)
	}
	return bufs, nil
}

// put returns a buffer to the shard it was drawn from. Only called by
// Buffer.Dereference once the refcount reaches zero.
func (p *Pool) put(b *Buffer) {
	s := &p.shards[b.shard]
	s.mu.Lock()
	s.free = append(s.free, b)
	s.mu.Unlock()
}
