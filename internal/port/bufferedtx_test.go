package port

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochrecore/flowcore/internal/mbuf"
)

// cappedDriver accepts at most max packets per Send call, for exercising
// the buffered queue's overflow path.
type cappedDriver struct {
	max  int
	seen [][]*mbuf.Buffer
}

func (d *cappedDriver) Send(pkts []*mbuf.Buffer) int {
	n := len(pkts)
	if n > d.max {
		n = d.max
	}
	d.seen = append(d.seen, append([]*mbuf.Buffer(nil), pkts[:n]...))
	return n
}

func makeBufs(t *testing.T, pool *mbuf.Pool, n int) []*mbuf.Buffer {
	bufs, err := pool.AllocateBulk(n)
	require.NoError(t, err)
	return bufs
}

func TestBufferedTxQueueDrivesThroughWhenEmpty(t *testing.T) {
	pool := mbuf.NewPool(8, 16)
	driver := &cappedDriver{max: 10}
	stats := &Stats{}
	q := NewBufferedTxQueue(driver, stats)

	bufs := makeBufs(t, pool, 3)
	accepted := q.Send(bufs)
	assert.Equal(t, 3, accepted)
	assert.Equal(t, 0, q.Len())
}

func TestBufferedTxQueueQueuesOverflow(t *testing.T) {
	pool := mbuf.NewPool(8, 16)
	driver := &cappedDriver{max: 1}
	stats := &Stats{}
	q := NewBufferedTxQueue(driver, stats)

	bufs := makeBufs(t, pool, 3)
	accepted := q.Send(bufs)
	assert.Equal(t, 3, accepted, "caller's packets are always accepted")
	assert.Equal(t, 2, q.Len())
}

func TestBufferedTxQueueDrainsBeforeFreshBatch(t *testing.T) {
	pool := mbuf.NewPool(16, 16)
	driver := &cappedDriver{max: 2}
	stats := &Stats{}
	q := NewBufferedTxQueue(driver, stats)

	first := makeBufs(t, pool, 3)
	q.Send(first) // drives 2, queues 1
	require.Equal(t, 1, q.Len())

	second := makeBufs(t, pool, 2)
	q.Send(second)
	// drain attempts the queued burst (1 pkt) with cap 2: fully sent, then
	// falls through to attempting the fresh batch (2 pkts) with cap 2: fully sent.
	assert.Equal(t, 0, q.Len())
}

func TestBufferedTxQueuePreservesOrderAcrossDrain(t *testing.T) {
	pool := mbuf.NewPool(16, 16)
	driver := &cappedDriver{max: 1}
	stats := &Stats{}
	q := NewBufferedTxQueue(driver, stats)

	first := makeBufs(t, pool, 2)
	q.Send(first) // drives 1, queues 1 (first[1])
	require.Equal(t, 1, q.Len())

	second := makeBufs(t, pool, 2)
	q.Send(second) // drain attempts queued burst (1 pkt), cap 1: fully sent, then attempts fresh (2 pkts), cap 1: queues 1
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, [][]*mbuf.Buffer{{first[0]}, {first[1]}, {second[0]}}, driver.seen)
}
