package mpsc

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochrecore/flowcore/internal/mbuf"
)

func fakeBuffers(pool *mbuf.Pool, n int) []*mbuf.Buffer {
	bufs, err := pool.AllocateBulk(n)
	if err != nil {
		panic(err)
	}
	return bufs
}

// allocRetry allocates up to n buffers, shrinking and retrying on transient
// pool exhaustion instead of failing outright — used by the high-volume
// scenario tests where a concurrent consumer is continuously freeing
// buffers back to the pool.
func allocRetry(pool *mbuf.Pool, n int) []*mbuf.Buffer {
	for {
		bufs, err := pool.AllocateBulk(n)
		if err == nil {
			return bufs
		}
		if n > 1 {
			n /= 2
			continue
		}
		runtime.Gosched()
	}
}

func TestCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	q := NewQueue(5)
	assert.Equal(t, 8, q.Capacity())
}

func TestSingleProducerEnqueueDequeue(t *testing.T) {
	pool := mbuf.NewPool(4, 16)
	q := NewQueue(4)
	bufs := fakeBuffers(pool, 3)

	n := q.Enqueue(bufs)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, q.Len())

	out := make([]*mbuf.Buffer, 4)
	got := q.Dequeue(out)
	assert.Equal(t, 3, got)
	assert.Equal(t, bufs, out[:3])
	assert.Equal(t, 0, q.Len())
}

func TestEnqueueBoundedByFreeSlots(t *testing.T) {
	pool := mbuf.NewPool(8, 16)
	q := NewQueue(4)
	bufs := fakeBuffers(pool, 8)
	n := q.Enqueue(bufs)
	assert.Equal(t, 4, n)
}

func TestMultiProducerConcurrentEnqueue(t *testing.T) {
	pool := mbuf.NewPool(256, 16)
	q := NewQueue(256)
	q.NewProducer()
	q.NewProducer()
	q.NewProducer()

	var wg sync.WaitGroup
	total := 0
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bufs := fakeBuffers(pool, 64)
			n := q.Enqueue(bufs)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, 192, total)
	assert.Equal(t, 192, q.Len())

	out := make([]*mbuf.Buffer, 256)
	got := q.Dequeue(out)
	assert.Equal(t, 192, got)
}

// TestMultiProducerPreservesPerProducerOrder tags every buffer with its
// producer id and submission sequence, then checks each producer's own
// items come out of the single consumer in the order that producer
// submitted them — concurrent producers may interleave with each other,
// but never reorder themselves.
func TestMultiProducerPreservesPerProducerOrder(t *testing.T) {
	const producers = 4
	const perProducer = 64

	pool := mbuf.NewPool(producers*perProducer, 16)
	q := NewQueue(producers * perProducer)
	for i := 0; i < producers; i++ {
		q.NewProducer()
	}

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			bufs := fakeBuffers(pool, perProducer)
			for seq, b := range bufs {
				require.NoError(t, b.SetMetadata(0, uint64(p)))
				require.NoError(t, b.SetMetadata(1, uint64(seq)))
			}
			n := q.Enqueue(bufs)
			require.Equal(t, perProducer, n)
		}(p)
	}
	wg.Wait()

	out := make([]*mbuf.Buffer, producers*perProducer)
	got := q.Dequeue(out)
	require.Equal(t, producers*perProducer, got)

	lastSeq := make([]int64, producers)
	for i := range lastSeq {
		lastSeq[i] = -1
	}
	counts := make([]int, producers)
	for _, b := range out[:got] {
		p, err := b.Metadata(0)
		require.NoError(t, err)
		seq, err := b.Metadata(1)
		require.NoError(t, err)
		assert.Greater(t, int64(seq), lastSeq[p], "producer %d's items must be observed in submission order", p)
		lastSeq[p] = int64(seq)
		counts[p]++
	}
	for p, c := range counts {
		assert.Equal(t, perProducer, c, "producer %d lost or duplicated an item", p)
	}
}

// TestScenarioMillionItemMPSC is spec.md's end-to-end scenario 6: a
// producer enqueues a million pointers while a consumer concurrently
// drains, with no pointer lost or duplicated and FIFO preserved —
// repeated with four producers each contributing a quarter of the total.
func TestScenarioMillionItemMPSC(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping million-item MPSC scenario in -short mode")
	}

	t.Run("single producer", func(t *testing.T) {
		const total = 1_000_000
		pool := mbuf.NewPool(2048, 16)
		q := NewQueue(2048)

		var produced, consumed int64
		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			for produced < total {
				n := total - int(produced)
				if n > 256 {
					n = 256
				}
				bufs := allocRetry(pool, n)
				n = len(bufs)
				for i := 0; i < n; i++ {
					require.NoError(t, bufs[i].SetMetadata(1, uint64(produced)+uint64(i)))
				}
				sent := q.Enqueue(bufs)
				for _, b := range bufs[sent:] {
					b.Dereference()
				}
				produced += int64(sent)
			}
		}()

		go func() {
			defer wg.Done()
			out := make([]*mbuf.Buffer, 256)
			var lastSeq int64 = -1
			for consumed < total {
				n := q.Dequeue(out)
				if n == 0 {
					runtime.Gosched()
					continue
				}
				for _, b := range out[:n] {
					seq, err := b.Metadata(1)
					require.NoError(t, err)
					assert.Greater(t, int64(seq), lastSeq, "single-producer FIFO must hold end to end")
					lastSeq = int64(seq)
					b.Dereference()
				}
				consumed += int64(n)
			}
		}()

		wg.Wait()
		assert.EqualValues(t, total, produced)
		assert.EqualValues(t, total, consumed)
	})

	t.Run("four producers", func(t *testing.T) {
		const producers = 4
		const perProducer = 250_000
		const total = producers * perProducer

		pool := mbuf.NewPool(4096, 16)
		q := NewQueue(4096)
		for i := 0; i < producers; i++ {
			q.NewProducer()
		}

		var consumed int64
		var producedTotal int64
		var wg sync.WaitGroup
		wg.Add(producers + 1)

		for p := 0; p < producers; p++ {
			go func(p int) {
				defer wg.Done()
				var sentByThis int64
				for sentByThis < perProducer {
					n := int(perProducer - sentByThis)
					if n > 256 {
						n = 256
					}
					bufs := allocRetry(pool, n)
					n = len(bufs)
					for i := 0; i < n; i++ {
						require.NoError(t, bufs[i].SetMetadata(0, uint64(p)))
						require.NoError(t, bufs[i].SetMetadata(1, uint64(sentByThis)+uint64(i)))
					}
					sent := q.Enqueue(bufs)
					for _, b := range bufs[sent:] {
						b.Dereference()
					}
					sentByThis += int64(sent)
				}
				atomic.AddInt64(&producedTotal, sentByThis)
			}(p)
		}

		go func() {
			defer wg.Done()
			out := make([]*mbuf.Buffer, 256)
			lastSeq := make([]int64, producers)
			for i := range lastSeq {
				lastSeq[i] = -1
			}
			for atomic.LoadInt64(&consumed) < total {
				n := q.Dequeue(out)
				if n == 0 {
					runtime.Gosched()
					continue
				}
				for _, b := range out[:n] {
					p, err := b.Metadata(0)
					require.NoError(t, err)
					seq, err := b.Metadata(1)
					require.NoError(t, err)
					assert.Greater(t, int64(seq), lastSeq[p], "producer %d's FIFO order must hold", p)
					lastSeq[p] = int64(seq)
					b.Dereference()
				}
				atomic.AddInt64(&consumed, int64(n))
			}
		}()

		wg.Wait()
		assert.EqualValues(t, total, producedTotal)
		assert.EqualValues(t, total, consumed)
	})
}
