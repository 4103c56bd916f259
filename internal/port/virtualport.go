package port

import (
	"sync"

	"github.com/ochrecore/flowcore/internal/mbuf"
)

// VirtualPort is an in-memory RX/TX queue pair for tests: Recv allocates
// an MBuf per injected frame and hands it out, Send records and frees
// whatever it's given. Grounded on the teacher's in-memory backend
// pattern for exercising I/O paths without real hardware.
type VirtualPort struct {
	pool *mbuf.Pool

	mu      sync.Mutex
	pending [][]byte
	sent    [][]byte
}

// NewVirtualPort creates a virtual port drawing RX allocations from pool.
func NewVirtualPort(pool *mbuf.Pool) *VirtualPort {
	return &VirtualPort{pool: pool}
}

// Inject queues raw frames to be handed out by subsequent Recv calls, in
// order.
func (v *VirtualPort) Inject(frames ...[]byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = append(v.pending, frames...)
}

// Recv allocates one MBuf per pending injected frame, up to len(slots).
// queueDepth is the number of frames still pending after this call.
func (v *VirtualPort) Recv(slots []*mbuf.Buffer) (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := len(slots)
	if n > len(v.pending) {
		n = len(v.pending)
	}
	for i := 0; i < n; i++ {
		b, err := v.pool.Allocate()
		if err != nil {
			v.pending = v.pending[i:]
			return i, len(v.pending)
		}
		frame := v.pending[i]
		b.GrowTail(len(frame))
		copy(b.Bytes(), frame)
		slots[i] = b
	}
	v.pending = v.pending[n:]
	return n, len(v.pending)
}

// Send records a copy of each packet's bytes and dereferences it (the
// virtual equivalent of handing the frame to the wire and freeing the
// MBuf).
func (v *VirtualPort) Send(pkts []*mbuf.Buffer) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, b := range pkts {
		if b == nil {
			continue
		}
		cp := append([]byte(nil), b.Bytes()...)
		v.sent = append(v.sent, cp)
		b.Dereference()
	}
	return len(pkts)
}

// Sent returns copies of every frame handed to Send so far, in order.
func (v *VirtualPort) Sent() [][]byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([][]byte, len(v.sent))
	copy(out, v.sent)
	return out
}

// Pending returns the number of frames still queued for Recv.
func (v *VirtualPort) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending)
}
