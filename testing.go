package flowcore

import "github.com/ochrecore/flowcore/internal/port"

// VirtualPort is an in-memory RxQueue/TxQueue pair for tests: Recv
// allocates an MBuf per injected frame, Send records and frees whatever
// it's given. Grounded on the teacher's MockBackend (testing.go),
// generalized from a block-device backend to a packet queue pair.
type VirtualPort = port.VirtualPort

// NewVirtualPort creates a virtual port drawing RX allocations from
// pool, per spec.md §6's virtual in-memory queue.
func NewVirtualPort(pool *Pool) *VirtualPort { return port.NewVirtualPort(pool) }

// NullPort is a blackhole RxQueue/TxQueue pair: Recv never yields
// anything, Send frees everything it's handed.
type NullPort = port.NullPort

// RxQueue and TxQueue are the NIC driver surface spec.md §6 calls a
// capability: two methods each, implemented by a physical NIC queue, a
// kernel-interface queue, or VirtualPort/NullPort for tests.
type RxQueue = port.RxQueue
type TxQueue = port.TxQueue
