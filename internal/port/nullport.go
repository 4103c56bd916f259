package port

import "github.com/ochrecore/flowcore/internal/mbuf"

// NullPort is a blackhole queue pair: Recv never yields anything, Send
// frees every packet it's handed and reports them all accepted. Used for
// benchmarking pipeline overhead with the port removed from the
// equation, and as the default sink for Drop-terminated pipelines.
type NullPort struct{}

func (NullPort) Recv(slots []*mbuf.Buffer) (int, int) { return 0, 0 }

func (NullPort) Send(pkts []*mbuf.Buffer) int {
	for _, b := range pkts {
		if b != nil {
			b.Dereference()
		}
	}
	return len(pkts)
}
