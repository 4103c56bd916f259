// Command flowcore-demo runs the mac-swap reference pipeline
// (spec.md §8 scenario 1) against a VirtualPort: one injected frame in,
// the swapped frame out, driven by a real scheduler task.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ochrecore/flowcore"
	"github.com/ochrecore/flowcore/internal/headers"
	"github.com/ochrecore/flowcore/internal/logging"
	"github.com/ochrecore/flowcore/internal/sched"
)

func main() {
	var (
		core    = flag.Int("c", 0, "core to pin the scheduler to")
		portArg = flag.String("p", "virtio:iface=demo0", "port spec (prefix:opts, as spec.md §6 describes)")
		master  = flag.Int("m", 0, "primary core id")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	// The config collaborator is out of scope (spec.md §6); this demo
	// hand-builds the same ProcessConfig/PortConfig shapes a TOML reader
	// would populate, exactly as the teacher's cmd/ublk-mem/main.go
	// hand-builds DeviceParams instead of reading a file.
	cfg := flowcore.DefaultProcessConfig()
	cfg.PrimaryCore = *master
	cfg.Cores = []int{*core}
	cfg.Ports = []flowcore.PortConfig{{
		Name:          *portArg,
		RxCores:       []int{*core},
		TxCores:       []int{*core},
		RxDescriptors: flowcore.DefaultNumRxDesc,
		TxDescriptors: flowcore.DefaultNumTxDesc,
	}}

	pool := flowcore.NewPool(cfg.PoolSize, 2048)
	vp := flowcore.NewVirtualPort(pool)

	ctx, err := flowcore.NewContext(cfg, func(pc flowcore.PortConfig, _ any) ([]flowcore.QueuePair, any, error) {
		return []flowcore.QueuePair{{PortName: pc.Name, QueueID: 0, Rx: vp, Tx: vp}}, nil, nil
	})
	if err != nil {
		logger.Error("bring-up failed", "error", err)
		os.Exit(1)
	}
	ctx.StartSchedulers()

	if err := ctx.AddPipelineToRunQueue(*core, func(s *sched.Scheduler, queues []flowcore.QueuePair) {
		q := queues[0]
		rx := flowcore.Receive(q.Rx)
		swap := flowcore.Transform(rx, func(p *flowcore.PDU) {
			if mac, ok := macHeader(p); ok {
				mac.SwapAddrs()
			}
		})
		flowcore.InstallPipeline(s, "mac-swap", flowcore.Send(swap, q.Tx))
	}); err != nil {
		logger.Error("pipeline install failed", "error", err)
		os.Exit(1)
	}

	frame := buildEthFrame()
	vp.Inject(frame)

	ctx.ExecuteAll()
	time.Sleep(20 * time.Millisecond)
	ctx.ShutdownAll()

	sent := vp.Sent()
	fmt.Printf("injected 1 frame, transmitted %d frame(s)\n", len(sent))
	for _, f := range sent {
		fmt.Printf("  dst=% x src=% x etype=% x payload=% x\n", f[0:6], f[6:12], f[12:14], f[14:])
	}
}

// macHeader returns a mutable view over p's Mac header, if it has one at
// stack position 0.
func macHeader(p *flowcore.PDU) (*headers.Mac, bool) {
	raw, ok := p.HeaderBytes(0)
	if !ok {
		return nil, false
	}
	return headers.ParseMac(raw)
}

// buildEthFrame returns the exact frame spec.md §8 scenario 1 injects:
// dst=AA..AA, src=BB..BB, etype=0x0800, payload=[0x01,0x02,0x03,0x04].
func buildEthFrame() []byte {
	frame := make([]byte, 18)
	for i := 0; i < 6; i++ {
		frame[i] = 0xAA
		frame[6+i] = 0xBB
	}
	frame[12], frame[13] = 0x08, 0x00
	copy(frame[14:], []byte{0x01, 0x02, 0x03, 0x04})
	return frame
}
