// Package obsmetrics implements a Prometheus-backed drain of the
// runtime's atomic counters, grounded on go-coffee's
// consumer/metrics/metrics.go use of promauto. The scheduler and port
// layers keep their hot-path counters as plain sync/atomic fields; this
// package periodically copies their values into Prometheus collectors so
// a host process can expose /metrics without the runtime itself owning
// an HTTP server.
package obsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Snapshot is the set of values one drain pass reads from the runtime.
// Callers populate it from their own atomic fields (port.Stats,
// sched.PerfSample, and so on) immediately before calling Drain.
type Snapshot struct {
	PortName         string
	PacketsProcessed uint64
	PacketsQueued    int64
	LastQueueDepth   uint64
	MaxQueueDepth    uint64
	CyclesRx         uint64
}

// PrometheusObserver owns one registry's worth of per-port gauges and
// counters, keyed by port name on first observation.
type PrometheusObserver struct {
	registry prometheus.Registerer

	packetsProcessed *prometheus.CounterVec
	packetsQueued    *prometheus.GaugeVec
	lastQueueDepth   *prometheus.GaugeVec
	maxQueueDepth    *prometheus.GaugeVec
	cyclesRx         *prometheus.CounterVec

	seen       map[string]uint64 // last-observed PacketsProcessed, for counter-delta semantics
	seenCycles map[string]uint64 // last-observed CyclesRx, for counter-delta semantics
}

// NewPrometheusObserver registers its collectors against reg (pass
// prometheus.DefaultRegisterer to publish on the default /metrics path).
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		registry: reg,
		packetsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowcore",
			Name:      "packets_processed_total",
			Help:      "Packets processed by this port's queue.",
		}, []string{"port"}),
		packetsQueued: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "flowcore",
			Name:      "tx_queue_length",
			Help:      "Packets currently buffered in software TX queue.",
		}, []string{"port"}),
		lastQueueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "flowcore",
			Name:      "driver_queue_depth",
			Help:      "Last observed driver-reported queue depth.",
		}, []string{"port"}),
		maxQueueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "flowcore",
			Name:      "driver_queue_depth_max",
			Help:      "Maximum observed driver-reported queue depth.",
		}, []string{"port"}),
		cyclesRx: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowcore",
			Name:      "rx_cycles_total",
			Help:      "Accumulated RX call time, in units of the port queue's tick source.",
		}, []string{"port"}),
		seen:       make(map[string]uint64),
		seenCycles: make(map[string]uint64),
	}
}

// Drain copies one port's current counters into the registered
// collectors. Counters are monotonic atomics on the runtime side, so
// Drain adds only the delta since the last observed value for that port.
func (o *PrometheusObserver) Drain(s Snapshot) {
	prev := o.seen[s.PortName]
	if s.PacketsProcessed > prev {
		o.packetsProcessed.WithLabelValues(s.PortName).Add(float64(s.PacketsProcessed - prev))
	}
	o.seen[s.PortName] = s.PacketsProcessed

	o.packetsQueued.WithLabelValues(s.PortName).Set(float64(s.PacketsQueued))
	o.lastQueueDepth.WithLabelValues(s.PortName).Set(float64(s.LastQueueDepth))
	o.maxQueueDepth.WithLabelValues(s.PortName).Set(float64(s.MaxQueueDepth))

	prevCycles := o.seenCycles[s.PortName]
	if s.CyclesRx > prevCycles {
		o.cyclesRx.WithLabelValues(s.PortName).Add(float64(s.CyclesRx - prevCycles))
	}
	o.seenCycles[s.PortName] = s.CyclesRx
}
