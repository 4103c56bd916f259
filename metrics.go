package flowcore

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ochrecore/flowcore/internal/obsmetrics"
	"github.com/ochrecore/flowcore/internal/port"
	"github.com/ochrecore/flowcore/internal/sched"
)

// PortStats holds the live, hot-path counters a port queue updates on
// every Recv/Send call. SnapshotPort reads them into a cold-path
// PortSnapshot for an Observer.
type PortStats = port.Stats

// PortSnapshot is a point-in-time read of one port queue's counters,
// suitable for handing to an Observer. The counters themselves stay
// sync/atomic fields on the hot path (internal/port.Stats); this is the
// cold-path copy a periodic collector takes.
type PortSnapshot = obsmetrics.Snapshot

// TaskSnapshot is a point-in-time read of one scheduled task's counters.
type TaskSnapshot = sched.PerfSample

// SnapshotPort reads stats's current counters into a named PortSnapshot.
// Call this from a collector goroutine, not from the packet-processing
// hot path.
func SnapshotPort(name string, stats *port.Stats) PortSnapshot {
	return PortSnapshot{
		PortName:         name,
		PacketsProcessed: stats.PacketsProcessed.Load(),
		PacketsQueued:    stats.PacketsQueued.Load(),
		LastQueueDepth:   stats.LastQueueDepth.Load(),
		MaxQueueDepth:    stats.MaxQueueDepth.Load(),
		CyclesRx:         stats.CyclesRx.Load(),
	}
}

// Observer is the pluggable metrics sink a caller wires in to collect
// without the runtime owning an HTTP server or a particular backend,
// mirroring the teacher's Observer interface (metrics.go) generalized
// from per-I/O-operation callbacks to per-port-snapshot drains.
type Observer interface {
	ObservePort(snap PortSnapshot)
	ObserveTask(snap TaskSnapshot)
}

// NoOpObserver discards every observation. It is the default Observer
// for callers that don't need metrics export.
type NoOpObserver struct{}

func (NoOpObserver) ObservePort(PortSnapshot) {}
func (NoOpObserver) ObserveTask(TaskSnapshot) {}

// PrometheusObserver exports port snapshots as Prometheus collectors.
// Task snapshots have no stable cardinality key beyond a task name, so
// they're dropped here; a caller wanting per-task series should drain
// sched.PerfSample directly.
type PrometheusObserver struct {
	inner *obsmetrics.PrometheusObserver
}

// NewPrometheusObserver registers collectors against reg (pass
// prometheus.DefaultRegisterer to publish on the default /metrics path).
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	return &PrometheusObserver{inner: obsmetrics.NewPrometheusObserver(reg)}
}

func (o *PrometheusObserver) ObservePort(snap PortSnapshot) { o.inner.Drain(snap) }
func (o *PrometheusObserver) ObserveTask(TaskSnapshot)      {}

var (
	_ Observer = NoOpObserver{}
	_ Observer = (*PrometheusObserver)(nil)
)
