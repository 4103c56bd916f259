package sched

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Executable is a task's runnable body: typically an Operator.Act call
// with its queue-depth return discarded, returning the number of
// packets processed.
type Executable func() int

// Task is one schedulable unit: a pipeline tail, a GroupBy producer, or
// a Compose'd sub-pipeline. Counters are atomics so GetPerformance can
// read them from outside the scheduler goroutine.
type Task struct {
	ID   uuid.UUID
	Name string

	exec Executable

	cycles  atomic.Uint64
	packets atomic.Uint64
	lastRun atomic.Int64 // UnixNano
	ready   atomic.Bool
}

// NewTask wraps exec as a named, initially-ready task.
func NewTask(name string, exec Executable) *Task {
	t := &Task{ID: uuid.New(), Name: name, exec: exec}
	t.ready.Store(true)
	return t
}

// Cycles returns accumulated wall-clock nanoseconds spent executing this
// task — the Go substitute for a TSC cycle count, since the runtime
// exposes no portable cycle counter.
func (t *Task) Cycles() uint64 { return t.cycles.Load() }

// Packets returns the accumulated processed-packet count.
func (t *Task) Packets() uint64 { return t.packets.Load() }

// LastRun returns the UnixNano timestamp of the task's most recent run.
func (t *Task) LastRun() int64 { return t.lastRun.Load() }

// Ready reports whether the scheduler will currently execute this task.
func (t *Task) Ready() bool { return t.ready.Load() }

// SetReady atomically gates task execution.
func (t *Task) SetReady(ready bool) { t.ready.Store(ready) }

// run invokes exec and records timing/count. Does not recover panics —
// the scheduler's execution loop wraps each run call with recover so one
// task's panic can't take down the whole core.
func (t *Task) run() {
	start := time.Now()
	n := t.exec()
	if n > 0 {
		t.cycles.Add(uint64(time.Since(start)))
	}
	t.packets.Add(uint64(n))
	t.lastRun.Store(time.Now().UnixNano())
}
