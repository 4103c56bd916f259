// Package sched implements the per-core cooperative scheduler: a
// round-robin execution loop over a run queue of tasks, driven by a
// bounded blocking control channel.
package sched

import (
	"runtime"

	"github.com/google/uuid"

	"github.com/ochrecore/flowcore/internal/constants"
	"github.com/ochrecore/flowcore/internal/logging"
)

// Scheduler owns one core's run queue and control channel. There is no
// preemption inside a task's run: a suspension point only exists between
// two outermost task invocations, where the scheduler may advance to the
// next task or drain a pending control command.
type Scheduler struct {
	core int

	runQ    []*Task
	byID    map[uuid.UUID]int
	cursor  int
	control chan Command

	executeLoop bool
	shutdown    bool

	log *logging.Logger
}

// NewScheduler creates a scheduler for core. The actual CPU-affinity
// pin happens when Run starts, once the goroutine has locked itself to
// an OS thread.
func NewScheduler(core int) *Scheduler {
	return &Scheduler{
		core:    core,
		byID:    make(map[uuid.UUID]int),
		control: make(chan Command, constants.DefaultControlChannelDepth),
		log:     logging.Default().WithCore(core),
	}
}

// Control returns the channel used to send commands to this scheduler.
// Sends block once the channel's bounded buffer fills — the only
// legitimate blocking behavior this package's callers should rely on.
func (s *Scheduler) Control() chan<- Command { return s.control }

// Run is the scheduler's goroutine entry point: alternates between the
// command-handling loop (blocking receive) and the execution loop
// (tight round-robin with non-blocking command polling), until a
// Shutdown command is handled.
func (s *Scheduler) Run() {
	runtime.LockOSThread()
	if err := pinToCore(s.core); err != nil {
		s.log.Errorf("pin to core %d failed: %v", s.core, err)
	}

	for !s.shutdown {
		if s.executeLoop {
			s.runOnce()
			continue
		}
		cmd := <-s.control
		s.handle(cmd)
	}
}

// runOnce advances the round-robin cursor by one task, executing it if
// ready, and polls the control channel non-blockingly whenever the
// cursor wraps back to the start of the run queue.
func (s *Scheduler) runOnce() {
	if len(s.runQ) == 0 {
		select {
		case cmd := <-s.control:
			s.handle(cmd)
		default:
		}
		return
	}

	s.cursor = (s.cursor + 1) % len(s.runQ)
	task := s.runQ[s.cursor]
	if task.Ready() {
		s.executeTask(task)
	}

	if s.cursor == len(s.runQ)-1 {
		select {
		case cmd := <-s.control:
			s.handle(cmd)
		default:
		}
	}
}

// executeTask runs one task with panic recovery, so a single pipeline's
// bug can't take the whole core's scheduler down.
func (s *Scheduler) executeTask(task *Task) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("task %s panicked: %v", task.Name, r)
		}
	}()
	task.run()
}

func (s *Scheduler) handle(cmd Command) {
	switch cmd.Kind {
	case CmdAdd:
		s.addTask(cmd.Task)
	case CmdRun:
		if cmd.Closure != nil {
			cmd.Closure(s)
		}
	case CmdExecute:
		s.executeLoop = true
	case CmdShutdown:
		s.executeLoop = false
		s.shutdown = true
	case CmdSetTaskState:
		if idx, ok := s.byID[cmd.TaskID]; ok {
			s.runQ[idx].SetReady(cmd.Ready)
		}
	case CmdSetTaskStateAll:
		for _, t := range s.runQ {
			t.SetReady(cmd.Ready)
		}
	case CmdHandshake:
		if cmd.HandshakeReply != nil {
			cmd.HandshakeReply <- true
		}
		// Park: dropping out of the execute loop sends Run's top-level
		// loop straight back to a blocking receive on s.control, so the
		// goroutine is genuinely asleep until CmdRelease wakes it.
		s.executeLoop = false
	case CmdRelease:
		s.executeLoop = true
	case CmdGetPerformance:
		if cmd.PerfReply != nil {
			cmd.PerfReply <- s.performance()
		}
	}
}

// InstallTask appends t directly to the run queue. Safe to call only
// from inside a closure dispatched via RunCommand, which runs on the
// scheduler's own goroutine — that's what makes a direct mutation safe
// without going back through the control channel.
func (s *Scheduler) InstallTask(t *Task) { s.addTask(t) }

func (s *Scheduler) addTask(t *Task) {
	if t == nil {
		return
	}
	s.byID[t.ID] = len(s.runQ)
	s.runQ = append(s.runQ, t)
}

func (s *Scheduler) performance() []PerfSample {
	samples := make([]PerfSample, len(s.runQ))
	for i, t := range s.runQ {
		samples[i] = PerfSample{Name: t.Name, Cycles: t.Cycles(), Count: t.Packets()}
	}
	return samples
}
