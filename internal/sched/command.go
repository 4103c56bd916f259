package sched

import "github.com/google/uuid"

// CommandKind identifies the control-channel command variants a
// scheduler accepts.
type CommandKind int

const (
	CmdAdd CommandKind = iota
	CmdRun
	CmdExecute
	CmdShutdown
	CmdSetTaskState
	CmdSetTaskStateAll
	CmdHandshake
	CmdRelease
	CmdGetPerformance
)

// PerfSample is one task's counters, as reported by GetPerformance.
type PerfSample struct {
	Name    string
	Cycles  uint64
	Count   uint64
}

// Command is one control-channel message. Only the fields relevant to
// Kind are populated; see the constructors below.
type Command struct {
	Kind CommandKind

	TaskID uuid.UUID
	Name   string
	Task   *Task
	Ready  bool

	Closure func(*Scheduler)

	HandshakeReply chan bool
	PerfReply      chan []PerfSample
}

// AddCommand appends task to the run queue.
func AddCommand(task *Task) Command { return Command{Kind: CmdAdd, Task: task} }

// RunCommand executes closure against the scheduler itself, on the
// scheduler's own goroutine — used to install pipelines built elsewhere.
func RunCommand(closure func(*Scheduler)) Command { return Command{Kind: CmdRun, Closure: closure} }

// ExecuteCommand enters the execution loop.
func ExecuteCommand() Command { return Command{Kind: CmdExecute} }

// ShutdownCommand exits the execution loop and the command-handling loop.
func ShutdownCommand() Command { return Command{Kind: CmdShutdown} }

// SetTaskStateCommand atomically sets one task's ready flag.
func SetTaskStateCommand(id uuid.UUID, ready bool) Command {
	return Command{Kind: CmdSetTaskState, TaskID: id, Ready: ready}
}

// SetTaskStateAllCommand sets every task's ready flag.
func SetTaskStateAllCommand(ready bool) Command {
	return Command{Kind: CmdSetTaskStateAll, Ready: ready}
}

// HandshakeCommand replies true on reply, then genuinely parks: the
// scheduler drops out of its execute loop and blocks on the control
// channel until a ReleaseCommand arrives. This is the barrier primitive
// Context.Barrier() uses to pause every active core before resuming them
// together — send Handshake is only meaningful while the scheduler is in
// its execute loop; a scheduler that hasn't started executing yet just
// replies and stays parked on the control channel, which is where it
// already was.
func HandshakeCommand(reply chan bool) Command {
	return Command{Kind: CmdHandshake, HandshakeReply: reply}
}

// ReleaseCommand resumes a scheduler parked by a prior Handshake,
// re-entering the execute loop.
func ReleaseCommand() Command { return Command{Kind: CmdRelease} }

// GetPerformanceCommand replies with every task's current counters.
func GetPerformanceCommand(reply chan []PerfSample) Command {
	return Command{Kind: CmdGetPerformance, PerfReply: reply}
}
