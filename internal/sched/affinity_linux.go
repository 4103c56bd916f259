//go:build linux

package sched

import "golang.org/x/sys/unix"

// pinToCore pins the calling OS thread to core, exactly as the teacher's
// queue.Runner.ioLoop pins its I/O thread before entering its poll loop.
// The caller must have already called runtime.LockOSThread.
func pinToCore(core int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(core)
	return unix.SchedSetaffinity(0, &set)
}
