//go:build !linux

package sched

// pinToCore is a no-op outside Linux: SchedSetaffinity has no portable
// equivalent, and non-Linux development hosts still need to run the
// scheduler's tests.
func pinToCore(core int) error { return nil }
