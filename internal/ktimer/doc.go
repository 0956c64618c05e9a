// Package ktimer implements a simple periodic timer used throughout the
// client core for sub-lease renewal, time resync scheduling and ID cache
// eviction.
//
// A Timer runs its callback on its own goroutine at a fixed interval,
// anchored to the previous execution time rather than the time the
// callback took to run, so it doesn't drift under load. SetNextExec lets a
// caller reschedule the next firing, e.g. after an out-of-band event makes
// the current schedule stale.
package ktimer
