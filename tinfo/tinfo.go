// Package tinfo tracks the doom/kill flag a process can be marked with
// asynchronously, which the fault handler consults before retrying a frame
// allocation (spec.md §5, "Cancellation").
package tinfo

import "sync"

// Killflag_t is the per-process cancellation flag. It is intentionally
// tiny: this repo has no thread-local current-thread pointer (no bare-metal
// runtime to hang one off), so the flag is just a field the owning
// proc.Proc_t embeds and the fault/eviction paths read directly.
type Killflag_t struct {
	mu     sync.Mutex
	killed bool
	reason string
}

// Set marks the flag doomed with reason. Idempotent: the first reason
// recorded wins.
func (k *Killflag_t) Set(reason string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.killed {
		k.killed = true
		k.reason = reason
	}
}

// Killed reports whether the flag has been set.
func (k *Killflag_t) Killed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.killed
}

// Reason returns the reason the flag was set, or "" if not killed.
func (k *Killflag_t) Reason() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.reason
}
