//go:build !sched_fcfs && !sched_cfs

package sched

import (
	"sync"

	"eduos/defs"
	"eduos/klog"
	"eduos/proc"
)

// rrPolicy is the default build's policy: a classic per-CPU scan of the
// process table for a RUNNABLE entry starting just after the last pid
// dispatched, wrapping around; it yields on every tick regardless of how
// long the current process has run.
type rrPolicy struct {
	mu   sync.Mutex
	last defs.Pid_t
}

func newPolicy() Policy { return &rrPolicy{} }

func (*rrPolicy) Name() string { return "round-robin" }

// Select scans runnable for the smallest pid strictly greater than the
// last one dispatched, wrapping to the smallest pid overall if none is
// found — the standard circular scan.
func (r *rrPolicy) Select(runnable []*proc.Proc_t) *proc.Proc_t {
	if len(runnable) == 0 {
		return nil
	}
	r.mu.Lock()
	last := r.last
	r.mu.Unlock()

	var next, smallest *proc.Proc_t
	for _, p := range runnable {
		if smallest == nil || p.Pid < smallest.Pid {
			smallest = p
		}
		if p.Pid > last && (next == nil || p.Pid < next.Pid) {
			next = p
		}
	}
	pick := next
	if pick == nil {
		pick = smallest
	}

	r.mu.Lock()
	r.last = pick.Pid
	r.mu.Unlock()
	return pick
}

func (*rrPolicy) Dispatch(p *proc.Proc_t, runnable []*proc.Proc_t) {}

// Tick always requests a yield: round-robin never lets one process run
// past a single tick.
func (*rrPolicy) Tick(p *proc.Proc_t, runnable []*proc.Proc_t) bool {
	return true
}

func (*rrPolicy) LogDecision(lg *klog.Logger, chosen *proc.Proc_t, runnable []*proc.Proc_t) {}
