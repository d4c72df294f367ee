//go:build sched_cfs

package sched

import (
	"eduos/klog"
	"eduos/limits"
	"eduos/proc"
)

// cfsPolicy is the simplified fair scheduler: a process's priority is
// its accumulated vruntime, scaled by nice weight, with a time slice
// computed from how many processes are currently competing for the CPU
// (spec.md §4.8 "Fair (vruntime)").
type cfsPolicy struct{}

func newPolicy() Policy { return cfsPolicy{} }

func (cfsPolicy) Name() string { return "fair" }

// Select picks the runnable process with the smallest vruntime, ties
// broken by pid.
func (cfsPolicy) Select(runnable []*proc.Proc_t) *proc.Proc_t {
	var pick *proc.Proc_t
	for _, p := range runnable {
		if pick == nil || p.Vruntime < pick.Vruntime || (p.Vruntime == pick.Vruntime && p.Pid < pick.Pid) {
			pick = p
		}
	}
	return pick
}

// Dispatch computes slice_remaining = max(base, MIN_SLICE) * weight /
// NICE_0_WEIGHT, where base = TARGET_LATENCY / n and n = max(1, |runnable|).
func (cfsPolicy) Dispatch(p *proc.Proc_t, runnable []*proc.Proc_t) {
	n := len(runnable)
	if n < 1 {
		n = 1
	}
	base := limits.TARGET_LATENCY / n
	if base < limits.MIN_SLICE {
		base = limits.MIN_SLICE
	}
	w := proc.Weight(p.Nice)
	p.SliceRemaining = base * w / limits.NICE_0_WEIGHT
}

// Tick accounts vruntime += (1 * NICE_0_WEIGHT) / weight(nice) for the
// tick just elapsed, decrements slice_remaining, and requests a yield
// once it reaches zero.
func (cfsPolicy) Tick(p *proc.Proc_t, runnable []*proc.Proc_t) bool {
	w := proc.Weight(p.Nice)
	p.Vruntime += uint64(limits.NICE_0_WEIGHT / w)
	p.SliceRemaining--
	return p.SliceRemaining <= 0
}

// LogDecision emits spec.md §6's literal scheduler-tick dump: a
// "[Scheduler Tick]" header, one "PID: P | vRuntime: U | Weight: W |
// TimeSlice: T" line per runnable candidate, then the
// "--> Scheduling PID P (lowest vRuntime: U)" line naming the winner.
func (cfsPolicy) LogDecision(lg *klog.Logger, chosen *proc.Proc_t, runnable []*proc.Proc_t) {
	if lg == nil {
		return
	}
	lg.TraceLine("[Scheduler Tick]")
	for _, p := range runnable {
		lg.TraceLine("PID: %d | vRuntime: %d | Weight: %d | TimeSlice: %d",
			p.Pid, p.Vruntime, proc.Weight(p.Nice), p.SliceRemaining)
	}
	if chosen != nil {
		lg.TraceLine("--> Scheduling PID %d (lowest vRuntime: %d)", chosen.Pid, chosen.Vruntime)
	}
}
