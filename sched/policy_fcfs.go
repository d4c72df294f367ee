//go:build sched_fcfs

package sched

import (
	"eduos/klog"
	"eduos/proc"
)

// fcfsPolicy is non-preemptive: once dispatched, a process runs until it
// leaves RUNNING on its own (exit/sleep/voluntary yield); Tick never
// requests a yield for the process currently running under this policy
// (spec.md §4.8, "The tick handler must not call yield for the running
// process under this policy").
type fcfsPolicy struct{}

func newPolicy() Policy { return fcfsPolicy{} }

func (fcfsPolicy) Name() string { return "fcfs" }

// Select chooses the runnable process with the smallest Ctime, ties
// broken by pid.
func (fcfsPolicy) Select(runnable []*proc.Proc_t) *proc.Proc_t {
	var pick *proc.Proc_t
	for _, p := range runnable {
		if pick == nil || p.Ctime < pick.Ctime || (p.Ctime == pick.Ctime && p.Pid < pick.Pid) {
			pick = p
		}
	}
	return pick
}

func (fcfsPolicy) Dispatch(p *proc.Proc_t, runnable []*proc.Proc_t) {}

func (fcfsPolicy) Tick(p *proc.Proc_t, runnable []*proc.Proc_t) bool {
	return false
}

func (fcfsPolicy) LogDecision(lg *klog.Logger, chosen *proc.Proc_t, runnable []*proc.Proc_t) {}
