// Package sched is the scheduler core (C8) and tick/trap glue (C9):
// build-time policy selection among round-robin, FCFS, and a simplified
// fair (vruntime) scheduler, all driven from the same dispatch loop and
// timer-tick entry point.
package sched

import (
	"eduos/klog"
	"eduos/proc"
)

// Policy is the strategy every build selects exactly one implementation
// of, via a build-tag-gated file in this package (policy_rr.go,
// policy_fcfs.go, policy_cfs.go).
type Policy interface {
	// Name identifies the policy for logging.
	Name() string

	// Select picks the next process to run from the runnable set, or nil
	// if it is empty. Implementations must be deterministic given the
	// same runnable set — tie-break rules matter for reproducible
	// selection and for the fair policy's per-slice fairness guarantee.
	Select(runnable []*proc.Proc_t) *proc.Proc_t

	// Dispatch is called once when p is about to start running, so the
	// policy can compute and store a fresh slice_remaining (fair only;
	// RR/FCFS are no-ops here).
	Dispatch(p *proc.Proc_t, runnable []*proc.Proc_t)

	// Tick is called once per timer tick while p is RUNNING, after
	// accounting; it returns whether p should yield the CPU now.
	Tick(p *proc.Proc_t, runnable []*proc.Proc_t) bool

	// LogDecision records a scheduling decision. RR/FCFS log nothing
	// (spec.md §4.8's candidate-dump requirement is fair-policy only);
	// the fair policy logs {pid, vruntime, nice/weight, slice} for every
	// candidate plus the chosen pid.
	LogDecision(lg *klog.Logger, chosen *proc.Proc_t, runnable []*proc.Proc_t)
}

// ActivePolicy is the single policy compiled into this build.
var ActivePolicy Policy = newPolicy()
