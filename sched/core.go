package sched

import (
	"sync"

	"eduos/klog"
	"eduos/proc"
)

// Scheduler drives dispatch, preemption, and accounting for whichever
// Policy this build compiled in. The ticks counter has its own lock,
// independent of any process's lock, per spec.md §5.
type Scheduler struct {
	Table *proc.Table
	Log   *klog.Logger

	mu      sync.Mutex
	ticks   uint64
	current *proc.Proc_t
}

// NewScheduler builds a Scheduler over table, using the single Policy
// this build was compiled with.
func NewScheduler(table *proc.Table, lg *klog.Logger) *Scheduler {
	return &Scheduler{Table: table, Log: lg}
}

// Ticks returns the current global tick count.
func (s *Scheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Current returns the process currently dispatched as RUNNING, or nil.
func (s *Scheduler) Current() *proc.Proc_t {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Dispatch implements the selection half of C8: pick a RUNNABLE process
// via the active policy, transition it to Running, and let the policy
// set up its slice. Returns nil if no process is runnable.
func (s *Scheduler) Dispatch() *proc.Proc_t {
	runnable := s.Table.Runnable()
	p := ActivePolicy.Select(runnable)
	if p == nil {
		return nil
	}
	p.State = proc.Running
	ActivePolicy.Dispatch(p, runnable)
	ActivePolicy.LogDecision(s.Log, p, runnable)

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return p
}

// Tick implements C9's timer-tick half: advance the global tick counter,
// then — if a process is currently RUNNING — run the active policy's
// accounting hook and yield it (demote to Runnable) if requested.
// Callers invoke this once per timer interrupt; it does not itself pick
// a replacement, since that is Dispatch's job on the next scheduling
// point.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	s.ticks++
	cur := s.current
	s.mu.Unlock()

	if cur == nil || cur.State != proc.Running {
		return
	}
	runnable := s.Table.Runnable()
	if ActivePolicy.Tick(cur, runnable) {
		s.Yield(cur)
	}
}

// Yield demotes p from Running back to Runnable, the voluntary-yield
// path FCFS processes take on their own and RR/fair take every tick
// that requests it.
func (s *Scheduler) Yield(p *proc.Proc_t) {
	p.State = proc.Runnable
	s.mu.Lock()
	if s.current == p {
		s.current = nil
	}
	s.mu.Unlock()
}
