package sched

import (
	"eduos/defs"
	"eduos/proc"
	"eduos/vm"
)

// TrapCause distinguishes the trap kinds C9 routes.
type TrapCause int

const (
	TrapTimer TrapCause = iota
	TrapPageFault
	TrapOther
)

// HandleTrap is C9's single entry point: page faults are routed to the
// fault handler (C5), timer ticks to the scheduler's accounting hook
// (possibly followed by a yield); anything else passes through
// unchanged. va/access are only meaningful for TrapPageFault.
func (s *Scheduler) HandleTrap(p *proc.Proc_t, cause TrapCause, va int, access vm.Access) defs.Err_t {
	switch cause {
	case TrapPageFault:
		p.Mem.Lock()
		defer p.Mem.Unlock()
		return p.Mem.Fault(va, access, p.Kill.Killed, s.Log)
	case TrapTimer:
		s.Tick()
		return 0
	default:
		return 0
	}
}
