// Package proc combines the virtual-memory record (package vm) and the
// scheduling record spec.md §3 describes into the single per-process
// object the scheduler and fault path operate on, the way a real
// process_t ties together memory, accounting, and run state.
package proc

import (
	"eduos/defs"
	"eduos/tinfo"
	"eduos/vm"
)

// State is a process's run state.
type State int

const (
	Runnable State = iota
	Running
	Sleeping
	Zombie
)

func (s State) String() string {
	switch s {
	case Runnable:
		return "RUNNABLE"
	case Running:
		return "RUNNING"
	case Sleeping:
		return "SLEEPING"
	case Zombie:
		return "ZOMBIE"
	default:
		return "UNKNOWN"
	}
}

// Proc_t is one process: its memory record, its scheduling record
// (spec.md §3's "process scheduling record"), accounting, and kill
// flag.
type Proc_t struct {
	Pid  defs.Pid_t
	Ppid defs.Pid_t

	Mem *vm.ProcMem

	State State

	// Ctime is the tick at which allocproc() (NewProc) created this
	// process; FCFS's selection rule orders on it.
	Ctime uint64

	// Nice, Vruntime, SliceRemaining are the fair policy's bookkeeping
	// fields (spec.md §4.8). Nice defaults to 0; Vruntime starts at 0
	// for the first process and is inherited across Fork.
	Nice           int
	Vruntime       uint64
	SliceRemaining int

	Accnt Accnt_t
	Kill  tinfo.Killflag_t

	exitStatus int
	waitc      chan struct{}
}

// Weight returns weight(nice) = round(1024 / 1.25^nice), spec.md §4.8.
func (p *Proc_t) Weight() int {
	return Weight(p.Nice)
}

// Weight computes the fair scheduler's weight for a given nice value
// without requiring a Proc_t, so tests and the scheduler's candidate
// dump can call it directly.
func Weight(nice int) int {
	w := 1024.0
	for n := nice; n > 0; n-- {
		w /= 1.25
	}
	for n := nice; n < 0; n++ {
		w *= 1.25
	}
	return int(w + 0.5)
}
