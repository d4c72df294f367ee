package proc

import (
	"fmt"
	"sync"

	"eduos/defs"
	"eduos/klog"
	"eduos/mem"
	"eduos/swap"
	"eduos/vm"
)

// Table is the process table: every live Proc_t, keyed by pid, plus the
// shared collaborators every process's ProcMem needs (spec.md §6's
// alloc_frame and swap-file collaborators).
type Table struct {
	mu      sync.Mutex
	procs   map[defs.Pid_t]*Proc_t
	nextPid defs.Pid_t

	Frames  *mem.FrameAllocator
	SwapDir string
	Log     *klog.Logger
}

// NewTable constructs a process table backed by a frame pool of the given
// size, with per-process swap files created under swapDir.
func NewTable(nframes int, swapDir string, lg *klog.Logger) *Table {
	return &Table{
		procs:   make(map[defs.Pid_t]*Proc_t),
		nextPid: 1,
		Frames:  mem.NewFrameAllocator(nframes),
		SwapDir: swapDir,
		Log:     lg,
	}
}

// NewProc implements allocproc(): allocates a pid, opens its swap file,
// and returns an otherwise-empty Proc_t in the Runnable state with
// ctime set to the tick this call observes.
func (t *Table) NewProc(ppid defs.Pid_t, tick uint64) (*Proc_t, error) {
	t.mu.Lock()
	pid := t.nextPid
	t.nextPid++
	t.mu.Unlock()

	sf, err := swap.Open(t.SwapDir, int(pid))
	if err != nil {
		return nil, fmt.Errorf("allocproc: %w", err)
	}

	p := &Proc_t{
		Pid:      pid,
		Ppid:     ppid,
		Mem:      vm.NewProcMem(int(pid), sf, t.Frames),
		State:    Runnable,
		Ctime:    tick,
		Nice:     0,
		waitc:    make(chan struct{}),
	}

	t.mu.Lock()
	t.procs[pid] = p
	t.mu.Unlock()
	return p, nil
}

// Fork implements fork(): a new process whose memory is an independent
// copy of parent's (no COW, per Non-goals) and whose vruntime is
// inherited from parent so a newborn does not dominate the fair
// scheduler's selection (spec.md §4.8 "Fork").
func (t *Table) Fork(parent *Proc_t, tick uint64) (*Proc_t, error) {
	parent.Mem.Lock()
	defer parent.Mem.Unlock()

	child, err := t.NewProc(parent.Pid, tick)
	if err != nil {
		return nil, err
	}
	if err := parent.Mem.CloneInto(child.Mem); err != nil {
		t.forget(child.Pid)
		return nil, fmt.Errorf("fork: %w", err)
	}
	child.Nice = parent.Nice
	child.Vruntime = parent.Vruntime
	if t.Log != nil {
		t.Log.Trace(int(child.Pid), "FORK parent=%d vruntime=%d", parent.Pid, child.Vruntime)
	}
	return child, nil
}

// Exit implements process exit: marks the process a zombie, releases its
// swap file (SWAPCLEANUP), and frees every resident frame it still owns.
// It does not reap the entry from the table — Wait does that — an
// exit/wait split standard to most process lifecycles.
func (t *Table) Exit(p *Proc_t, status int) {
	p.Mem.Lock()
	pages := p.Mem.PagesForExit()
	for i := range pages {
		pi := &pages[i]
		if pi.State == vm.Resident {
			if pte, ok := p.Mem.PageTable().Walk(pi.VA); ok {
				t.Frames.Free(pte.Frame)
			}
			p.Mem.PageTable().Unmap(pi.VA)
		}
	}
	freed := p.Mem.FreeAllSwapSlots()
	p.Mem.Unlock()

	if err := p.Mem.CloseSwap(); err != nil && t.Log != nil {
		t.Log.Warn(nil, fmt.Sprintf("exit: swap cleanup for pid %d: %v", p.Pid, err))
	}
	if t.Log != nil {
		t.Log.Trace(int(p.Pid), "SWAPCLEANUP freed_slots=%d", freed)
	}

	t.mu.Lock()
	p.exitStatus = status
	p.State = Zombie
	t.mu.Unlock()
	close(p.waitc)
}

// Wait blocks until p has exited and returns its exit status, then
// removes it from the table.
func (t *Table) Wait(p *Proc_t) int {
	<-p.waitc
	status := p.exitStatus
	t.forget(p.Pid)
	return status
}

func (t *Table) forget(pid defs.Pid_t) {
	t.mu.Lock()
	delete(t.procs, pid)
	t.mu.Unlock()
}

// Runnable returns every process currently in the Runnable state, the
// candidate set every scheduler policy selects from.
func (t *Table) Runnable() []*Proc_t {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*Proc_t
	for _, p := range t.procs {
		if p.State == Runnable {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the process with the given pid, if still present.
func (t *Table) Get(pid defs.Pid_t) (*Proc_t, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.procs[pid]
	return p, ok
}
