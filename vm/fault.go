package vm

import (
	"eduos/defs"
	"eduos/klog"
	"eduos/mem"
)

// Access classifies the memory reference that trapped, generalizing
// spec.md §4.5's is_write flag so the PAGEFAULT log line can also report
// instruction fetches.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	AccessExec
)

func (a Access) String() string {
	switch a {
	case AccessWrite:
		return "write"
	case AccessExec:
		return "exec"
	default:
		return "read"
	}
}

// Cause is the classification C5 step 3 assigns a fault.
type Cause int

const (
	CauseSwap Cause = iota
	CauseExec
	CauseHeap
	CauseStack
	CauseUnknown
)

func (c Cause) String() string {
	switch c {
	case CauseSwap:
		return "swap"
	case CauseExec:
		return "exec"
	case CauseHeap:
		return "heap"
	case CauseStack:
		return "stack"
	default:
		return "unknown"
	}
}

// Fault implements C5: classify, acquire a frame (evicting once if
// necessary), populate it, install the PTE, and update PageInfo. lg may be
// nil, in which case logging is skipped (used by unit tests that only
// care about resulting state).
func (pm *ProcMem) Fault(va int, access Access, killed func() bool, lg *klog.Logger) defs.Err_t {
	va = int(pageAt(va))
	isWrite := access == AccessWrite

	// Step 2: spurious fault / dirty-bit upgrade on an already-present PTE.
	if pte, ok := pm.pt.Walk(mem.VA(va)); ok && pte.Present() {
		needed := mem.PTE_U
		if access == AccessWrite {
			needed |= mem.PTE_W
		}
		if access == AccessExec {
			needed |= mem.PTE_X
		}
		if pte.Perm&needed == needed {
			return 0 // spurious: another thread already resolved this
		}
		if isWrite && pte.Perm&mem.PTE_W == 0 {
			if pi, ok := pm.lookupExisting(va); ok && pi.State == Resident {
				pi.Dirty = true
				pm.pt.Upgrade(mem.VA(va), mem.PTE_W)
				return 0
			}
		}
	}

	cause := pm.classifyFault(va)
	if lg != nil {
		lg.Trace(pm.Pid, "PAGEFAULT va=%#x access=%s cause=%s", va, access, cause)
	}
	if cause == CauseUnknown {
		if lg != nil {
			lg.Trace(pm.Pid, "KILL    invalid-access va=%#x", va)
		}
		return -defs.EFAULT
	}

	pi := pm.GetPageInfo(va)
	if pi == nil {
		if lg != nil {
			lg.Trace(pm.Pid, "KILL    invalid-access va=%#x reason=page-table-full", va)
		}
		return -defs.EFAULT
	}

	pa, ok := pm.frames.TryAlloc()
	if !ok {
		// A killed process does not evict and retry.
		if killed != nil && killed() {
			return -defs.EKILLED
		}
		// Swap exhaustion and frame exhaustion are distinct fatal
		// conditions (spec.md §7): EvictOne already logs KILL
		// swap-exhausted on its own failure path, so that case must not
		// also fall through to MEMFULL.
		if EvictOne(pm, lg) != 1 {
			return -defs.ENOSWAP
		}
		pa, ok = pm.frames.TryAlloc()
		if !ok {
			if lg != nil {
				lg.Trace(pm.Pid, "MEMFULL")
			}
			return -defs.ENOMEM
		}
	}
	if killed != nil && killed() {
		pm.frames.Free(pa)
		return -defs.EKILLED
	}

	frame := pm.frames.Frame(pa)
	perm := permsFor(pm.classify(va))
	writableAtInstall := false

	switch cause {
	case CauseSwap:
		slot := pi.SwapSlot
		if err := pm.swapFile.ReadSlot(slot, frame[:]); err != nil {
			pm.frames.Free(pa)
			return -defs.EFAULT
		}
		pm.swapBitmap.Free(slot)
		if lg != nil {
			lg.Trace(pm.Pid, "SWAPIN  va=%#x slot=%d", va, slot)
		}
		pi.SwapSlot = -1
		pm.numSwapped--
		if pm.classify(va) == segHeap || pm.classify(va) == segStack {
			writableAtInstall = isWrite
		}
	case CauseExec:
		if pi.FileLen > 0 {
			if _, err := pm.execInode.ReadAt(frame[:pi.FileLen], int64(pi.FileOff)); err != nil {
				pm.frames.Free(pa)
				return -defs.EFAULT
			}
		}
		if lg != nil {
			lg.Trace(pm.Pid, "LOADEXEC va=%#x", va)
		}
	case CauseHeap, CauseStack:
		// frame is already zeroed by the allocator.
		writableAtInstall = isWrite
		if lg != nil {
			lg.Trace(pm.Pid, "ALLOC   va=%#x", va)
		}
	}

	if writableAtInstall {
		perm |= mem.PTE_W
	}
	pm.pt.Map(mem.VA(va), pa, perm)

	pi.State = Resident
	pi.Seq = pm.nextFifoSeq
	pm.nextFifoSeq++
	pi.Dirty = isWrite && writableAtInstall
	if lg != nil {
		lg.Trace(pm.Pid, "RESIDENT va=%#x seq=%d", va, pi.Seq)
	}
	return 0
}

// classifyFault maps an address to a Cause, consulting PageInfo for the
// swap-vs-exec distinction spec.md §4.5 step 3 requires.
func (pm *ProcMem) classifyFault(va int) Cause {
	if pi, ok := pm.lookupExisting(va); ok && pi.State == Swapped {
		return CauseSwap
	}
	switch pm.classify(va) {
	case segText, segData:
		return CauseExec
	case segHeap:
		return CauseHeap
	case segStack:
		return CauseStack
	default:
		return CauseUnknown
	}
}
