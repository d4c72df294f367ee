package vm

import (
	"sync"

	"eduos/limits"
	"eduos/mem"
	"eduos/swap"
)

// ProcMem is the per-process memory record of spec.md §3: the address
// space layout, the page-metadata table, and the swap-slot bitmap. The
// embedded mutex is the "process lock" spec.md §5 requires around
// pages[], swap_slot_bitmap, num_swapped_pages, next_fifo_seq, the page
// table, and sz.
type ProcMem struct {
	sync.Mutex

	Pid int

	TextStart, TextEnd int
	DataStart, DataEnd int
	HeapStart          int
	StackBottom        int // heap_start..stack_bottom is heap; below is guarded
	StackTop           int
	Sz                 int

	pages          []PageInfo
	numSwapped     int
	nextFifoSeq    uint64
	swapBitmap     swap.SlotBitmap
	swapFile       *swap.File
	execInode      ExecInode
	pt             *mem.PageTable
	frames         *mem.FrameAllocator
	guardTolerance int // bytes below StackBottom still tolerated as stack growth
}

// ExecInode is the minimal read interface the exec lazy-map and demand
// loader need from the external file-system collaborator (spec.md §6's
// "block-backed inode"); see package fsiface for the concrete interface
// and a file-backed implementation.
type ExecInode interface {
	ReadAt(buf []byte, off int64) (int, error)
}

// NewProcMem constructs an empty memory record. The swap file and frame
// allocator are supplied by the caller (proc.Proc_t at process creation)
// since they are external collaborators, not owned by vm.
func NewProcMem(pid int, sf *swap.File, frames *mem.FrameAllocator) *ProcMem {
	return &ProcMem{
		Pid:            pid,
		pages:          make([]PageInfo, 0, 64),
		swapFile:       sf,
		pt:             mem.NewPageTable(),
		frames:         frames,
		guardTolerance: limits.PGSIZE,
	}
}

// PageTable exposes the underlying software page table to callers that
// need to install/remove mappings directly (proc.Exit's cleanup, tests).
func (pm *ProcMem) PageTable() *mem.PageTable { return pm.pt }

// NumPages, NumSwapped, NextFifoSeq report the counters spec.md §3/§4.7
// describe; callers must hold pm's lock (or accept a racy read for
// observability). Stat does not use them: it recomputes its counts from
// pages[] under the lock.
func (pm *ProcMem) NumPages() int       { return len(pm.pages) }
func (pm *ProcMem) NumSwapped() int     { return pm.numSwapped }
func (pm *ProcMem) NextFifoSeq() uint64 { return pm.nextFifoSeq }

// PagesForExit returns the live page-metadata table for process-exit
// cleanup (proc.Table.Exit): freeing every still-resident frame and
// closing the swap file. Caller holds pm's lock.
func (pm *ProcMem) PagesForExit() []PageInfo { return pm.pages }

// FreeAllSwapSlots releases every slot this process still holds in its
// swap-slot bitmap and returns the count freed, the freed_slots=K figure
// SWAPCLEANUP reports (spec.md §6). Caller holds pm's lock.
func (pm *ProcMem) FreeAllSwapSlots() int {
	return pm.swapBitmap.FreeAll()
}

// CloseSwap closes and unlinks this process's swap file, the
// SWAPCLEANUP step of process exit (spec.md §6).
func (pm *ProcMem) CloseSwap() error {
	if pm.swapFile == nil {
		return nil
	}
	return pm.swapFile.Close()
}

// ReleaseRange frees every frame or swap slot backing a page at or above
// newSz, sbrk's shrink path (spec.md §6). The page's record is reset to
// Unmapped rather than dropped, so growing back to the same break reuses
// it. Caller holds pm's lock.
func (pm *ProcMem) ReleaseRange(newSz int) {
	for i := range pm.pages {
		pi := &pm.pages[i]
		if int(pi.VA) < newSz {
			continue
		}
		switch pi.State {
		case Resident:
			if pte, ok := pm.pt.Unmap(pi.VA); ok {
				pm.frames.Free(pte.Frame)
			}
		case Swapped:
			pm.swapBitmap.Free(pi.SwapSlot)
			pm.numSwapped--
		}
		pi.State = Unmapped
		pi.SwapSlot = -1
		pi.Dirty = false
	}
}

// pageAt rounds va down to its page boundary.
func pageAt(va int) mem.VA {
	return mem.VA(va &^ (limits.PGSIZE - 1))
}

// GetPageInfo implements C2: returns the record for PGROUNDDOWN(va),
// allocating a new one at the end of pages[] on first use, or nil if the
// table is full. The scan is linear by design (spec.md §4.2 and Open
// Question 1): MAX_PROC_PAGES is small enough that fault latency, not
// lookup cost, dominates, and a linear scan is what spec.md mandates as
// the correct behaviour (a modulo-indexed variant is a documented bug
// this repo does not reproduce).
func (pm *ProcMem) GetPageInfo(va int) *PageInfo {
	pg := pageAt(va)
	for i := range pm.pages {
		if pm.pages[i].VA == pg {
			return &pm.pages[i]
		}
	}
	if len(pm.pages) >= limits.MAX_PROC_PAGES {
		return nil
	}
	pm.pages = append(pm.pages, PageInfo{VA: pg, State: Unmapped, SwapSlot: -1})
	return &pm.pages[len(pm.pages)-1]
}

// lookupExisting returns the PageInfo for va without creating one.
func (pm *ProcMem) lookupExisting(va int) (*PageInfo, bool) {
	pg := pageAt(va)
	for i := range pm.pages {
		if pm.pages[i].VA == pg {
			return &pm.pages[i], true
		}
	}
	return nil, false
}

// classify determines which address-space segment va falls in, per
// spec.md §4.5 step 3. [TextStart, max(TextEnd, DataEnd)) is one combined
// exec range: any gap between TextEnd and DataStart (alignment padding
// the loader leaves between segments) is still exec, not invalid, and a
// process with no data segment (DataEnd below TextEnd) still has its
// whole text range classified as exec. Only [DataStart, DataEnd) is data.
func (pm *ProcMem) classify(va int) segClass {
	switch {
	case va >= pm.TextStart && va < max(pm.TextEnd, pm.DataEnd):
		if va >= pm.DataStart && va < pm.DataEnd {
			return segData
		}
		return segText
	case va >= pm.HeapStart && va < pm.StackBottom:
		return segHeap
	case va >= pm.StackBottom-pm.guardTolerance && va < pm.StackTop:
		return segStack
	default:
		return segInvalid
	}
}

// permsFor returns the base U|R permission set for a segment, before any
// write/exec bits the fault handler adds.
func permsFor(c segClass) mem.Perm {
	p := mem.PTE_U
	if c == segText {
		p |= mem.PTE_X
	}
	return p
}
