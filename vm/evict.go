package vm

import "eduos/klog"

// EvictOne implements C4: pick the resident page with the minimum FIFO
// sequence, evict it (discarding clean text pages, swapping out everything
// else), and return 1 on success or -1 if no resident page exists, or if
// eviction itself failed (swap exhausted) — both are fatal conditions the
// caller (Fault) propagates as a kill.
func EvictOne(pm *ProcMem, lg *klog.Logger) int {
	victim := -1
	var minSeq uint64
	for i := range pm.pages {
		if pm.pages[i].State != Resident {
			continue
		}
		if victim == -1 || pm.pages[i].Seq < minSeq {
			victim = i
			minSeq = pm.pages[i].Seq
		}
	}
	if victim == -1 {
		return -1
	}
	pi := &pm.pages[victim]
	if lg != nil {
		lg.Trace(pm.Pid, "VICTIM  va=%#x seq=%d algo=FIFO", pi.VA, pi.Seq)
	}

	pte, ok := pm.pt.Walk(pi.VA)
	if !ok {
		panic("victim page had no pte")
	}

	isText := int(pi.VA) >= pm.TextStart && int(pi.VA) < pm.TextEnd
	if !pi.Dirty && isText {
		if lg != nil {
			lg.Trace(pm.Pid, "EVICT   va=%#x state=clean", pi.VA)
			lg.Trace(pm.Pid, "DISCARD va=%#x", pi.VA)
		}
		pm.pt.Unmap(pi.VA)
		pm.frames.Free(pte.Frame)
		pi.State = Unmapped
		pi.SwapSlot = -1
		return 1
	}

	if lg != nil {
		lg.Trace(pm.Pid, "EVICT   va=%#x state=dirty", pi.VA)
	}
	slot := pm.swapBitmap.Alloc()
	if slot == -1 {
		if lg != nil {
			lg.Trace(pm.Pid, "KILL    swap-exhausted va=%#x", pi.VA)
		}
		return -1
	}

	// The write must complete and be durable before the PTE is cleared
	// (spec.md §5's swap I/O ordering), so the frame stays mapped and
	// untouched until WriteSlot returns.
	frame := pm.frames.Frame(pte.Frame)
	if err := pm.swapFile.WriteSlot(slot, frame[:]); err != nil {
		pm.swapBitmap.Free(slot)
		return -1
	}

	pm.pt.Unmap(pi.VA)
	pm.frames.Free(pte.Frame)
	if lg != nil {
		lg.Trace(pm.Pid, "SWAPOUT va=%#x slot=%d", pi.VA, slot)
	}
	pi.State = Swapped
	pi.SwapSlot = slot
	pm.numSwapped++
	return 1
}
