package vm

import "eduos/mem"

// CloneInto duplicates pm's address-space layout and page contents into
// child, a freshly constructed (empty) ProcMem with its own swap file and
// page table. Non-goals rule out copy-on-write fork and shared memory, so
// every resident page gets its own fresh frame and copy of the bytes, and
// every swapped page gets its own newly allocated slot in child's swap
// file with the same bytes — nothing is shared after this call returns.
//
// Caller holds pm's lock; child is not yet visible to any other goroutine.
func (pm *ProcMem) CloneInto(child *ProcMem) error {
	child.TextStart, child.TextEnd = pm.TextStart, pm.TextEnd
	child.DataStart, child.DataEnd = pm.DataStart, pm.DataEnd
	child.HeapStart = pm.HeapStart
	child.StackBottom, child.StackTop = pm.StackBottom, pm.StackTop
	child.Sz = pm.Sz
	child.guardTolerance = pm.guardTolerance
	child.execInode = pm.execInode
	child.pages = make([]PageInfo, len(pm.pages))

	var buf mem.Page
	for i := range pm.pages {
		src := pm.pages[i]
		dst := src
		switch src.State {
		case Resident:
			pte, ok := pm.pt.Walk(src.VA)
			if !ok {
				panic("resident pageinfo with no pte")
			}
			pa, ok := child.frames.TryAlloc()
			if !ok {
				return errNoFrame{va: int(src.VA)}
			}
			copy(child.frames.Frame(pa)[:], pm.frames.Frame(pte.Frame)[:])
			child.pt.Map(src.VA, pa, pte.Perm &^ mem.PTE_P)
			dst.Seq = child.nextFifoSeq
			child.nextFifoSeq++
		case Swapped:
			if err := pm.swapFile.ReadSlot(src.SwapSlot, buf[:]); err != nil {
				return err
			}
			slot := child.swapBitmap.Alloc()
			if slot == -1 {
				return errNoSwap{}
			}
			if err := child.swapFile.WriteSlot(slot, buf[:]); err != nil {
				child.swapBitmap.Free(slot)
				return err
			}
			dst.SwapSlot = slot
			child.numSwapped++
		}
		child.pages[i] = dst
	}
	return nil
}

type errNoFrame struct{ va int }

func (e errNoFrame) Error() string { return "fork: no frame available to duplicate resident page" }

type errNoSwap struct{}

func (e errNoSwap) Error() string { return "fork: child swap file exhausted while duplicating page" }
