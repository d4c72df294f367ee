package vm

import (
	"debug/elf"
	"fmt"
	"io"

	"eduos/klog"
	"eduos/limits"
	"eduos/mem"
	"eduos/util"
)

// LoadExec implements C6: parse the executable's program headers, compute
// the text/data bounding boxes, lazily map every LOAD-segment page as
// UNMAPPED with its file offset recorded, and set up the stack. No frame
// is allocated for program text/data — the fault handler (C5) demand
// loads them on first reference. Validation errors leave target
// unmodified and return an error, per spec.md §4.6/§7 ("Abort exec,
// preserve old image, return -1").
//
// Program-header validation reuses the ELF-header-sanity idiom the
// teacher's chentry build tool applies when patching an entry point
// (debug/elf field checks), generalized from "is this a valid x86-64
// executable" to "are these LOAD segments safe to lazily map."
func LoadExec(target *ProcMem, r io.ReaderAt, inode ExecInode, argv []string, lg *klog.Logger) error {
	ef, err := elf.NewFile(r)
	if err != nil {
		return fmt.Errorf("exec: malformed elf: %w", err)
	}
	defer ef.Close()

	if ef.Class != elf.ELFCLASS64 || ef.Machine == elf.EM_NONE {
		return fmt.Errorf("exec: unsupported elf class/machine")
	}

	type loadSeg struct {
		vaddr, memsz, filesz, off uint64
		exec                      bool
	}
	var segs []loadSeg
	for _, ph := range ef.Progs {
		if ph.Type != elf.PT_LOAD {
			continue
		}
		if ph.Memsz < ph.Filesz {
			return fmt.Errorf("exec: segment memsz < filesz")
		}
		if ph.Vaddr%uint64(limits.PGSIZE) != 0 {
			return fmt.Errorf("exec: segment vaddr %#x not page aligned", ph.Vaddr)
		}
		if ph.Vaddr+ph.Memsz < ph.Vaddr {
			return fmt.Errorf("exec: segment address range overflows")
		}
		segs = append(segs, loadSeg{
			vaddr:  ph.Vaddr,
			memsz:  ph.Memsz,
			filesz: ph.Filesz,
			off:    ph.Off,
			exec:   ph.Flags&elf.PF_X != 0,
		})
	}
	if len(segs) == 0 {
		return fmt.Errorf("exec: no loadable segments")
	}

	fresh := &ProcMem{
		Pid:      target.Pid,
		swapFile: target.swapFile,
		pt:       mem.NewPageTable(),
		frames:   target.frames,
	}
	fresh.guardTolerance = limits.PGSIZE
	fresh.pages = make([]PageInfo, 0, 64)

	var sz int
	haveText, haveData := false, false
	for _, s := range segs {
		end := int(s.vaddr + s.memsz)
		if s.exec {
			if !haveText || int(s.vaddr) < fresh.TextStart {
				fresh.TextStart = int(s.vaddr)
			}
			if end > fresh.TextEnd {
				fresh.TextEnd = end
			}
			haveText = true
		} else {
			if !haveData || int(s.vaddr) < fresh.DataStart {
				fresh.DataStart = int(s.vaddr)
			}
			if end > fresh.DataEnd {
				fresh.DataEnd = end
			}
			haveData = true
		}
		if end > sz {
			sz = end
		}

		pageCount := (int(s.memsz) + limits.PGSIZE - 1) / limits.PGSIZE
		for pno := 0; pno < pageCount; pno++ {
			va := int(s.vaddr) + pno*limits.PGSIZE
			pageOff := pno * limits.PGSIZE
			flen := util.Max(0, util.Min(int(s.filesz)-pageOff, limits.PGSIZE))
			foff := 0
			if flen > 0 {
				foff = int(s.off) + pageOff
			}
			fresh.pages = append(fresh.pages, PageInfo{
				VA:       mem.VA(va),
				State:    Unmapped,
				SwapSlot: -1,
				FileOff:  foff,
				FileLen:  flen,
			})
		}
	}

	fresh.Sz = sz
	fresh.HeapStart = sz
	fresh.StackTop = util.Roundup(sz, limits.PGSIZE) + (limits.USERSTACK+1)*limits.PGSIZE
	fresh.StackBottom = fresh.StackTop - limits.USERSTACK*limits.PGSIZE

	// Allocate the single topmost stack page eagerly so argv/environment
	// strings can be copied out without re-entering the fault handler
	// before exec commits (spec.md §4.6 step 4).
	topVA := fresh.StackTop - limits.PGSIZE
	pa, ok := fresh.frames.TryAlloc()
	if !ok {
		return fmt.Errorf("exec: no frame available for initial stack page")
	}
	fresh.pt.Map(mem.VA(topVA), pa, mem.PTE_U|mem.PTE_W)
	fresh.pages = append(fresh.pages, PageInfo{
		VA: mem.VA(topVA), State: Resident, SwapSlot: -1, Seq: 0,
	})
	fresh.nextFifoSeq = 1
	copyArgvToStack(fresh.frames.Frame(pa), argv)

	// Commit: only now do we touch the caller's record.
	fresh.execInode = inode
	*target = *fresh
	if lg != nil {
		lg.Trace(target.Pid, "INIT-LAZYMAP text=[%#x,%#x) data=[%#x,%#x) heap_start=%#x stack_top=%#x",
			target.TextStart, target.TextEnd, target.DataStart, target.DataEnd,
			target.HeapStart, target.StackTop)
	}
	return nil
}

// copyArgvToStack writes a NUL-separated argv blob at the start of the
// eagerly mapped top stack page. Real argument-vector/stack-pointer
// layout (argc/argv array, alignment) is an ABI detail this educational
// simulator does not model beyond making the bytes available; user
// programs in this repo read argv through the CLI harness instead.
func copyArgvToStack(frame *mem.Page, argv []string) {
	off := 0
	for _, a := range argv {
		if off+len(a)+1 > len(frame) {
			break
		}
		copy(frame[off:], a)
		off += len(a) + 1
	}
}
