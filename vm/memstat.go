package vm

import (
	"encoding/binary"

	"eduos/limits"
	"eduos/mem"
)

// PageSnapshot is one entry in a Snapshot's Pages slice.
type PageSnapshot struct {
	VA       mem.VA
	State    State
	Dirty    bool
	SwapSlot int
}

// Snapshot is the read-only report C7 produces: spec.md §4.7's
// {pid, num_pages_total, num_resident, num_swapped, next_fifo_seq, pages}.
type Snapshot struct {
	Pid           int
	NumPagesTotal int
	NumResident   int
	NumSwapped    int
	NextFifoSeq   uint64
	Pages         []PageSnapshot
}

// Stat implements C7: counts are recomputed from the metadata table on
// every call, never cached, per spec.md §4.7 ("not authoritative state").
// Caller must hold pm's lock.
func (pm *ProcMem) Stat() Snapshot {
	s := Snapshot{
		Pid:           pm.Pid,
		NumPagesTotal: (pm.Sz + limits.PGSIZE - 1) / limits.PGSIZE,
		NextFifoSeq:   pm.nextFifoSeq,
	}
	pagesCap := len(pm.pages)
	if pagesCap > limits.MAX_PAGES_INFO {
		pagesCap = limits.MAX_PAGES_INFO
	}
	s.Pages = make([]PageSnapshot, pagesCap)
	for i := range pm.pages {
		p := &pm.pages[i]
		switch p.State {
		case Resident:
			s.NumResident++
		case Swapped:
			s.NumSwapped++
		}
		if i < pagesCap {
			s.Pages[i] = PageSnapshot{
				VA:       p.VA,
				State:    p.State,
				Dirty:    p.Dirty,
				SwapSlot: p.SwapSlot,
			}
		}
	}
	return s
}

// CopyOut serializes a Snapshot into buf using a fixed little-endian
// layout (header, then one 24-byte record per page), the encoding/binary
// idiom this repo uses throughout instead of unsafe.Pointer casts. This
// call may itself fault if buf backs unmapped
// user memory — that is legal per spec.md §4.7, since the caller
// supplies a real destination the fault handler can resolve like any
// other write.
func (s Snapshot) CopyOut(buf []byte) (int, error) {
	hdr := make([]byte, 5*8)
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(s.Pid))
	binary.LittleEndian.PutUint64(hdr[8:16], uint64(s.NumPagesTotal))
	binary.LittleEndian.PutUint64(hdr[16:24], uint64(s.NumResident))
	binary.LittleEndian.PutUint64(hdr[24:32], uint64(s.NumSwapped))
	binary.LittleEndian.PutUint64(hdr[32:40], s.NextFifoSeq)

	n := copy(buf, hdr)
	off := n
	for _, p := range s.Pages {
		if off+24 > len(buf) {
			break
		}
		binary.LittleEndian.PutUint64(buf[off:off+8], uint64(p.VA))
		buf[off+8] = byte(p.State)
		if p.Dirty {
			buf[off+9] = 1
		}
		binary.LittleEndian.PutUint64(buf[off+16:off+24], uint64(int64(p.SwapSlot)))
		off += 24
		n = off
	}
	return n, nil
}
