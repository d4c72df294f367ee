// Package ksys implements the system calls spec.md §6 adds on top of the
// paging/scheduling core: sbrk's eager/lazy split, read's contribution to
// the global read-byte counter, getreadcount, and memstat.
package ksys

import (
	"eduos/defs"
	"eduos/fsiface"
	"eduos/limits"
	"eduos/proc"
	"eduos/vm"
)

// SbrkMode selects sbrk's growth discipline.
type SbrkMode int

const (
	// Eager walks the newly added range and faults every page in
	// immediately, the classical sbrk behaviour.
	Eager SbrkMode = iota
	// Lazy only adjusts sz; C5 backs the new pages on first reference.
	Lazy
)

// Sbrk grows or shrinks p's address space by n bytes. A negative n always
// shrinks eagerly, freeing any frames/swap slots in the released range,
// regardless of mode.
func Sbrk(p *proc.Proc_t, n int, mode SbrkMode) (int, defs.Err_t) {
	p.Mem.Lock()
	defer p.Mem.Unlock()

	old := p.Mem.Sz
	if n < 0 {
		return shrink(p, old, n)
	}
	newSz := old + n
	p.Mem.Sz = newSz
	if p.Mem.HeapStart == 0 {
		p.Mem.HeapStart = old
	}
	if p.Mem.StackBottom != 0 && newSz > p.Mem.StackBottom {
		// Heap has grown into what used to be guard space; this is a
		// configuration error the caller (exec) should have prevented
		// by sizing the stack region first.
		return old, -defs.ENOMEM
	}
	if mode == Eager {
		for va := old; va < newSz; va += limits.PGSIZE {
			if rc := p.Mem.Fault(va, vm.AccessWrite, p.Kill.Killed, nil); rc != 0 {
				p.Mem.Sz = old
				return old, rc
			}
		}
	}
	return newSz, 0
}

func shrink(p *proc.Proc_t, old, n int) (int, defs.Err_t) {
	newSz := old + n
	if newSz < 0 {
		return old, -defs.EINVAL
	}
	p.Mem.ReleaseRange(newSz)
	p.Mem.Sz = newSz
	return newSz, 0
}

// Read performs a read on behalf of a process from an fsiface.Inode and
// adds the successful byte count to the global counter getreadcount()
// reports, per spec.md §6 ("incremented by the cumulative byte count of
// every successful read() ... Zero-byte returns and errors do not
// increment").
func Read(inode fsiface.Inode, buf []byte, off int64) (int, error) {
	inode.Lock()
	defer inode.Unlock()
	inode.BeginOp()
	defer inode.EndOp()

	n, err := inode.ReadAt(buf, off)
	if err == nil {
		limits.TotalReadBytes.Add(n)
	}
	return n, err
}

// GetReadCount implements getreadcount(): the current value of the
// wraparound counter.
func GetReadCount() uint32 {
	return limits.TotalReadBytes.Get()
}

// Memstat implements memstat(buf): writes a Snapshot of p's memory state
// into buf via the standard copy-to-user path (vm.Snapshot.CopyOut),
// which may itself fault — legal per spec.md §4.7.
func Memstat(p *proc.Proc_t, buf []byte) defs.Err_t {
	p.Mem.Lock()
	snap := p.Mem.Stat()
	p.Mem.Unlock()

	if _, err := snap.CopyOut(buf); err != nil {
		return -defs.EFAULT
	}
	return 0
}
