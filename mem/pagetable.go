package mem

import "sync"

// PTE permission bits, in the classic mem.PTE_P/PTE_W/PTE_U layout.
// PTE_PS/PTE_PCD/PTE_G (large pages, cache control, global pages) have no
// meaning for a software-simulated table and are dropped.
type Perm uint8

const (
	PTE_P Perm = 1 << 0 // present
	PTE_W Perm = 1 << 1 // writable
	PTE_U Perm = 1 << 2 // user accessible
	PTE_X Perm = 1 << 3 // executable
)

// VA is a page-aligned virtual address.
type VA uintptr

// PTE is one page-table entry: a simulated physical frame plus its
// permission bits. A page table never holds an entry for an address that
// isn't mapped — residency is expressed by the entry's absence, not a
// separate flag.
type PTE struct {
	Frame Pa_t
	Perm  Perm
}

// Present reports whether the entry denotes a mapped page.
func (p PTE) Present() bool { return p.Perm&PTE_P != 0 }

// PageTable is the software stand-in for a hardware radix-tree page table:
// a map from virtual page to PTE. Callers are expected to hold the owning
// process's lock around any sequence of operations that must be atomic
// with respect to a concurrent fault (spec.md §5); the table's own mutex
// only protects the map itself from concurrent Go-level corruption.
type PageTable struct {
	mu      sync.Mutex
	entries map[VA]PTE
}

// NewPageTable returns an empty page table.
func NewPageTable() *PageTable {
	return &PageTable{entries: make(map[VA]PTE)}
}

// Map installs pa at va with the given permissions, replacing any existing
// entry. It corresponds to the collaborator interface's
// "map(pt, va, pa, perm) -> ok|err"; this software table never fails.
func (pt *PageTable) Map(va VA, pa Pa_t, perm Perm) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.entries[va] = PTE{Frame: pa, Perm: perm | PTE_P}
}

// Unmap removes the mapping at va, if any, and reports whether one existed.
func (pt *PageTable) Unmap(va VA) (PTE, bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	e, ok := pt.entries[va]
	if ok {
		delete(pt.entries, va)
	}
	return e, ok
}

// Walk returns the PTE installed at va, if any.
func (pt *PageTable) Walk(va VA) (PTE, bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	e, ok := pt.entries[va]
	return e, ok
}

// IsMapped reports whether va currently has a present entry.
func (pt *PageTable) IsMapped(va VA) bool {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	e, ok := pt.entries[va]
	return ok && e.Present()
}

// Upgrade grants additional permission bits (e.g. PTE_W) to an existing
// present entry, used by the dirty-tracking upgrade path in spec.md §4.5
// step 2. It panics if va is not mapped, since callers only call this after
// confirming presence.
func (pt *PageTable) Upgrade(va VA, add Perm) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	e, ok := pt.entries[va]
	if !ok {
		panic("upgrade of unmapped pte")
	}
	e.Perm |= add
	pt.entries[va] = e
}
