// Package mem implements the frame allocator (C5 step 4's collaborator)
// and the software page-table abstraction the fault handler installs
// mappings into. This repo is a hosted educational simulator rather than a
// bare-metal kernel, so physical memory is simulated as a fixed pool of
// byte-slice frames instead of real machine pages reached through
// unsafe.Pointer and a hardware page-table walker.
package mem

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// PGSIZE is the size of a single frame/page in bytes.
const PGSIZE = 4096

// Pa_t is a simulated physical address: the index of a frame within the
// allocator's backing pool. It is an opaque handle, not a real pointer, per
// spec.md §9's "pointer graphs... prefer integer-indexed arenas."
type Pa_t int

// NoFrame is the sentinel meaning "no physical frame." It is -1, not the
// zero value: frame 0 is a valid frame.
const NoFrame Pa_t = -1

// Page is the fixed-size byte contents of one simulated frame.
type Page [PGSIZE]byte

// FrameAllocator hands out and reclaims simulated physical frames. It has
// no refcounting (no COW, no shared mappings — spec.md Non-goals), so a
// frame is either free or owned by exactly one PTE at a time.
type FrameAllocator struct {
	mu    sync.Mutex
	pages []Page
	free  []Pa_t // stack of free frame indices
	sem   *semaphore.Weighted

	// oom is notified (non-blocking) whenever TryAlloc fails; nothing
	// currently listens by default, but callers that want to observe
	// exhaustion events (e.g. a kernel monitor) can receive from OOM().
	oom chan struct{}
}

// NewFrameAllocator creates a pool of n simulated physical frames, all
// initially free.
func NewFrameAllocator(n int) *FrameAllocator {
	fa := &FrameAllocator{
		pages: make([]Page, n),
		free:  make([]Pa_t, n),
		sem:   semaphore.NewWeighted(int64(n)),
		oom:   make(chan struct{}, 1),
	}
	for i := 0; i < n; i++ {
		fa.free[i] = Pa_t(n - 1 - i)
	}
	return fa
}

// OOM returns the channel a frame-exhaustion notification is posted to.
// Sends are non-blocking and best-effort: a full channel simply drops the
// notification, since it exists for observability, not correctness.
func (fa *FrameAllocator) OOM() <-chan struct{} {
	return fa.oom
}

// TryAlloc returns a fresh, zeroed frame, or ok=false if none are free.
// This is the "alloc_frame() -> pa | null" collaborator interface from
// spec.md §6: it never blocks, so C5 can fall back to eviction instead of
// stalling the faulting thread.
func (fa *FrameAllocator) TryAlloc() (Pa_t, bool) {
	if !fa.sem.TryAcquire(1) {
		select {
		case fa.oom <- struct{}{}:
		default:
		}
		return NoFrame, false
	}
	fa.mu.Lock()
	n := len(fa.free)
	pa := fa.free[n-1]
	fa.free = fa.free[:n-1]
	fa.mu.Unlock()
	fa.pages[pa] = Page{}
	return pa, true
}

// Free releases pa back to the pool. It is a programming error to free an
// address twice or one never allocated; callers in this repo never do so
// because PageInfo/PTE state tracks ownership exactly.
func (fa *FrameAllocator) Free(pa Pa_t) {
	fa.mu.Lock()
	fa.free = append(fa.free, pa)
	fa.mu.Unlock()
	fa.sem.Release(1)
}

// Frame returns the backing byte slice for pa. Callers hold the owning
// process's lock (spec.md §5, "process lock protects... the page
// table").
func (fa *FrameAllocator) Frame(pa Pa_t) *Page {
	return &fa.pages[pa]
}

