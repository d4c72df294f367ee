// Package limits holds the system-wide tunables a built kernel is
// configured with: per-process address-space bounds, swap capacity, and
// fair-scheduler timing constants.
package limits

// PGSHIFT is the base-2 exponent for the page size.
const PGSHIFT = 12

// PGSIZE is the size of a single page in bytes.
const PGSIZE = 1 << PGSHIFT

// MAX_PROC_PAGES bounds the number of PageInfo records a single process may
// hold (text + data + heap + stack + any future growth).
const MAX_PROC_PAGES = 8192

// MAX_SWAP_SLOTS is the per-process swap-file capacity in PGSIZE slots.
// 1024 slots * 4096 bytes = 4 MiB, a hard ceiling per spec.md §9.4: hitting
// it is a correctness boundary (KILL swap-exhausted), never a soft policy.
const MAX_SWAP_SLOTS = 1024

// MAX_PAGES_INFO bounds how many PageInfo entries memstat copies into a
// single snapshot buffer.
const MAX_PAGES_INFO = 256

// NICE_0_WEIGHT is the vruntime scaling weight of a nice-0 process.
const NICE_0_WEIGHT = 1024

// TARGET_LATENCY is the fair scheduler's target scheduling period in ticks.
const TARGET_LATENCY = 48

// MIN_SLICE is the minimum time slice, in ticks, the fair scheduler ever
// grants a process regardless of how many processes are runnable.
const MIN_SLICE = 3

// NFRAMES is the number of simulated physical frames available to user
// address spaces. Deliberately small so fault-handling tests can force
// eviction without needing large workloads.
const NFRAMES = 512

// USERSTACK is the number of pages in the user stack region
// [StackBottom, StackTop). The topmost of them is mapped eagerly by exec
// at commit time; the rest are demand-paged.
const USERSTACK = 8
