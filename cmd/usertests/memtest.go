package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eduos/defs"
	"eduos/limits"
	"eduos/mem"
	"eduos/vm"
)

func newMemtestCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "memtest",
		Short: "exercises FIFO eviction, dirty writeback, clean discard, and swap exhaustion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status := runMemtest(verbose); status != 0 {
				return fmt.Errorf("memtest failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log every scrape-format trace line")
	return cmd
}

func runMemtest(verbose bool) int {
	status := 0
	status |= testCleanDiscard(verbose)
	status |= testDirtyRoundTrip(verbose)
	status |= testSwapExhaustion(verbose)
	return status
}

// testCleanDiscard demand-loads text pages under a tight frame budget and
// expects the earliest-mapped page to be discarded (not swapped) when
// evicted, since it was never written (scenario 4).
func testCleanDiscard(verbose bool) int {
	table, lg, cleanup := newHarness(verbose, 4)
	defer cleanup()

	p, err := table.NewProc(0, 0)
	if err != nil {
		return report("memtest/clean-discard", false, err.Error())
	}
	layoutProc(p, 16)

	p.Mem.Lock()
	const firstVA = 0
	for i := 0; i < 8; i++ {
		va := i * limits.PGSIZE
		if rc := p.Mem.Fault(va, vm.AccessExec, p.Kill.Killed, lg); rc != 0 {
			p.Mem.Unlock()
			return report("memtest/clean-discard", false, fmt.Sprintf("fault va=%#x rc=%d", va, rc))
		}
	}
	pi := p.Mem.GetPageInfo(firstVA)
	p.Mem.Unlock()

	if pi.State != vm.Unmapped || pi.SwapSlot != -1 {
		return report("memtest/clean-discard", false, "victim page was not discarded")
	}
	return report("memtest/clean-discard", true, "clean text page discarded under pressure")
}

// testDirtyRoundTrip writes a distinctive byte into a heap page, forces
// it to be evicted (dirty -> swapped out), then faults it back in and
// checks the byte survived the round trip (scenario 3).
func testDirtyRoundTrip(verbose bool) int {
	table, lg, cleanup := newHarness(verbose, 4)
	defer cleanup()

	p, err := table.NewProc(0, 0)
	if err != nil {
		return report("memtest/dirty-roundtrip", false, err.Error())
	}
	layoutProc(p, 1)
	heapBase := p.Mem.HeapStart

	p.Mem.Lock()
	defer p.Mem.Unlock()

	va0 := heapBase
	if rc := p.Mem.Fault(va0, vm.AccessWrite, p.Kill.Killed, lg); rc != 0 {
		return report("memtest/dirty-roundtrip", false, "initial fault failed")
	}
	pte0, _ := p.Mem.PageTable().Walk(mem.VA(va0))
	table.Frames.Frame(pte0.Frame)[0] = 0x42

	for i := 1; i <= 6; i++ {
		va := heapBase + i*limits.PGSIZE
		if rc := p.Mem.Fault(va, vm.AccessWrite, p.Kill.Killed, lg); rc != 0 {
			return report("memtest/dirty-roundtrip", false, fmt.Sprintf("pressure fault va=%#x rc=%d", va, rc))
		}
	}

	pi0 := p.Mem.GetPageInfo(va0)
	if pi0.State != vm.Swapped {
		return report("memtest/dirty-roundtrip", false, "page0 was not swapped out under pressure")
	}

	if rc := p.Mem.Fault(va0, vm.AccessRead, p.Kill.Killed, lg); rc != 0 {
		return report("memtest/dirty-roundtrip", false, "swap-in fault failed")
	}
	pte0, _ = p.Mem.PageTable().Walk(mem.VA(va0))
	got := table.Frames.Frame(pte0.Frame)[0]

	if got != 0x42 {
		return report("memtest/dirty-roundtrip", false, fmt.Sprintf("byte mismatch after swap round-trip: got %#x", got))
	}
	return report("memtest/dirty-roundtrip", true, "byte survived swap-out/swap-in round trip")
}

// testSwapExhaustion dirties heap pages in sequence under a 4-frame
// budget: once every frame is in use, each further page costs one swap
// slot, so the fault for the page after nframes+MAX_SWAP_SLOTS pages
// must be killed for swap exhaustion (scenario 5).
func testSwapExhaustion(verbose bool) int {
	const nframes = 4
	table, lg, cleanup := newHarness(verbose, nframes)
	defer cleanup()

	p, err := table.NewProc(0, 0)
	if err != nil {
		return report("memtest/swap-exhaustion", false, err.Error())
	}
	layoutProc(p, 1)
	heapBase := p.Mem.HeapStart
	// Widen the heap so every page faulted below is a legal heap address.
	npages := nframes + limits.MAX_SWAP_SLOTS + 1
	p.Mem.StackBottom = heapBase + npages*limits.PGSIZE
	p.Mem.StackTop = p.Mem.StackBottom + limits.USERSTACK*limits.PGSIZE

	p.Mem.Lock()
	defer p.Mem.Unlock()
	var lastRC defs.Err_t
	for i := 0; i < npages; i++ {
		va := heapBase + i*limits.PGSIZE
		rc := p.Mem.Fault(va, vm.AccessWrite, p.Kill.Killed, lg)
		lastRC = rc
		if rc != 0 {
			break
		}
	}
	if lastRC != -defs.ENOSWAP {
		return report("memtest/swap-exhaustion", false, fmt.Sprintf("expected ENOSWAP after exhausting swap capacity, got rc=%d", lastRC))
	}
	return report("memtest/swap-exhaustion", true, "process killed once swap slots were exhausted")
}
