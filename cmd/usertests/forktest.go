package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eduos/mem"
	"eduos/vm"
)

func newForktestCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "forktest",
		Short: "exercises fork's independent-copy memory semantics and vruntime inheritance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status := runForktest(verbose); status != 0 {
				return fmt.Errorf("forktest failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log every scrape-format trace line")
	return cmd
}

func runForktest(verbose bool) int {
	table, lg, cleanup := newHarness(verbose, 16)
	defer cleanup()

	parent, err := table.NewProc(0, 0)
	if err != nil {
		return report("forktest", false, err.Error())
	}
	layoutProc(parent, 1)
	parent.Vruntime = 4242
	heapBase := parent.Mem.HeapStart

	parent.Mem.Lock()
	if rc := parent.Mem.Fault(heapBase, vm.AccessWrite, parent.Kill.Killed, lg); rc != 0 {
		parent.Mem.Unlock()
		return report("forktest", false, "parent fault failed")
	}
	pte, _ := parent.Mem.PageTable().Walk(mem.VA(heapBase))
	table.Frames.Frame(pte.Frame)[0] = 0x7
	parent.Mem.Unlock()

	// Fork takes parent.Mem's lock itself; it must not already be held.
	child, err := table.Fork(parent, 1)
	if err != nil {
		return report("forktest", false, err.Error())
	}

	if child.Vruntime != parent.Vruntime {
		return report("forktest", false, "child did not inherit parent's vruntime")
	}

	child.Mem.Lock()
	cpte, ok := child.Mem.PageTable().Walk(mem.VA(heapBase))
	if !ok {
		child.Mem.Unlock()
		return report("forktest", false, "child did not receive a mapping for parent's resident page")
	}
	gotByte := table.Frames.Frame(cpte.Frame)[0]
	sameFrame := cpte.Frame == pte.Frame
	child.Mem.Unlock()

	if sameFrame {
		return report("forktest", false, "child shares parent's physical frame (COW fork is a non-goal)")
	}
	if gotByte != 0x7 {
		return report("forktest", false, "child's copy did not carry over parent's byte")
	}

	// Mutating the child must not affect the parent's copy.
	child.Mem.Lock()
	table.Frames.Frame(cpte.Frame)[0] = 0x9
	child.Mem.Unlock()
	parent.Mem.Lock()
	stillParent := table.Frames.Frame(pte.Frame)[0]
	parent.Mem.Unlock()
	if stillParent != 0x7 {
		return report("forktest", false, "writing through child's mapping corrupted parent's frame")
	}
	return report("forktest", true, "fork produced an independent memory copy with inherited vruntime")
}
