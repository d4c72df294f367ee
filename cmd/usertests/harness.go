package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"eduos/klog"
	"eduos/limits"
	"eduos/proc"
)

// newHarness builds a process table over a fresh frame pool and a
// scratch directory for swap files, returning a teardown func.
func newHarness(verbose bool, nframes int) (*proc.Table, *klog.Logger, func()) {
	dir, err := os.MkdirTemp("", "usertests-")
	if err != nil {
		panic(err)
	}
	var out io.Writer = io.Discard
	level := logrus.WarnLevel
	if verbose {
		out = os.Stdout
		level = logrus.InfoLevel
	}
	lg := klog.New(out, level)
	t := proc.NewTable(nframes, dir, lg)
	return t, lg, func() { os.RemoveAll(dir) }
}

// layoutProc configures p's address-space layout as if exec had already
// run: textPages pages of demand-loadable text, followed by a heap
// region and a guarded user stack, without actually invoking
// vm.LoadExec — the test harness only needs C4/C5's post-exec contract,
// not ELF parsing.
func layoutProc(p *proc.Proc_t, textPages int) {
	textEnd := textPages * limits.PGSIZE
	p.Mem.TextStart = 0
	p.Mem.TextEnd = textEnd
	p.Mem.DataStart = textEnd
	p.Mem.DataEnd = textEnd
	p.Mem.HeapStart = textEnd
	p.Mem.Sz = textEnd
	p.Mem.StackTop = textEnd + (limits.USERSTACK+64)*limits.PGSIZE
	p.Mem.StackBottom = p.Mem.StackTop - limits.USERSTACK*limits.PGSIZE
}
