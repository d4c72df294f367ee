package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"eduos/limits"
	"eduos/mem"
	"eduos/swap"
)

// newTestProcMem builds a ProcMem with a small frame pool and a real
// on-disk swap file, laid out with a tiny heap/stack region:
//
//	heap:  [0x0,        0x1000)
//	guard: [0x1000-guardTolerance, 0x1000)   (tolerated stack growth)
//	stack: [0x1000,     0x3000)
func newTestProcMem(t *testing.T, nframes int) *ProcMem {
	t.Helper()
	sf, err := swap.Open(t.TempDir(), 1)
	require.NoError(t, err)
	t.Cleanup(func() { sf.Close() })

	pm := NewProcMem(1, sf, mem.NewFrameAllocator(nframes))
	pm.HeapStart = 0
	pm.StackBottom = limits.PGSIZE
	pm.StackTop = 3 * limits.PGSIZE
	return pm
}
