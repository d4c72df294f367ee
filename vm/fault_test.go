package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduos/defs"
	"eduos/limits"
	"eduos/mem"
)

func TestFaultHeapPageBecomesResident(t *testing.T) {
	pm := newTestProcMem(t, 4)

	rc := pm.Fault(0, AccessWrite, nil, nil)
	require.Equal(t, defs.Err_t(0), rc)

	pi, ok := pm.lookupExisting(0)
	require.True(t, ok)
	assert.Equal(t, Resident, pi.State)
	assert.True(t, pi.Dirty, "a write fault installs the page already dirty")

	pte, ok := pm.pt.Walk(mem.VA(0))
	require.True(t, ok)
	assert.True(t, pte.Perm&mem.PTE_W != 0)
}

func TestFaultReadThenWriteUpgradesDirtyBit(t *testing.T) {
	pm := newTestProcMem(t, 4)

	require.Equal(t, defs.Err_t(0), pm.Fault(0, AccessRead, nil, nil))
	pi, ok := pm.lookupExisting(0)
	require.True(t, ok)
	assert.False(t, pi.Dirty, "a read fault must not mark the page dirty")

	pte, ok := pm.pt.Walk(mem.VA(0))
	require.True(t, ok)
	assert.True(t, pte.Perm&mem.PTE_W == 0, "a read-fault page must be installed read-only")

	require.Equal(t, defs.Err_t(0), pm.Fault(0, AccessWrite, nil, nil))
	assert.True(t, pi.Dirty, "a subsequent write fault must upgrade the existing record to dirty")

	pte, ok = pm.pt.Walk(mem.VA(0))
	require.True(t, ok)
	assert.True(t, pte.Perm&mem.PTE_W != 0, "the upgrade must grant the write bit in the page table too")
}

func TestFaultSpuriousRefaultIsANoop(t *testing.T) {
	pm := newTestProcMem(t, 4)
	require.Equal(t, defs.Err_t(0), pm.Fault(0, AccessWrite, nil, nil))

	seqBefore := pm.nextFifoSeq
	rc := pm.Fault(0, AccessWrite, nil, nil)
	assert.Equal(t, defs.Err_t(0), rc)
	assert.Equal(t, seqBefore, pm.nextFifoSeq, "a second fault on an already-sufficient mapping must not re-install or bump the FIFO sequence")
}

func TestFaultInvalidAddressIsKilled(t *testing.T) {
	pm := newTestProcMem(t, 4)
	rc := pm.Fault(10*limits.PGSIZE, AccessRead, nil, nil)
	assert.Equal(t, -defs.EFAULT, rc)
}

func TestFaultFrameExhaustionEvictsThenSucceeds(t *testing.T) {
	pm := newTestProcMem(t, 1)

	require.Equal(t, defs.Err_t(0), pm.Fault(0, AccessWrite, nil, nil))
	pi0, _ := pm.lookupExisting(0)
	assert.Equal(t, Resident, pi0.State)

	rc := pm.Fault(limits.PGSIZE, AccessWrite, nil, nil)
	require.Equal(t, defs.Err_t(0), rc, "a single free frame plus one eviction must be enough to satisfy a second fault")

	assert.Equal(t, Swapped, pi0.State, "the FIFO victim must have been swapped out to make room")
	pi1, ok := pm.lookupExisting(limits.PGSIZE)
	require.True(t, ok)
	assert.Equal(t, Resident, pi1.State)
}

func TestFaultKillFlagAbortsAfterFrameAcquired(t *testing.T) {
	pm := newTestProcMem(t, 1)
	killed := func() bool { return true }

	rc := pm.Fault(0, AccessWrite, killed, nil)
	assert.Equal(t, -defs.EKILLED, rc)
	pi, ok := pm.lookupExisting(0)
	require.True(t, ok)
	assert.Equal(t, Unmapped, pi.State, "a killed process must not retain the frame it almost installed")
}

func TestFaultInTheGapBetweenTextEndAndDataStartIsExecCauseNotInvalid(t *testing.T) {
	raw := buildMiniELF(t)
	r := bytes.NewReader(raw)
	pm := newExecTestProcMem(t)
	require.NoError(t, LoadExec(pm, r, r, nil, nil))

	// buildMiniELF leaves a gap between TextEnd (2 pages) and DataStart (4
	// pages): spec.md §4.5 step 3 classifies the whole [text_start,
	// data_end) interval as cause exec, so a fault here must be serviced
	// as a zero-fill exec page, not killed as invalid-access.
	gapVA := pm.TextEnd
	require.Less(t, pm.TextEnd, pm.DataStart, "fixture must actually have a gap")

	rc := pm.Fault(gapVA, AccessRead, nil, nil)
	require.Equal(t, defs.Err_t(0), rc)

	pi, ok := pm.lookupExisting(gapVA)
	require.True(t, ok)
	assert.Equal(t, Resident, pi.State)
}

func TestFaultSwapExhaustionIsDistinctFromMemFull(t *testing.T) {
	pm := newTestProcMem(t, 1)
	require.Equal(t, defs.Err_t(0), pm.Fault(0, AccessWrite, nil, nil))

	// Exhaust the swap bitmap so the only resident page cannot be evicted
	// by swapping it out; it is also dirty (a write fault installs it
	// dirty), so the clean-text-discard path does not apply either.
	for pm.swapBitmap.Alloc() != -1 {
	}

	rc := pm.Fault(limits.PGSIZE, AccessWrite, nil, nil)
	assert.Equal(t, -defs.ENOSWAP, rc, "swap exhaustion during the eviction retry must report ENOSWAP, not ENOMEM")
}
