package vm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduos/defs"
	"eduos/limits"
	"eduos/mem"
	"eduos/swap"
)

const (
	elfPTLoad = 1
	elfPFX    = 1
	elfPFW    = 2
	elfPFR    = 4
)

// buildMiniELF hand-assembles a minimal little-endian ELF64 executable
// with one executable text segment and one writable data segment, each
// with a recognizable file-backed prefix and a zero-fill tail — just
// enough for debug/elf to parse and for LoadExec to classify.
func buildMiniELF(t *testing.T) []byte {
	t.Helper()

	const (
		ehsize = 64
		phsize = 56
	)
	textVaddr := uint64(0)
	textMemsz := uint64(2 * limits.PGSIZE)
	textFilesz := uint64(16)
	textOff := uint64(ehsize + 2*phsize)

	dataVaddr := uint64(limits.PGSIZE * 4)
	dataMemsz := uint64(limits.PGSIZE)
	dataFilesz := uint64(8)
	dataOff := textOff + textFilesz

	total := dataOff + dataFilesz
	buf := make([]byte, total)

	// e_ident
	copy(buf[0:4], []byte{0x7f, 'E', 'L', 'F'})
	buf[4] = 2 // ELFCLASS64
	buf[5] = 1 // little-endian
	buf[6] = 1 // EI_VERSION

	le := binary.LittleEndian
	le.PutUint16(buf[16:18], 2)      // e_type = ET_EXEC
	le.PutUint16(buf[18:20], 0x3e)   // e_machine = EM_X86_64
	le.PutUint32(buf[20:24], 1)      // e_version
	le.PutUint64(buf[24:32], 0x1000) // e_entry
	le.PutUint64(buf[32:40], ehsize) // e_phoff
	le.PutUint16(buf[52:54], ehsize) // e_ehsize
	le.PutUint16(buf[54:56], phsize) // e_phentsize
	le.PutUint16(buf[56:58], 2)      // e_phnum

	writePhdr := func(i int, ptype, flags uint32, off, vaddr, filesz, memsz uint64) {
		b := buf[ehsize+i*phsize:]
		le.PutUint32(b[0:4], ptype)
		le.PutUint32(b[4:8], flags)
		le.PutUint64(b[8:16], off)
		le.PutUint64(b[16:24], vaddr)
		le.PutUint64(b[24:32], vaddr) // p_paddr, unused
		le.PutUint64(b[32:40], filesz)
		le.PutUint64(b[40:48], memsz)
		le.PutUint64(b[48:56], limits.PGSIZE) // p_align
	}
	writePhdr(0, elfPTLoad, elfPFX|elfPFR, textOff, textVaddr, textFilesz, textMemsz)
	writePhdr(1, elfPTLoad, elfPFW|elfPFR, dataOff, dataVaddr, dataFilesz, dataMemsz)

	copy(buf[textOff:], []byte("TEXTBYTES-12345\x00")[:textFilesz])
	copy(buf[dataOff:], []byte("DATABYTE")[:dataFilesz])

	return buf
}

func newExecTestProcMem(t *testing.T) *ProcMem {
	t.Helper()
	sf, err := swap.Open(t.TempDir(), 7)
	require.NoError(t, err)
	t.Cleanup(func() { sf.Close() })
	return NewProcMem(7, sf, mem.NewFrameAllocator(16))
}

func TestLoadExecComputesBoundingBoxesAndLazyMaps(t *testing.T) {
	raw := buildMiniELF(t)
	r := bytes.NewReader(raw)
	pm := newExecTestProcMem(t)

	require.NoError(t, LoadExec(pm, r, r, []string{"prog"}, nil))

	assert.Equal(t, 0, pm.TextStart)
	assert.Equal(t, 2*limits.PGSIZE, pm.TextEnd)
	assert.Equal(t, 4*limits.PGSIZE, pm.DataStart)
	assert.Equal(t, 5*limits.PGSIZE, pm.DataEnd)
	assert.Equal(t, 5*limits.PGSIZE, pm.HeapStart)

	// No frame was allocated for any text/data page: LoadExec only
	// reserves the single topmost stack page.
	pi, ok := pm.lookupExisting(0)
	require.True(t, ok)
	assert.Equal(t, Unmapped, pi.State)
	assert.False(t, pm.pt.IsMapped(mem.VA(0)))

	topVA := pm.StackTop - limits.PGSIZE
	assert.True(t, pm.pt.IsMapped(mem.VA(topVA)), "the single topmost stack page must be eagerly mapped")
}

func TestLoadExecFaultInLoadsTextFromFile(t *testing.T) {
	raw := buildMiniELF(t)
	r := bytes.NewReader(raw)
	pm := newExecTestProcMem(t)
	require.NoError(t, LoadExec(pm, r, r, nil, nil))

	rc := pm.Fault(0, AccessRead, nil, nil)
	require.Equal(t, defs.Err_t(0), rc)

	frame := pm.frames.Frame(mustWalk(t, pm, 0).Frame)
	assert.Equal(t, byte('T'), frame[0])
	assert.Equal(t, byte(0), frame[16], "bytes beyond FileLen within the page must be zero-fill")
}

func TestLoadExecFaultInDataFromFile(t *testing.T) {
	raw := buildMiniELF(t)
	r := bytes.NewReader(raw)
	pm := newExecTestProcMem(t)
	require.NoError(t, LoadExec(pm, r, r, nil, nil))

	dataVA := 4 * limits.PGSIZE
	rc := pm.Fault(dataVA, AccessWrite, nil, nil)
	require.Equal(t, defs.Err_t(0), rc)

	frame := pm.frames.Frame(mustWalk(t, pm, dataVA).Frame)
	assert.Equal(t, byte('D'), frame[0])
}

func TestLoadExecRejectsUnalignedVaddr(t *testing.T) {
	raw := buildMiniELF(t)
	// Corrupt the data segment's p_vaddr to something unaligned.
	binary.LittleEndian.PutUint64(raw[64+56+16:], 17)
	r := bytes.NewReader(raw)
	pm := newExecTestProcMem(t)

	err := LoadExec(pm, r, r, nil, nil)
	assert.Error(t, err)
}

func TestLoadExecLeavesTargetUntouchedOnError(t *testing.T) {
	pm := newExecTestProcMem(t)
	pm.TextStart, pm.TextEnd = 1, 2
	pm.Sz = 99

	err := LoadExec(pm, bytes.NewReader([]byte("not an elf file")), nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, pm.TextStart, "a failed exec must preserve the old image")
	assert.Equal(t, 99, pm.Sz)
}

func mustWalk(t *testing.T, pm *ProcMem, va int) mem.PTE {
	t.Helper()
	pte, ok := pm.pt.Walk(mem.VA(va))
	require.True(t, ok)
	return pte
}
