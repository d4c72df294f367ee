package swap

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduos/limits"
)

func TestSwapFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sf, err := Open(dir, 42)
	require.NoError(t, err)
	defer sf.Close()

	want := bytes.Repeat([]byte{0xab}, limits.PGSIZE)
	require.NoError(t, sf.WriteSlot(7, want))

	got := make([]byte, limits.PGSIZE)
	require.NoError(t, sf.ReadSlot(7, got))
	assert.Equal(t, want, got)
}

func TestSwapFileDistinctSlotsDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	sf, err := Open(dir, 1)
	require.NoError(t, err)
	defer sf.Close()

	a := bytes.Repeat([]byte{0x11}, limits.PGSIZE)
	b := bytes.Repeat([]byte{0x22}, limits.PGSIZE)
	require.NoError(t, sf.WriteSlot(0, a))
	require.NoError(t, sf.WriteSlot(1, b))

	got := make([]byte, limits.PGSIZE)
	require.NoError(t, sf.ReadSlot(0, got))
	assert.Equal(t, a, got)
	require.NoError(t, sf.ReadSlot(1, got))
	assert.Equal(t, b, got)
}

func TestSwapFileWrongSizedBufferPanics(t *testing.T) {
	dir := t.TempDir()
	sf, err := Open(dir, 2)
	require.NoError(t, err)
	defer sf.Close()

	assert.Panics(t, func() {
		sf.WriteSlot(0, make([]byte, limits.PGSIZE-1))
	})
	assert.Panics(t, func() {
		sf.ReadSlot(0, make([]byte, limits.PGSIZE+1))
	})
}

func TestSwapFileCloseUnlinks(t *testing.T) {
	dir := t.TempDir()
	sf, err := Open(dir, 9)
	require.NoError(t, err)
	path := sf.path
	require.NoError(t, sf.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "Close must unlink the swap file (SWAPCLEANUP)")
}
