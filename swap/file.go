package swap

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"eduos/limits"
)

// File is a process's backing swap file: fixed PGSIZE slots addressed by
// index, named /pgswp<pid> per spec.md §6. It is unlinked and forgotten at
// process exit.
type File struct {
	f    *os.File
	path string
}

// Open creates (or truncates) the swap file for pid under dir. dir stands
// in for the root filesystem's "/" — this repo is a hosted simulator, so
// the swap file is a real OS file under a directory the caller configures
// rather than a raw block device.
func Open(dir string, pid int) (*File, error) {
	path := filepath.Join(dir, fmt.Sprintf("pgswp%d", pid))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(limits.MAX_SWAP_SLOTS * limits.PGSIZE)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return &File{f: f, path: path}, nil
}

// WriteSlot durably writes PGSIZE bytes from buf to slot*PGSIZE. It uses a
// positioned pwrite via golang.org/x/sys/unix so concurrent swap-out/
// swap-in of different slots on the same file never race on a shared file
// offset (spec.md §5: the process lock must not be held across disk I/O).
func (sf *File) WriteSlot(slot int, buf []byte) error {
	if len(buf) != limits.PGSIZE {
		panic("swap write: bad buffer size")
	}
	off := int64(slot) * limits.PGSIZE
	n, err := unix.Pwrite(int(sf.f.Fd()), buf, off)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("swap: short write (%d of %d) at slot %d", n, len(buf), slot)
	}
	return unix.Fdatasync(int(sf.f.Fd()))
}

// ReadSlot reads PGSIZE bytes from slot*PGSIZE into buf.
func (sf *File) ReadSlot(slot int, buf []byte) error {
	if len(buf) != limits.PGSIZE {
		panic("swap read: bad buffer size")
	}
	off := int64(slot) * limits.PGSIZE
	n, err := unix.Pread(int(sf.f.Fd()), buf, off)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("swap: short read (%d of %d) at slot %d", n, len(buf), slot)
	}
	return nil
}

// Close closes and unlinks the swap file, forgetting all slots, matching
// the SWAPCLEANUP contract at process exit (spec.md §6).
func (sf *File) Close() error {
	err := sf.f.Close()
	if rerr := os.Remove(sf.path); err == nil {
		err = rerr
	}
	return err
}
