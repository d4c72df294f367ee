// Package fsiface is the narrow file-backed collaborator spec.md §6 calls
// the "block-backed inode": just enough of a file system to back a
// swap file and an exec-inode, generalized from biscuit's fs/blk.go
// Blockmem_i/Disk_i transactional-bracket idiom down to what C5/C6
// actually call across the boundary.
package fsiface

import "io"

// Inode is the external collaborator exec (C6) and the fault handler
// (C5) read program text/data through. BeginOp/EndOp bracket the
// transaction the way biscuit's fs layer brackets disk writes; a
// read-only inode's BeginOp/EndOp are no-ops.
type Inode interface {
	io.ReaderAt
	io.WriterAt

	BeginOp()
	EndOp()
	Lock()
	Unlock()

	Size() int64
}

// FileInode is a minimal Inode backed directly by an *os.File, good
// enough to stand in for a real file system in tests and the demo
// kernel: no block cache, no transaction log, a single mutex protecting
// the one file handle.
