package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eduos/fsiface"
	"eduos/ksys"
)

func newReadcountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readcount",
		Short: "exercises getreadcount()'s monotonic byte-count accounting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status := runReadcount(); status != 0 {
				return fmt.Errorf("readcount failed")
			}
			return nil
		},
	}
	return cmd
}

func runReadcount() int {
	f, err := os.CreateTemp("", "readcount-")
	if err != nil {
		return report("readcount", false, err.Error())
	}
	defer os.Remove(f.Name())
	payload := []byte("hello, demand-paged world")
	if _, err := f.Write(payload); err != nil {
		return report("readcount", false, err.Error())
	}
	f.Close()

	inode, err := fsiface.OpenFileInode(f.Name())
	if err != nil {
		return report("readcount", false, err.Error())
	}
	defer inode.Close()

	before := ksys.GetReadCount()

	buf := make([]byte, len(payload))
	n, err := ksys.Read(inode, buf, 0)
	if err != nil || n != len(payload) {
		return report("readcount", false, fmt.Sprintf("read returned (%d, %v)", n, err))
	}

	// A zero-byte read must not move the counter (spec.md §6).
	if _, err := ksys.Read(inode, nil, 0); err != nil {
		return report("readcount", false, fmt.Sprintf("zero-length read errored: %v", err))
	}

	after := ksys.GetReadCount()
	if after-before != uint32(n) {
		return report("readcount", false, fmt.Sprintf("counter advanced by %d, expected %d", after-before, n))
	}
	return report("readcount", true, fmt.Sprintf("getreadcount advanced by exactly %d bytes", n))
}
