//go:build sched_fcfs

package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eduos/proc"
)

func TestFCFSPolicyName(t *testing.T) {
	assert.Equal(t, "fcfs", ActivePolicy.Name())
}

func TestFCFSPolicySelectsSmallestCtime(t *testing.T) {
	p1 := &proc.Proc_t{Pid: 1, Ctime: 5}
	p2 := &proc.Proc_t{Pid: 2, Ctime: 2}
	p3 := &proc.Proc_t{Pid: 3, Ctime: 9}

	got := ActivePolicy.Select([]*proc.Proc_t{p1, p2, p3})
	assert.Equal(t, p2.Pid, got.Pid, "fcfs must pick the oldest arrival, not insertion order")
}

func TestFCFSPolicyTiesBrokenByPid(t *testing.T) {
	p1 := &proc.Proc_t{Pid: 5, Ctime: 1}
	p2 := &proc.Proc_t{Pid: 2, Ctime: 1}

	got := ActivePolicy.Select([]*proc.Proc_t{p1, p2})
	assert.Equal(t, p2.Pid, got.Pid)
}

func TestFCFSPolicyNeverRequestsYieldForRunningProcess(t *testing.T) {
	p := &proc.Proc_t{Pid: 1}
	assert.False(t, ActivePolicy.Tick(p, []*proc.Proc_t{p}),
		"the tick handler must not preempt the running process under fcfs")
}

func TestFCFSPolicyEmptyRunnableReturnsNil(t *testing.T) {
	assert.Nil(t, ActivePolicy.Select(nil))
}
