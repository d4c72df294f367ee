//go:build sched_cfs

package sched

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"eduos/defs"
	"eduos/klog"
	"eduos/proc"
)

func TestCFSPolicyName(t *testing.T) {
	assert.Equal(t, "fair", ActivePolicy.Name())
}

func TestCFSPolicySelectsSmallestVruntime(t *testing.T) {
	p1 := &proc.Proc_t{Pid: 1, Vruntime: 100}
	p2 := &proc.Proc_t{Pid: 2, Vruntime: 20}
	p3 := &proc.Proc_t{Pid: 3, Vruntime: 50}

	got := ActivePolicy.Select([]*proc.Proc_t{p1, p2, p3})
	assert.Equal(t, p2.Pid, got.Pid)
}

func TestCFSPolicyTiesBrokenByPid(t *testing.T) {
	p1 := &proc.Proc_t{Pid: 9, Vruntime: 10}
	p2 := &proc.Proc_t{Pid: 3, Vruntime: 10}

	got := ActivePolicy.Select([]*proc.Proc_t{p1, p2})
	assert.Equal(t, p2.Pid, got.Pid)
}

func TestCFSPolicyDispatchComputesSliceFromCompetingCount(t *testing.T) {
	p := &proc.Proc_t{Pid: 1, Nice: 0}
	runnable := []*proc.Proc_t{p, {Pid: 2}, {Pid: 3}, {Pid: 4}}

	ActivePolicy.Dispatch(p, runnable)

	// base = max(TARGET_LATENCY/n, MIN_SLICE) = max(48/4, 3) = 12
	// slice = base * weight(0) / NICE_0_WEIGHT = 12 * 1024 / 1024 = 12
	assert.Equal(t, 12, p.SliceRemaining)
}

func TestCFSPolicyDispatchFloorsAtMinSlice(t *testing.T) {
	p := &proc.Proc_t{Pid: 1, Nice: 0}
	runnable := make([]*proc.Proc_t, 100)
	for i := range runnable {
		runnable[i] = &proc.Proc_t{Pid: defs.Pid_t(i + 1)}
	}
	runnable[0] = p

	ActivePolicy.Dispatch(p, runnable)

	assert.Equal(t, 3, p.SliceRemaining, "slice must never fall below MIN_SLICE even with many competitors")
}

func TestCFSPolicyTickAccumulatesVruntimeInverselyToWeight(t *testing.T) {
	favored := &proc.Proc_t{Pid: 1, Nice: -5, SliceRemaining: 10}
	unfavored := &proc.Proc_t{Pid: 2, Nice: 5, SliceRemaining: 10}

	ActivePolicy.Tick(favored, nil)
	ActivePolicy.Tick(unfavored, nil)

	assert.Less(t, favored.Vruntime, unfavored.Vruntime,
		"a lower nice (heavier weight) must accumulate vruntime more slowly per tick")
}

func TestCFSPolicyTickRequestsYieldWhenSliceExhausted(t *testing.T) {
	p := &proc.Proc_t{Pid: 1, SliceRemaining: 1}
	assert.True(t, ActivePolicy.Tick(p, nil))

	p2 := &proc.Proc_t{Pid: 2, SliceRemaining: 5}
	assert.False(t, ActivePolicy.Tick(p2, nil))
}

func TestCFSPolicyLogDecisionEmitsTheLiteralScraperFormat(t *testing.T) {
	var buf bytes.Buffer
	lg := klog.New(&buf, logrus.InfoLevel)

	p1 := &proc.Proc_t{Pid: 1, Nice: 0, Vruntime: 100, SliceRemaining: 12}
	p2 := &proc.Proc_t{Pid: 2, Nice: 0, Vruntime: 40, SliceRemaining: 12}
	runnable := []*proc.Proc_t{p1, p2}

	ActivePolicy.LogDecision(lg, p2, runnable)

	want := "[Scheduler Tick]\n" +
		"PID: 1 | vRuntime: 100 | Weight: 1024 | TimeSlice: 12\n" +
		"PID: 2 | vRuntime: 40 | Weight: 1024 | TimeSlice: 12\n" +
		"--> Scheduling PID 2 (lowest vRuntime: 40)\n"
	assert.Equal(t, want, buf.String())
}

func TestCFSPolicyLogDecisionWithNoChosenProcessOmitsTheArrowLine(t *testing.T) {
	var buf bytes.Buffer
	lg := klog.New(&buf, logrus.InfoLevel)

	ActivePolicy.LogDecision(lg, nil, nil)

	assert.Equal(t, "[Scheduler Tick]\n", buf.String())
}
