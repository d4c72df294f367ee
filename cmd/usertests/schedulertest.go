package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eduos/limits"
	"eduos/sched"
)

func newSchedulertestCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "schedulertest",
		Short: "drives three equal-priority CPU-bound processes through the compiled-in scheduler policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status := runSchedulertest(verbose); status != 0 {
				return fmt.Errorf("schedulertest failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log every scrape-format trace line")
	return cmd
}

// runSchedulertest starts three equal-nice CPU-bound processes (scenario
// 6) and drives 1000 ticks through the compiled-in policy, reporting how
// many RUNNING ticks each accumulated. Pass/fail is policy-dependent:
// under FCFS this checks that the earliest-ctime process ran every tick;
// under RR and the fair build it checks that every process ran, and the
// fair build additionally checks that every process landed within one
// slice of the mean.
func runSchedulertest(verbose bool) int {
	table, lg, cleanup := newHarness(verbose, 4)
	defer cleanup()
	s := sched.NewScheduler(table, lg)

	var pids []int
	for i := 0; i < 3; i++ {
		p, err := table.NewProc(0, uint64(i))
		if err != nil {
			return report("schedulertest", false, err.Error())
		}
		layoutProc(p, 1)
		pids = append(pids, int(p.Pid))
	}

	ran := map[int]int{}
	const totalTicks = 1000
	for t := 0; t < totalTicks; t++ {
		cur := s.Current()
		if cur == nil {
			cur = s.Dispatch()
		}
		if cur != nil {
			ran[int(cur.Pid)]++
		}
		s.Tick()
		if s.Current() == nil {
			s.Dispatch()
		}
	}

	name := sched.ActivePolicy.Name()
	if name == "fcfs" {
		// Non-preemptive: with no process ever voluntarily yielding or
		// exiting, the earliest-ctime pid legitimately monopolizes every
		// tick — that is success, not a bug.
		if ran[pids[0]] != totalTicks {
			return report("schedulertest", false, "fcfs let a later-ctime process run before the earliest one yielded")
		}
		return report("schedulertest", true, fmt.Sprintf("policy=fcfs earliest-ctime pid %d monopolized all %d ticks, as required", pids[0], totalTicks))
	}

	for _, pid := range pids {
		if ran[pid] == 0 {
			return report("schedulertest", false, fmt.Sprintf("pid %d never ran over %d ticks (policy=%s)", pid, totalTicks, name))
		}
	}
	if name == "fair" {
		// Equal nice values: every process must stay within one slice of the mean.
		slice := max(limits.TARGET_LATENCY/len(pids), limits.MIN_SLICE)
		mean := totalTicks / len(pids)
		for _, pid := range pids {
			if d := ran[pid] - mean; d > slice || d < -slice {
				return report("schedulertest", false, fmt.Sprintf("pid %d ran %d ticks, more than one slice (%d) from the mean %d", pid, ran[pid], slice, mean))
			}
		}
	}
	return report("schedulertest", true, fmt.Sprintf("policy=%s ran=%v over %d ticks", name, ran, totalTicks))
}
