package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUsertestsCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "usertests",
		Short: "runs readcount, memtest, schedulertest, and forktest in sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			status := 0
			status |= runReadcount()
			status |= runMemtest(verbose)
			status |= runSchedulertest(verbose)
			status |= runForktest(verbose)
			if status != 0 {
				return fmt.Errorf("one or more test programs failed")
			}
			fmt.Println("ALL PASS")
			return nil
		},
	}
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log every scrape-format trace line")
	return cmd
}
