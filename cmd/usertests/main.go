// Command usertests is the single binary spec.md §6 names five CLI test
// programs under: readcount, memtest, schedulertest, forktest, and
// usertests (which runs all four). Each subcommand drives the in-process
// simulated kernel directly — there is no VM to boot, since this repo is
// a hosted simulator — and exits 0 on success, 1 on test failure.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "usertests",
		Short: "drives the simulated kernel's paging and scheduling core",
	}
	root.PersistentFlags().Bool("verbose", false, "log every scrape-format trace line")
	root.AddCommand(
		newReadcountCmd(),
		newMemtestCmd(),
		newSchedulertestCmd(),
		newForktestCmd(),
		newUsertestsCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// report prints a PASS/FAIL line and returns the process's exit status.
func report(name string, ok bool, detail string) int {
	if ok {
		fmt.Printf("PASS %s: %s\n", name, detail)
		return 0
	}
	fmt.Printf("FAIL %s: %s\n", name, detail)
	return 1
}
