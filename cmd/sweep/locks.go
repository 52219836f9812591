package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/lockmgr"
	"github.com/sweepdev/sweep/internal/timeparsing"
	"github.com/sweepdev/sweep/internal/ui"
)

var locksCmd = &cobra.Command{
	Use:   "locks",
	Short: "List active lock groups",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := openStore()
		defer func() { _ = store.Close() }()

		locked, err := store.ActiveLocks(rootCtx)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(locked)
			return
		}
		printOut("%s", ui.RenderLocks(locked, time.Now()))
	},
}

var locksClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forcibly release locks (staleness reclamation)",
	Long: `Administrative lock reclamation, regardless of holder. Locks never
expire on their own; when a worker crashes without releasing its claim,
clear the stale locks explicitly:

  sweep locks clear --all
  sweep locks clear --older-than 2h
  sweep locks clear --older-than "2 hours ago"`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		all, _ := cmd.Flags().GetBool("all")
		olderThan, _ := cmd.Flags().GetString("older-than")

		if all == (olderThan != "") {
			FatalError("exactly one of --all or --older-than is required")
		}

		store := openStore()
		defer func() { _ = store.Close() }()

		var cleared int
		var err error
		if all {
			cleared, err = lockmgr.ClearAll(rootCtx, store)
		} else {
			var cutoff time.Time
			cutoff, err = timeparsing.ParseCutoff(olderThan, time.Now())
			if err != nil {
				FatalError("%v", err)
			}
			cleared, err = lockmgr.ClearOlderThan(rootCtx, store, cutoff)
		}
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(map[string]int{"cleared": cleared})
			return
		}
		printOut("Cleared %d lock(s)\n", cleared)
	},
}

func init() {
	locksClearCmd.Flags().Bool("all", false, "Release every lock regardless of holder")
	locksClearCmd.Flags().String("older-than", "", "Release locks acquired before this expression (2h, 1d, \"2 hours ago\", 2025-06-15)")
	locksCmd.AddCommand(locksClearCmd)
	rootCmd.AddCommand(locksCmd)
}
