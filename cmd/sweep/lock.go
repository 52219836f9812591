package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/lockmgr"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Claim the group of findings matching a filter",
	Long: `Claim every unlocked finding matching the filter for the holder.
Findings already claimed by another holder are reported as conflicts and
left untouched; the claim is best-effort, never all-or-nothing.
Re-running the same lock picks up only the unclaimed remainder.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		spec := specFromFlags(cmd)
		holder := requireHolder()

		store := openStore()
		defer func() { _ = store.Close() }()

		result, err := lockmgr.Lock(rootCtx, store, spec, holder, time.Now().UTC())
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(result)
			return
		}
		printOut("Claimed %d finding(s) in group %s for %s\n", result.Claimed, result.Group, holder)
		for _, c := range result.Conflicts {
			printOut("  conflict: %s %s held by %s\n", c.Rule, c.Path, c.Holder)
		}
	},
}

func init() {
	addFilterFlags(lockCmd)
	rootCmd.AddCommand(lockCmd)
}
