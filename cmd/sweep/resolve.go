package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/lockmgr"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Mark matching findings as remediated",
	Long: `Mark matching findings resolved and release their locks. Resolution
is a statement of fact about the code, so findings claimed by a
different holder (or not claimed at all) are still resolved, but they
are reported separately as unowned.

Resolved findings disappear from default views; --include-resolved on
query commands reveals them with an [R] marker.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		spec := specFromFlags(cmd)
		holder := requireHolder()

		store := openStore()
		defer func() { _ = store.Close() }()

		result, err := lockmgr.Resolve(rootCtx, store, spec, holder, time.Now().UTC())
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(result)
			return
		}
		printOut("Resolved %d finding(s)\n", result.Resolved)
		if result.Unowned > 0 {
			printOut("  %d of them were not locked by %s\n", result.Unowned, holder)
		}
	},
}

func init() {
	addFilterFlags(resolveCmd)
	rootCmd.AddCommand(resolveCmd)
}
