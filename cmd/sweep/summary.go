package main

import (
	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/stats"
	"github.com/sweepdev/sweep/internal/ui"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the rule × severity count matrix",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		includeResolved, _ := cmd.Flags().GetBool("include-resolved")

		store := openStore()
		defer func() { _ = store.Close() }()

		summary, err := stats.Collect(rootCtx, store, includeResolved)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(summary)
			return
		}
		printOut("%s", ui.RenderSummary(summary))
	},
}

func init() {
	summaryCmd.Flags().Bool("include-resolved", false, "Include resolved findings with per-cell sub-counts")
	rootCmd.AddCommand(summaryCmd)
}
