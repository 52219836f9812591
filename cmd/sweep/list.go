package main

import (
	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List findings matching a filter",
	Long: `List findings ordered by rule, then path, then line. Resolved
findings are hidden unless --include-resolved is set, in which case they
carry an [R] marker.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		spec := specFromFlags(cmd)
		spec.Limit, _ = cmd.Flags().GetInt("limit")

		store := openStore()
		defer func() { _ = store.Close() }()

		findings, err := store.SearchFindings(rootCtx, spec)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(findings)
			return
		}
		printOut("%s", ui.RenderFindings(findings, ui.ShouldUseColor()))
	},
}

func init() {
	addFilterFlags(listCmd)
	listCmd.Flags().Int("limit", 0, "Maximum findings to return (0 = unlimited)")
	rootCmd.AddCommand(listCmd)
}
