package main

import (
	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/ui"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Emit a remediation-prompt document for a group of findings",
	Long: `Build a markdown work order for the findings matching the filter,
suitable for handing to a human or an agent. Typically preceded by
'sweep lock' with the same filter so the group is claimed first.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		spec := specFromFlags(cmd)
		raw, _ := cmd.Flags().GetBool("raw")

		store := openStore()
		defer func() { _ = store.Close() }()

		findings, err := store.SearchFindings(rootCtx, spec)
		if err != nil {
			FatalError("%v", err)
		}

		doc := ui.BuildPrompt(findings, spec.CanonicalKey(), resolveHolder())
		if jsonOutput {
			printJSON(map[string]string{"group": spec.CanonicalKey(), "prompt": doc})
			return
		}
		if raw {
			printOut("%s", doc)
			return
		}
		printOut("%s", ui.RenderMarkdown(doc))
	},
}

func init() {
	addFilterFlags(promptCmd)
	promptCmd.Flags().Bool("raw", false, "Print raw markdown without terminal rendering")
	rootCmd.AddCommand(promptCmd)
}
