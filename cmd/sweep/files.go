package main

import (
	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/ui"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List files containing matching findings, deduplicated",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		spec := specFromFlags(cmd)

		store := openStore()
		defer func() { _ = store.Close() }()

		findings, err := store.SearchFindings(rootCtx, spec)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			seen := make(map[string]bool)
			var paths []string
			for _, f := range findings {
				if !seen[f.Path] {
					seen[f.Path] = true
					paths = append(paths, f.Path)
				}
			}
			printJSON(paths)
			return
		}
		printOut("%s", ui.RenderFileList(findings))
	},
}

func init() {
	addFilterFlags(filesCmd)
	rootCmd.AddCommand(filesCmd)
}
