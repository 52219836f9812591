package main

import (
	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/lockmgr"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Release the holder's claims on findings matching a filter",
	Long: `Release matching findings claimed by the holder. Claims held by
other holders are never touched; use 'sweep locks clear' for forced
administrative release.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		spec := specFromFlags(cmd)
		holder := requireHolder()

		store := openStore()
		defer func() { _ = store.Close() }()

		released, err := lockmgr.Unlock(rootCtx, store, spec, holder)
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput {
			printJSON(map[string]int{"released": released})
			return
		}
		printOut("Released %d finding(s) held by %s\n", released, holder)
	},
}

func init() {
	addFilterFlags(unlockCmd)
	rootCmd.AddCommand(unlockCmd)
}
