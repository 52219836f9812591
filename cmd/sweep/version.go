package main

import (
	"github.com/spf13/cobra"
)

// Version is set via -ldflags at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sweep version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			printJSON(map[string]string{"version": Version})
			return
		}
		printOut("sweep %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
