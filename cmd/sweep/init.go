package main

import (
	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the .sweep directory in the working directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.Scaffold(config.DirName); err != nil {
			FatalError("%v", err)
		}

		// Create the database so the first concurrent worker doesn't race
		// schema creation with another.
		store := openStore()
		defer func() { _ = store.Close() }()

		if jsonOutput {
			printJSON(map[string]string{"database": store.Path()})
			return
		}
		printOut("Initialized %s (database: %s)\n", config.DirName, store.Path())
		printOut("Edit %s/%s or set SWEEP_SERVER / SWEEP_TOKEN / SWEEP_PROJECT, then run 'sweep fetch'.\n",
			config.DirName, config.ConfigFileName)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
