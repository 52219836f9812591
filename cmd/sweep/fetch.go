package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/sonarqube"
	"github.com/sweepdev/sweep/internal/syncer"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch findings from the remote server and reconcile them into the local store",
	Long: `Fetch all findings for the configured project key and merge them into
the local store. Local lock and resolution state is always preserved;
findings missing from the fetched batch are never deleted.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.Server == "" || cfg.Project == "" {
			FatalErrorWithHint("remote server not configured",
				"Set server and project in .sweep/config.yaml (or SWEEP_SERVER / SWEEP_PROJECT)")
		}

		client := sonarqube.NewClient(cfg.Server, cfg.Token)
		batch, err := client.FetchIssues(rootCtx, cfg.Project)
		if err != nil {
			FatalError("fetching findings: %v", err)
		}

		store := openStore()
		defer func() { _ = store.Close() }()

		result, err := syncer.Reconcile(rootCtx, store, batch, time.Now().UTC())
		if err != nil {
			FatalError("reconciling: %v", err)
		}

		for _, synErr := range result.Errors {
			WarnError("skipped malformed %v", synErr)
		}

		if jsonOutput {
			printJSON(result)
			return
		}
		printOut("Fetched %d finding(s): %d added, %d updated, %d unchanged",
			len(batch), result.Added, result.Updated, result.Unchanged)
		if result.Malformed > 0 {
			printOut(", %d malformed (skipped)", result.Malformed)
		}
		printOut("\n")
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
