// Command sweep mirrors static-analysis findings from a remote
// code-quality server into a local store and coordinates exclusive
// remediation claims between concurrent workers.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sweepdev/sweep/internal/config"
	"github.com/sweepdev/sweep/internal/storage"
	"github.com/sweepdev/sweep/internal/storage/sqlite"
)

var (
	dbPath     string
	holderFlag string
	jsonOutput bool

	cfg *config.Config

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mirror analysis findings locally and coordinate remediation claims",
	Long: `sweep keeps a local mirror of static-analysis findings and lets
concurrent workers claim filter-defined groups of them, so two workers
never duplicate effort on the same findings.

The store is a single SQLite file under .sweep/ in the working
directory; every worker process sharing that directory shares the
coordination state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	if err := rootCmd.Execute(); err != nil {
		FatalError("%v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the findings database (default .sweep/sweep.db)")
	rootCmd.PersistentFlags().StringVar(&holderFlag, "holder", "", "Holder identity for lock/unlock/resolve (overrides config and SWEEP_HOLDER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output machine-readable JSON")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		c, err := config.Load(config.DirName)
		if err != nil {
			FatalError("%v", err)
		}
		cfg = c
	}
}

// openStore opens the findings database, exiting with a hint when the
// persistence file cannot be opened.
func openStore() *sqlite.Store {
	path := dbPath
	if path == "" {
		path = cfg.Database
	}
	store, err := sqlite.New(rootCtx, path)
	if err != nil {
		if errors.Is(err, storage.ErrStoreUnavailable) {
			FatalErrorWithHint(err.Error(), "Run 'sweep init' to set up the project directory")
		}
		FatalError("%v", err)
	}
	return store
}

// resolveHolder returns the effective holder identity: flag, then
// config (which already folds in SWEEP_HOLDER).
func resolveHolder() string {
	if holderFlag != "" {
		return holderFlag
	}
	return cfg.Holder
}

// requireHolder exits when no holder identity is configured. The holder
// is an opaque string; sweep only ever compares it for equality.
func requireHolder() string {
	holder := resolveHolder()
	if holder == "" {
		FatalErrorWithHint("holder identity required",
			"Pass --holder, set SWEEP_HOLDER, or set holder in .sweep/config.yaml")
	}
	return holder
}
