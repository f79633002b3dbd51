// ABOUTME: Root Cobra command for the plantfit CLI.
// ABOUTME: Opens config, logger and store in PersistentPreRunE and closes them afterwards.
package main

import (
	"fmt"

	"github.com/harperreed/plantfit/internal/config"
	"github.com/harperreed/plantfit/internal/logging"
	"github.com/harperreed/plantfit/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
	store  *storage.Store

	dataDirFlag  string
	backendFlag  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "plantfit",
	Short: "Omnivore vs vegan self-tracking",
	Long: `Plantfit tracks one person through an omnivore phase followed by a vegan
phase and compares the two.

WHAT IT TRACKS:

  daily       sleep, steps, intake, vitals, mood and a free-text note
  nutrition   meals, supplements and macros per day
  sport       Cooper, 5 km, push-up, plank, burpee and VO2max tests
  blood       lab panels (blood count, liver, iron, lipids, thyroid)

Daily and nutrition rows are keyed by (date, phase); sport and blood rows by
(test date, test type). Writing to an existing key updates it in place.

QUICK START:

  $ plantfit demo                                  # Load eight weeks of demo data
  $ plantfit daily set 2024-03-01 Vegan sleep_hours=7.5 total_steps=9000
  $ plantfit list daily -n 7                       # Last week with derived metrics
  $ plantfit summary                               # Compare the phases

IMPORT:

  $ plantfit import garmin.csv --map date=Datum --map phase=Phase --save-mapping
  $ plantfit watch                                 # Auto-import from the watch folder

MCP INTEGRATION:

  Run 'plantfit mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "plantfit": { "command": "plantfit", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Tables live in ~/.local/share/plantfit as CSV files (default) or in
  plantfit.db when the sqlite backend is configured. Every write keeps a
  timestamped backup. Settings come from ~/.config/plantfit/config.json and
  PLANTFIT_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipStore(cmd) {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dataDirFlag != "" {
			cfg.DataDir = dataDirFlag
		}
		if backendFlag != "" {
			cfg.Backend = backendFlag
		}
		if logLevelFlag != "" {
			cfg.LogLevel = logLevelFlag
		}

		logger, err = logging.New(cfg.GetLogLevel())
		if err != nil {
			return err
		}
		store, err = cfg.OpenStorage(logger)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

// closeStore releases the store opened by PersistentPreRunE. Cobra skips the
// post-run hook when a command fails, so main calls it as well.
func closeStore() error {
	var err error
	if store != nil {
		err = store.Close()
		store = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

// skipStore reports whether cmd runs without opening storage.
func skipStore(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", "version", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return cmd.HasParent() && cmd.Parent().Name() == "completion"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: csv or sqlite (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn or error")
}
