// ABOUTME: CLI command that auto-imports CSV exports dropped into the watch folder.
// ABOUTME: Runs until interrupted; uses the saved mapping and overwrites existing days.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/importer"
	"github.com/harperreed/plantfit/internal/watch"
	"github.com/spf13/cobra"
)

var (
	watchDelimiter string
	watchDecimal   string
	watchDebounce  time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Auto-import CSV files from the watch folder",
	Long: `Watch the configured folder and import matching CSV files into the daily log.

Files already in the folder are imported once at start. New or changed files
are imported after they have been quiet for the debounce interval. Imports use
the saved column mapping and update days that already exist.

SETUP:

  plantfit import export.csv --map date=Datum --map phase=Phase ... --save-mapping
  plantfit settings auto_import_enabled=true watch_folder=~/Downloads/garmin
  plantfit watch

Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchDebounce <= 0 {
			return fmt.Errorf("--debounce must be positive")
		}
		delimiter, err := parseSeparator("delimiter", watchDelimiter)
		if err != nil {
			return err
		}
		decimal, err := parseSeparator("decimal", watchDecimal)
		if err != nil {
			return err
		}
		st, err := store.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		out := cmd.OutOrStdout()
		w, err := watch.New(store, st,
			watch.WithLogger(logger),
			watch.WithDebounce(watchDebounce),
			watch.WithCSVFormat(delimiter, decimal),
			watch.OnReport(func(path string, rep *importer.Report, err error) {
				if err != nil {
					fmt.Fprintln(out, color.RedString("✗ %s: %v", path, err))
					return
				}
				printReport(out, path, rep)
			}))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(out, "Watching %s for %s (Ctrl-C to stop)\n", st.WatchFolder, st.FilenameGlob)
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchDelimiter, "delimiter", "d", ",", "field delimiter")
	watchCmd.Flags().StringVar(&watchDecimal, "decimal", ".", "decimal separator (. or ,)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet time before a changed file is imported")
	rootCmd.AddCommand(watchCmd)
}
