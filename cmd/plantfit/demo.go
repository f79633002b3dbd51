// ABOUTME: CLI commands that replace or clear the stored tables.
// ABOUTME: demo loads a synthetic eight-week scenario; clear empties tables.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/schema"
	"github.com/spf13/cobra"
)

var (
	demoSeed  uint64
	demoStart string

	clearBefore string
	clearForce  bool
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Load eight weeks of demo data",
	Long: `Replace all four tables with a synthetic eight-week scenario.

The first 28 days are Omnivor, the next 28 Vegan. Two blood panels and four
sport tests are placed around the phase change. The same seed and start date
always produce the same data. The previous tables are kept as backups.

EXAMPLES:

  plantfit demo                               # 56 days ending today
  plantfit demo --seed 7 --start 2024-01-01`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := schema.Day(time.Now()).AddDate(0, 0, -55)
		if demoStart != "" {
			d, err := schema.ParseDate(demoStart)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			start = d
		}
		if err := store.LoadDemo(demoSeed, start); err != nil {
			return fmt.Errorf("failed to load demo data: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Demo data loaded from %s (seed %d)",
			start.Format(schema.DateLayout), demoSeed))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove records from all tables",
	Long: `Remove records from all four tables.

Without --before every row is removed. With --before only rows dated before
that day are removed. Each table is backed up first.

EXAMPLES:

  plantfit clear --force
  plantfit clear --before 2024-01-01 --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce {
			return fmt.Errorf("refusing to clear without --force")
		}
		out := cmd.OutOrStdout()
		if clearBefore == "" {
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear tables: %w", err)
			}
			fmt.Fprintln(out, color.GreenString("✓ All tables cleared"))
			return nil
		}

		day, err := schema.ParseDate(clearBefore)
		if err != nil {
			return fmt.Errorf("invalid --before: %w", err)
		}
		n, err := store.DeleteBefore(day)
		if err != nil {
			return fmt.Errorf("failed to delete records: %w", err)
		}
		fmt.Fprintln(out, color.GreenString("✓ Removed %d record(s) before %s", n, day.Format(schema.DateLayout)))
		return nil
	},
}

func init() {
	demoCmd.Flags().Uint64Var(&demoSeed, "seed", 42, "random seed")
	demoCmd.Flags().StringVar(&demoStart, "start", "", "first day (YYYY-MM-DD, default 55 days ago)")
	clearCmd.Flags().StringVar(&clearBefore, "before", "", "only remove rows before this date (YYYY-MM-DD)")
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "confirm removal")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(clearCmd)
}
