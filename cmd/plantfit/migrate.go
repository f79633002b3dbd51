// ABOUTME: CLI command for copying all tables to the other storage backend.
// ABOUTME: Moves a data directory between CSV files and SQLite.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/config"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate --to <backend>",
	Short: "Copy all tables to another storage backend",
	Long: `Copy the four tables from the current backend to another one.

BACKENDS:

  csv      one CSV file per table in the data directory (default)
  sqlite   plantfit.db in the data directory

The target gets the same rows and its own first backup. It must be empty
unless --force is given. Settings, goals and attachments are files in the
data directory and are shared by both backends.

AFTER MIGRATION:

  Point the config at the new backend:
    "backend": "sqlite"   in ~/.config/plantfit/config.json
  or set PLANTFIT_BACKEND=sqlite.

USAGE:

  plantfit migrate --to sqlite --dry-run   # Preview row counts
  plantfit migrate --to sqlite             # Perform the migration`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from := cfg.GetBackend()
		to := strings.ToLower(migrateTo)
		if to == "" {
			return fmt.Errorf("--to is required (csv or sqlite)")
		}
		if to == from {
			return fmt.Errorf("data is already stored with the %s backend", from)
		}

		out := cmd.OutOrStdout()
		if migrateDryRun {
			fmt.Fprintln(out, color.YellowString("Dry run mode - no changes will be made"))
			for _, kind := range models.AllTableKinds {
				rows, err := store.Rows(kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %-14s %d rows\n", models.TableNames[kind], len(rows))
			}
			return nil
		}

		src, err := config.OpenBackend(from, cfg.GetDataDir())
		if err != nil {
			return err
		}
		defer src.Close()
		dst, err := config.OpenBackend(to, cfg.GetDataDir())
		if err != nil {
			return err
		}
		defer dst.Close()

		has, err := storage.HasData(dst)
		if err != nil {
			return fmt.Errorf("failed to inspect %s backend: %w", to, err)
		}
		if has && !migrateForce {
			return fmt.Errorf("the %s backend already has data (use --force to overwrite)", to)
		}

		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		for _, kind := range models.AllTableKinds {
			name := models.TableNames[kind]
			fmt.Fprintf(out, "  %-14s %d rows\n", name, summary.Rows[name])
		}
		fmt.Fprintln(out, color.GreenString("✓ Migrated %d rows from %s to %s", summary.Total(), from, to))
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "target backend: csv or sqlite")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "overwrite tables in a non-empty target")
	rootCmd.AddCommand(migrateCmd)
}
