// ABOUTME: CLI command for deleting a record by key.
// ABOUTME: The previous table state is kept as a backup.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <table> <date> <label>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a record",
	Long: `Delete the record with the given key from a table.

Daily and nutrition rows are keyed by date and phase, sport and blood rows by
test date and test type. A backup of the table is written before the row is
removed, so 'plantfit backups <table>' can find it again.

EXAMPLES:

  plantfit delete daily 2024-03-01 Vegan
  plantfit rm blood 2024-03-03 "Baseline (Omnivor)"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseTableKind(args[0])
		if err != nil {
			return err
		}
		key, err := parseKey(args[1], args[2])
		if err != nil {
			return err
		}

		deleted, err := store.Delete(kind, key)
		if err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		if !deleted {
			return fmt.Errorf("no %s record for %s", models.TableNames[kind], key)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Deleted %s %s", models.TableNames[kind], key))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
