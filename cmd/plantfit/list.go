// ABOUTME: CLI command for listing table rows.
// ABOUTME: Shows the newest rows of a table; the daily log includes derived metrics.
package main

import (
	"fmt"

	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"github.com/harperreed/plantfit/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listSince   string
	listLimit   int
	listColumns []string
)

// defaultListColumns keeps list output narrow enough for a terminal.
var defaultListColumns = map[models.TableKind][]string{
	models.KindDaily: {
		"date", "weekday", "phase", "sleep_hours", "total_steps", "intake_kcal",
		"body_weight", "energy_balance", "protein_g_per_kg", "wellbeing_score",
	},
	models.KindNutrition: {
		"date", "phase", "breakfast", "lunch", "dinner", "intake_kcal", "protein_g", "water_ml",
	},
	models.KindSport: {
		"test_date", "test_type", "cooper_distance", "run5k_time", "pushups_reps",
		"plank_time", "burpee_reps", "vo2max_value",
	},
	models.KindBlood: {
		"test_date", "test_type", "hemoglobin", "ferritin", "iron", "cholesterol",
		"ldl_chol", "tsh_basal",
	},
}

var listCmd = &cobra.Command{
	Use:     "list <table>",
	Aliases: []string{"ls", "l"},
	Short:   "List table rows",
	Long: `List the newest rows of a table.

TABLES:

  daily (daily_log), nutrition (nutrition_log), sport (sport_tests),
  blood (blood_tests)

The daily log is shown with derived metrics (weekday, energy balance, protein
per kg, recovery index, wellbeing score). Use --columns to pick other columns.

EXAMPLES:

  plantfit list daily                          # Last 20 days
  plantfit list daily --since 2024-02-01 -n 0  # Everything since February
  plantfit list sport                          # All sport tests
  plantfit list daily --columns date,phase,hrv_sleep_avg,recovery_index`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := models.ParseTableKind(args[0])
		if err != nil {
			return err
		}
		sch, err := storage.SchemaFor(kind)
		if err != nil {
			return err
		}

		columns := listColumns
		if len(columns) == 0 {
			columns = defaultListColumns[kind]
		}
		numeric := map[int]bool{}
		for i, c := range columns {
			col, ok := sch.Column(c)
			if !ok {
				return fmt.Errorf("%s has no column %q", sch.Name(), c)
			}
			numeric[i] = col.Kind == schema.KindNumber
		}

		rows, err := store.Rows(kind)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", sch.Name(), err)
		}
		rows, err = filterRows(rows, sch, listSince, listLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No records found.")
			return nil
		}

		cells := make([][]string, len(rows))
		for i, row := range rows {
			cells[i] = rowCells(row, columns)
		}
		renderTable(out, columns, cells, numeric)
		return nil
	},
}

// filterRows keeps rows dated on or after since and then the newest limit
// rows. A limit of zero keeps everything.
func filterRows(rows []map[string]any, sch *schema.Schema, since string, limit int) ([]map[string]any, error) {
	if since != "" {
		day, err := schema.ParseDate(since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		from := day.Format(schema.DateLayout)
		dateCol, _ := sch.KeyColumns()
		kept := rows[:0]
		for _, row := range rows {
			if d, _ := row[dateCol].(string); d >= from {
				kept = append(kept, row)
			}
		}
		rows = kept
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}

func init() {
	listCmd.Flags().StringVar(&listSince, "since", "", "only rows on or after this date (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of rows (0 for all)")
	listCmd.Flags().StringSliceVarP(&listColumns, "columns", "c", nil, "columns to show")
	rootCmd.AddCommand(listCmd)
}
