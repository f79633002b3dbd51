// ABOUTME: Per-table "set" commands that upsert a record by key.
// ABOUTME: plantfit daily set 2024-03-01 Vegan sleep_hours=7.5 note="gut geschlafen"
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/storage"
	"github.com/spf13/cobra"
)

var tableHelp = map[models.TableKind]string{
	models.KindDaily: `Daily log rows are keyed by date and phase (Omnivor or Vegan).
Intake columns (intake_kcal, carbs_g, protein_g, fat_g, water_ml) are
mirrored into the nutrition diary for the same key.

  plantfit daily set 2024-03-01 Omnivor sleep_hours=7.5 total_steps=11200
  plantfit daily set 2024-03-01 Omnivor intake_kcal=2450 protein_g=130`,
	models.KindNutrition: `Nutrition diary rows are keyed by date and phase.

  plantfit nutrition set 2024-03-01 Vegan breakfast="Haferflocken" lunch="Tofu-Bowl"`,
	models.KindSport: `Sport test rows are keyed by test date and test type.

  plantfit sport set 2024-03-02 "Baseline (Omnivor)" pushups_reps=35 plank_time=2:30`,
	models.KindBlood: `Blood test rows are keyed by test date and test type.

  plantfit blood set 2024-03-03 "Baseline (Omnivor)" ferritin=80 hemoglobin=14.8`,
}

// newTableCmd builds the parent command for one table kind.
func newTableCmd(kind models.TableKind) *cobra.Command {
	parent := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Write %s records", models.TableNames[kind]),
	}

	var updateOnly bool
	set := &cobra.Command{
		Use:   "set <date> <label> column=value...",
		Short: fmt.Sprintf("Create or update a %s record", models.TableNames[kind]),
		Long: fmt.Sprintf(`Create or update a %s record.

An empty value (column=) clears the column. Unknown and derived columns are
ignored and reported. With --update-only a missing key is an error instead
of creating a new row.

%s`, models.TableNames[kind], tableHelp[kind]),
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0], args[1])
			if err != nil {
				return err
			}
			fields, err := parseAssignments(args[2:])
			if err != nil {
				return err
			}

			var res storage.Result
			if updateOnly {
				var found bool
				res, found, err = store.Update(kind, key, fields)
				if err == nil && !found {
					return fmt.Errorf("no %s record for %s", models.TableNames[kind], key)
				}
			} else {
				res, err = store.Upsert(kind, key, fields)
			}
			if err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}

			printResult(cmd.OutOrStdout(), kind, res)
			return nil
		},
	}
	set.Flags().BoolVar(&updateOnly, "update-only", false, "only update an existing record")

	parent.AddCommand(set)
	return parent
}

func printResult(w io.Writer, kind models.TableKind, res storage.Result) {
	if len(res.Dropped) > 0 {
		fmt.Fprintln(w, color.YellowString("! Ignored %d column(s): %s", len(res.Dropped), strings.Join(res.Dropped, ", ")))
	}
	if res.Outcome == storage.Skipped {
		fmt.Fprintln(w, color.YellowString("- Nothing to write for %s %s", models.TableNames[kind], res.Key))
		return
	}
	fmt.Fprintln(w, color.GreenString("✓ Record %s: %s %s (%d column(s))",
		res.Outcome, models.TableNames[kind], res.Key, len(res.Applied)))
}

func init() {
	for _, kind := range models.AllTableKinds {
		rootCmd.AddCommand(newTableCmd(kind))
	}
}
