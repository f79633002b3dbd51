// ABOUTME: CLI command comparing the omnivore and vegan phases.
// ABOUTME: Prints per-phase statistics for daily columns and goal attainment.
package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/stats"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:     "summary [column...]",
	Aliases: []string{"compare"},
	Short:   "Compare the omnivore and vegan phases",
	Long: `Compare numeric daily columns between the Omnivor and Vegan phases.

For each column the table shows the number of days with a value, the mean
with its sample standard deviation, the median and the change of the vegan
mean against the omnivore mean. Derived metrics (energy_balance,
protein_g_per_kg, recovery_index, wellbeing_score) are computed first.

Below the comparison, goal attainment counts the days per phase that reached
each goal (see 'plantfit goals').

EXAMPLES:

  plantfit summary                          # Default columns
  plantfit summary hrv_sleep_avg mood       # Specific columns`,
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := store.DailyWithMetrics()
		if err != nil {
			return fmt.Errorf("failed to load daily log: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "No daily records yet. Try 'plantfit demo'.")
			return nil
		}

		comparisons, err := stats.CompareAll(recs, args)
		if err != nil {
			return err
		}
		goals, err := store.LoadGoals()
		if err != nil {
			return fmt.Errorf("failed to load goals: %w", err)
		}

		renderComparisons(out, comparisons)
		fmt.Fprintln(out)
		renderAttainment(out, stats.GoalAttainment(recs, goals))
		return nil
	},
}

func renderComparisons(w io.Writer, comparisons []stats.Comparison) {
	headers := []string{"column"}
	for _, p := range models.AllPhases {
		headers = append(headers, string(p)+" n", string(p)+" mean ± sd", string(p)+" median")
	}
	headers = append(headers, "Δ")

	numeric := map[int]bool{}
	for i := 1; i < len(headers); i++ {
		numeric[i] = true
	}

	rows := make([][]string, 0, len(comparisons))
	for _, c := range comparisons {
		row := []string{c.Column}
		for _, ps := range c.Phases {
			if ps.N == 0 {
				row = append(row, "0", "", "")
				continue
			}
			row = append(row,
				fmt.Sprint(ps.N),
				fmt.Sprintf("%.2f ± %.2f", ps.Mean, ps.StdDev),
				fmt.Sprintf("%.2f", ps.Median))
		}
		delta := ""
		if d, ok := c.Delta(); ok {
			delta = fmt.Sprintf("%+.2f", d)
		}
		rows = append(rows, append(row, delta))
	}
	renderTable(w, headers, rows, numeric)
}

func renderAttainment(w io.Writer, attainment []stats.Attainment) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint("Goal attainment"))
	rows := make([][]string, 0, len(attainment))
	for _, a := range attainment {
		rows = append(rows, []string{
			string(a.Phase),
			formatShare(a.Sleep),
			formatShare(a.Steps),
			formatShare(a.Intake),
			formatShare(a.Protein),
		})
	}
	renderTable(w, []string{"phase", "sleep", "steps", "intake", "protein/kg"}, rows,
		map[int]bool{1: true, 2: true, 3: true, 4: true})
}

func formatShare(s stats.Share) string {
	if s.Days == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d (%.0f%%)", s.Met, s.Days, s.Ratio()*100)
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
