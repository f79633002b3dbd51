// ABOUTME: CLI commands for the goals and settings documents.
// ABOUTME: Without arguments they print the document; key=value pairs update it.
package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/plantfit/internal/config"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/spf13/cobra"
)

var goalsCmd = &cobra.Command{
	Use:   "goals [key=value...]",
	Short: "Show or set daily goals",
	Long: `Show or set the daily goals used for goal attainment in 'plantfit summary'.

KEYS:

  sleep_hours_goal        hours of sleep per night (default 8)
  total_steps_goal        steps per day (default 10000)
  intake_kcal_goal        energy intake per day (default 2500)
  protein_g_per_kg_goal   protein per kg body weight (default 1.6)

EXAMPLES:

  plantfit goals
  plantfit goals sleep_hours_goal=7.5 protein_g_per_kg_goal=1.8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		goals, err := store.LoadGoals()
		if err != nil {
			return fmt.Errorf("failed to load goals: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			printGoals(out, goals)
			return nil
		}

		fields, err := parseAssignments(args)
		if err != nil {
			return err
		}
		for name, raw := range fields {
			s, _ := raw.(string)
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("%s needs a number, got %q", name, s)
			}
			switch name {
			case "sleep_hours_goal":
				goals.SleepHoursGoal = v
			case "total_steps_goal":
				goals.TotalStepsGoal = v
			case "intake_kcal_goal":
				goals.IntakeKcalGoal = v
			case "protein_g_per_kg_goal":
				goals.ProteinGPerKgGoal = v
			default:
				return fmt.Errorf("unknown goal %q", name)
			}
		}
		if err := store.SaveGoals(goals); err != nil {
			return fmt.Errorf("failed to save goals: %w", err)
		}
		fmt.Fprintln(out, color.GreenString("✓ Goals saved"))
		printGoals(out, goals)
		return nil
	},
}

func printGoals(w io.Writer, g models.Goals) {
	fmt.Fprintf(w, "sleep_hours_goal       %g\n", g.SleepHoursGoal)
	fmt.Fprintf(w, "total_steps_goal       %g\n", g.TotalStepsGoal)
	fmt.Fprintf(w, "intake_kcal_goal       %g\n", g.IntakeKcalGoal)
	fmt.Fprintf(w, "protein_g_per_kg_goal  %g\n", g.ProteinGPerKgGoal)
}

var settingsCmd = &cobra.Command{
	Use:   "settings [key=value...]",
	Short: "Show or change auto-import settings",
	Long: `Show or change the settings used by 'plantfit watch'.

KEYS:

  auto_import_enabled   true or false
  watch_folder          folder watched for new CSV exports (~ is expanded)
  filename_glob         file name pattern to import (default *.csv)

A watch folder is required while auto import is enabled.

EXAMPLES:

  plantfit settings
  plantfit settings auto_import_enabled=true watch_folder=~/Downloads/garmin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.LoadSettings()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			printSettings(out, st)
			return nil
		}

		fields, err := parseAssignments(args)
		if err != nil {
			return err
		}
		for name, raw := range fields {
			s, _ := raw.(string)
			switch name {
			case "auto_import_enabled":
				b, err := strconv.ParseBool(s)
				if err != nil {
					return fmt.Errorf("auto_import_enabled needs true or false, got %q", s)
				}
				st.AutoImportEnabled = b
			case "watch_folder":
				st.WatchFolder = config.ExpandPath(s)
			case "filename_glob":
				st.FilenameGlob = s
			default:
				return fmt.Errorf("unknown setting %q", name)
			}
		}
		if err := store.SaveSettings(st); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Fprintln(out, color.GreenString("✓ Settings saved"))
		printSettings(out, st)
		return nil
	},
}

func printSettings(w io.Writer, st models.Settings) {
	fmt.Fprintf(w, "auto_import_enabled  %t\n", st.AutoImportEnabled)
	fmt.Fprintf(w, "watch_folder         %s\n", st.WatchFolder)
	fmt.Fprintf(w, "filename_glob        %s\n", st.FilenameGlob)
	fmt.Fprintf(w, "mapping_saved        %t\n", st.MappingSaved)
}

func init() {
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(settingsCmd)
}
