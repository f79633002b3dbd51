// ABOUTME: Settings and Goals documents stored as small JSON files.
// ABOUTME: Defaults mirror the values a fresh installation starts with.
package models

// Settings controls the watch-folder auto-import.
type Settings struct {
	AutoImportEnabled bool   `json:"auto_import_enabled"`
	WatchFolder       string `json:"watch_folder" validate:"required_if=AutoImportEnabled true"`
	FilenameGlob      string `json:"filename_glob" validate:"required"`
	MappingSaved      bool   `json:"mapping_saved"`
}

// DefaultSettings returns the settings of a fresh installation.
func DefaultSettings() Settings {
	return Settings{FilenameGlob: "*.csv"}
}

// Goals are the personal targets used for goal attainment.
type Goals struct {
	SleepHoursGoal    float64 `json:"sleep_hours_goal" validate:"gt=0,lte=24"`
	TotalStepsGoal    float64 `json:"total_steps_goal" validate:"gt=0"`
	IntakeKcalGoal    float64 `json:"intake_kcal_goal" validate:"gt=0"`
	ProteinGPerKgGoal float64 `json:"protein_g_per_kg_goal" validate:"gt=0"`
}

// DefaultGoals returns the goals of a fresh installation.
func DefaultGoals() Goals {
	return Goals{
		SleepHoursGoal:    8.0,
		TotalStepsGoal:    10000,
		IntakeKcalGoal:    2500,
		ProteinGPerKgGoal: 1.6,
	}
}

// ColumnMapping maps a schema column to a column of a foreign CSV file.
type ColumnMapping map[string]string
