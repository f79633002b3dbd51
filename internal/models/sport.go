// ABOUTME: SportTestRecord model for the six-part fitness test battery.
// ABOUTME: Keyed by test date and a free-text test type.
package models

import "time"

// SportTestRecord holds one test session. TestType is free text such as
// "Baseline (Omnivor)" and is not constrained to an enum.
type SportTestRecord struct {
	TestDate     time.Time `col:"test_date,key"`
	TestType     string    `col:"test_type,key"`
	GeneralNotes *string   `col:"general_notes"`

	// Cooper test
	CooperDistance  *float64 `col:"cooper_distance"`
	CooperAvgHR     *float64 `col:"cooper_avg_hr"`
	CooperMaxHR     *float64 `col:"cooper_max_hr"`
	CooperPace      *float64 `col:"cooper_pace"`
	CooperKcal      *float64 `col:"cooper_kcal"`
	CooperWarmup    *float64 `col:"cooper_warmup"`
	CooperAerob     *float64 `col:"cooper_aerob"`
	CooperAnaerob   *float64 `col:"cooper_anaerob"`
	CooperIntensive *float64 `col:"cooper_intensive"`
	CooperPhoto     *string  `col:"cooper_photo,attachment"`

	// 5 km run
	Run5kTime      *string  `col:"run5k_time"`
	Run5kAvgHR     *float64 `col:"run5k_avg_hr"`
	Run5kMaxHR     *float64 `col:"run5k_max_hr"`
	Run5kPace      *float64 `col:"run5k_pace"`
	Run5kKcal      *float64 `col:"run5k_kcal"`
	Run5kWarmup    *float64 `col:"run5k_warmup"`
	Run5kAerob     *float64 `col:"run5k_aerob"`
	Run5kAnaerob   *float64 `col:"run5k_anaerob"`
	Run5kIntensive *float64 `col:"run5k_intensive"`
	Run5kPhoto     *string  `col:"run5k_photo,attachment"`

	// Push-ups
	PushupsReps  *float64 `col:"pushups_reps"`
	PushupsAvgHR *float64 `col:"pushups_avg_hr"`
	PushupsMaxHR *float64 `col:"pushups_max_hr"`
	PushupsPhoto *string  `col:"pushups_photo,attachment"`

	// Plank
	PlankTime  *string  `col:"plank_time"`
	PlankAvgHR *float64 `col:"plank_avg_hr"`
	PlankMaxHR *float64 `col:"plank_max_hr"`
	PlankPhoto *string  `col:"plank_photo,attachment"`

	// Burpees
	BurpeeReps  *float64 `col:"burpee_reps"`
	BurpeeAvgHR *float64 `col:"burpee_avg_hr"`
	BurpeeMaxHR *float64 `col:"burpee_max_hr"`
	BurpeePhoto *string  `col:"burpee_photo,attachment"`

	// VO2max
	VO2maxValue    *float64 `col:"vo2max_value"`
	VO2maxAvgHR    *float64 `col:"vo2max_avg_hr"`
	VO2maxMaxHR    *float64 `col:"vo2max_max_hr"`
	VO2maxDuration *string  `col:"vo2max_duration"`
	VO2maxSpeed    *string  `col:"vo2max_speed"`
	VO2maxPhoto    *string  `col:"vo2max_photo,attachment"`

	LastModified *time.Time `col:"last_modified"`
}
