// ABOUTME: DailyRecord model for the main daily log.
// ABOUTME: Sleep, activity, intake, circulation, wellbeing and derived metrics.
package models

import "time"

// DailyRecord is one row of the daily log, keyed by (Date, Phase).
// Two rows may share a calendar date during the phase transition.
type DailyRecord struct {
	Date    time.Time `col:"date,key"`
	Weekday *string   `col:"weekday,derived"`
	Phase   Phase     `col:"phase,key"`

	// Sleep & recovery
	SleepHours       *float64 `col:"sleep_hours"`
	SleepScore       *float64 `col:"sleep_score"`
	HRVSleepAvg      *float64 `col:"hrv_sleep_avg"`
	RHRSleepAvg      *float64 `col:"rhr_sleep_avg"`
	RHRSleepMin      *float64 `col:"rhr_sleep_min"`
	SpO2SleepAvg     *float64 `col:"spo2_sleep_avg"`
	SpO2SleepMin     *float64 `col:"spo2_sleep_min"`
	DeepSleepHours   *float64 `col:"deep_sleep_hours"`
	DeepSleepPercent *float64 `col:"deep_sleep_percent"`
	Awakenings       *float64 `col:"awakenings"`

	// Activity
	TotalSteps    *float64 `col:"total_steps"`
	TotalKcalBurn *float64 `col:"total_kcal_burn"`

	// Intake, mirrored in the nutrition diary
	IntakeKcal *float64 `col:"intake_kcal"`
	CarbsG     *float64 `col:"carbs_g"`
	ProteinG   *float64 `col:"protein_g"`
	FatG       *float64 `col:"fat_g"`
	WaterML    *float64 `col:"water_ml"`

	// Body & circulation
	MorningPulse *float64 `col:"morning_pulse"`
	HRVDayAvg    *float64 `col:"hrv_day_avg"`
	SpO2DayAvg   *float64 `col:"spo2_day_avg"`
	BPSys        *float64 `col:"bp_sys"`
	BPDia        *float64 `col:"bp_dia"`
	BodyWeight   *float64 `col:"body_weight"`
	StressAvg    *float64 `col:"stress_avg"`
	StressPeak   *float64 `col:"stress_peak"`

	// Wellbeing
	Energy        *float64 `col:"energy"`
	Mood          *float64 `col:"mood"`
	Motivation    *float64 `col:"motivation"`
	Concentration *float64 `col:"concentration"`
	Note          *string  `col:"note"`

	// Derived
	EnergyBalance  *float64 `col:"energy_balance,derived"`
	ProteinGPerKg  *float64 `col:"protein_g_per_kg,derived"`
	RecoveryIndex  *float64 `col:"recovery_index,derived"`
	LoadScore      *float64 `col:"load_score,derived"`
	WellbeingScore *float64 `col:"wellbeing_score,derived"`
	StressBalance  *float64 `col:"stress_balance,derived"`

	LastModified *time.Time `col:"last_modified"`
}

// NewDailyRecord returns an all-null record for the given key.
func NewDailyRecord(date time.Time, phase Phase) *DailyRecord {
	return &DailyRecord{Date: date, Phase: phase}
}
