// ABOUTME: NutritionRecord model for the nutrition diary.
// ABOUTME: Meal texts plus a reconciled copy of the daily intake fields.
package models

import "time"

// NutritionRecord is one diary entry, keyed by (Date, Phase).
type NutritionRecord struct {
	Date  time.Time `col:"date,key"`
	Phase Phase     `col:"phase,key"`

	Breakfast     *string `col:"breakfast"`
	Snack1        *string `col:"snack_1"`
	Lunch         *string `col:"lunch"`
	Snack2        *string `col:"snack_2"`
	Dinner        *string `col:"dinner"`
	Supplements   *string `col:"supplements"`
	NutritionNote *string `col:"nutrition_note"`

	IntakeKcal *float64 `col:"intake_kcal"`
	CarbsG     *float64 `col:"carbs_g"`
	ProteinG   *float64 `col:"protein_g"`
	FatG       *float64 `col:"fat_g"`
	WaterML    *float64 `col:"water_ml"`

	LastModified *time.Time `col:"last_modified"`
}
