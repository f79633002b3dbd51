// ABOUTME: Phase enum and table kinds for the diet experiment.
// ABOUTME: A phase is part of the record key, not just a label.
package models

import (
	"fmt"
	"strings"
)

// Phase is one of the two dietary regimes under comparison.
type Phase string

const (
	PhaseOmnivore Phase = "Omnivor"
	PhaseVegan    Phase = "Vegan"
)

// AllPhases lists the phases in experiment order.
var AllPhases = []Phase{PhaseOmnivore, PhaseVegan}

// IsValid reports whether p is a known phase.
func (p Phase) IsValid() bool {
	return p == PhaseOmnivore || p == PhaseVegan
}

// ParsePhase accepts a phase name in any letter case.
func ParsePhase(s string) (Phase, error) {
	for _, p := range AllPhases {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown phase %q (use Omnivor or Vegan)", s)
}

// TableKind names one of the four datasets.
type TableKind string

const (
	KindDaily     TableKind = "daily"
	KindNutrition TableKind = "nutrition"
	KindSport     TableKind = "sport"
	KindBlood     TableKind = "blood"
)

// AllTableKinds returns the table kinds in display order.
var AllTableKinds = []TableKind{KindDaily, KindNutrition, KindSport, KindBlood}

// TableNames maps a kind to its file (and SQL table) name.
var TableNames = map[TableKind]string{
	KindDaily:     "daily_log",
	KindNutrition: "nutrition_log",
	KindSport:     "sport_tests",
	KindBlood:     "blood_tests",
}

// ParseTableKind accepts a kind ("daily") or its table name ("daily_log").
func ParseTableKind(s string) (TableKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, name := range TableNames {
		if s == string(kind) || s == name {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown table %q (use daily, nutrition, sport, or blood)", s)
}

// PhaseKeyed reports whether the kind is keyed by (date, phase) rather
// than (test_date, test_type).
func (k TableKind) PhaseKeyed() bool {
	return k == KindDaily || k == KindNutrition
}

// NutritionFields are the intake columns shared by the daily log and the
// nutrition diary.
var NutritionFields = []string{"intake_kcal", "carbs_g", "protein_g", "fat_g", "water_ml"}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}
