// ABOUTME: Phase comparison statistics and goal attainment over the daily log.
// ABOUTME: Descriptive only; records are expected to carry derived metrics.
package stats

import (
	"fmt"
	"sort"

	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"github.com/harperreed/plantfit/internal/storage"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultColumns are compared when no column is requested.
var DefaultColumns = []string{
	"sleep_hours",
	"hrv_sleep_avg",
	"total_steps",
	"intake_kcal",
	"body_weight",
	"energy_balance",
	"protein_g_per_kg",
	"recovery_index",
	"wellbeing_score",
}

// PhaseStats describes one column within one phase. StdDev is the sample
// standard deviation and is zero below two values.
type PhaseStats struct {
	Phase  models.Phase `json:"phase"`
	N      int          `json:"n"`
	Mean   float64      `json:"mean"`
	StdDev float64      `json:"std_dev"`
	Median float64      `json:"median"`
	Min    float64      `json:"min"`
	Max    float64      `json:"max"`
}

// Comparison holds the per-phase statistics of one column.
type Comparison struct {
	Column string       `json:"column"`
	Phases []PhaseStats `json:"phases"`
}

// Delta is the vegan mean minus the omnivore mean. ok is false unless both
// phases have values.
func (c Comparison) Delta() (delta float64, ok bool) {
	var omni, vegan *PhaseStats
	for i := range c.Phases {
		switch c.Phases[i].Phase {
		case models.PhaseOmnivore:
			omni = &c.Phases[i]
		case models.PhaseVegan:
			vegan = &c.Phases[i]
		}
	}
	if omni == nil || vegan == nil || omni.N == 0 || vegan.N == 0 {
		return 0, false
	}
	return vegan.Mean - omni.Mean, true
}

// ComparePhases summarizes a numeric daily column per phase, in phase order.
func ComparePhases(records []models.DailyRecord, column string) (Comparison, error) {
	c, ok := storage.DailySchema.Column(column)
	if !ok || c.Kind != schema.KindNumber {
		return Comparison{}, fmt.Errorf("%q is not a numeric daily column", column)
	}

	byPhase := make(map[models.Phase][]float64)
	for i := range records {
		if v, ok := storage.DailySchema.Number(&records[i], column); ok {
			byPhase[records[i].Phase] = append(byPhase[records[i].Phase], v)
		}
	}

	out := Comparison{Column: column}
	for _, p := range models.AllPhases {
		out.Phases = append(out.Phases, describe(p, byPhase[p]))
	}
	return out, nil
}

func describe(p models.Phase, xs []float64) PhaseStats {
	ps := PhaseStats{Phase: p, N: len(xs)}
	if len(xs) == 0 {
		return ps
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	ps.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		ps.StdDev = stat.StdDev(sorted, nil)
	}
	ps.Min = floats.Min(sorted)
	ps.Max = floats.Max(sorted)

	// stat.Quantile picks an observation; the median of an even count is the midpoint.
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		ps.Median = sorted[mid]
	} else {
		ps.Median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return ps
}

// Share counts the days that met a goal among the days with a value.
type Share struct {
	Met  int `json:"met"`
	Days int `json:"days"`
}

// Ratio is Met/Days, or zero without days.
func (s Share) Ratio() float64 {
	if s.Days == 0 {
		return 0
	}
	return float64(s.Met) / float64(s.Days)
}

func (s *Share) add(v *float64, goal float64) {
	if v == nil {
		return
	}
	s.Days++
	if *v >= goal {
		s.Met++
	}
}

// Attainment is the goal attainment of one phase.
type Attainment struct {
	Phase   models.Phase `json:"phase"`
	Sleep   Share        `json:"sleep"`
	Steps   Share        `json:"steps"`
	Intake  Share        `json:"intake"`
	Protein Share        `json:"protein_per_kg"`
}

// CompareAll runs ComparePhases for every column.
func CompareAll(records []models.DailyRecord, columns []string) ([]Comparison, error) {
	if len(columns) == 0 {
		columns = DefaultColumns
	}
	out := make([]Comparison, 0, len(columns))
	for _, col := range columns {
		c, err := ComparePhases(records, col)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// GoalAttainment counts per phase how many days reached each goal.
func GoalAttainment(records []models.DailyRecord, goals models.Goals) []Attainment {
	idx := make(map[models.Phase]int, len(models.AllPhases))
	out := make([]Attainment, len(models.AllPhases))
	for i, p := range models.AllPhases {
		idx[p] = i
		out[i].Phase = p
	}
	for i := range records {
		r := &records[i]
		j, ok := idx[r.Phase]
		if !ok {
			continue
		}
		a := &out[j]
		a.Sleep.add(r.SleepHours, goals.SleepHoursGoal)
		a.Steps.add(r.TotalSteps, goals.TotalStepsGoal)
		a.Intake.add(r.IntakeKcal, goals.IntakeKcalGoal)
		a.Protein.add(r.ProteinGPerKg, goals.ProteinGPerKgGoal)
	}
	return out
}
