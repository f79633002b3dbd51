// ABOUTME: Derived daily metrics: weekday, energy balance, protein per kg,
// ABOUTME: recovery index, wellbeing and stress balance.
package metrics

import (
	"time"

	"github.com/harperreed/plantfit/internal/models"
)

// Weekdays maps time.Weekday to the German day names used in the log.
var Weekdays = map[time.Weekday]string{
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
	time.Sunday:    "Sonntag",
}

// WeekdayName returns the German weekday of d.
func WeekdayName(d time.Time) string {
	return Weekdays[d.Weekday()]
}

// Compute is the read path: it reconciles nutrition into daily, fills null
// total_kcal_burn and intake_kcal with 0 and recomputes every derived field.
// An empty daily table is returned unchanged. Compute is idempotent and does
// not modify its inputs.
func Compute(daily []models.DailyRecord, nutrition []models.NutritionRecord) []models.DailyRecord {
	if len(daily) == 0 {
		return daily
	}

	out := Reconcile(daily, nutrition)
	for i := range out {
		r := &out[i]
		if r.TotalKcalBurn == nil {
			r.TotalKcalBurn = models.Float(0)
		}
		if r.IntakeKcal == nil {
			r.IntakeKcal = models.Float(0)
		}
		derive(r)
	}
	return out
}

// Refresh is the save path: weekday and derived fields only. Raw fields stay
// as entered, so a null intake is still null on disk; energy_balance counts
// it as 0. Compute(Refresh(x), n) equals Compute(x, n).
func Refresh(daily []models.DailyRecord) []models.DailyRecord {
	out := make([]models.DailyRecord, len(daily))
	copy(out, daily)
	for i := range out {
		derive(&out[i])
	}
	return out
}

func derive(r *models.DailyRecord) {
	r.Weekday = models.String(WeekdayName(r.Date))

	r.EnergyBalance = models.Float(value(r.IntakeKcal) - value(r.TotalKcalBurn))

	r.ProteinGPerKg = nil
	if r.BodyWeight != nil && *r.BodyWeight > 0 && r.ProteinG != nil {
		r.ProteinGPerKg = models.Float(*r.ProteinG / *r.BodyWeight)
	}

	r.RecoveryIndex = nil
	if r.HRVSleepAvg != nil && r.RHRSleepAvg != nil && r.SleepScore != nil &&
		*r.HRVSleepAvg > 0 && *r.RHRSleepAvg > 0 {
		r.RecoveryIndex = models.Float(*r.HRVSleepAvg * *r.SleepScore / *r.RHRSleepAvg)
	}

	// No training-load source feeds this column anymore.
	r.LoadScore = nil

	r.WellbeingScore = mean(r.Energy, r.Mood, r.Motivation)

	r.StressBalance = nil
	if r.StressAvg != nil {
		r.StressBalance = models.Float(100 - *r.StressAvg)
	}
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// mean averages the non-null values; nil when all are null.
func mean(vals ...*float64) *float64 {
	var sum float64
	var n int
	for _, v := range vals {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return models.Float(sum / float64(n))
}
