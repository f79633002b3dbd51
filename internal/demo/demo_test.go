// ABOUTME: Tests for the synthetic demo dataset.
// ABOUTME: Checks determinism, row counts, phase split and value ranges.
package demo

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start = time.Date(2024, 1, 1, 15, 30, 0, 0, time.Local)
	now   = time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(42, start, now)
	b := Generate(42, start, now.Add(time.Hour))

	ignoreStamp := cmpopts.IgnoreFields(models.DailyRecord{}, "LastModified")
	if diff := cmp.Diff(a.Daily, b.Daily, ignoreStamp); diff != "" {
		t.Errorf("daily rows differ for the same seed (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Blood, b.Blood, cmpopts.IgnoreFields(models.BloodTestRecord{}, "LastModified")); diff != "" {
		t.Errorf("blood rows differ for the same seed (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Sport, b.Sport, cmpopts.IgnoreFields(models.SportTestRecord{}, "LastModified")); diff != "" {
		t.Errorf("sport rows differ for the same seed (-a +b):\n%s", diff)
	}

	c := Generate(7, start, now)
	assert.NotEqual(t, *a.Daily[0].SleepHours+*a.Daily[0].BodyWeight+*a.Daily[1].HRVSleepAvg,
		*c.Daily[0].SleepHours+*c.Daily[0].BodyWeight+*c.Daily[1].HRVSleepAvg,
		"different seeds should produce different values")
}

func TestGenerateShape(t *testing.T) {
	ds := Generate(42, start, now)

	require.Len(t, ds.Daily, Days)
	require.Len(t, ds.Nutrition, Days)
	require.Len(t, ds.Sport, 4)
	require.Len(t, ds.Blood, 2)

	counts := map[models.Phase]int{}
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, r := range ds.Daily {
		counts[r.Phase]++
		assert.True(t, r.Date.Equal(first.AddDate(0, 0, i)), "day %d has date %s", i+1, r.Date)
		if i < Days/2 {
			assert.Equal(t, models.PhaseOmnivore, r.Phase)
		} else {
			assert.Equal(t, models.PhaseVegan, r.Phase)
		}
		assert.Equal(t, Note, *r.Note)
		assert.Nil(t, r.Weekday, "derived columns are left to the calculator")
		assert.Nil(t, r.EnergyBalance)
	}
	assert.Equal(t, 28, counts[models.PhaseOmnivore])
	assert.Equal(t, 28, counts[models.PhaseVegan])

	assert.Equal(t, "Baseline (Omnivor)", ds.Blood[0].TestType)
	assert.True(t, ds.Blood[0].TestDate.Equal(first))
	assert.Equal(t, "Vegan-Test", ds.Blood[1].TestType)
	assert.True(t, ds.Blood[1].TestDate.Equal(first.AddDate(0, 0, 55)))
	assert.Nil(t, ds.Blood[0].PDFFile)

	wantSport := []struct {
		testType string
		offset   int
	}{
		{"Baseline (Omnivor)", 0},
		{"Mid-Omnivor (2W)", 13},
		{"Early-Vegan (2W)", 41},
		{"Post-Vegan (4W)", 55},
	}
	for i, w := range wantSport {
		assert.Equal(t, w.testType, ds.Sport[i].TestType)
		assert.True(t, ds.Sport[i].TestDate.Equal(first.AddDate(0, 0, w.offset)), "%s date", w.testType)
		assert.Equal(t, SportNote, *ds.Sport[i].GeneralNotes)
		assert.Nil(t, ds.Sport[i].CooperPhoto)
	}
	assert.Equal(t, "26:00", *ds.Sport[3].Run5kTime)
	assert.Equal(t, "12.0 km/h", *ds.Sport[3].VO2maxSpeed)
}

func TestGenerateNutritionMatchesDaily(t *testing.T) {
	ds := Generate(1, start, now)
	for i := range ds.Daily {
		d, n := ds.Daily[i], ds.Nutrition[i]
		require.True(t, d.Date.Equal(n.Date))
		require.Equal(t, d.Phase, n.Phase)
		assert.Equal(t, *d.IntakeKcal, *n.IntakeKcal)
		assert.Equal(t, *d.ProteinG, *n.ProteinG)
		assert.Equal(t, *d.WaterML, *n.WaterML)
		assert.NotSame(t, d.IntakeKcal, n.IntakeKcal)
		assert.NotNil(t, n.Breakfast)
		assert.NotNil(t, n.Snack2)
	}
	assert.Equal(t, omnivoreSupplements, *ds.Nutrition[0].Supplements)
	assert.Equal(t, veganSupplements, *ds.Nutrition[Days-1].Supplements)
	assert.Equal(t, veganSnacks[0][0], *ds.Nutrition[Days/2].Snack1)
	assert.Equal(t, veganSnacks[1][0], *ds.Nutrition[Days/2+1].Snack1)
}

func TestGenerateRanges(t *testing.T) {
	for _, seed := range []uint64{0, 1, 42, 1 << 40} {
		ds := Generate(seed, start, now)
		for _, r := range ds.Daily {
			inRange(t, "sleep_hours", *r.SleepHours, 4.5, 9.5)
			inRange(t, "sleep_score", *r.SleepScore, 40, 100)
			inRange(t, "total_steps", *r.TotalSteps, 1000, 25000)
			inRange(t, "total_kcal_burn", *r.TotalKcalBurn, 1200, 5000)
			inRange(t, "intake_kcal", *r.IntakeKcal, 1200, 5000)
			inRange(t, "spo2_sleep_min", *r.SpO2SleepMin, 80, 100)
			inRange(t, "awakenings", *r.Awakenings, 0, 12)
			inRange(t, "stress_peak", *r.StressPeak, 0, 100)
			for _, v := range []float64{*r.Energy, *r.Mood, *r.Motivation, *r.Concentration} {
				inRange(t, "wellbeing", v, 1, 10)
			}

			for name, v := range map[string]float64{
				"sleep_score": *r.SleepScore, "total_steps": *r.TotalSteps, "awakenings": *r.Awakenings,
				"intake_kcal": *r.IntakeKcal, "bp_sys": *r.BPSys,
			} {
				assert.Equal(t, math.Trunc(v), v, "%s should be whole", name)
			}
			assert.LessOrEqual(t, *r.SpO2SleepMin, *r.SpO2SleepAvg)
			assert.LessOrEqual(t, *r.RHRSleepMin, *r.RHRSleepAvg)
			assert.GreaterOrEqual(t, *r.StressPeak, *r.StressAvg)
		}
	}
}

func TestGenerateStampsLastModified(t *testing.T) {
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.Local)
	ds := Generate(42, start, stamp)
	want := time.Date(2024, 3, 1, 12, 0, 0, 123456000, time.Local)
	assert.True(t, ds.Daily[0].LastModified.Equal(want))
	assert.True(t, ds.Nutrition[10].LastModified.Equal(want))
	assert.True(t, ds.Sport[2].LastModified.Equal(want))
	assert.True(t, ds.Blood[1].LastModified.Equal(want))
}

func inRange(t *testing.T, name string, v, lo, hi float64) {
	t.Helper()
	if v < lo || v > hi {
		t.Errorf("%s = %v, want within [%v, %v]", name, v, lo, hi)
	}
}
