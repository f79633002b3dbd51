// ABOUTME: Tests for nutrition reconciliation and derived metric computation.
// ABOUTME: Includes property checks for idempotence and input immutability.
package metrics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"pgregory.net/rapid"
)

func day(s string) time.Time {
	d, err := schema.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeEmptyIsUnchanged(t *testing.T) {
	nutrition := []models.NutritionRecord{{Date: day("2024-03-01"), Phase: models.PhaseVegan, IntakeKcal: models.Float(1800)}}
	got := Compute(nil, nutrition)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

// A daily row with intake and burn set gets weekday and energy balance.
func TestComputeDailyOnly(t *testing.T) {
	daily := []models.DailyRecord{{
		Date:          day("2024-03-01"),
		Phase:         models.PhaseVegan,
		IntakeKcal:    models.Float(2000),
		TotalKcalBurn: models.Float(2500),
		BodyWeight:    models.Float(70),
		ProteinG:      models.Float(105),
	}}

	got := Compute(daily, nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	r := got[0]
	if r.Weekday == nil || *r.Weekday != "Freitag" {
		t.Errorf("weekday = %v, want Freitag", r.Weekday)
	}
	if r.EnergyBalance == nil || *r.EnergyBalance != -500 {
		t.Errorf("energy_balance = %v, want -500", r.EnergyBalance)
	}
	if r.ProteinGPerKg == nil || *r.ProteinGPerKg != 1.5 {
		t.Errorf("protein_g_per_kg = %v, want 1.5", r.ProteinGPerKg)
	}
}

// Nutrition-only keys surface as daily rows.
func TestComputeNutritionOnlyDayIsAppended(t *testing.T) {
	daily := []models.DailyRecord{{Date: day("2024-03-01"), Phase: models.PhaseVegan}}
	nutrition := []models.NutritionRecord{{
		Date:       day("2024-03-02"),
		Phase:      models.PhaseVegan,
		IntakeKcal: models.Float(1800),
		ProteinG:   models.Float(90),
	}}

	got := Compute(daily, nutrition)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	added := got[1]
	if !added.Date.Equal(day("2024-03-02")) || added.Phase != models.PhaseVegan {
		t.Fatalf("unexpected appended key %v/%s", added.Date, added.Phase)
	}
	if *added.IntakeKcal != 1800 || *added.ProteinG != 90 {
		t.Errorf("intake fields not copied: %v %v", *added.IntakeKcal, *added.ProteinG)
	}
	if *added.TotalKcalBurn != 0 || *added.EnergyBalance != 1800 {
		t.Errorf("burn=%v balance=%v, want 0 and 1800", *added.TotalKcalBurn, *added.EnergyBalance)
	}
	if added.BodyWeight != nil || added.ProteinGPerKg != nil {
		t.Error("non-nutrition fields should stay null")
	}
	if added.Weekday == nil || *added.Weekday != "Samstag" {
		t.Errorf("weekday = %v, want Samstag", added.Weekday)
	}
}

func TestReconcileDailyWins(t *testing.T) {
	daily := []models.DailyRecord{{Date: day("2024-03-01"), Phase: models.PhaseOmnivore, ProteinG: models.Float(120)}}
	nutrition := []models.NutritionRecord{{
		Date: day("2024-03-01"), Phase: models.PhaseOmnivore,
		ProteinG: models.Float(80), FatG: models.Float(70),
	}}

	got := Reconcile(daily, nutrition)
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if *got[0].ProteinG != 120 {
		t.Errorf("protein = %v, want daily value 120", *got[0].ProteinG)
	}
	if got[0].FatG == nil || *got[0].FatG != 70 {
		t.Errorf("fat = %v, want nutrition fill 70", got[0].FatG)
	}
}

func TestReconcileDuplicateNutritionKeysFirstWins(t *testing.T) {
	daily := []models.DailyRecord{{Date: day("2024-03-01"), Phase: models.PhaseVegan}}
	nutrition := []models.NutritionRecord{
		{Date: day("2024-03-01"), Phase: models.PhaseVegan, WaterML: models.Float(2000)},
		{Date: day("2024-03-01"), Phase: models.PhaseVegan, WaterML: models.Float(3000)},
	}

	got := Reconcile(daily, nutrition)
	if len(got) != 1 {
		t.Fatalf("duplicate nutrition keys must not duplicate daily rows, got %d", len(got))
	}
	if *got[0].WaterML != 2000 {
		t.Errorf("water = %v, want first row's 2000", *got[0].WaterML)
	}

	dups := DuplicateKeys(NutritionKeys(nutrition))
	if len(dups) != 1 || dups[0].String() != "2024-03-01/Vegan" {
		t.Errorf("DuplicateKeys = %v", dups)
	}
}

func TestReconcileKeepsDuplicateDailyRows(t *testing.T) {
	daily := []models.DailyRecord{
		{Date: day("2024-03-01"), Phase: models.PhaseVegan},
		{Date: day("2024-03-01"), Phase: models.PhaseVegan},
	}
	nutrition := []models.NutritionRecord{{Date: day("2024-03-01"), Phase: models.PhaseVegan, CarbsG: models.Float(200)}}

	got := Reconcile(daily, nutrition)
	if len(got) != 2 {
		t.Fatalf("expected both daily rows kept, got %d", len(got))
	}
	for i, r := range got {
		if r.CarbsG == nil || *r.CarbsG != 200 {
			t.Errorf("row %d carbs = %v, want 200", i, r.CarbsG)
		}
	}
}

func TestDerivedFieldGuards(t *testing.T) {
	tests := []struct {
		name  string
		rec   models.DailyRecord
		check func(t *testing.T, r models.DailyRecord)
	}{
		{
			name: "zero body weight gives null protein per kg",
			rec:  models.DailyRecord{BodyWeight: models.Float(0), ProteinG: models.Float(100)},
			check: func(t *testing.T, r models.DailyRecord) {
				if r.ProteinGPerKg != nil {
					t.Errorf("protein_g_per_kg = %v, want nil", *r.ProteinGPerKg)
				}
			},
		},
		{
			name: "zero rhr gives null recovery index",
			rec:  models.DailyRecord{HRVSleepAvg: models.Float(50), RHRSleepAvg: models.Float(0), SleepScore: models.Float(80)},
			check: func(t *testing.T, r models.DailyRecord) {
				if r.RecoveryIndex != nil {
					t.Errorf("recovery_index = %v, want nil", *r.RecoveryIndex)
				}
			},
		},
		{
			name: "recovery index formula",
			rec:  models.DailyRecord{HRVSleepAvg: models.Float(50), RHRSleepAvg: models.Float(50), SleepScore: models.Float(80)},
			check: func(t *testing.T, r models.DailyRecord) {
				if r.RecoveryIndex == nil || *r.RecoveryIndex != 80 {
					t.Errorf("recovery_index = %v, want 80", r.RecoveryIndex)
				}
			},
		},
		{
			name: "wellbeing ignores nulls",
			rec:  models.DailyRecord{Energy: models.Float(6), Motivation: models.Float(8)},
			check: func(t *testing.T, r models.DailyRecord) {
				if r.WellbeingScore == nil || *r.WellbeingScore != 7 {
					t.Errorf("wellbeing_score = %v, want 7", r.WellbeingScore)
				}
			},
		},
		{
			name: "wellbeing all null",
			rec:  models.DailyRecord{},
			check: func(t *testing.T, r models.DailyRecord) {
				if r.WellbeingScore != nil {
					t.Errorf("wellbeing_score = %v, want nil", *r.WellbeingScore)
				}
			},
		},
		{
			name: "stress balance",
			rec:  models.DailyRecord{StressAvg: models.Float(35)},
			check: func(t *testing.T, r models.DailyRecord) {
				if r.StressBalance == nil || *r.StressBalance != 65 {
					t.Errorf("stress_balance = %v, want 65", r.StressBalance)
				}
			},
		},
		{
			name: "load score always null",
			rec:  models.DailyRecord{LoadScore: models.Float(99)},
			check: func(t *testing.T, r models.DailyRecord) {
				if r.LoadScore != nil {
					t.Errorf("load_score = %v, want nil", *r.LoadScore)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			rec.Date = day("2024-03-04")
			rec.Phase = models.PhaseOmnivore
			got := Compute([]models.DailyRecord{rec}, nil)
			tt.check(t, got[0])
			if *got[0].Weekday != "Montag" {
				t.Errorf("weekday = %s, want Montag", *got[0].Weekday)
			}
		})
	}
}

func TestRefreshKeepsRawNulls(t *testing.T) {
	daily := []models.DailyRecord{{Date: day("2024-03-01"), Phase: models.PhaseVegan, TotalKcalBurn: models.Float(2100)}}
	got := Refresh(daily)
	if got[0].IntakeKcal != nil {
		t.Error("Refresh must not write zeros into raw fields")
	}
	if got[0].EnergyBalance == nil || *got[0].EnergyBalance != -2100 {
		t.Errorf("energy_balance = %v, want -2100", got[0].EnergyBalance)
	}
}

func drawFloat(t *rapid.T, label string, lo, hi float64) *float64 {
	if rapid.Bool().Draw(t, label+"_null") {
		return nil
	}
	return models.Float(rapid.Float64Range(lo, hi).Draw(t, label))
}

var base = day("2024-01-01")

func drawDaily(t *rapid.T) models.DailyRecord {
	return models.DailyRecord{
		Date:          base.AddDate(0, 0, rapid.IntRange(0, 20).Draw(t, "day")),
		Phase:         rapid.SampledFrom(models.AllPhases).Draw(t, "phase"),
		SleepScore:    drawFloat(t, "sleep_score", 0, 100),
		HRVSleepAvg:   drawFloat(t, "hrv", -5, 120),
		RHRSleepAvg:   drawFloat(t, "rhr", -5, 90),
		TotalKcalBurn: drawFloat(t, "burn", 0, 4000),
		IntakeKcal:    drawFloat(t, "intake", 0, 4000),
		ProteinG:      drawFloat(t, "protein", 0, 250),
		WaterML:       drawFloat(t, "water", 0, 4000),
		BodyWeight:    drawFloat(t, "weight", -1, 120),
		StressAvg:     drawFloat(t, "stress", 0, 100),
		Energy:        drawFloat(t, "energy", 1, 10),
		Mood:          drawFloat(t, "mood", 1, 10),
		Motivation:    drawFloat(t, "motivation", 1, 10),
	}
}

func drawNutrition(t *rapid.T) models.NutritionRecord {
	return models.NutritionRecord{
		Date:       base.AddDate(0, 0, rapid.IntRange(0, 20).Draw(t, "day")),
		Phase:      rapid.SampledFrom(models.AllPhases).Draw(t, "phase"),
		IntakeKcal: drawFloat(t, "intake", 0, 4000),
		CarbsG:     drawFloat(t, "carbs", 0, 500),
		ProteinG:   drawFloat(t, "protein", 0, 250),
		FatG:       drawFloat(t, "fat", 0, 200),
		WaterML:    drawFloat(t, "water", 0, 4000),
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		daily := rapid.SliceOfN(rapid.Custom(drawDaily), 1, 12).Draw(t, "daily")
		nutrition := rapid.SliceOfN(rapid.Custom(drawNutrition), 0, 12).Draw(t, "nutrition")

		once := Compute(daily, nutrition)
		twice := Compute(once, nutrition)
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("Compute drifted on second run (-once +twice):\n%s", diff)
		}

		viaSave := Compute(Refresh(daily), nutrition)
		if diff := cmp.Diff(once, viaSave); diff != "" {
			t.Fatalf("save path changed read result (-direct +refreshed):\n%s", diff)
		}
	})
}

var dailySchema = schema.MustNew("daily_log", models.DailyRecord{})

func encodeAll(recs []models.DailyRecord) [][]string {
	rows := make([][]string, len(recs))
	for i := range recs {
		rows[i] = dailySchema.Encode(&recs[i])
	}
	return rows
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		daily := rapid.SliceOfN(rapid.Custom(drawDaily), 1, 8).Draw(t, "daily")
		nutrition := rapid.SliceOfN(rapid.Custom(drawNutrition), 0, 8).Draw(t, "nutrition")

		before := encodeAll(daily)
		_ = Compute(daily, nutrition)
		if diff := cmp.Diff(before, encodeAll(daily)); diff != "" {
			t.Fatalf("Compute mutated its daily input:\n%s", diff)
		}
	})
}

func TestReconcilePrecedence(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDaily(t)
		n := drawNutrition(t)
		n.Date, n.Phase = d.Date, d.Phase

		got := Reconcile([]models.DailyRecord{d}, []models.NutritionRecord{n})
		if len(got) != 1 {
			t.Fatalf("expected 1 row, got %d", len(got))
		}
		pairs := []struct {
			name         string
			daily, nutri *float64
			got          *float64
		}{
			{"intake_kcal", d.IntakeKcal, n.IntakeKcal, got[0].IntakeKcal},
			{"protein_g", d.ProteinG, n.ProteinG, got[0].ProteinG},
			{"water_ml", d.WaterML, n.WaterML, got[0].WaterML},
			{"carbs_g", d.CarbsG, n.CarbsG, got[0].CarbsG},
		}
		for _, p := range pairs {
			want := p.daily
			if want == nil {
				want = p.nutri
			}
			if diff := cmp.Diff(want, p.got); diff != "" {
				t.Fatalf("%s precedence wrong:\n%s", p.name, diff)
			}
		}
	})
}
