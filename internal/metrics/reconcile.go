// ABOUTME: Joins the nutrition diary into the daily log on (date, phase).
// ABOUTME: Daily values win; nutrition fills gaps and nutrition-only days are appended.
package metrics

import (
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
)

// Reconcile returns daily with nutrition folded in. Nutrition keys missing
// from daily become new rows carrying only the key and the intake fields;
// null intake fields on existing rows are filled from the nutrition row with
// the same key. When nutrition holds a key more than once the first row wins.
// The inputs are not modified.
func Reconcile(daily []models.DailyRecord, nutrition []models.NutritionRecord) []models.DailyRecord {
	out := make([]models.DailyRecord, len(daily), len(daily)+len(nutrition))
	copy(out, daily)

	byKey := make(map[schema.Key]*models.NutritionRecord, len(nutrition))
	var order []schema.Key
	for i := range nutrition {
		k := schema.NewKey(nutrition[i].Date, string(nutrition[i].Phase))
		if _, seen := byKey[k]; seen {
			continue
		}
		byKey[k] = &nutrition[i]
		order = append(order, k)
	}

	present := make(map[schema.Key]bool, len(out))
	for i := range out {
		k := schema.NewKey(out[i].Date, string(out[i].Phase))
		present[k] = true
		if n, ok := byKey[k]; ok {
			fillIntake(&out[i], n)
		}
	}

	for _, k := range order {
		if present[k] {
			continue
		}
		n := byKey[k]
		rec := models.DailyRecord{Date: k.Date, Phase: n.Phase}
		fillIntake(&rec, n)
		out = append(out, rec)
	}
	return out
}

// fillIntake sets null intake fields of d from n. Pointers are replaced,
// never written through.
func fillIntake(d *models.DailyRecord, n *models.NutritionRecord) {
	fill := func(dst **float64, src *float64) {
		if *dst == nil && src != nil {
			v := *src
			*dst = &v
		}
	}
	fill(&d.IntakeKcal, n.IntakeKcal)
	fill(&d.CarbsG, n.CarbsG)
	fill(&d.ProteinG, n.ProteinG)
	fill(&d.FatG, n.FatG)
	fill(&d.WaterML, n.WaterML)
}

// DuplicateKeys returns keys that occur more than once, in first-seen order.
func DuplicateKeys(keys []schema.Key) []schema.Key {
	seen := make(map[schema.Key]int, len(keys))
	var dups []schema.Key
	for _, k := range keys {
		k = schema.NewKey(k.Date, k.Label)
		seen[k]++
		if seen[k] == 2 {
			dups = append(dups, k)
		}
	}
	return dups
}

// NutritionKeys lists the keys of the nutrition rows in table order.
func NutritionKeys(nutrition []models.NutritionRecord) []schema.Key {
	keys := make([]schema.Key, len(nutrition))
	for i, n := range nutrition {
		keys[i] = schema.NewKey(n.Date, string(n.Phase))
	}
	return keys
}

// DailyKeys lists the keys of the daily rows in table order.
func DailyKeys(daily []models.DailyRecord) []schema.Key {
	keys := make([]schema.Key, len(daily))
	for i, d := range daily {
		keys[i] = schema.NewKey(d.Date, string(d.Phase))
	}
	return keys
}
