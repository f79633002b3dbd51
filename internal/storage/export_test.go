// ABOUTME: Tests for JSON, YAML and Markdown export plus JSON restore.
// ABOUTME: Verifies stored values survive an export/import cycle.
package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"gopkg.in/yaml.v3"
)

func seedStore(t *testing.T, s *Store) {
	t.Helper()
	mustUpsert(t, s, models.KindDaily, key("2024-03-01", "Omnivor"), schema.Fields{
		"sleep_hours": 7.25, "intake_kcal": 2400, "total_kcal_burn": 2100, "body_weight": 75, "protein_g": 120,
		"note": "gut | geschlafen",
	})
	mustUpsert(t, s, models.KindDaily, key("2024-03-20", "Vegan"), schema.Fields{"sleep_hours": 6.5})
	mustUpsert(t, s, models.KindNutrition, key("2024-03-20", "Vegan"), schema.Fields{"lunch": "Tofu-Bowl"})
	mustUpsert(t, s, models.KindSport, key("2024-03-02", "Baseline (Omnivor)"), schema.Fields{"pushups_reps": 35, "plank_time": "2:30"})
	mustUpsert(t, s, models.KindBlood, key("2024-03-03", "Baseline (Omnivor)"), schema.Fields{"ferritin": 80.333})
}

func TestExportJSON(t *testing.T) {
	s := setupCSVStore(t)
	seedStore(t, s)

	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Version != "1.0" || got.Tool != "plantfit" {
		t.Errorf("unexpected header: version=%q tool=%q", got.Version, got.Tool)
	}
	if len(got.Daily) != 2 || len(got.Nutrition) != 2 || len(got.Sport) != 1 || len(got.Blood) != 1 {
		t.Fatalf("unexpected row counts: %d/%d/%d/%d", len(got.Daily), len(got.Nutrition), len(got.Sport), len(got.Blood))
	}
	if got.Daily[0]["sleep_hours"] != 7.25 {
		t.Errorf("sleep_hours = %v, want 7.25", got.Daily[0]["sleep_hours"])
	}
	if got.Daily[0]["energy_balance"] != 300.0 {
		t.Errorf("energy_balance = %v, want 300", got.Daily[0]["energy_balance"])
	}
	if _, ok := got.Daily[1]["intake_kcal"]; ok {
		t.Error("null intake must be omitted, not exported as 0")
	}
}

func TestExportJSONEmpty(t *testing.T) {
	s := setupCSVStore(t)
	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"daily_log": []`) {
		t.Errorf("empty tables should export as empty lists:\n%s", data)
	}
}

func TestExportYAML(t *testing.T) {
	s := setupCSVStore(t)
	seedStore(t, s)

	data, err := s.ExportYAML()
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}
	var got map[string]any
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	for _, k := range []string{"version", "exported_at", "daily_log", "nutrition_log", "sport_tests", "blood_tests"} {
		if _, ok := got[k]; !ok {
			t.Errorf("YAML missing %q", k)
		}
	}
	sport, _ := got["sport_tests"].([]any)
	if len(sport) != 1 {
		t.Fatalf("expected 1 sport row, got %v", got["sport_tests"])
	}
	if row, _ := sport[0].(map[string]any); row["plank_time"] != "2:30" {
		t.Errorf("plank_time = %v, want the string 2:30", row["plank_time"])
	}
}

func TestExportMarkdown(t *testing.T) {
	s := setupCSVStore(t)
	seedStore(t, s)

	md, err := s.ExportMarkdown(nil, nil)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	for _, want := range []string{
		"# Plantfit Export",
		"## daily_log",
		"## nutrition_log",
		"## sport_tests",
		"## blood_tests",
		"| date | weekday | phase |",
		"| 2024-03-01 | Freitag | Omnivor | 7.25 |",
		"| 80.33 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestExportMarkdownWithSinceAndKind(t *testing.T) {
	s := setupCSVStore(t)
	seedStore(t, s)

	kind := models.KindDaily
	since := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	md, err := s.ExportMarkdown(&kind, &since)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}
	if strings.Contains(md, "2024-03-01") {
		t.Error("rows before since should be filtered out")
	}
	if !strings.Contains(md, "2024-03-20") {
		t.Error("rows after since should be kept")
	}
	if strings.Contains(md, "## sport_tests") {
		t.Error("only the requested table should be exported")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{2.0, "2"},
		{80.333, "80.33"},
		{-1.005, "-1"},
		{"a|b", "a/b"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestImportJSONRestoresExport(t *testing.T) {
	src := setupCSVStore(t)
	seedStore(t, src)
	data, err := src.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	forEachBackend(t, func(t *testing.T, bc backendCase) {
		dst := setupTestStore(t, bc)
		n, err := dst.ImportJSON(data)
		if err != nil {
			t.Fatalf("ImportJSON failed: %v", err)
		}
		if n != 6 {
			t.Errorf("imported %d rows, want 6", n)
		}

		for _, kind := range models.AllTableKinds {
			want, _ := src.Rows(kind)
			got, err := dst.Rows(kind)
			if err != nil {
				t.Fatalf("Rows(%s) failed: %v", kind, err)
			}
			if len(got) != len(want) {
				t.Fatalf("%s: %d rows, want %d", kind, len(got), len(want))
			}
			for i := range want {
				for col, v := range want[i] {
					if col == "last_modified" {
						continue
					}
					if got[i][col] != v {
						t.Errorf("%s row %d %s = %v, want %v", kind, i, col, got[i][col], v)
					}
				}
			}
		}
	})
}

func TestImportJSONInvalid(t *testing.T) {
	s := setupCSVStore(t)
	if _, err := s.ImportJSON([]byte("{not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}

	bad := `{"daily_log": [{"date": "gestern", "phase": "Vegan"}]}`
	if _, err := s.ImportJSON([]byte(bad)); err == nil {
		t.Error("expected error for an unparseable date")
	}
}
