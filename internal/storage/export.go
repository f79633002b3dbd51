// ABOUTME: Export and import functionality for experiment data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format. Rows are the stored column →
// value maps with nulls omitted.
type ExportData struct {
	Version    string           `json:"version" yaml:"version"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Tool       string           `json:"tool" yaml:"tool"`
	Daily      []map[string]any `json:"daily_log" yaml:"daily_log"`
	Nutrition  []map[string]any `json:"nutrition_log" yaml:"nutrition_log"`
	Sport      []map[string]any `json:"sport_tests" yaml:"sport_tests"`
	Blood      []map[string]any `json:"blood_tests" yaml:"blood_tests"`
}

func (d *ExportData) rows(kind models.TableKind) *[]map[string]any {
	switch kind {
	case models.KindDaily:
		return &d.Daily
	case models.KindNutrition:
		return &d.Nutrition
	case models.KindSport:
		return &d.Sport
	case models.KindBlood:
		return &d.Blood
	}
	return nil
}

// GetAllData retrieves all data for export.
func (s *Store) GetAllData() (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: s.now(),
		Tool:       "plantfit",
	}
	for _, kind := range models.AllTableKinds {
		t, _ := s.table(kind)
		rows, err := t.Maps()
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", kind, err)
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		*data.rows(kind) = rows
	}
	return data, nil
}

// ImportData upserts every row of an export and returns how many were
// written. Derived and timestamp columns in the rows are ignored.
func (s *Store) ImportData(data *ExportData) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, kind := range models.AllTableKinds {
		sch, _ := SchemaFor(kind)
		dateCol, labelCol := sch.KeyColumns()
		for i, row := range *data.rows(kind) {
			date, _ := row[dateCol].(string)
			label, _ := row[labelCol].(string)
			d, err := schema.ParseDate(date)
			if err != nil {
				return n, fmt.Errorf("import %s row %d: %w", kind, i+1, err)
			}
			fields := schema.Fields{}
			for col, v := range row {
				if c, ok := sch.Column(col); ok && c.Writable() {
					fields[col] = v
				}
			}
			res, err := s.upsert(kind, schema.NewKey(d, label), fields)
			if err != nil {
				return n, fmt.Errorf("import %s row %d: %w", kind, i+1, err)
			}
			if res.Outcome != Skipped {
				n++
			}
		}
	}
	return n, nil
}

// ImportJSON imports data from JSON bytes.
func (s *Store) ImportJSON(data []byte) (int, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return 0, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return s.ImportData(&exportData)
}

// ExportJSON exports all data as JSON.
func (s *Store) ExportJSON() ([]byte, error) {
	data, err := s.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML.
func (s *Store) ExportYAML() ([]byte, error) {
	data, err := s.GetAllData()
	if err != nil {
		return nil, err
	}
	yamlData := struct {
		Version    string           `yaml:"version"`
		ExportedAt string           `yaml:"exported_at"`
		Tool       string           `yaml:"tool"`
		Daily      []map[string]any `yaml:"daily_log"`
		Nutrition  []map[string]any `yaml:"nutrition_log"`
		Sport      []map[string]any `yaml:"sport_tests"`
		Blood      []map[string]any `yaml:"blood_tests"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Daily:      data.Daily,
		Nutrition:  data.Nutrition,
		Sport:      data.Sport,
		Blood:      data.Blood,
	}
	return yaml.Marshal(yamlData)
}

// markdownColumns are the columns shown per table in Markdown exports.
var markdownColumns = map[models.TableKind][]string{
	models.KindDaily: {"date", "weekday", "phase", "sleep_hours", "total_steps", "intake_kcal",
		"protein_g", "body_weight", "energy_balance", "recovery_index", "wellbeing_score"},
	models.KindNutrition: {"date", "phase", "breakfast", "lunch", "dinner", "intake_kcal", "protein_g"},
	models.KindSport: {"test_date", "test_type", "cooper_distance", "run5k_time", "pushups_reps",
		"plank_time", "burpee_reps", "vo2max_value"},
	models.KindBlood: {"test_date", "test_type", "hemoglobin", "ferritin", "cholesterol", "ldl_chol", "tsh_basal"},
}

// ExportMarkdown renders the tables as Markdown. A nil kind exports all
// four; since, if set, drops rows dated earlier.
func (s *Store) ExportMarkdown(kind *models.TableKind, since *time.Time) (string, error) {
	kinds := models.AllTableKinds
	if kind != nil {
		kinds = []models.TableKind{*kind}
	}

	var sb strings.Builder
	now := s.now()
	sb.WriteString(fmt.Sprintf("# Plantfit Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, k := range kinds {
		rows, err := s.Rows(k)
		if err != nil {
			return "", err
		}
		sch, _ := SchemaFor(k)
		dateCol, _ := sch.KeyColumns()
		if since != nil {
			cutoff := schema.Day(*since).Format(schema.DateLayout)
			var filtered []map[string]any
			for _, r := range rows {
				if d, _ := r[dateCol].(string); d >= cutoff {
					filtered = append(filtered, r)
				}
			}
			rows = filtered
		}
		if len(rows) == 0 {
			continue
		}

		cols := markdownColumns[k]
		sb.WriteString(fmt.Sprintf("## %s\n\n", sch.Name()))
		sb.WriteString("| " + strings.Join(cols, " | ") + " |\n")
		sb.WriteString("|" + strings.Repeat("---|", len(cols)) + "\n")
		for _, r := range rows {
			cells := make([]string, len(cols))
			for i, c := range cols {
				cells[i] = FormatValue(r[c])
			}
			sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// FormatValue renders a row value for tables: empty for null, numbers with
// at most two decimals.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(math.Round(x*100)/100, 'f', -1, 64)
	case string:
		return strings.ReplaceAll(x, "|", "/")
	}
	return fmt.Sprint(v)
}
