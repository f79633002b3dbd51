// ABOUTME: MCP tool implementations for the four experiment tables.
// ABOUTME: Upsert, update, delete and list records; metrics, phase stats and goals.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"github.com/harperreed/plantfit/internal/stats"
	"github.com/harperreed/plantfit/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const defaultLimit = 20

func (s *Server) registerTools() {
	// upsert_record
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "upsert_record",
		Description: "Create or update the record for a date and label (phase for daily/nutrition, test type for sport/blood)",
	}, s.handleUpsertRecord)

	// update_record
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_record",
		Description: "Update an existing record only; reports when no record matches",
	}, s.handleUpdateRecord)

	// delete_record
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_record",
		Description: "Delete the record for a date and label",
	}, s.handleDeleteRecord)

	// list_records
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_records",
		Description: "List the most recent records of a table",
	}, s.handleListRecords)

	// daily_metrics
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "daily_metrics",
		Description: "Daily log merged with the nutrition diary, with derived metrics",
	}, s.handleDailyMetrics)

	// compare_phases
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "compare_phases",
		Description: "Compare daily columns between the omnivore and vegan phases",
	}, s.handleComparePhases)

	// get_goals
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_goals",
		Description: "Get the personal goals and how often each phase reached them",
	}, s.handleGetGoals)

	// set_goals
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_goals",
		Description: "Change one or more personal goals",
	}, s.handleSetGoals)
}

// Tool input/output types

type recordInput struct {
	Table  string         `json:"table" jsonschema:"Table: daily, nutrition, sport or blood"`
	Date   string         `json:"date" jsonschema:"Date of the record (YYYY-MM-DD)"`
	Label  string         `json:"label" jsonschema:"Phase (Omnivor or Vegan) for daily/nutrition, test type for sport/blood"`
	Fields map[string]any `json:"fields,omitempty" jsonschema:"Column values to write; null clears a value"`
}

type recordOutput struct {
	Table   string   `json:"table"`
	Key     string   `json:"key"`
	Outcome string   `json:"outcome"`
	Applied []string `json:"applied"`
	Dropped []string `json:"dropped,omitempty"`
	Message string   `json:"message"`
}

type keyInput struct {
	Table string `json:"table" jsonschema:"Table: daily, nutrition, sport or blood"`
	Date  string `json:"date" jsonschema:"Date of the record (YYYY-MM-DD)"`
	Label string `json:"label" jsonschema:"Phase or test type of the record"`
}

type emptyInput struct{}

type simpleOutput struct {
	Message string `json:"message"`
}

type listInput struct {
	Table string `json:"table" jsonschema:"Table: daily, nutrition, sport or blood"`
	Since string `json:"since,omitempty" jsonschema:"Only records on or after this date (YYYY-MM-DD)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results, newest kept (default 20)"`
}

type listOutput struct {
	Table string           `json:"table"`
	Count int              `json:"count"`
	Rows  []map[string]any `json:"rows"`
}

type dailyMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"Only days on or after this date (YYYY-MM-DD)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max days, newest kept (default 20)"`
}

type compareInput struct {
	Columns []string `json:"columns,omitempty" jsonschema:"Numeric daily columns to compare (default: a standard set)"`
}

type comparisonOutput struct {
	Column string             `json:"column"`
	Phases []stats.PhaseStats `json:"phases"`
	Delta  *float64           `json:"delta_vegan_minus_omnivore,omitempty"`
}

type compareOutput struct {
	Comparisons []comparisonOutput `json:"comparisons"`
}

type goalsOutput struct {
	Goals      models.Goals       `json:"goals"`
	Attainment []stats.Attainment `json:"attainment"`
}

type setGoalsInput struct {
	SleepHoursGoal    *float64 `json:"sleep_hours_goal,omitempty" jsonschema:"Hours of sleep per night"`
	TotalStepsGoal    *float64 `json:"total_steps_goal,omitempty" jsonschema:"Steps per day"`
	IntakeKcalGoal    *float64 `json:"intake_kcal_goal,omitempty" jsonschema:"Energy intake per day in kcal"`
	ProteinGPerKgGoal *float64 `json:"protein_g_per_kg_goal,omitempty" jsonschema:"Protein per kg body weight per day"`
}

// Helpers

func parseKey(table, date, label string) (models.TableKind, schema.Key, error) {
	kind, err := models.ParseTableKind(table)
	if err != nil {
		return "", schema.Key{}, err
	}
	d, err := schema.ParseDate(date)
	if err != nil {
		return "", schema.Key{}, err
	}
	return kind, schema.NewKey(d, label), nil
}

func parseSince(since string) (*time.Time, error) {
	if since == "" {
		return nil, nil
	}
	d, err := schema.ParseDate(since)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// recent keeps rows dated on or after since and then the last limit rows.
func recent(rows []map[string]any, dateCol string, since *time.Time, limit int) []map[string]any {
	if limit <= 0 {
		limit = defaultLimit
	}
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		if since != nil {
			if d, err := schema.ParseDate(fmt.Sprint(r[dateCol])); err == nil && d.Before(*since) {
				continue
			}
		}
		out = append(out, r)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func toRecordOutput(kind models.TableKind, res storage.Result, msg string) recordOutput {
	applied := res.Applied
	if applied == nil {
		applied = []string{}
	}
	return recordOutput{
		Table:   models.TableNames[kind],
		Key:     res.Key.String(),
		Outcome: res.Outcome.String(),
		Applied: applied,
		Dropped: res.Dropped,
		Message: msg,
	}
}

// Tool handlers

func (s *Server) handleUpsertRecord(ctx context.Context, req *mcp.CallToolRequest, input recordInput) (*mcp.CallToolResult, recordOutput, error) {
	kind, key, err := parseKey(input.Table, input.Date, input.Label)
	if err != nil {
		return nil, recordOutput{}, err
	}
	res, err := s.repo.Upsert(kind, key, input.Fields)
	if err != nil {
		return nil, recordOutput{}, fmt.Errorf("failed to upsert record: %w", err)
	}
	s.logger.Debug("mcp upsert", zap.String("table", string(kind)), zap.String("key", res.Key.String()))
	return nil, toRecordOutput(kind, res, fmt.Sprintf("%s %s %s", res.Outcome, models.TableNames[kind], res.Key)), nil
}

func (s *Server) handleUpdateRecord(ctx context.Context, req *mcp.CallToolRequest, input recordInput) (*mcp.CallToolResult, recordOutput, error) {
	kind, key, err := parseKey(input.Table, input.Date, input.Label)
	if err != nil {
		return nil, recordOutput{}, err
	}
	res, ok, err := s.repo.Update(kind, key, input.Fields)
	if err != nil {
		return nil, recordOutput{}, fmt.Errorf("failed to update record: %w", err)
	}
	if !ok {
		return nil, toRecordOutput(kind, res, fmt.Sprintf("No %s record for %s; nothing changed", models.TableNames[kind], res.Key)), nil
	}
	return nil, toRecordOutput(kind, res, fmt.Sprintf("updated %s %s", models.TableNames[kind], res.Key)), nil
}

func (s *Server) handleDeleteRecord(ctx context.Context, req *mcp.CallToolRequest, input keyInput) (*mcp.CallToolResult, simpleOutput, error) {
	kind, key, err := parseKey(input.Table, input.Date, input.Label)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	ok, err := s.repo.Delete(kind, key)
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete record: %w", err)
	}
	if !ok {
		return nil, simpleOutput{}, fmt.Errorf("record not found: %s %s: %w", models.TableNames[kind], key, storage.ErrNotFound)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted %s %s", models.TableNames[kind], key),
	}, nil
}

func (s *Server) handleListRecords(ctx context.Context, req *mcp.CallToolRequest, input listInput) (*mcp.CallToolResult, listOutput, error) {
	kind, err := models.ParseTableKind(input.Table)
	if err != nil {
		return nil, listOutput{}, err
	}
	since, err := parseSince(input.Since)
	if err != nil {
		return nil, listOutput{}, err
	}
	sch, err := storage.SchemaFor(kind)
	if err != nil {
		return nil, listOutput{}, err
	}
	rows, err := s.repo.Rows(kind)
	if err != nil {
		return nil, listOutput{}, fmt.Errorf("failed to list records: %w", err)
	}
	dateCol, _ := sch.KeyColumns()
	rows = recent(rows, dateCol, since, input.Limit)
	return nil, listOutput{Table: models.TableNames[kind], Count: len(rows), Rows: rows}, nil
}

func (s *Server) handleDailyMetrics(ctx context.Context, req *mcp.CallToolRequest, input dailyMetricsInput) (*mcp.CallToolResult, listOutput, error) {
	since, err := parseSince(input.Since)
	if err != nil {
		return nil, listOutput{}, err
	}
	rows, err := s.repo.Rows(models.KindDaily)
	if err != nil {
		return nil, listOutput{}, fmt.Errorf("failed to compute metrics: %w", err)
	}
	rows = recent(rows, "date", since, input.Limit)
	return nil, listOutput{Table: models.TableNames[models.KindDaily], Count: len(rows), Rows: rows}, nil
}

func (s *Server) handleComparePhases(ctx context.Context, req *mcp.CallToolRequest, input compareInput) (*mcp.CallToolResult, compareOutput, error) {
	recs, err := s.repo.DailyWithMetrics()
	if err != nil {
		return nil, compareOutput{}, fmt.Errorf("failed to compute metrics: %w", err)
	}
	all, err := stats.CompareAll(recs, input.Columns)
	if err != nil {
		return nil, compareOutput{}, err
	}
	out := compareOutput{Comparisons: make([]comparisonOutput, len(all))}
	for i, c := range all {
		out.Comparisons[i].Column = c.Column
		out.Comparisons[i].Phases = c.Phases
		if d, ok := c.Delta(); ok {
			out.Comparisons[i].Delta = &d
		}
	}
	return nil, out, nil
}

func (s *Server) goals() (goalsOutput, error) {
	g, err := s.repo.LoadGoals()
	if err != nil {
		return goalsOutput{}, fmt.Errorf("failed to load goals: %w", err)
	}
	recs, err := s.repo.DailyWithMetrics()
	if err != nil {
		return goalsOutput{}, fmt.Errorf("failed to compute metrics: %w", err)
	}
	return goalsOutput{Goals: g, Attainment: stats.GoalAttainment(recs, g)}, nil
}

func (s *Server) handleGetGoals(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, goalsOutput, error) {
	out, err := s.goals()
	if err != nil {
		return nil, goalsOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleSetGoals(ctx context.Context, req *mcp.CallToolRequest, input setGoalsInput) (*mcp.CallToolResult, goalsOutput, error) {
	g, err := s.repo.LoadGoals()
	if err != nil {
		return nil, goalsOutput{}, fmt.Errorf("failed to load goals: %w", err)
	}
	changed := false
	for _, f := range []struct {
		in  *float64
		dst *float64
	}{
		{input.SleepHoursGoal, &g.SleepHoursGoal},
		{input.TotalStepsGoal, &g.TotalStepsGoal},
		{input.IntakeKcalGoal, &g.IntakeKcalGoal},
		{input.ProteinGPerKgGoal, &g.ProteinGPerKgGoal},
	} {
		if f.in != nil {
			*f.dst = *f.in
			changed = true
		}
	}
	if !changed {
		return nil, goalsOutput{}, errors.New("no goal given")
	}
	if err := s.repo.SaveGoals(g); err != nil {
		return nil, goalsOutput{}, fmt.Errorf("failed to save goals: %w", err)
	}
	out, err := s.goals()
	if err != nil {
		return nil, goalsOutput{}, err
	}
	return nil, out, nil
}
