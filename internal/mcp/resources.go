// ABOUTME: MCP resource implementations for the diet experiment.
// ABOUTME: Provides plantfit://daily/recent and plantfit://summary resources.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"github.com/harperreed/plantfit/internal/stats"
	"github.com/harperreed/plantfit/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recentURI  = "plantfit://daily/recent"
	summaryURI = "plantfit://summary"

	recentDays = 14
)

func (s *Server) registerResources() {
	// plantfit://daily/recent - last two weeks of the daily log with metrics
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Daily Log",
		Description: "The last 14 entries of the daily log with derived metrics",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	// plantfit://summary - table counts, phase comparison and goal attainment
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Experiment Summary",
		Description: "Row counts, date range, omnivore vs vegan comparison and goal attainment",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	recs, err := s.repo.DailyWithMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	if len(recs) > recentDays {
		recs = recs[len(recs)-recentDays:]
	}
	rows := make([]map[string]any, len(recs))
	for i := range recs {
		rows[i] = storage.DailySchema.ToMap(&recs[i])
	}
	return jsonResource(recentURI, map[string]any{
		"count": len(rows),
		"days":  rows,
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := s.repo.GetAllData()
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	counts := map[string]int{
		models.TableNames[models.KindDaily]:     len(data.Daily),
		models.TableNames[models.KindNutrition]: len(data.Nutrition),
		models.TableNames[models.KindSport]:     len(data.Sport),
		models.TableNames[models.KindBlood]:     len(data.Blood),
	}

	recs, err := s.repo.DailyWithMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to compute metrics: %w", err)
	}
	comparisons, err := stats.CompareAll(recs, nil)
	if err != nil {
		return nil, err
	}
	goals, err := s.repo.LoadGoals()
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	days := map[models.Phase]int{}
	var first, last string
	for i, r := range recs {
		days[r.Phase]++
		if i == 0 {
			first = r.Date.Format(schema.DateLayout)
		}
		last = r.Date.Format(schema.DateLayout)
	}

	result := map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"tables":       counts,
		"date_range": map[string]string{
			"first": first,
			"last":  last,
		},
		"days_per_phase": days,
		"comparison":     comparisons,
		"goals":          goals,
		"attainment":     stats.GoalAttainment(recs, goals),
	}
	return jsonResource(summaryURI, result)
}
