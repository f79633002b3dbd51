// ABOUTME: Shared argument parsing and table rendering for CLI commands.
// ABOUTME: Tables are drawn with lipgloss; values go through storage.FormatValue.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/harperreed/plantfit/internal/schema"
	"github.com/harperreed/plantfit/internal/storage"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	borderStyle = lipgloss.NewStyle().Faint(true)
)

// parseKey builds a record key from CLI date and label arguments.
func parseKey(date, label string) (schema.Key, error) {
	d, err := schema.ParseDate(date)
	if err != nil {
		return schema.Key{}, err
	}
	if strings.TrimSpace(label) == "" {
		return schema.Key{}, fmt.Errorf("label must not be empty")
	}
	return schema.NewKey(d, label), nil
}

// parseAssignments turns key=value arguments into fields. An empty value
// clears the column.
func parseAssignments(args []string) (schema.Fields, error) {
	fields := make(schema.Fields, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q (use column=value)", arg)
		}
		if value == "" {
			fields[name] = nil
			continue
		}
		fields[name] = value
	}
	return fields, nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(r[:maxLen-3]) + "..."
}

// renderTable writes rows as a bordered table. Columns listed in numeric are
// right-aligned.
func renderTable(w io.Writer, headers []string, rows [][]string, numeric map[int]bool) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case numeric[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(w, t.String())
}

// rowCells formats the given columns of a row map.
func rowCells(row map[string]any, columns []string) []string {
	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = truncate(storage.FormatValue(row[c]), 28)
	}
	return cells
}
