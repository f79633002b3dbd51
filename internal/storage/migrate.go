// ABOUTME: Data migration between storage backends.
// ABOUTME: Copies all four tables from a source backend to a destination backend.

package storage

import (
	"fmt"

	"github.com/harperreed/plantfit/internal/models"
)

// MigrateSummary holds the number of rows copied per table.
type MigrateSummary struct {
	Rows map[string]int
}

// Total returns the number of rows copied.
func (m *MigrateSummary) Total() int {
	n := 0
	for _, c := range m.Rows {
		n += c
	}
	return n
}

// MigrateData copies every table from src to dst. Each table is written
// with one SaveTable call, so dst gains one backup per table. Tables missing
// in src are skipped. The destination should be empty before calling this
// function.
func MigrateData(src, dst Backend) (*MigrateSummary, error) {
	summary := &MigrateSummary{Rows: make(map[string]int)}

	for _, kind := range models.AllTableKinds {
		name := models.TableNames[kind]
		f, err := src.LoadTable(name)
		if err != nil {
			return nil, fmt.Errorf("load source %s: %w", name, err)
		}
		if len(f.Header) == 0 {
			continue
		}
		if err := dst.SaveTable(name, f); err != nil {
			return nil, fmt.Errorf("save %s: %w", name, err)
		}
		summary.Rows[name] = len(f.Rows)
	}

	return summary, nil
}

// HasData reports whether any of the four tables in b holds rows.
func HasData(b Backend) (bool, error) {
	for _, kind := range models.AllTableKinds {
		f, err := b.LoadTable(models.TableNames[kind])
		if err != nil {
			return false, fmt.Errorf("load %s: %w", models.TableNames[kind], err)
		}
		if !f.Empty() {
			return true, nil
		}
	}
	return false, nil
}
