// ABOUTME: Tests for migrating tables between the CSV and SQLite backends.
// ABOUTME: Verifies row counts, content equality and the empty-source case.
package storage

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/plantfit/internal/models"
)

func TestMigrateDataCSVToSQLite(t *testing.T) {
	src := setupTestStore(t, backendCases[0])
	if err := src.LoadDemo(42, day("2024-01-01")); err != nil {
		t.Fatalf("LoadDemo failed: %v", err)
	}
	dst := setupTestStore(t, backendCases[1])

	summary, err := MigrateData(src.backend, dst.backend)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Total() != 56+56+4+2 {
		t.Errorf("Total() = %d, want 118", summary.Total())
	}
	if summary.Rows["sport_tests"] != 4 {
		t.Errorf("sport_tests rows = %d, want 4", summary.Rows["sport_tests"])
	}

	for _, kind := range models.AllTableKinds {
		name := models.TableNames[kind]
		want, _ := src.backend.LoadTable(name)
		got, err := dst.backend.LoadTable(name)
		if err != nil {
			t.Fatalf("LoadTable(%s) failed: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s differs after migration (-src +dst):\n%s", name, diff)
		}
	}

	has, err := HasData(dst.backend)
	if err != nil || !has {
		t.Errorf("HasData(dst) = %v, %v; want true", has, err)
	}
}

func TestMigrateDataSQLiteToCSV(t *testing.T) {
	src := setupTestStore(t, backendCases[1])
	seedStore(t, src)
	dst := setupTestStore(t, backendCases[0])

	if _, err := MigrateData(src.backend, dst.backend); err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}

	want, _ := src.DailyWithMetrics()
	got, err := dst.DailyWithMetrics()
	if err != nil {
		t.Fatalf("DailyWithMetrics failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("daily view differs after migration (-src +dst):\n%s", diff)
	}
}

func TestMigrateDataEmptySource(t *testing.T) {
	src := setupTestStore(t, backendCases[1])
	dst := setupTestStore(t, backendCases[0])

	has, err := HasData(src.backend)
	if err != nil {
		t.Fatalf("HasData failed: %v", err)
	}
	if has {
		t.Error("fresh backend should have no data")
	}

	summary, err := MigrateData(src.backend, dst.backend)
	if err != nil {
		t.Fatalf("MigrateData failed: %v", err)
	}
	if summary.Total() != 0 {
		t.Errorf("Total() = %d, want 0", summary.Total())
	}
	bs, _ := dst.backend.Backups("daily_log")
	if len(bs) != 0 {
		t.Errorf("missing source tables must not be written, got %d backups", len(bs))
	}
}
