// ABOUTME: Tests for the CSV and SQLite backends and the shared frame codec.
// ABOUTME: Covers backup naming, collision suffixes, parity and empty tables.
package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupNameRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 11, 12, 0, time.Local)
	tests := []struct {
		seq  int
		want string
	}{
		{0, "daily_log_20240301_101112"},
		{1, "daily_log_20240301_101112_001"},
		{42, "daily_log_20240301_101112_042"},
	}
	for _, tt := range tests {
		got := backupName("daily_log", at, tt.seq)
		if got != tt.want {
			t.Errorf("backupName(seq=%d) = %q, want %q", tt.seq, got, tt.want)
		}
		b, ok := parseBackupName(got)
		if !ok {
			t.Fatalf("parseBackupName(%q) failed", got)
		}
		if b.Table != "daily_log" || b.Seq != tt.seq || !b.CreatedAt.Equal(at) {
			t.Errorf("parseBackupName(%q) = %+v", got, b)
		}
	}
}

func TestParseBackupNameRejectsForeignFiles(t *testing.T) {
	for _, name := range []string{"daily_log", "notes_2024", "daily_log_20241301_000000", "x_20240301_1011"} {
		if _, ok := parseBackupName(name); ok {
			t.Errorf("parseBackupName(%q) should fail", name)
		}
	}
}

func TestSortBackupsOldestFirst(t *testing.T) {
	names := []string{
		"sport_tests_20240302_080000",
		"sport_tests_20240301_090000_002",
		"sport_tests_20240301_090000",
		"sport_tests_20240301_090000_001",
	}
	var bs []Backup
	for _, n := range names {
		b, ok := parseBackupName(n)
		require.True(t, ok)
		bs = append(bs, b)
	}
	sortBackups(bs)

	var got []string
	for _, b := range bs {
		got = append(got, b.Name)
	}
	assert.Equal(t, []string{
		"sport_tests_20240301_090000",
		"sport_tests_20240301_090000_001",
		"sport_tests_20240301_090000_002",
		"sport_tests_20240302_080000",
	}, got)
}

func TestReadFrameStripsBOMAndPadsRows(t *testing.T) {
	f, err := readFrame(strings.NewReader("\ufeffdate,phase,mood\n2024-03-01,Vegan\n2024-03-02,Vegan,7,extra\n\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "phase", "mood"}, f.Header)
	assert.Equal(t, [][]string{
		{"2024-03-01", "Vegan", ""},
		{"2024-03-02", "Vegan", "7"},
	}, f.Rows)
}

func TestBackendsMissingTableIsEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, bc backendCase) {
		b := bc.open(t, t.TempDir())
		f, err := b.LoadTable("daily_log")
		if err != nil {
			t.Fatalf("LoadTable failed: %v", err)
		}
		if !f.Empty() || len(f.Header) != 0 {
			t.Errorf("expected empty frame, got %+v", f)
		}
		bs, err := b.Backups("daily_log")
		if err != nil {
			t.Fatalf("Backups failed: %v", err)
		}
		if len(bs) != 0 {
			t.Errorf("expected no backups, got %d", len(bs))
		}
	})
}

func TestBackendsStoreFramesIdentically(t *testing.T) {
	want := &Frame{
		Header: []string{"test_date", "test_type", "notes", "ferritin"},
		Rows: [][]string{
			{"2024-03-01", "Baseline (Omnivor)", "nüchtern, \"morgens\"", "80.5"},
			{"2024-04-26", "Vegan-Test", "", ""},
		},
	}
	forEachBackend(t, func(t *testing.T, bc backendCase) {
		b := bc.open(t, t.TempDir())
		if err := b.SaveTable("blood_tests", want); err != nil {
			t.Fatalf("SaveTable failed: %v", err)
		}
		got, err := b.LoadTable("blood_tests")
		if err != nil {
			t.Fatalf("LoadTable failed: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("frame mismatch (-want +got):\n%s", diff)
		}

		bs, err := b.Backups("blood_tests")
		if err != nil {
			t.Fatalf("Backups failed: %v", err)
		}
		if len(bs) != 1 {
			t.Fatalf("expected 1 backup, got %d", len(bs))
		}
		snap, err := b.ReadBackup(bs[0])
		if err != nil {
			t.Fatalf("ReadBackup failed: %v", err)
		}
		if diff := cmp.Diff(want, snap); diff != "" {
			t.Errorf("backup mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestBackupsWithinOneSecondGetSequenceSuffix(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 11, 12, 0, time.Local)
	forEachBackend(t, func(t *testing.T, bc backendCase) {
		b := bc.open(t, t.TempDir())
		switch x := b.(type) {
		case *CSVStore:
			x.now = func() time.Time { return at }
		case *DB:
			x.now = func() time.Time { return at }
		}

		f := &Frame{Header: []string{"date", "phase"}}
		for i := 0; i < 3; i++ {
			if err := b.SaveTable("daily_log", f); err != nil {
				t.Fatalf("SaveTable %d failed: %v", i, err)
			}
		}
		// Another table at the same instant starts its own sequence.
		if err := b.SaveTable("nutrition_log", f); err != nil {
			t.Fatalf("SaveTable failed: %v", err)
		}

		bs, err := b.Backups("daily_log")
		if err != nil {
			t.Fatalf("Backups failed: %v", err)
		}
		var names []string
		for _, x := range bs {
			names = append(names, x.Name)
		}
		want := []string{"daily_log_20240301_101112", "daily_log_20240301_101112_001", "daily_log_20240301_101112_002"}
		if diff := cmp.Diff(want, names); diff != "" {
			t.Errorf("backup names (-want +got):\n%s", diff)
		}

		nb, _ := b.Backups("nutrition_log")
		if len(nb) != 1 || nb[0].Name != "nutrition_log_20240301_101112" {
			t.Errorf("unexpected nutrition backups: %+v", nb)
		}
	})
}

func TestCSVStoreLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.SaveTable("sport_tests", &Frame{Header: []string{"test_date", "test_type"}}))
	data, err := os.ReadFile(filepath.Join(dir, "sport_tests.csv"))
	require.NoError(t, err)
	assert.Equal(t, "test_date,test_type\n", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "backups"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "sport_tests_"))
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".csv"))

	// No temp files are left next to the table.
	all, _ := os.ReadDir(dir)
	for _, e := range all {
		assert.False(t, strings.Contains(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestSQLiteReservesBackupsTable(t *testing.T) {
	db, err := Open(DBPath(t.TempDir()))
	require.NoError(t, err)
	defer db.Close()

	err = db.SaveTable(backupsTable, &Frame{Header: []string{"a"}})
	assert.Error(t, err)
	_, err = db.LoadTable(backupsTable)
	assert.Error(t, err)
}

func TestSQLiteReadBackupMissing(t *testing.T) {
	db, err := Open(DBPath(t.TempDir()))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ReadBackup(Backup{Name: "daily_log_20240101_000000"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-test")
	assert.Equal(t, "/tmp/xdg-test/plantfit", DataDir())
	assert.Equal(t, "/tmp/xdg-test/plantfit/plantfit.db", DBPath(DataDir()))
}
