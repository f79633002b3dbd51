// ABOUTME: Shared fixtures for storage tests.
// ABOUTME: Opens a Store over each backend in a temp dir and provides a fixed clock.
package storage

import (
	"testing"
	"time"

	"github.com/harperreed/plantfit/internal/schema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type backendCase struct {
	name string
	open func(t *testing.T, dir string) Backend
}

var backendCases = []backendCase{
	{
		name: "csv",
		open: func(t *testing.T, dir string) Backend {
			s, err := NewCSVStore(dir)
			if err != nil {
				t.Fatalf("NewCSVStore failed: %v", err)
			}
			return s
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T, dir string) Backend {
			db, err := Open(DBPath(dir))
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			t.Cleanup(func() { _ = db.Close() })
			return db
		},
	},
}

// forEachBackend runs fn once per backend, each with a fresh data directory.
func forEachBackend(t *testing.T, fn func(t *testing.T, bc backendCase)) {
	t.Helper()
	for _, bc := range backendCases {
		t.Run(bc.name, func(t *testing.T) { fn(t, bc) })
	}
}

func setupTestStore(t *testing.T, bc backendCase, opts ...Option) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(bc.open(t, dir), dir, opts...)
}

// setupCSVStore is the common case for tests that do not depend on the backend.
func setupCSVStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	return setupTestStore(t, backendCases[0], opts...)
}

// observedLogger records warnings and above.
func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return zap.New(core), logs
}

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 10, 9, 30, 0, 0, time.Local)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func key(date, label string) schema.Key {
	d, err := schema.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return schema.NewKey(d, label)
}

func day(date string) time.Time {
	return key(date, "x").Date
}
