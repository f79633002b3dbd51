// ABOUTME: Generic keyed upsert engine over one table kind.
// ABOUTME: Load, match by (date, label), backup pre-update state, overlay, stamp, save.
package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/plantfit/internal/schema"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateKey means more than one stored row carries the key being
	// written. Nothing is modified.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound means no row carries the requested key.
	ErrNotFound = errors.New("not found")
)

// Outcome tells what an upsert did.
type Outcome int

const (
	Skipped Outcome = iota
	Created
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	}
	return "skipped"
}

// Result reports one upsert.
type Result struct {
	Outcome Outcome
	Key     schema.Key
	Applied []string
	Dropped []string
}

// Table is the upsert engine for records of type R, described by a schema
// built from R's `col` tags.
type Table[R any] struct {
	schema     *schema.Schema
	backend    Backend
	logger     *zap.Logger
	now        func() time.Time
	beforeSave func([]R) []R
}

// NewTable binds a schema to a backend. beforeSave, if set, runs on every
// save and may recompute derived fields.
func NewTable[R any](s *schema.Schema, backend Backend, logger *zap.Logger, now func() time.Time, beforeSave func([]R) []R) *Table[R] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Table[R]{schema: s, backend: backend, logger: logger, now: now, beforeSave: beforeSave}
}

// Schema returns the table's schema.
func (t *Table[R]) Schema() *schema.Schema {
	return t.schema
}

// Name returns the table name.
func (t *Table[R]) Name() string {
	return t.schema.Name()
}

// loaded is one read of a table. unreadable holds the rows that failed to
// decode, in schema header order.
type loaded[R any] struct {
	frame      *Frame
	recs       []R
	unreadable [][]string
}

// load reads the table. Undecodable rows are skipped with a warning and kept
// verbatim so a later save writes them back.
func (t *Table[R]) load() (*loaded[R], error) {
	f, err := t.backend.LoadTable(t.Name())
	if err != nil {
		return nil, err
	}
	if unknown := t.schema.UnknownColumns(f.Header); len(unknown) > 0 {
		t.logger.Warn("ignoring unknown columns",
			zap.String("table", t.Name()), zap.Strings("columns", unknown))
	}
	l := &loaded[R]{frame: f, recs: make([]R, 0, len(f.Rows))}
	for i, row := range f.Rows {
		var r R
		if err := t.schema.Decode(f.Header, row, &r); err != nil {
			t.logger.Warn("skipping unreadable row",
				zap.String("table", t.Name()), zap.Int("row", i+1), zap.Error(err))
			l.unreadable = append(l.unreadable, t.project(f.Header, row))
			continue
		}
		l.recs = append(l.recs, r)
	}
	return l, nil
}

// project reorders a raw row from header onto the schema header. Columns the
// schema does not know are left out.
func (t *Table[R]) project(header, row []string) []string {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	out := make([]string, 0, len(t.schema.Header()))
	for _, name := range t.schema.Header() {
		cell := ""
		if i, ok := pos[name]; ok && i < len(row) {
			cell = row[i]
		}
		out = append(out, cell)
	}
	return out
}

// Load returns all records in table order.
func (t *Table[R]) Load() ([]R, error) {
	l, err := t.load()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", t.Name(), err)
	}
	return l.recs, nil
}

// Save replaces the table with recs. The backend also writes a backup.
func (t *Table[R]) Save(recs []R) error {
	return t.save(recs, nil)
}

// save writes recs followed by the raw rows in keep, which must already be
// in schema header order.
func (t *Table[R]) save(recs []R, keep [][]string) error {
	if t.beforeSave != nil {
		recs = t.beforeSave(recs)
	}
	f := &Frame{Header: t.schema.Header(), Rows: make([][]string, 0, len(recs)+len(keep))}
	for i := range recs {
		f.Rows = append(f.Rows, t.schema.Encode(&recs[i]))
	}
	for _, row := range keep {
		f.Rows = append(f.Rows, append([]string(nil), row...))
	}
	if err := t.backend.SaveTable(t.Name(), f); err != nil {
		return fmt.Errorf("save %s: %w", t.Name(), err)
	}
	return nil
}

// snapshot writes the unmodified frame so the pre-update state lands in the
// backup trail.
func (t *Table[R]) snapshot(f *Frame) error {
	if err := t.backend.SaveTable(t.Name(), cloneFrame(f)); err != nil {
		return fmt.Errorf("backup %s before update: %w", t.Name(), err)
	}
	return nil
}

func (t *Table[R]) match(recs []R, key schema.Key) []int {
	var idx []int
	for i := range recs {
		if t.schema.Key(&recs[i]).Equal(key) {
			idx = append(idx, i)
		}
	}
	return idx
}

// stamp sets last_modified to now, or one microsecond past the previous
// stamp when the clock has not moved beyond it.
func (t *Table[R]) stamp(rec *R) {
	now := schema.Stamp(t.now())
	if prev, ok := t.schema.LastModified(rec); ok && !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	t.schema.Touch(rec, now)
}

func validKey(key schema.Key) error {
	if key.Date.IsZero() {
		return fmt.Errorf("%w: key date must be set", schema.ErrInvalidValue)
	}
	if key.Label == "" {
		return fmt.Errorf("%w: key label must be set", schema.ErrInvalidValue)
	}
	return nil
}

// Upsert creates the record for key or overlays fields onto the existing one.
// When no field is writable nothing is stored and the outcome is Skipped.
func (t *Table[R]) Upsert(key schema.Key, fields schema.Fields) (Result, error) {
	res, _, err := t.write(key, fields, true)
	return res, err
}

// Update overlays fields onto the record for key. It reports false and
// changes nothing when no record matches.
func (t *Table[R]) Update(key schema.Key, fields schema.Fields) (Result, bool, error) {
	return t.write(key, fields, false)
}

// write reports whether a record for key existed before the call.
func (t *Table[R]) write(key schema.Key, fields schema.Fields, create bool) (Result, bool, error) {
	key = schema.NewKey(key.Date, key.Label)
	res := Result{Key: key}
	if err := validKey(key); err != nil {
		return res, false, err
	}

	l, err := t.load()
	if err != nil {
		return res, false, fmt.Errorf("load %s: %w", t.Name(), err)
	}
	recs := l.recs

	idx := t.match(recs, key)
	found := len(idx) > 0
	var rec R
	switch {
	case len(idx) > 1:
		return res, true, fmt.Errorf("%s %s: %d rows: %w", t.Name(), key, len(idx), ErrDuplicateKey)
	case found:
		rec = recs[idx[0]]
	case !create:
		return res, false, nil
	default:
		t.schema.SetKey(&rec, key)
	}

	res.Applied, res.Dropped, err = t.schema.Apply(&rec, fields)
	if err != nil {
		return Result{Key: key}, found, err
	}
	if len(res.Dropped) > 0 {
		t.logger.Warn("dropped fields",
			zap.String("table", t.Name()),
			zap.String("key", key.String()),
			zap.Strings("fields", res.Dropped))
	}
	if len(res.Applied) == 0 {
		res.Outcome = Skipped
		t.logger.Debug("nothing to write",
			zap.String("table", t.Name()), zap.String("key", key.String()))
		return res, found, nil
	}

	if found {
		if err := t.snapshot(l.frame); err != nil {
			return Result{Key: key}, found, err
		}
		t.stamp(&rec)
		recs[idx[0]] = rec
		res.Outcome = Updated
	} else {
		t.stamp(&rec)
		recs = append(recs, rec)
		res.Outcome = Created
	}

	if err := t.save(recs, l.unreadable); err != nil {
		return res, found, err
	}
	t.logger.Debug("record written",
		zap.String("table", t.Name()),
		zap.String("key", key.String()),
		zap.Stringer("outcome", res.Outcome))
	return res, found, nil
}

// Get returns the record for key.
func (t *Table[R]) Get(key schema.Key) (*R, error) {
	recs, err := t.Load()
	if err != nil {
		return nil, err
	}
	idx := t.match(recs, key)
	switch len(idx) {
	case 0:
		return nil, fmt.Errorf("%s %s: %w", t.Name(), key, ErrNotFound)
	case 1:
		return &recs[idx[0]], nil
	}
	return nil, fmt.Errorf("%s %s: %d rows: %w", t.Name(), key, len(idx), ErrDuplicateKey)
}

// Exists reports whether a record carries key.
func (t *Table[R]) Exists(key schema.Key) (bool, error) {
	recs, err := t.Load()
	if err != nil {
		return false, err
	}
	return len(t.match(recs, key)) > 0, nil
}

// Delete removes every record carrying key. It reports false when none did.
func (t *Table[R]) Delete(key schema.Key) (bool, error) {
	n, err := t.removeWhere(func(r *R) bool { return t.schema.Key(r).Equal(key) })
	return n > 0, err
}

// DeleteBefore removes records dated before day and returns how many went.
func (t *Table[R]) DeleteBefore(day time.Time) (int, error) {
	cutoff := schema.Day(day)
	return t.removeWhere(func(r *R) bool { return t.schema.Key(r).Date.Before(cutoff) })
}

func (t *Table[R]) removeWhere(drop func(*R) bool) (int, error) {
	l, err := t.load()
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", t.Name(), err)
	}
	kept := l.recs[:0:0]
	for i := range l.recs {
		if !drop(&l.recs[i]) {
			kept = append(kept, l.recs[i])
		}
	}
	removed := len(l.recs) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := t.snapshot(l.frame); err != nil {
		return 0, err
	}
	if err := t.save(kept, l.unreadable); err != nil {
		return 0, err
	}
	return removed, nil
}

// Clear replaces the table with an empty one after backing it up. Unreadable
// rows go too; the backup keeps them.
func (t *Table[R]) Clear() error {
	f, err := t.backend.LoadTable(t.Name())
	if err != nil {
		return fmt.Errorf("load %s: %w", t.Name(), err)
	}
	if !f.Empty() {
		if err := t.snapshot(f); err != nil {
			return err
		}
	}
	return t.Save(nil)
}

// Replace swaps in recs wholesale, backing up the previous content first,
// unreadable rows included.
func (t *Table[R]) Replace(recs []R) error {
	f, err := t.backend.LoadTable(t.Name())
	if err != nil {
		return fmt.Errorf("load %s: %w", t.Name(), err)
	}
	if !f.Empty() {
		if err := t.snapshot(f); err != nil {
			return err
		}
	}
	return t.Save(recs)
}

// Maps returns every record as column → value, nulls omitted.
func (t *Table[R]) Maps() ([]map[string]any, error) {
	recs, err := t.Load()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(recs))
	for i := range recs {
		out[i] = t.schema.ToMap(&recs[i])
	}
	return out, nil
}
