// ABOUTME: Store ties the four tables, JSON documents and attachments together.
// ABOUTME: A single mutex serializes writers; daily intake edits mirror into nutrition.
package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/harperreed/plantfit/internal/demo"
	"github.com/harperreed/plantfit/internal/metrics"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"go.uber.org/zap"
)

// Table schemas, one per kind.
var (
	DailySchema     = schema.MustNew(models.TableNames[models.KindDaily], models.DailyRecord{})
	NutritionSchema = schema.MustNew(models.TableNames[models.KindNutrition], models.NutritionRecord{})
	SportSchema     = schema.MustNew(models.TableNames[models.KindSport], models.SportTestRecord{})
	BloodSchema     = schema.MustNew(models.TableNames[models.KindBlood], models.BloodTestRecord{})
)

// SchemaFor returns the schema of a table kind.
func SchemaFor(kind models.TableKind) (*schema.Schema, error) {
	switch kind {
	case models.KindDaily:
		return DailySchema, nil
	case models.KindNutrition:
		return NutritionSchema, nil
	case models.KindSport:
		return SportSchema, nil
	case models.KindBlood:
		return BloodSchema, nil
	}
	return nil, fmt.Errorf("unknown table kind %q", kind)
}

// Store is the Repository implementation over any Backend.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	dataDir  string
	logger   *zap.Logger
	now      func() time.Time
	validate *validator.Validate

	daily     *Table[models.DailyRecord]
	nutrition *Table[models.NutritionRecord]
	sport     *Table[models.SportTestRecord]
	blood     *Table[models.BloodTestRecord]
}

// Compile-time check that Store implements Repository.
var _ Repository = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for last_modified stamps and demo dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore wraps backend. JSON documents and attachments live in dataDir.
func NewStore(backend Backend, dataDir string, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		dataDir:  dataDir,
		logger:   zap.NewNop(),
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.daily = NewTable(DailySchema, backend, s.logger, s.now, metrics.Refresh)
	s.nutrition = NewTable[models.NutritionRecord](NutritionSchema, backend, s.logger, s.now, nil)
	s.sport = NewTable[models.SportTestRecord](SportSchema, backend, s.logger, s.now, nil)
	s.blood = NewTable[models.BloodTestRecord](BloodSchema, backend, s.logger, s.now, nil)
	return s
}

// DataDir returns the directory holding documents and attachments.
func (s *Store) DataDir() string {
	return s.dataDir
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// tableOps is what the Store needs from a Table regardless of record type.
type tableOps interface {
	Name() string
	Schema() *schema.Schema
	Upsert(schema.Key, schema.Fields) (Result, error)
	Update(schema.Key, schema.Fields) (Result, bool, error)
	Delete(schema.Key) (bool, error)
	Exists(schema.Key) (bool, error)
	DeleteBefore(time.Time) (int, error)
	Clear() error
	Maps() ([]map[string]any, error)
}

func (s *Store) table(kind models.TableKind) (tableOps, error) {
	switch kind {
	case models.KindDaily:
		return s.daily, nil
	case models.KindNutrition:
		return s.nutrition, nil
	case models.KindSport:
		return s.sport, nil
	case models.KindBlood:
		return s.blood, nil
	}
	return nil, fmt.Errorf("unknown table kind %q", kind)
}

// normalizeKey validates the key and canonicalizes phase labels.
func normalizeKey(kind models.TableKind, key schema.Key) (schema.Key, error) {
	if kind.PhaseKeyed() {
		p, err := models.ParsePhase(key.Label)
		if err != nil {
			return key, fmt.Errorf("%w: %v", schema.ErrInvalidValue, err)
		}
		key.Label = string(p)
	}
	return schema.NewKey(key.Date, key.Label), nil
}

func touchesNutrition(fields schema.Fields) bool {
	for _, f := range models.NutritionFields {
		if _, ok := fields[f]; ok {
			return true
		}
	}
	return false
}

// Upsert creates or updates the record for key. Daily upserts carrying
// intake fields also upsert them into the nutrition diary.
func (s *Store) Upsert(kind models.TableKind, key schema.Key, fields schema.Fields) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsert(kind, key, fields)
}

func (s *Store) upsert(kind models.TableKind, key schema.Key, fields schema.Fields) (Result, error) {
	key, err := normalizeKey(kind, key)
	if err != nil {
		return Result{Key: key}, err
	}
	t, err := s.table(kind)
	if err != nil {
		return Result{Key: key}, err
	}
	res, err := t.Upsert(key, fields)
	if err != nil {
		return res, err
	}
	if kind == models.KindDaily && touchesNutrition(fields) {
		if err := s.mirrorNutrition(key, fields); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Update changes an existing record only. It reports false when no record
// carries key.
func (s *Store) Update(kind models.TableKind, key schema.Key, fields schema.Fields) (Result, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := normalizeKey(kind, key)
	if err != nil {
		return Result{Key: key}, false, err
	}
	t, err := s.table(kind)
	if err != nil {
		return Result{Key: key}, false, err
	}
	res, ok, err := t.Update(key, fields)
	if err != nil || !ok {
		return res, ok, err
	}
	if kind == models.KindDaily && touchesNutrition(fields) {
		if err := s.mirrorNutrition(key, fields); err != nil {
			return res, true, err
		}
	}
	return res, true, nil
}

func (s *Store) mirrorNutrition(key schema.Key, fields schema.Fields) error {
	if _, err := s.nutrition.Upsert(key, fields.Only(models.NutritionFields...)); err != nil {
		return fmt.Errorf("mirror intake into nutrition: %w", err)
	}
	return nil
}

// Delete removes the record for key.
func (s *Store) Delete(kind models.TableKind, key schema.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := normalizeKey(kind, key)
	if err != nil {
		return false, err
	}
	t, err := s.table(kind)
	if err != nil {
		return false, err
	}
	return t.Delete(key)
}

// Exists reports whether a record carries key.
func (s *Store) Exists(kind models.TableKind, key schema.Key) (bool, error) {
	key, err := normalizeKey(kind, key)
	if err != nil {
		return false, err
	}
	t, err := s.table(kind)
	if err != nil {
		return false, err
	}
	return t.Exists(key)
}

// LoadDaily returns the daily log as stored.
func (s *Store) LoadDaily() ([]models.DailyRecord, error) {
	return s.daily.Load()
}

// LoadNutrition returns the nutrition diary.
func (s *Store) LoadNutrition() ([]models.NutritionRecord, error) {
	return s.nutrition.Load()
}

// LoadSport returns the sport tests.
func (s *Store) LoadSport() ([]models.SportTestRecord, error) {
	return s.sport.Load()
}

// LoadBlood returns the blood tests.
func (s *Store) LoadBlood() ([]models.BloodTestRecord, error) {
	return s.blood.Load()
}

// DailyWithMetrics returns the daily log reconciled with nutrition and with
// derived metrics, sorted by date then phase.
func (s *Store) DailyWithMetrics() ([]models.DailyRecord, error) {
	daily, err := s.daily.Load()
	if err != nil {
		return nil, err
	}
	nutrition, err := s.nutrition.Load()
	if err != nil {
		return nil, err
	}
	for _, k := range metrics.DuplicateKeys(metrics.DailyKeys(daily)) {
		s.logger.Warn("duplicate key in daily log", zap.String("key", k.String()))
	}
	for _, k := range metrics.DuplicateKeys(metrics.NutritionKeys(nutrition)) {
		s.logger.Warn("duplicate key in nutrition log, using first row", zap.String("key", k.String()))
	}

	out := metrics.Compute(daily, nutrition)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Phase < out[j].Phase
	})
	return out, nil
}

// Rows returns a table as column → value maps. The daily log comes with
// derived metrics.
func (s *Store) Rows(kind models.TableKind) ([]map[string]any, error) {
	if kind == models.KindDaily {
		recs, err := s.DailyWithMetrics()
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(recs))
		for i := range recs {
			out[i] = DailySchema.ToMap(&recs[i])
		}
		return out, nil
	}
	t, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	return t.Maps()
}

// Clear empties all four tables. Each previous state is backed up.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range models.AllTableKinds {
		t, _ := s.table(kind)
		if err := t.Clear(); err != nil {
			return err
		}
	}
	s.logger.Info("all tables cleared")
	return nil
}

// DeleteBefore removes records dated before day from all four tables.
func (s *Store) DeleteBefore(day time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, kind := range models.AllTableKinds {
		t, _ := s.table(kind)
		n, err := t.DeleteBefore(day)
		if err != nil {
			return total, err
		}
		total += n
	}
	s.logger.Info("old records removed",
		zap.String("before", schema.Day(day).Format(schema.DateLayout)), zap.Int("count", total))
	return total, nil
}

// LoadDemo replaces all four tables with a synthetic eight-week scenario
// starting at start.
func (s *Store) LoadDemo(seed uint64, start time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds := demo.Generate(seed, start, s.now())
	if err := s.daily.Replace(ds.Daily); err != nil {
		return err
	}
	if err := s.nutrition.Replace(ds.Nutrition); err != nil {
		return err
	}
	if err := s.sport.Replace(ds.Sport); err != nil {
		return err
	}
	if err := s.blood.Replace(ds.Blood); err != nil {
		return err
	}
	s.logger.Info("demo data loaded",
		zap.Uint64("seed", seed),
		zap.Int("daily", len(ds.Daily)),
		zap.Int("nutrition", len(ds.Nutrition)),
		zap.Int("sport", len(ds.Sport)),
		zap.Int("blood", len(ds.Blood)))
	return nil
}

// Backups lists the snapshots of a table kind, oldest first.
func (s *Store) Backups(kind models.TableKind) ([]Backup, error) {
	t, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	return s.backend.Backups(t.Name())
}

// ReadBackup loads the rows of one snapshot.
func (s *Store) ReadBackup(b Backup) (*Frame, error) {
	return s.backend.ReadBackup(b)
}
