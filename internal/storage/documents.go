// ABOUTME: Settings, goals and column-mapping JSON documents in the data directory.
// ABOUTME: Missing or corrupt documents are rewritten with defaults on load.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/harperreed/plantfit/internal/models"
	"go.uber.org/zap"
)

const (
	settingsFile = "settings.json"
	goalsFile    = "goals.json"
	mappingFile  = "col_mapping.json"
)

// loadDocument decodes the JSON document name over the defaults from def,
// so keys absent from the file keep their default. When the file is missing
// or cannot be decoded, the defaults are written back and returned.
func loadDocument[T any](s *Store, name string, def func() T) (T, error) {
	v := def()
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err == nil {
		if err = json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		s.logger.Warn("recreating corrupt document", zap.String("file", name), zap.Error(err))
	} else if !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("recreating unreadable document", zap.String("file", name), zap.Error(err))
	}
	v = def()
	return v, s.saveDocument(name, v)
}

func (s *Store) saveDocument(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := writeFileAtomic(filepath.Join(s.dataDir, name), append(data, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// LoadSettings returns the auto-import settings.
func (s *Store) LoadSettings() (models.Settings, error) {
	return loadDocument(s, settingsFile, models.DefaultSettings)
}

// SaveSettings validates and writes the settings.
func (s *Store) SaveSettings(st models.Settings) error {
	if err := s.validate.Struct(st); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveDocument(settingsFile, st)
}

// LoadGoals returns the personal goals.
func (s *Store) LoadGoals() (models.Goals, error) {
	return loadDocument(s, goalsFile, models.DefaultGoals)
}

// SaveGoals validates and writes the goals.
func (s *Store) SaveGoals(g models.Goals) error {
	if err := s.validate.Struct(g); err != nil {
		return fmt.Errorf("invalid goals: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveDocument(goalsFile, g)
}

// LoadMapping returns the saved import column mapping, empty if none.
func (s *Store) LoadMapping() (models.ColumnMapping, error) {
	m, err := loadDocument(s, mappingFile, func() models.ColumnMapping { return models.ColumnMapping{} })
	if m == nil {
		m = models.ColumnMapping{}
	}
	return m, err
}

// SaveMapping writes the import column mapping and marks it saved in the
// settings.
func (s *Store) SaveMapping(m models.ColumnMapping) error {
	for col := range m {
		if _, ok := DailySchema.Column(col); !ok {
			return fmt.Errorf("mapping: unknown column %q", col)
		}
	}
	st, err := s.LoadSettings()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveDocument(mappingFile, m); err != nil {
		return err
	}
	st.MappingSaved = true
	return s.saveDocument(settingsFile, st)
}
