// ABOUTME: CSV file backend: one file per table plus timestamped backup copies.
// ABOUTME: Backups go to {dataDir}/backups and are never overwritten.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CSVStore keeps each table in {dataDir}/{name}.csv.
type CSVStore struct {
	dataDir string
	now     func() time.Time
}

// Compile-time check that CSVStore implements Backend.
var _ Backend = (*CSVStore)(nil)

// NewCSVStore creates the data and backup directories if needed.
func NewCSVStore(dataDir string) (*CSVStore, error) {
	s := &CSVStore{dataDir: dataDir, now: time.Now}
	if err := os.MkdirAll(s.backupDir(), 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return s, nil
}

// DataDir returns the directory the store writes to.
func (s *CSVStore) DataDir() string {
	return s.dataDir
}

func (s *CSVStore) tablePath(name string) string {
	return filepath.Join(s.dataDir, name+".csv")
}

func (s *CSVStore) backupDir() string {
	return filepath.Join(s.dataDir, "backups")
}

// LoadTable reads a table. A missing file is an empty table.
func (s *CSVStore) LoadTable(name string) (*Frame, error) {
	data, err := os.ReadFile(s.tablePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return &Frame{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	f, err := readFrame(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return f, nil
}

// SaveTable replaces the primary file and then writes a backup copy.
func (s *CSVStore) SaveTable(name string, f *Frame) error {
	data, err := encodeFrame(f)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := writeFileAtomic(s.tablePath(name), data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := s.writeBackup(name, data); err != nil {
		return fmt.Errorf("backup %s: %w", name, err)
	}
	return nil
}

// writeBackup picks the first free name for the current second. O_EXCL makes
// the existence check and the create one step.
func (s *CSVStore) writeBackup(name string, data []byte) error {
	if err := os.MkdirAll(s.backupDir(), 0750); err != nil {
		return err
	}
	at := s.now()
	for seq := 0; seq < 1000; seq++ {
		path := filepath.Join(s.backupDir(), backupName(name, at, seq)+".csv")
		fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return err
		}
		if _, err := fh.Write(data); err != nil {
			_ = fh.Close()
			return err
		}
		return fh.Close()
	}
	return fmt.Errorf("too many backups of %s within one second", name)
}

// Backups lists the snapshots of a table, oldest first.
func (s *CSVStore) Backups(name string) ([]Backup, error) {
	entries, err := os.ReadDir(s.backupDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list backups: %w", err)
	}
	var out []Backup
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		b, ok := parseBackupName(strings.TrimSuffix(e.Name(), ".csv"))
		if !ok || b.Table != name {
			continue
		}
		out = append(out, b)
	}
	sortBackups(out)
	return out, nil
}

// ReadBackup loads one snapshot.
func (s *CSVStore) ReadBackup(b Backup) (*Frame, error) {
	data, err := os.ReadFile(filepath.Join(s.backupDir(), b.Name+".csv"))
	if err != nil {
		return nil, fmt.Errorf("read backup %s: %w", b.Name, err)
	}
	return readFrame(bytes.NewReader(data))
}

// Close is a no-op for CSVStore.
func (s *CSVStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
