// ABOUTME: Binary attachments (lab PDFs, test photos) stored beside the tables.
// ABOUTME: Files are named {date}_{testType}_{fieldKey}.{ext}; records hold the path.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"go.uber.org/zap"
)

// AttachmentPath returns where the attachment for fieldKey of the record at
// key is stored.
func (s *Store) AttachmentPath(kind models.TableKind, key schema.Key, fieldKey, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	name := fmt.Sprintf("%s_%s_%s.%s",
		key.Date.Format(schema.DateLayout), sanitizeFilePart(key.Label), fieldKey, ext)
	return filepath.Join(s.dataDir, models.TableNames[kind], name)
}

// sanitizeFilePart keeps a free-text label usable as part of a file name.
func sanitizeFilePart(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, s)
}

// SaveAttachment copies r into the attachment area and upserts the file path
// into fieldKey of the owning record.
func (s *Store) SaveAttachment(kind models.TableKind, key schema.Key, fieldKey, ext string, r io.Reader) (string, error) {
	sch, err := SchemaFor(kind)
	if err != nil {
		return "", err
	}
	c, ok := sch.Column(fieldKey)
	if !ok || !c.Attachment {
		return "", fmt.Errorf("%s has no attachment column %q", sch.Name(), fieldKey)
	}
	if ext == "" {
		return "", fmt.Errorf("attachment for %s needs a file extension", fieldKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, err = normalizeKey(kind, key)
	if err != nil {
		return "", err
	}
	path := s.AttachmentPath(kind, key, fieldKey, ext)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("create attachment directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close attachment: %w", err)
	}

	if _, err := s.upsert(kind, key, schema.Fields{fieldKey: path}); err != nil {
		return "", err
	}
	s.logger.Info("attachment saved",
		zap.String("table", sch.Name()), zap.String("key", key.String()), zap.String("path", path))
	return path, nil
}
