// ABOUTME: Backend contract for flat table persistence plus backup snapshots.
// ABOUTME: Shared frame codec and backup naming used by the CSV and SQLite backends.
package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BackupTimeLayout is the timestamp part of a backup name.
const BackupTimeLayout = "20060102_150405"

// Frame is a table as stored: a header row and string cells. Empty cells are nulls.
type Frame struct {
	Header []string
	Rows   [][]string
}

// Empty reports whether the frame has no data rows.
func (f *Frame) Empty() bool {
	return f == nil || len(f.Rows) == 0
}

// Backup identifies one snapshot of a table.
type Backup struct {
	Table     string
	Name      string
	CreatedAt time.Time
	Seq       int
}

// Backend persists whole tables. SaveTable writes the primary copy and then
// an append-only backup snapshot of the same content.
type Backend interface {
	LoadTable(name string) (*Frame, error)
	SaveTable(name string, f *Frame) error
	Backups(name string) ([]Backup, error)
	ReadBackup(b Backup) (*Frame, error)
	Close() error
}

// backupName renders "{table}_{YYYYMMDD_HHMMSS}[_NNN]". Seq 0 has no suffix.
func backupName(table string, at time.Time, seq int) string {
	name := table + "_" + at.Format(BackupTimeLayout)
	if seq > 0 {
		name += fmt.Sprintf("_%03d", seq)
	}
	return name
}

var backupPattern = regexp.MustCompile(`^(.+)_(\d{8}_\d{6})(?:_(\d{3}))?$`)

// parseBackupName is the inverse of backupName.
func parseBackupName(name string) (Backup, bool) {
	m := backupPattern.FindStringSubmatch(name)
	if m == nil {
		return Backup{}, false
	}
	at, err := time.ParseInLocation(BackupTimeLayout, m[2], time.Local)
	if err != nil {
		return Backup{}, false
	}
	b := Backup{Table: m[1], Name: name, CreatedAt: at}
	if m[3] != "" {
		b.Seq, _ = strconv.Atoi(m[3])
	}
	return b, true
}

// sortBackups orders backups oldest first. Names sort in write order.
func sortBackups(bs []Backup) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].CreatedAt.Before(bs[j].CreatedAt)
		}
		return bs[i].Seq < bs[j].Seq
	})
}

const utf8BOM = "\ufeff"

// readFrame parses CSV with a header row. Ragged rows are padded or cut to
// the header width.
func readFrame(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	f := &Frame{}
	if len(records) == 0 {
		return f, nil
	}
	f.Header = records[0]
	if len(f.Header) > 0 {
		f.Header[0] = strings.TrimPrefix(f.Header[0], utf8BOM)
	}
	for _, rec := range records[1:] {
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		row := make([]string, len(f.Header))
		copy(row, rec)
		f.Rows = append(f.Rows, row)
	}
	return f, nil
}

func writeFrame(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(f.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func encodeFrame(f *Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cloneFrame deep-copies f so later mutation of the source cannot leak into
// a snapshot.
func cloneFrame(f *Frame) *Frame {
	if f == nil {
		return &Frame{}
	}
	out := &Frame{Header: append([]string(nil), f.Header...)}
	for _, r := range f.Rows {
		out.Rows = append(out.Rows, append([]string(nil), r...))
	}
	return out
}
