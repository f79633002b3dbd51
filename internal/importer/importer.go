// ABOUTME: Imports rows from foreign CSV files through a saved column mapping.
// ABOUTME: Bad rows are counted and skipped; every good row becomes one upsert.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
	"github.com/harperreed/plantfit/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

// ErrMissingMapping means the mapping does not name a source column for the
// date or the label of the target table, or names a column the file lacks.
var ErrMissingMapping = errors.New("missing column mapping")

// dateLayouts are tried in order for the date column.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"01/02/2006",
	time.RFC3339,
}

// Target is the part of the repository an import writes to.
type Target interface {
	Upsert(kind models.TableKind, key schema.Key, fields schema.Fields) (storage.Result, error)
	Exists(kind models.TableKind, key schema.Key) (bool, error)
}

// Options controls one import.
type Options struct {
	// Kind is the target table. Empty means the daily log.
	Kind models.TableKind `validate:"omitempty,oneof=daily nutrition sport blood"`

	// Mapping maps a schema column to a column of the source file.
	Mapping models.ColumnMapping `validate:"required,min=2"`

	// Delimiter separates fields. Zero means ','.
	Delimiter rune

	// Decimal is the decimal separator of numeric cells, '.' or ','.
	// Zero means '.'.
	Decimal rune `validate:"oneof=0 44 46"`

	// Overwrite updates rows whose key already exists instead of skipping them.
	Overwrite bool

	Logger *zap.Logger `validate:"-"`
}

// Report summarizes an import.
type Report struct {
	BatchID         string
	Rows            int
	Created         int
	Updated         int
	SkippedExisting int
	SkippedDate     int
	SkippedLabel    int
	SkippedEmpty    int
	Rejected        int
	InvalidNumbers  int
	Dropped         []string
}

// Skipped is the number of rows that were not written.
func (r *Report) Skipped() int {
	return r.SkippedExisting + r.SkippedDate + r.SkippedLabel + r.SkippedEmpty + r.Rejected
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (o *Options) normalize() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid import options: %w", err)
	}
	if o.Kind == "" {
		o.Kind = models.KindDaily
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Decimal == 0 {
		o.Decimal = '.'
	}
	if o.Delimiter == o.Decimal {
		return fmt.Errorf("invalid import options: delimiter and decimal separator are both %q", o.Delimiter)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return nil
}

// Decode returns r as UTF-8. Input that is not valid UTF-8 is read as
// Windows-1252. A leading byte order mark is removed.
func Decode(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if utf8.Valid(data) {
		return data, nil
	}
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1252: %w", err)
	}
	return out, nil
}

// ParseDate accepts ISO, German, US and RFC 3339 dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return schema.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseNumber parses a numeric cell with the given decimal separator.
// With ',' a '.' is read as a thousands separator.
func ParseNumber(s string, decimal rune) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if decimal == ',' {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return f, nil
}

var titleCase = cases.Title(language.German)

// NormalizePhase title-cases a phase cell and checks it names a known phase.
func NormalizePhase(s string) (models.Phase, error) {
	return models.ParsePhase(titleCase.String(strings.TrimSpace(s)))
}

// binding ties a schema column to the index of its source column.
type binding struct {
	col   schema.Column
	index int
}

// Import reads CSV rows from r and upserts them into target.
func Import(r io.Reader, target Target, opts Options) (*Report, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	sch, err := storage.SchemaFor(opts.Kind)
	if err != nil {
		return nil, err
	}

	data, err := Decode(r)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file has no header row", ErrMissingMapping)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	dateB, labelB, rest, dropped, err := bind(sch, header, opts.Mapping)
	if err != nil {
		return nil, err
	}

	report := &Report{BatchID: uuid.New().String(), Dropped: dropped}
	logger := opts.Logger.With(zap.String("batch", report.BatchID), zap.String("table", sch.Name()))
	if len(dropped) > 0 {
		logger.Warn("ignoring mapped columns", zap.Strings("columns", dropped))
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read line %d: %w", line, err)
		}
		if blankRecord(rec) {
			continue
		}
		report.Rows++

		date, err := ParseDate(cell(rec, dateB.index))
		if err != nil {
			report.SkippedDate++
			logger.Debug("skipping row", zap.Int("line", line), zap.Error(err))
			continue
		}
		label, err := normalizeLabel(opts.Kind, cell(rec, labelB.index))
		if err != nil {
			report.SkippedLabel++
			logger.Debug("skipping row", zap.Int("line", line), zap.Error(err))
			continue
		}
		key := schema.NewKey(date, label)

		exists, err := target.Exists(opts.Kind, key)
		if err != nil {
			return report, err
		}
		if exists && !opts.Overwrite {
			report.SkippedExisting++
			continue
		}

		fields := schema.Fields{}
		for _, b := range rest {
			raw := cell(rec, b.index)
			if strings.TrimSpace(raw) == "" {
				continue
			}
			if b.col.Kind != schema.KindNumber {
				fields[b.col.Name] = raw
				continue
			}
			f, err := ParseNumber(raw, opts.Decimal)
			if err != nil {
				report.InvalidNumbers++
				continue
			}
			fields[b.col.Name] = f
		}

		res, err := target.Upsert(opts.Kind, key, fields)
		if errors.Is(err, schema.ErrInvalidValue) || errors.Is(err, storage.ErrDuplicateKey) {
			report.Rejected++
			logger.Warn("row rejected", zap.Int("line", line), zap.String("key", key.String()), zap.Error(err))
			continue
		}
		if err != nil {
			return report, err
		}
		switch res.Outcome {
		case storage.Created:
			report.Created++
		case storage.Updated:
			report.Updated++
		case storage.Skipped:
			report.SkippedEmpty++
		}
	}

	logger.Info("import finished",
		zap.Int("rows", report.Rows),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped()),
		zap.Int("invalid_numbers", report.InvalidNumbers))
	return report, nil
}

// bind resolves the mapping against the header. Mapped columns the schema
// cannot write to are returned as dropped.
func bind(sch *schema.Schema, header []string, mapping models.ColumnMapping) (date, label binding, rest []binding, dropped []string, err error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	resolve := func(colName string) (binding, error) {
		src := strings.TrimSpace(mapping[colName])
		if src == "" {
			return binding{}, fmt.Errorf("%w: no source column for %q", ErrMissingMapping, colName)
		}
		i, ok := index[src]
		if !ok {
			return binding{}, fmt.Errorf("%w: source column %q for %q not in file", ErrMissingMapping, src, colName)
		}
		c, _ := sch.Column(colName)
		return binding{col: c, index: i}, nil
	}

	dateCol, labelCol := sch.KeyColumns()
	if date, err = resolve(dateCol); err != nil {
		return
	}
	if label, err = resolve(labelCol); err != nil {
		return
	}

	for _, colName := range slices.Sorted(maps.Keys(mapping)) {
		if colName == dateCol || colName == labelCol {
			continue
		}
		c, ok := sch.Column(colName)
		if !ok || !c.Writable() {
			dropped = append(dropped, colName)
			continue
		}
		b, rerr := resolve(colName)
		if rerr != nil {
			err = rerr
			return
		}
		rest = append(rest, b)
	}
	return
}

func normalizeLabel(kind models.TableKind, s string) (string, error) {
	if kind.PhaseKeyed() {
		p, err := NormalizePhase(s)
		return string(p), err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty test type")
	}
	return s, nil
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
