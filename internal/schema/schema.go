// ABOUTME: Schema descriptors built from `col` struct tags on record types.
// ABOUTME: Encodes records to flat rows and decodes rows back into records.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidValue is returned when a cell or field value cannot be converted
// to its column type.
var ErrInvalidValue = errors.New("invalid value")

// Kind is the storage type of a column.
type Kind int

const (
	KindDate Kind = iota
	KindLabel
	KindNumber
	KindText
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindLabel:
		return "label"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindTimestamp:
		return "timestamp"
	}
	return "unknown"
}

// Column describes one column of a table.
type Column struct {
	Name       string
	Kind       Kind
	Key        bool
	Derived    bool
	Attachment bool

	field int
}

// Writable reports whether upserts may set the column.
func (c Column) Writable() bool {
	return !c.Key && !c.Derived && c.Kind != KindTimestamp
}

// Schema is the descriptor of one table kind: its name, ordered columns and
// key columns.
type Schema struct {
	name     string
	typ      reflect.Type
	columns  []Column
	byName   map[string]int
	dateCol  int
	labelCol int
	stampCol int
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	timePtrType = reflect.TypeOf((*time.Time)(nil))
	floatPtr    = reflect.TypeOf((*float64)(nil))
	stringPtr   = reflect.TypeOf((*string)(nil))
)

// New builds a schema from the struct type of sample. Fields tagged
// `col:"name[,key][,derived][,attachment]"` become columns in declaration
// order. A schema needs exactly one date key and one label key.
func New(name string, sample any) (*Schema, error) {
	typ := reflect.TypeOf(sample)
	if typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema %s: sample must be a struct, got %v", name, typ)
	}

	s := &Schema{
		name:     name,
		typ:      typ,
		byName:   make(map[string]int),
		dateCol:  -1,
		labelCol: -1,
		stampCol: -1,
	}

	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("col")
		if !ok {
			continue
		}
		parts := strings.Split(tag, ",")
		col := Column{Name: parts[0], field: i}
		for _, opt := range parts[1:] {
			switch opt {
			case "key":
				col.Key = true
			case "derived":
				col.Derived = true
			case "attachment":
				col.Attachment = true
			default:
				return nil, fmt.Errorf("schema %s: column %s: unknown option %q", name, col.Name, opt)
			}
		}

		switch {
		case f.Type == timeType && col.Key:
			col.Kind = KindDate
			if s.dateCol >= 0 {
				return nil, fmt.Errorf("schema %s: more than one date key", name)
			}
			s.dateCol = len(s.columns)
		case f.Type.Kind() == reflect.String && col.Key:
			col.Kind = KindLabel
			if s.labelCol >= 0 {
				return nil, fmt.Errorf("schema %s: more than one label key", name)
			}
			s.labelCol = len(s.columns)
		case f.Type == floatPtr:
			col.Kind = KindNumber
		case f.Type == stringPtr:
			col.Kind = KindText
		case f.Type == timePtrType:
			col.Kind = KindTimestamp
			s.stampCol = len(s.columns)
		default:
			return nil, fmt.Errorf("schema %s: column %s: unsupported field type %v", name, col.Name, f.Type)
		}

		if _, dup := s.byName[col.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate column %s", name, col.Name)
		}
		s.byName[col.Name] = len(s.columns)
		s.columns = append(s.columns, col)
	}

	if s.dateCol < 0 || s.labelCol < 0 {
		return nil, fmt.Errorf("schema %s: needs a date key and a label key", name)
	}
	return s, nil
}

// MustNew is New for package-level schema variables.
func MustNew(name string, sample any) *Schema {
	s, err := New(name, sample)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the table name.
func (s *Schema) Name() string { return s.name }

// Columns returns the columns in header order.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks up a column by name.
func (s *Schema) Column(name string) (Column, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// Header returns the column names in order.
func (s *Schema) Header() []string {
	h := make([]string, len(s.columns))
	for i, c := range s.columns {
		h[i] = c.Name
	}
	return h
}

// KeyColumns returns the names of the date and label key columns.
func (s *Schema) KeyColumns() (date, label string) {
	return s.columns[s.dateCol].Name, s.columns[s.labelCol].Name
}

// UnknownColumns returns header names the schema does not know.
func (s *Schema) UnknownColumns(header []string) []string {
	var unknown []string
	for _, h := range header {
		if _, ok := s.byName[h]; !ok {
			unknown = append(unknown, h)
		}
	}
	return unknown
}

// elem returns the addressable struct behind rec, which must be a pointer
// to the schema's record type.
func (s *Schema) elem(rec any) reflect.Value {
	v := reflect.ValueOf(rec)
	if v.Kind() != reflect.Pointer || v.Elem().Type() != s.typ {
		panic(fmt.Sprintf("schema %s: expected *%v, got %T", s.name, s.typ, rec))
	}
	return v.Elem()
}

func (s *Schema) field(v reflect.Value, c Column) reflect.Value {
	return v.Field(c.field)
}

// Key extracts the natural key of rec.
func (s *Schema) Key(rec any) Key {
	v := s.elem(rec)
	date := s.field(v, s.columns[s.dateCol]).Interface().(time.Time)
	label := s.field(v, s.columns[s.labelCol]).String()
	return NewKey(date, label)
}

// SetKey overwrites the key fields of rec.
func (s *Schema) SetKey(rec any, k Key) {
	v := s.elem(rec)
	s.field(v, s.columns[s.dateCol]).Set(reflect.ValueOf(Day(k.Date)))
	s.field(v, s.columns[s.labelCol]).SetString(k.Label)
}

// LastModified returns the last_modified stamp of rec, if any.
func (s *Schema) LastModified(rec any) (time.Time, bool) {
	if s.stampCol < 0 {
		return time.Time{}, false
	}
	p := s.field(s.elem(rec), s.columns[s.stampCol]).Interface().(*time.Time)
	if p == nil {
		return time.Time{}, false
	}
	return *p, true
}

// Touch sets last_modified on rec.
func (s *Schema) Touch(rec any, t time.Time) {
	if s.stampCol < 0 {
		return
	}
	s.field(s.elem(rec), s.columns[s.stampCol]).Set(reflect.ValueOf(&t))
}

// Encode renders rec as a row in header order. Null values become empty cells.
func (s *Schema) Encode(rec any) []string {
	v := s.elem(rec)
	row := make([]string, len(s.columns))
	for i, c := range s.columns {
		row[i] = encodeCell(s.field(v, c), c.Kind)
	}
	return row
}

func encodeCell(f reflect.Value, kind Kind) string {
	switch kind {
	case KindDate:
		return f.Interface().(time.Time).Format(DateLayout)
	case KindLabel:
		return f.String()
	case KindNumber:
		p := f.Interface().(*float64)
		if p == nil {
			return ""
		}
		return strconv.FormatFloat(*p, 'f', -1, 64)
	case KindText:
		p := f.Interface().(*string)
		if p == nil {
			return ""
		}
		return *p
	case KindTimestamp:
		p := f.Interface().(*time.Time)
		if p == nil {
			return ""
		}
		return FormatTimestamp(*p)
	}
	return ""
}

// Decode fills rec from a row laid out according to header. Columns missing
// from the header stay null and header names the schema does not know are
// ignored.
func (s *Schema) Decode(header, row []string, rec any) error {
	v := s.elem(rec)
	for i, name := range header {
		ci, ok := s.byName[name]
		if !ok || i >= len(row) {
			continue
		}
		c := s.columns[ci]
		if err := decodeCell(s.field(v, c), c, row[i]); err != nil {
			return err
		}
	}
	return nil
}

func decodeCell(f reflect.Value, c Column, cell string) error {
	switch c.Kind {
	case KindDate:
		if strings.TrimSpace(cell) == "" {
			return fmt.Errorf("%w: column %s: key must not be empty", ErrInvalidValue, c.Name)
		}
		d, err := ParseDate(cell)
		if err != nil {
			return fmt.Errorf("%w: column %s: %v", ErrInvalidValue, c.Name, err)
		}
		f.Set(reflect.ValueOf(d))
	case KindLabel:
		if strings.TrimSpace(cell) == "" {
			return fmt.Errorf("%w: column %s: key must not be empty", ErrInvalidValue, c.Name)
		}
		f.SetString(cell)
	case KindNumber:
		p, err := parseNumber(cell)
		if err != nil {
			return fmt.Errorf("%w: column %s: %v", ErrInvalidValue, c.Name, err)
		}
		f.Set(reflect.ValueOf(p))
	case KindText:
		if cell == "" {
			f.Set(reflect.Zero(f.Type()))
			return nil
		}
		f.Set(reflect.ValueOf(&cell))
	case KindTimestamp:
		if strings.TrimSpace(cell) == "" {
			f.Set(reflect.Zero(f.Type()))
			return nil
		}
		t, err := ParseTimestamp(cell)
		if err != nil {
			return fmt.Errorf("%w: column %s: %v", ErrInvalidValue, c.Name, err)
		}
		f.Set(reflect.ValueOf(&t))
	}
	return nil
}

// parseNumber treats empty cells and NaN/Inf as null.
func parseNumber(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, nil
	}
	return &f, nil
}

// Number returns the numeric value of column name on rec.
func (s *Schema) Number(rec any, name string) (float64, bool) {
	c, ok := s.Column(name)
	if !ok || c.Kind != KindNumber {
		return 0, false
	}
	p := s.field(s.elem(rec), c).Interface().(*float64)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Value returns the value of column name as a plain Go value: nil for null,
// float64 for numbers, string for everything else.
func (s *Schema) Value(rec any, name string) any {
	c, ok := s.Column(name)
	if !ok {
		return nil
	}
	f := s.field(s.elem(rec), c)
	switch c.Kind {
	case KindNumber:
		if p := f.Interface().(*float64); p != nil {
			return *p
		}
		return nil
	case KindText:
		if p := f.Interface().(*string); p != nil {
			return *p
		}
		return nil
	case KindTimestamp:
		if p := f.Interface().(*time.Time); p != nil {
			return FormatTimestamp(*p)
		}
		return nil
	}
	return encodeCell(f, c.Kind)
}

// ToMap renders rec as column → value, omitting nulls.
func (s *Schema) ToMap(rec any) map[string]any {
	m := make(map[string]any, len(s.columns))
	for _, c := range s.columns {
		if v := s.Value(rec, c.Name); v != nil {
			m[c.Name] = v
		}
	}
	return m
}
