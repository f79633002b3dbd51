// ABOUTME: Partial field maps applied onto typed records.
// ABOUTME: Coerces loosely typed values to column types and reports dropped keys.
package schema

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Fields is a partial update: column name → value. Values may be nil, a
// number, a string, *float64 or *string.
type Fields map[string]any

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Only returns the subset of f whose names are in names.
func (f Fields) Only(names ...string) Fields {
	out := Fields{}
	for _, n := range names {
		if v, ok := f[n]; ok {
			out[n] = v
		}
	}
	return out
}

// Check validates f against the schema without touching a record. It
// returns the names Apply would drop.
func (s *Schema) Check(f Fields) (dropped []string, err error) {
	scratch := reflect.New(s.typ).Interface()
	_, dropped, err = s.Apply(scratch, f)
	return dropped, err
}

// Apply overlays f onto rec. Unknown, derived and timestamp columns are
// dropped; key columns are ignored when they match the record's key and
// dropped otherwise. Nothing is written if any value fails to convert.
func (s *Schema) Apply(rec any, f Fields) (applied, dropped []string, err error) {
	v := s.elem(rec)
	key := s.Key(rec)

	type assignment struct {
		field reflect.Value
		value reflect.Value
	}
	var pending []assignment

	for _, name := range f.Names() {
		value := f[name]
		c, ok := s.Column(name)
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		if c.Key {
			if !s.sameKeyValue(c, key, value) {
				dropped = append(dropped, name)
			}
			continue
		}
		if !c.Writable() {
			dropped = append(dropped, name)
			continue
		}

		var rv reflect.Value
		switch c.Kind {
		case KindNumber:
			p, err := coerceNumber(value)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: column %s: %v", ErrInvalidValue, name, err)
			}
			rv = reflect.ValueOf(p)
		case KindText:
			p, err := coerceText(value)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: column %s: %v", ErrInvalidValue, name, err)
			}
			rv = reflect.ValueOf(p)
		}
		pending = append(pending, assignment{field: s.field(v, c), value: rv})
		applied = append(applied, name)
	}

	for _, a := range pending {
		a.field.Set(a.value)
	}
	return applied, dropped, nil
}

func (s *Schema) sameKeyValue(c Column, key Key, value any) bool {
	switch c.Kind {
	case KindDate:
		switch x := value.(type) {
		case time.Time:
			return Day(x).Equal(key.Date)
		case string:
			d, err := ParseDate(x)
			return err == nil && d.Equal(key.Date)
		}
	case KindLabel:
		if x, ok := value.(string); ok {
			return x == key.Label
		}
		if x, ok := value.(fmt.Stringer); ok {
			return x.String() == key.Label
		}
		rv := reflect.ValueOf(value)
		return rv.IsValid() && rv.Kind() == reflect.String && rv.String() == key.Label
	}
	return false
}

func coerceNumber(value any) (*float64, error) {
	var f float64
	switch x := value.(type) {
	case nil:
		return nil, nil
	case *float64:
		if x == nil {
			return nil, nil
		}
		f = *x
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		return parseNumber(x)
	case *string:
		if x == nil {
			return nil, nil
		}
		return parseNumber(*x)
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, nil
	}
	return &f, nil
}

func coerceText(value any) (*string, error) {
	var s string
	switch x := value.(type) {
	case nil:
		return nil, nil
	case *string:
		if x == nil {
			return nil, nil
		}
		s = *x
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	case fmt.Stringer:
		s = x.String()
	default:
		return nil, fmt.Errorf("unsupported type %T", value)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return &s, nil
}
