// ABOUTME: Natural record keys and the canonical date/timestamp formats.
// ABOUTME: Every table is keyed by a (date, label) pair.
package schema

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical serialization of date columns.
	DateLayout = "2006-01-02"

	// TimestampLayout is used for last_modified. Parsing also accepts
	// values without the fractional part.
	TimestampLayout = "2006-01-02 15:04:05.000000"

	timestampParseLayout = "2006-01-02 15:04:05"
)

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Key is the natural key of a record: (date, phase) for the daily log and
// nutrition diary, (test_date, test_type) for sport and blood tests.
type Key struct {
	Date  time.Time
	Label string
}

// NewKey normalizes date to midnight UTC of its calendar day.
func NewKey(date time.Time, label string) Key {
	return Key{Date: Day(date), Label: label}
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// String renders the key as "2024-03-01/Vegan".
func (k Key) String() string {
	return k.Date.Format(DateLayout) + "/" + k.Label
}

// Equal compares keys by calendar day and label.
func (k Key) Equal(o Key) bool {
	return Day(k.Date).Equal(Day(o.Date)) && k.Label == o.Label
}

// ParseDate parses a date cell. Time-of-day parts are discarded.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (use YYYY-MM-DD)", s)
}

// FormatTimestamp renders a last_modified value.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp parses a last_modified value in local time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(timestampParseLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t, nil
}

// Stamp normalizes a clock reading to what survives a save/load cycle.
func Stamp(t time.Time) time.Time {
	return t.Local().Truncate(time.Microsecond)
}
