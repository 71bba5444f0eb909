package types

import (
	"fmt"
	"time"
)

// Layouts accepted for time literals in admin SQL. Partition bounds are
// written as '2023-01-01' (Date) or '2023-01-01 06:30:00' (DateTime).
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

var timeLiteralLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	DateLayout,
}

// ParseTimeLiteral parses a date or datetime literal into a UTC time point.
func ParseTimeLiteral(s string) (time.Time, error) {
	for _, layout := range timeLiteralLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date/datetime literal: %q", s)
}

// FormatTimeLiteral renders a time point as a literal of the given type.
func FormatTimeLiteral(t time.Time, dt DataType) string {
	if dt == TypeDate {
		return t.Format(DateLayout)
	}
	return t.Format(DateTimeLayout)
}
