package types

import (
	"fmt"
	"strings"
)

// Granularity is the time unit used to bucket a fine-grained partitioning
// into a coarser one. It is a closed enumeration; free-form strings are
// converted exactly once, at the parse boundary, via ParseGranularity.
type Granularity uint8

const (
	GranMinute Granularity = iota
	GranHour
	GranDay
	GranMonth
	GranQuarter
	GranYear
)

var granularityNames = map[Granularity]string{
	GranMinute:  "minute",
	GranHour:    "hour",
	GranDay:     "day",
	GranMonth:   "month",
	GranQuarter: "quarter",
	GranYear:    "year",
}

// ParseGranularity converts a granularity token (case-insensitive) into the
// enum. Unrecognized tokens (e.g. "week") are a validation error.
func ParseGranularity(s string) (Granularity, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for g, name := range granularityNames {
		if name == n {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unsupported granularity: %s", s)
}

// Name returns the lowercase token for the granularity.
func (g Granularity) Name() string {
	if name, ok := granularityNames[g]; ok {
		return name
	}
	return fmt.Sprintf("granularity(%d)", uint8(g))
}

// Valid reports whether g is one of the defined enum values.
func (g Granularity) Valid() bool {
	_, ok := granularityNames[g]
	return ok
}
