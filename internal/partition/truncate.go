package partition

import (
	"fmt"
	"time"

	"github.com/mklzl/rollsync/internal/types"
)

// Floor truncates t down to the start of its bucket at granularity g:
// minute zeroes seconds, day snaps to midnight, quarter snaps to the first
// day of the quarter's first month, and so on.
func Floor(t time.Time, g types.Granularity) (time.Time, error) {
	y, mo, d := t.Date()
	switch g {
	case types.GranMinute:
		return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, t.Location()), nil
	case types.GranHour:
		return time.Date(y, mo, d, t.Hour(), 0, 0, 0, t.Location()), nil
	case types.GranDay:
		return time.Date(y, mo, d, 0, 0, 0, 0, t.Location()), nil
	case types.GranMonth:
		return time.Date(y, mo, 1, 0, 0, 0, 0, t.Location()), nil
	case types.GranQuarter:
		return time.Date(y, firstMonthOfQuarter(mo), 1, 0, 0, 0, 0, t.Location()), nil
	case types.GranYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported granularity: %s", g.Name())
	}
}

// Ceil returns t unchanged when t already lies on a granularity boundary,
// and the next boundary above t otherwise. An upper bound ending exactly
// on a boundary must not gain an extra bucket.
func Ceil(t time.Time, g types.Granularity) (time.Time, error) {
	floored, err := Floor(t, g)
	if err != nil {
		return time.Time{}, err
	}
	if floored.Equal(t) {
		return t, nil
	}
	return advance(floored, g), nil
}

// advance moves an already-aligned time point forward by one unit of g.
func advance(t time.Time, g types.Granularity) time.Time {
	switch g {
	case types.GranMinute:
		return t.Add(time.Minute)
	case types.GranHour:
		return t.Add(time.Hour)
	case types.GranDay:
		return t.AddDate(0, 0, 1)
	case types.GranMonth:
		return t.AddDate(0, 1, 0)
	case types.GranQuarter:
		return t.AddDate(0, 3, 0)
	case types.GranYear:
		return t.AddDate(1, 0, 0)
	}
	return t
}

func firstMonthOfQuarter(m time.Month) time.Month {
	return time.Month((int(m)-1)/3*3 + 1)
}
