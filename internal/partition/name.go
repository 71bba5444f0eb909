package partition

import (
	"fmt"
	"time"

	"github.com/mklzl/rollsync/internal/types"
)

// namePrefix starts every generated partition name.
const namePrefix = "p"

// nameLayouts renders a boundary time point at the precision of its
// granularity. Quarter has no Go layout letter and is handled separately.
var nameLayouts = map[types.Granularity]string{
	types.GranMinute: "200601021504",
	types.GranHour:   "2006010215",
	types.GranDay:    "20060102",
	types.GranMonth:  "200601",
	types.GranYear:   "2006",
}

// FormatKey renders a single boundary time point at granularity precision,
// e.g. day → "20230105", quarter → "2023Q1".
func FormatKey(t time.Time, g types.Granularity) (string, error) {
	if g == types.GranQuarter {
		return fmt.Sprintf("%04dQ%d", t.Year(), (int(t.Month())-1)/3+1), nil
	}
	layout, ok := nameLayouts[g]
	if !ok {
		return "", fmt.Errorf("unsupported granularity: %s", g.Name())
	}
	return t.Format(layout), nil
}

// Name generates the deterministic partition name for [lower, upper) at
// granularity g: prefix + lower + "_" + upper. Consecutive sweep-line
// boundary points are strictly increasing, so names never collide within
// one rollup result.
func Name(lower, upper time.Time, g types.Granularity) (string, error) {
	lo, err := FormatKey(lower, g)
	if err != nil {
		return "", err
	}
	hi, err := FormatKey(upper, g)
	if err != nil {
		return "", err
	}
	return namePrefix + lo + "_" + hi, nil
}
