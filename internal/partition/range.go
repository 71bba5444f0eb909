// Package partition implements the partition-set reconciliation core:
// coarsening time ranges to a target granularity, sweep-line merging of the
// coarsened ranges, exact-match diffing between named range sets, overlap
// graphs between base and derived partitions, and the transitive refresh
// closure over those graphs. Everything here is a pure function over
// caller-owned maps; no state is held between calls.
package partition

import (
	"fmt"
	"sort"
	"time"
)

// Range is a half-open interval [Lower, Upper) over a time partition key.
// Invariant: Lower < Upper.
type Range struct {
	Lower time.Time
	Upper time.Time
}

// NewRange builds a range, rejecting empty or inverted bounds.
func NewRange(lower, upper time.Time) (Range, error) {
	if !lower.Before(upper) {
		return Range{}, fmt.Errorf("invalid range: lower %s is not before upper %s",
			lower.Format(time.RFC3339), upper.Format(time.RFC3339))
	}
	return Range{Lower: lower, Upper: upper}, nil
}

// Compare imposes a total order over ranges: by lower bound, then upper.
// Consistent with Equal: Compare returns 0 iff both endpoints match.
func (r Range) Compare(other Range) int {
	if c := compareTime(r.Lower, other.Lower); c != 0 {
		return c
	}
	return compareTime(r.Upper, other.Upper)
}

// Equal reports exact-endpoint equality.
func (r Range) Equal(other Range) bool {
	return r.Lower.Equal(other.Lower) && r.Upper.Equal(other.Upper)
}

// Overlaps reports whether the open interiors of two ranges intersect.
// Touching ranges ([a,b) and [b,c)) do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Lower.Before(other.Upper) && other.Lower.Before(r.Upper)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s)", r.Lower.Format("2006-01-02 15:04:05"), r.Upper.Format("2006-01-02 15:04:05"))
}

func compareTime(a, b time.Time) int {
	if a.Before(b) {
		return -1
	}
	if a.After(b) {
		return 1
	}
	return 0
}

// RangeMap is a set of named, non-overlapping partition ranges.
type RangeMap map[string]Range

// SortedNames returns the partition names ordered by their ranges (Compare),
// with the name as tie-break. Diff results do not depend on this order; it
// exists so traversals are deterministic.
func (m RangeMap) SortedNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if c := m[names[i]].Compare(m[names[j]]); c != 0 {
			return c < 0
		}
		return names[i] < names[j]
	})
	return names
}

// Clone returns a shallow copy of the map.
func (m RangeMap) Clone() RangeMap {
	out := make(RangeMap, len(m))
	for name, r := range m {
		out[name] = r
	}
	return out
}
