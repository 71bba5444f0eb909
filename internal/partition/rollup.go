package partition

import (
	"sort"
	"time"

	"github.com/mklzl/rollsync/internal/types"
)

// MapRange coarsens a single base range to granularity g:
// [Floor(lower), Ceil(upper)). The image may overlap the images of
// neighboring base ranges; RollupRanges resolves that.
func MapRange(r Range, g types.Granularity) (Range, error) {
	lower, err := Floor(r.Lower, g)
	if err != nil {
		return Range{}, err
	}
	upper, err := Ceil(r.Upper, g)
	if err != nil {
		return Range{}, err
	}
	return Range{Lower: lower, Upper: upper}, nil
}

// RollupRanges computes the rollup target partition set for a base table:
// every base range is coarsened via MapRange, all distinct boundary points
// are collected, and each consecutive pair of points becomes one output
// range. The output is non-overlapping and contiguous by construction.
// Fewer than two distinct points means there is nothing to partition and
// yields an empty map.
func RollupRanges(base RangeMap, g types.Granularity) (RangeMap, error) {
	pointSet := make(map[int64]time.Time, 2*len(base))
	for _, r := range base {
		mapped, err := MapRange(r, g)
		if err != nil {
			return nil, err
		}
		pointSet[mapped.Lower.UnixNano()] = mapped.Lower
		pointSet[mapped.Upper.UnixNano()] = mapped.Upper
	}

	result := make(RangeMap)
	if len(pointSet) < 2 {
		return result, nil
	}

	points := make([]time.Time, 0, len(pointSet))
	for _, p := range pointSet {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })

	for i := 1; i < len(points); i++ {
		name, err := Name(points[i-1], points[i], g)
		if err != nil {
			return nil, err
		}
		result[name] = Range{Lower: points[i-1], Upper: points[i]}
	}
	return result, nil
}
