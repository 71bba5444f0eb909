package partition

import (
	"github.com/mklzl/rollsync/internal/types"
)

// Diff is the partition plan for bringing a derived table in sync with its
// base table: partitions to create, partitions to drop, and (for rollup
// sync) the rollup-to-base overlap references used by refresh propagation.
type Diff struct {
	Adds         RangeMap
	Deletes      RangeMap
	RollupToBase RefMap
}

// DiffRanges returns the entries of src that have no exact-endpoint match
// in dst. Each dst entry can satisfy at most one src entry; matched dst
// entries are tracked in a consumed set rather than removed mid-iteration.
// Unmatched dst entries are not reported; compute deletions by swapping
// the arguments.
func DiffRanges(src, dst RangeMap) RangeMap {
	srcNames := src.SortedNames()
	dstNames := dst.SortedNames()

	result := make(RangeMap)
	consumed := make(map[string]bool, len(dstNames))

	for _, srcName := range srcNames {
		srcRange := src[srcName]
		found := false
		for _, dstName := range dstNames {
			if consumed[dstName] {
				continue
			}
			if srcRange.Equal(dst[dstName]) {
				consumed[dstName] = true
				found = true
				break
			}
		}
		if !found {
			result[srcName] = srcRange
		}
	}
	return result
}

// CalcSyncSamePartition computes the add/delete plan for a derived table
// that mirrors the base table's partitioning one-to-one.
func CalcSyncSamePartition(base, derived RangeMap) Diff {
	return Diff{
		Adds:    DiffRanges(base, derived),
		Deletes: DiffRanges(derived, base),
	}
}

// CalcSyncRollupPartition computes the add/delete plan for a derived table
// whose partitioning is the base table's rolled up to granularity g. The
// returned Diff carries the rollup→base reference map for later refresh
// propagation.
func CalcSyncRollupPartition(base, derived RangeMap, g types.Granularity) (Diff, error) {
	rollup, err := RollupRanges(base, g)
	if err != nil {
		return Diff{}, err
	}
	return Diff{
		Adds:         DiffRanges(rollup, derived),
		Deletes:      DiffRanges(derived, rollup),
		RollupToBase: BuildRefMap(rollup, base),
	}, nil
}
