package partition

// RefMap links each partition name on one side to the set of partition
// names on the other side whose ranges strictly overlap it. Touching
// ranges do not count: the refresh closure depends on that asymmetry
// between overlap (strict) and diff matching (exact equality).
type RefMap map[string]map[string]bool

// BuildRefMap builds the src→dst overlap graph. Every src name gets an
// entry, even when nothing overlaps it. Quadratic in the partition counts.
func BuildRefMap(src, dst RangeMap) RefMap {
	result := make(RefMap, len(src))
	for srcName, srcRange := range src {
		result[srcName] = make(map[string]bool)
		for dstName, dstRange := range dst {
			if srcRange.Overlaps(dstRange) {
				result[srcName][dstName] = true
			}
		}
	}
	return result
}
