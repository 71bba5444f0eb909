package partition

// CalcPotentialRefreshPartitions expands needsRefresh (derived partitions
// requiring refresh) and changedBase (base partitions known to have changed)
// to their transitive closure over the bipartite overlap graph: every base
// partition backing a stale derived partition is changed, and every derived
// partition over a changed base partition is stale. Both sets grow
// monotonically and are bounded by the partition counts, so the fixpoint
// is reached in finitely many rounds; overlap is local in time, so one or
// two rounds is typical.
//
// Both sets are mutated in place and must be exclusively owned by the
// caller for the duration of the call.
func CalcPotentialRefreshPartitions(needsRefresh, changedBase map[string]bool, baseToDerived, derivedToBase RefMap) {
	count := len(needsRefresh)
	updated := gatherPotentialRefreshPartitions(needsRefresh, changedBase, baseToDerived, derivedToBase)
	for count != updated {
		count = updated
		updated = gatherPotentialRefreshPartitions(needsRefresh, changedBase, baseToDerived, derivedToBase)
	}
}

// gatherPotentialRefreshPartitions performs one propagation round and
// returns the new size of needsRefresh.
func gatherPotentialRefreshPartitions(needsRefresh, changedBase map[string]bool, baseToDerived, derivedToBase RefMap) int {
	// Snapshot both frontiers; the loops below grow the sets.
	derivedFrontier := make([]string, 0, len(needsRefresh))
	for name := range needsRefresh {
		derivedFrontier = append(derivedFrontier, name)
	}
	baseFrontier := make([]string, 0, len(changedBase))
	for name := range changedBase {
		baseFrontier = append(baseFrontier, name)
	}

	for _, baseName := range baseFrontier {
		for dependent := range baseToDerived[baseName] {
			needsRefresh[dependent] = true
		}
	}
	for _, derivedName := range derivedFrontier {
		for baseName := range derivedToBase[derivedName] {
			changedBase[baseName] = true
			for dependent := range baseToDerived[baseName] {
				needsRefresh[dependent] = true
			}
		}
	}
	return len(needsRefresh)
}
