package engine

import (
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"github.com/mklzl/rollsync/internal/catalog"
	"github.com/mklzl/rollsync/internal/partition"
)

// RefreshTask describes one stale view partition whose data needs to be
// recomputed. Tasks are emitted and logged; data movement is out of
// scope here.
type RefreshTask struct {
	ID        string
	ViewName  string
	Partition string
	Range     partition.Range
}

// SyncResult summarizes one synchronization cycle for a view.
type SyncResult struct {
	Added   []string
	Dropped []string
	Tasks   []RefreshTask
}

// SyncView brings a view's partition set in line with its source table
// and emits refresh tasks for stale partitions.
//
// The cycle: diff the source ranges against the view ranges (rolled up
// for rollup views), apply the diff to the catalog, build the overlap
// maps in both directions, seed the stale sets from data-version
// watermarks, run the closure propagation, then advance watermarks for
// every partition a task was emitted for.
func (e *Executor) SyncView(v *catalog.MaterializedView) (*SyncResult, error) {
	table, ok := e.DB.GetTable(v.SourceTable)
	if !ok {
		return nil, fmt.Errorf("source table %s of view %s does not exist", v.SourceTable, v.Name)
	}

	base := table.RangeMap()
	derived := v.RangeMap()

	var diff partition.Diff
	if v.Mode == catalog.SyncRollup {
		d, err := partition.CalcSyncRollupPartition(base, derived, v.Granularity)
		if err != nil {
			return nil, err
		}
		diff = d
	} else {
		diff = partition.CalcSyncSamePartition(base, derived)
	}

	if err := e.DB.ApplySyncDiff(v, diff); err != nil {
		return nil, err
	}
	derived = v.RangeMap()

	viewToBase := diff.RollupToBase
	if viewToBase == nil {
		viewToBase = partition.BuildRefMap(derived, base)
	}
	baseToView := partition.BuildRefMap(base, derived)

	versions := table.DataVersions()
	needsRefresh := make(map[string]bool)
	changedBase := make(map[string]bool)
	for name := range derived {
		wm := v.Watermarks(name)
		if wm == nil {
			// Never refreshed, typically a partition the diff just added.
			needsRefresh[name] = true
			continue
		}
		for baseName := range viewToBase[name] {
			seen, ok := wm[baseName]
			if !ok || versions[baseName] > seen {
				changedBase[baseName] = true
			}
		}
	}

	partition.CalcPotentialRefreshPartitions(needsRefresh, changedBase, baseToView, viewToBase)

	res := &SyncResult{
		Added:   diff.Adds.SortedNames(),
		Dropped: diff.Deletes.SortedNames(),
	}

	stale := make([]string, 0, len(needsRefresh))
	for name := range needsRefresh {
		stale = append(stale, name)
	}
	sort.Strings(stale)

	for _, name := range stale {
		r, ok := derived[name]
		if !ok {
			continue
		}
		task := RefreshTask{
			ID:        uuid.NewString(),
			ViewName:  v.Name,
			Partition: name,
			Range:     r,
		}
		res.Tasks = append(res.Tasks, task)
		log.Printf("[sync] view %s partition %s scheduled for refresh (task %s)", v.Name, name, task.ID)

		wm := make(map[string]uint64, len(viewToBase[name]))
		for baseName := range viewToBase[name] {
			wm[baseName] = versions[baseName]
		}
		v.SetWatermarks(name, wm)
	}

	if len(res.Tasks) > 0 {
		if err := e.DB.PersistView(v); err != nil {
			return nil, err
		}
	}
	return res, nil
}
