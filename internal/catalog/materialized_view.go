package catalog

import (
	"fmt"
	"sync"

	"github.com/mklzl/rollsync/internal/partition"
	"github.com/mklzl/rollsync/internal/types"
)

// SyncMode selects how a view's partitioning tracks its source table.
type SyncMode uint8

const (
	// SyncSame mirrors the source partitioning one-to-one.
	SyncSame SyncMode = iota
	// SyncRollup re-buckets the source partitioning at a coarser granularity.
	SyncRollup
)

func (m SyncMode) String() string {
	if m == SyncRollup {
		return "rollup"
	}
	return "same"
}

// MaterializedView is a derived table whose partitions are kept in sync
// with its source table. Each view partition remembers the source-partition
// data versions it was last refreshed against; a version moving past the
// watermark makes the view partition stale.
type MaterializedView struct {
	Name        string
	SourceTable string
	Mode        SyncMode
	Granularity types.Granularity // rollup mode only
	SelectSQL   string
	DataDir     string

	mu         sync.RWMutex
	partitions map[string]partition.Range
	watermarks map[string]map[string]uint64 // view partition -> source partition -> version
}

// NewMaterializedView creates an empty view.
func NewMaterializedView(name, sourceTable string, mode SyncMode, g types.Granularity, selectSQL, dataDir string) *MaterializedView {
	return &MaterializedView{
		Name:        name,
		SourceTable: sourceTable,
		Mode:        mode,
		Granularity: g,
		SelectSQL:   selectSQL,
		DataDir:     dataDir,
		partitions:  make(map[string]partition.Range),
		watermarks:  make(map[string]map[string]uint64),
	}
}

// RangeMap returns a snapshot of the view's named ranges for the sync core.
func (v *MaterializedView) RangeMap() partition.RangeMap {
	v.mu.RLock()
	defer v.mu.RUnlock()

	m := make(partition.RangeMap, len(v.partitions))
	for name, r := range v.partitions {
		m[name] = r
	}
	return m
}

// AddPartition installs a partition produced by the sync diff. A fresh
// partition has no watermarks and is therefore stale until refreshed.
func (v *MaterializedView) AddPartition(name string, r partition.Range) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.partitions[name]; exists {
		return fmt.Errorf("partition %s already exists in view %s", name, v.Name)
	}
	for existing, er := range v.partitions {
		if er.Overlaps(r) {
			return fmt.Errorf("partition %s range %s overlaps existing partition %s %s",
				name, r, existing, er)
		}
	}
	v.partitions[name] = r
	return nil
}

// DropPartition removes a partition and its watermarks.
func (v *MaterializedView) DropPartition(name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.partitions[name]; !ok {
		return fmt.Errorf("partition %s does not exist in view %s", name, v.Name)
	}
	delete(v.partitions, name)
	delete(v.watermarks, name)
	return nil
}

// Watermarks returns the source versions the partition was last refreshed
// against, or nil when it has never been refreshed.
func (v *MaterializedView) Watermarks(name string) map[string]uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()

	wm, ok := v.watermarks[name]
	if !ok {
		return nil
	}
	out := make(map[string]uint64, len(wm))
	for base, ver := range wm {
		out[base] = ver
	}
	return out
}

// SetWatermarks records a completed refresh of a view partition.
func (v *MaterializedView) SetWatermarks(name string, baseVersions map[string]uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	wm := make(map[string]uint64, len(baseVersions))
	for base, ver := range baseVersions {
		wm[base] = ver
	}
	v.watermarks[name] = wm
}

// restorePartition installs a partition loaded from a snapshot.
func (v *MaterializedView) restorePartition(name string, r partition.Range, wm map[string]uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.partitions[name] = r
	if wm != nil {
		v.watermarks[name] = wm
	}
}
