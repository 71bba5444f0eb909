package catalog

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mklzl/rollsync/internal/partition"
	"github.com/mklzl/rollsync/internal/types"
)

// Partition is one named time-range partition of a table, with the data
// version the refresh pipeline uses to detect changes. DataVersion moves
// forward on every ingest; it never decreases.
type Partition struct {
	Name        string
	Range       partition.Range
	DataVersion uint64
	NumRows     uint64
}

// Table is a range-partitioned base table.
type Table struct {
	Name    string
	Schema  TableSchema
	DataDir string // path: <db_data_dir>/<table_name>/

	mu         sync.RWMutex
	partitions map[string]*Partition
}

// NewTable creates an empty table.
func NewTable(name string, schema TableSchema, dataDir string) *Table {
	return &Table{
		Name:       name,
		Schema:     schema,
		DataDir:    dataDir,
		partitions: make(map[string]*Partition),
	}
}

// AddPartition registers a new partition. The new range must not overlap
// any existing partition; the per-table range map stays non-overlapping by
// construction.
func (t *Table) AddPartition(name string, r partition.Range) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.partitions[name]; exists {
		return fmt.Errorf("partition %s already exists in table %s", name, t.Name)
	}
	for _, p := range t.partitions {
		if p.Range.Overlaps(r) {
			return fmt.Errorf("partition %s range %s overlaps existing partition %s %s",
				name, r, p.Name, p.Range)
		}
	}
	t.partitions[name] = &Partition{Name: name, Range: r}
	return nil
}

// DropPartition removes a partition by name.
func (t *Table) DropPartition(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.partitions[name]; !ok {
		return fmt.Errorf("partition %s does not exist in table %s", name, t.Name)
	}
	delete(t.partitions, name)
	return nil
}

// RangeMap returns a snapshot of the table's named ranges for the sync core.
func (t *Table) RangeMap() partition.RangeMap {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m := make(partition.RangeMap, len(t.partitions))
	for name, p := range t.partitions {
		m[name] = p.Range
	}
	return m
}

// Partitions returns the partitions sorted by range for deterministic output.
func (t *Table) Partitions() []*Partition {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Partition, 0, len(t.partitions))
	for _, p := range t.partitions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Range.Compare(out[j].Range); c != 0 {
			return c < 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// GetPartition returns a partition by name.
func (t *Table) GetPartition(name string) (*Partition, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.partitions[name]
	return p, ok
}

// Ingest records rows landing at key time kt: the covering partition's data
// version is bumped so the refresh pipeline sees the partition as changed.
// Rows outside every partition range are rejected.
func (t *Table) Ingest(kt time.Time, rows uint64) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for name, p := range t.partitions {
		if !kt.Before(p.Range.Lower) && kt.Before(p.Range.Upper) {
			p.DataVersion++
			p.NumRows += rows
			return name, nil
		}
	}
	return "", fmt.Errorf("no partition of table %s covers key %s",
		t.Name, types.FormatTimeLiteral(kt, t.Schema.PartitionKeyType()))
}

// DataVersions returns the current per-partition data versions.
func (t *Table) DataVersions() map[string]uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]uint64, len(t.partitions))
	for name, p := range t.partitions {
		out[name] = p.DataVersion
	}
	return out
}

// restorePartition installs a partition loaded from a snapshot.
func (t *Table) restorePartition(p *Partition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.partitions[p.Name] = p
}
