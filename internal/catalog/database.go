package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mklzl/rollsync/internal/partition"
	"github.com/mklzl/rollsync/internal/types"
)

// Database manages all tables, materialized views, and the base data
// directory. Metadata is reconstructed from disk on startup.
type Database struct {
	DataDir string

	mu            sync.RWMutex
	tables        map[string]*Table
	views         map[string]*MaterializedView
	viewsBySource map[string][]string
}

// NewDatabase creates a database rooted at dataDir and loads any persisted
// metadata found there.
func NewDatabase(dataDir string) (*Database, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	db := &Database{
		DataDir:       dataDir,
		tables:        make(map[string]*Table),
		views:         make(map[string]*MaterializedView),
		viewsBySource: make(map[string][]string),
	}
	if err := db.LoadMetadata(); err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}
	return db, nil
}

// CreateTable creates a new table and persists its schema.
func (db *Database) CreateTable(name string, schema TableSchema) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.tables[name]; exists {
		return fmt.Errorf("table %s already exists", name)
	}
	if _, exists := db.views[name]; exists {
		return fmt.Errorf("%s already exists as a materialized view", name)
	}
	if schema.PartitionBy != "" {
		col, ok := schema.PartitionColumn()
		if !ok {
			return fmt.Errorf("partition column %s not found in table %s", schema.PartitionBy, name)
		}
		if !col.DataType.IsTime() {
			return fmt.Errorf("partition column %s must be Date or DateTime, got %s",
				col.Name, col.DataType.Name())
		}
	}

	tableDir := filepath.Join(db.DataDir, name)
	if err := os.MkdirAll(tableDir, 0755); err != nil {
		return err
	}
	if err := saveTableSchema(tableDir, name, &schema); err != nil {
		return err
	}

	db.tables[name] = NewTable(name, schema, tableDir)
	return nil
}

// GetTable returns a table by name.
func (db *Database) GetTable(name string) (*Table, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	t, ok := db.tables[name]
	return t, ok
}

// DropTable removes a table and its data. Tables still backing a
// materialized view cannot be dropped.
func (db *Database) DropTable(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tables[name]
	if !ok {
		return fmt.Errorf("table %s does not exist", name)
	}
	if deps := db.viewsBySource[name]; len(deps) > 0 {
		return fmt.Errorf("table %s is the source of materialized view %s", name, deps[0])
	}

	if err := os.RemoveAll(t.DataDir); err != nil {
		return err
	}
	delete(db.tables, name)
	return nil
}

// TableNames returns all table names.
func (db *Database) TableNames() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	names := make([]string, 0, len(db.tables))
	for n := range db.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CreateMaterializedView registers a view and persists its metadata. For
// rollup views the source table must be partitioned by a time column,
// since only single-column time keys can be coarsened.
func (db *Database) CreateMaterializedView(name, sourceTable string, mode SyncMode, g types.Granularity, selectSQL string) (*MaterializedView, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.views[name]; exists {
		return nil, fmt.Errorf("materialized view %s already exists", name)
	}
	if _, exists := db.tables[name]; exists {
		return nil, fmt.Errorf("%s already exists as a table", name)
	}
	src, ok := db.tables[sourceTable]
	if !ok {
		return nil, fmt.Errorf("source table %s does not exist", sourceTable)
	}
	col, ok := src.Schema.PartitionColumn()
	if !ok {
		return nil, fmt.Errorf("source table %s is not partitioned", sourceTable)
	}
	if !col.DataType.IsTime() {
		return nil, fmt.Errorf("partition column %s of %s is not a time type", col.Name, sourceTable)
	}
	if mode == SyncRollup && !g.Valid() {
		return nil, fmt.Errorf("unsupported granularity: %s", g.Name())
	}

	viewDir := filepath.Join(db.DataDir, name)
	if err := os.MkdirAll(viewDir, 0755); err != nil {
		return nil, err
	}
	v := NewMaterializedView(name, sourceTable, mode, g, selectSQL, viewDir)
	if err := saveViewMeta(v); err != nil {
		return nil, err
	}

	db.views[name] = v
	db.viewsBySource[sourceTable] = append(db.viewsBySource[sourceTable], name)
	return v, nil
}

// GetView returns a materialized view by name.
func (db *Database) GetView(name string) (*MaterializedView, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.views[name]
	return v, ok
}

// ViewNames returns all materialized view names.
func (db *Database) ViewNames() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	names := make([]string, 0, len(db.views))
	for n := range db.views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ViewsForSource returns the materialized views reading from sourceTable.
func (db *Database) ViewsForSource(sourceTable string) []*MaterializedView {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []*MaterializedView
	for _, name := range db.viewsBySource[sourceTable] {
		if v, ok := db.views[name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// ApplySyncDiff mutates a view's partition set per the computed diff:
// stale partitions are dropped before additions so the map never passes
// through an overlapping state, then everything is persisted.
func (db *Database) ApplySyncDiff(v *MaterializedView, diff partition.Diff) error {
	for _, name := range diff.Deletes.SortedNames() {
		if err := v.DropPartition(name); err != nil {
			return err
		}
	}
	for _, name := range diff.Adds.SortedNames() {
		if err := v.AddPartition(name, diff.Adds[name]); err != nil {
			return err
		}
	}
	return db.PersistView(v)
}
