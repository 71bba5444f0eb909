package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mklzl/rollsync/internal/partition"
	"github.com/mklzl/rollsync/internal/snapshot"
	"github.com/mklzl/rollsync/internal/types"
)

const (
	schemaFileName     = "schema.json"
	viewMetaFileName   = "view.json"
	partitionsSnapName = "partitions.snap"
)

// tableSchemaJSON is the JSON representation of a table schema on disk.
type tableSchemaJSON struct {
	Name    string `json:"name"`
	Columns []struct {
		Name     string `json:"name"`
		DataType string `json:"data_type"`
	} `json:"columns"`
	OrderBy     []string `json:"order_by"`
	PartitionBy string   `json:"partition_by,omitempty"`
}

// viewMetaJSON is the JSON representation of view metadata on disk.
type viewMetaJSON struct {
	Name        string `json:"name"`
	SourceTable string `json:"source_table"`
	Mode        string `json:"mode"`
	Granularity string `json:"granularity,omitempty"`
	SelectSQL   string `json:"select_sql"`
}

// partitionJSON is one partition record inside a partitions snapshot.
// Bounds are date/datetime literals of the owning table's key type.
type partitionJSON struct {
	Name        string            `json:"name"`
	Lower       string            `json:"lower"`
	Upper       string            `json:"upper"`
	DataVersion uint64            `json:"data_version,omitempty"`
	NumRows     uint64            `json:"num_rows,omitempty"`
	Watermarks  map[string]uint64 `json:"watermarks,omitempty"`
}

type partitionsSnapJSON struct {
	Partitions []partitionJSON `json:"partitions"`
}

func saveTableSchema(tableDir, name string, schema *TableSchema) error {
	j := tableSchemaJSON{
		Name:        name,
		OrderBy:     schema.OrderBy,
		PartitionBy: schema.PartitionBy,
	}
	for _, c := range schema.Columns {
		j.Columns = append(j.Columns, struct {
			Name     string `json:"name"`
			DataType string `json:"data_type"`
		}{
			Name:     c.Name,
			DataType: c.DataType.Name(),
		})
	}
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(tableDir, schemaFileName), data, 0644)
}

func loadTableSchema(tableDir string) (string, *TableSchema, error) {
	data, err := os.ReadFile(filepath.Join(tableDir, schemaFileName))
	if err != nil {
		return "", nil, err
	}
	var j tableSchemaJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return "", nil, err
	}
	schema := &TableSchema{
		OrderBy:     j.OrderBy,
		PartitionBy: j.PartitionBy,
	}
	for _, c := range j.Columns {
		dt, err := types.ParseDataType(c.DataType)
		if err != nil {
			return "", nil, err
		}
		schema.Columns = append(schema.Columns, ColumnDef{Name: c.Name, DataType: dt})
	}
	return j.Name, schema, nil
}

func saveViewMeta(v *MaterializedView) error {
	j := viewMetaJSON{
		Name:        v.Name,
		SourceTable: v.SourceTable,
		Mode:        v.Mode.String(),
		SelectSQL:   v.SelectSQL,
	}
	if v.Mode == SyncRollup {
		j.Granularity = v.Granularity.Name()
	}
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(v.DataDir, viewMetaFileName), data, 0644)
}

// PersistTable writes the table's partition set as a compressed snapshot.
func (db *Database) PersistTable(t *Table) error {
	keyType := t.Schema.PartitionKeyType()
	snap := partitionsSnapJSON{Partitions: []partitionJSON{}}
	for _, p := range t.Partitions() {
		snap.Partitions = append(snap.Partitions, partitionJSON{
			Name:        p.Name,
			Lower:       types.FormatTimeLiteral(p.Range.Lower, keyType),
			Upper:       types.FormatTimeLiteral(p.Range.Upper, keyType),
			DataVersion: p.DataVersion,
			NumRows:     p.NumRows,
		})
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return snapshot.WriteFile(filepath.Join(t.DataDir, partitionsSnapName), data)
}

// PersistView writes the view's partition set and refresh watermarks as a
// compressed snapshot.
func (db *Database) PersistView(v *MaterializedView) error {
	v.mu.RLock()
	snap := partitionsSnapJSON{Partitions: []partitionJSON{}}
	for name, r := range v.partitions {
		snap.Partitions = append(snap.Partitions, partitionJSON{
			Name:       name,
			Lower:      types.FormatTimeLiteral(r.Lower, types.TypeDateTime),
			Upper:      types.FormatTimeLiteral(r.Upper, types.TypeDateTime),
			Watermarks: v.watermarks[name],
		})
	}
	v.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return snapshot.WriteFile(filepath.Join(v.DataDir, partitionsSnapName), data)
}

// LoadMetadata scans the data directory on startup, reconstructing table
// and view metadata. Directories without recognizable metadata are skipped.
func (db *Database) LoadMetadata() error {
	entries, err := os.ReadDir(db.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(db.DataDir, entry.Name())

		if _, statErr := os.Stat(filepath.Join(dir, viewMetaFileName)); statErr == nil {
			if err := db.loadView(dir); err != nil {
				return fmt.Errorf("loading view %s: %w", entry.Name(), err)
			}
			continue
		}

		name, schema, err := loadTableSchema(dir)
		if err != nil {
			continue // not a table directory
		}
		t := NewTable(name, *schema, dir)
		if err := loadPartitionsSnap(dir, func(p partitionJSON, r partition.Range) {
			t.restorePartition(&Partition{
				Name:        p.Name,
				Range:       r,
				DataVersion: p.DataVersion,
				NumRows:     p.NumRows,
			})
		}); err != nil {
			return fmt.Errorf("loading partitions of %s: %w", name, err)
		}
		db.tables[name] = t
	}
	return nil
}

func (db *Database) loadView(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, viewMetaFileName))
	if err != nil {
		return err
	}
	var j viewMetaJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	mode := SyncSame
	var g types.Granularity
	if j.Mode == SyncRollup.String() {
		mode = SyncRollup
		g, err = types.ParseGranularity(j.Granularity)
		if err != nil {
			return err
		}
	}

	v := NewMaterializedView(j.Name, j.SourceTable, mode, g, j.SelectSQL, dir)
	if err := loadPartitionsSnap(dir, func(p partitionJSON, r partition.Range) {
		v.restorePartition(p.Name, r, p.Watermarks)
	}); err != nil {
		return err
	}

	db.views[j.Name] = v
	db.viewsBySource[j.SourceTable] = append(db.viewsBySource[j.SourceTable], j.Name)
	return nil
}

func loadPartitionsSnap(dir string, restore func(partitionJSON, partition.Range)) error {
	path := filepath.Join(dir, partitionsSnapName)
	data, err := snapshot.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var snap partitionsSnapJSON
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	for _, p := range snap.Partitions {
		lower, err := types.ParseTimeLiteral(p.Lower)
		if err != nil {
			return fmt.Errorf("partition %s: %w", p.Name, err)
		}
		upper, err := types.ParseTimeLiteral(p.Upper)
		if err != nil {
			return fmt.Errorf("partition %s: %w", p.Name, err)
		}
		r, err := partition.NewRange(lower, upper)
		if err != nil {
			return fmt.Errorf("partition %s: %w", p.Name, err)
		}
		restore(p, r)
	}
	return nil
}
