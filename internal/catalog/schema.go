package catalog

import "github.com/mklzl/rollsync/internal/types"

// ColumnDef defines a column in a table schema.
type ColumnDef struct {
	Name     string
	DataType types.DataType
}

// TableSchema defines the schema for a range-partitioned table. PartitionBy
// names the single partition key column; partition bounds are literals of
// that column's type.
type TableSchema struct {
	Columns     []ColumnDef
	OrderBy     []string // primary key column names (ORDER BY clause)
	PartitionBy string   // partition key column name, or empty
}

// GetColumnDef returns the ColumnDef for a column name.
func (s *TableSchema) GetColumnDef(name string) (ColumnDef, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnNames returns all column names in order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// PartitionColumn returns the partition key column definition.
func (s *TableSchema) PartitionColumn() (ColumnDef, bool) {
	if s.PartitionBy == "" {
		return ColumnDef{}, false
	}
	return s.GetColumnDef(s.PartitionBy)
}

// PartitionKeyType returns the data type of the partition key column,
// defaulting to DateTime when the table has no partition column.
func (s *TableSchema) PartitionKeyType() types.DataType {
	if col, ok := s.PartitionColumn(); ok {
		return col.DataType
	}
	return types.TypeDateTime
}
