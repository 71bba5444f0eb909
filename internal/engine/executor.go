// Package engine executes parsed admin statements against the catalog
// and drives partition synchronization for materialized views.
package engine

import (
	"fmt"
	"strconv"

	"github.com/mklzl/rollsync/internal/catalog"
	"github.com/mklzl/rollsync/internal/load"
	"github.com/mklzl/rollsync/internal/parser"
	"github.com/mklzl/rollsync/internal/partition"
	"github.com/mklzl/rollsync/internal/types"
)

// Result holds the outcome of executing a statement. DDL statements set
// Message; SHOW statements set Columns and Rows.
type Result struct {
	Message string
	Columns []string
	Rows    [][]string
}

// Executor binds the catalog and the routine load registry.
type Executor struct {
	DB    *catalog.Database
	Loads *load.Registry
}

// NewExecutor creates an executor over a database.
func NewExecutor(db *catalog.Database, loads *load.Registry) *Executor {
	return &Executor{DB: db, Loads: loads}
}

// Execute runs a parsed statement.
func (e *Executor) Execute(stmt parser.Statement) (*Result, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStmt:
		return e.executeCreateTable(s)
	case *parser.CreateMaterializedViewStmt:
		return e.executeCreateView(s)
	case *parser.AlterTableAddPartitionStmt:
		return e.executeAddPartition(s)
	case *parser.AlterTableDropPartitionStmt:
		return e.executeDropPartition(s)
	case *parser.InsertStmt:
		return e.executeInsert(s)
	case *parser.RefreshMaterializedViewStmt:
		return e.executeRefresh(s)
	case *parser.DropTableStmt:
		return e.executeDropTable(s)
	case *parser.ShowTablesStmt:
		return e.executeShowTables()
	case *parser.ShowViewsStmt:
		return e.executeShowViews()
	case *parser.ShowPartitionsStmt:
		return e.executeShowPartitions(s)
	case *parser.StopRoutineLoadStmt:
		if err := s.Accept(e); err != nil {
			return nil, err
		}
		return &Result{Message: "OK"}, nil
	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

// VisitStopRoutineLoad resolves a STOP ROUTINE LOAD statement against
// the job registry.
func (e *Executor) VisitStopRoutineLoad(s *parser.StopRoutineLoadStmt) error {
	return e.Loads.Stop(s.DbFullName(), s.Name())
}

func (e *Executor) executeCreateTable(stmt *parser.CreateTableStmt) (*Result, error) {
	schema := catalog.TableSchema{
		OrderBy:     stmt.OrderBy,
		PartitionBy: stmt.PartitionBy,
	}
	for _, col := range stmt.Columns {
		dt, err := types.ParseDataType(col.TypeName)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		schema.Columns = append(schema.Columns, catalog.ColumnDef{Name: col.Name, DataType: dt})
	}

	if err := e.DB.CreateTable(stmt.TableName, schema); err != nil {
		if stmt.IfNotExists {
			if _, ok := e.DB.GetTable(stmt.TableName); ok {
				return &Result{Message: "OK"}, nil
			}
		}
		return nil, err
	}
	return &Result{Message: "OK"}, nil
}

func (e *Executor) executeCreateView(stmt *parser.CreateMaterializedViewStmt) (*Result, error) {
	table, ok := e.DB.GetTable(stmt.SourceTable)
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", stmt.SourceTable)
	}
	if stmt.PartitionColumn != table.Schema.PartitionBy {
		return nil, fmt.Errorf("view %s must partition by source column %s, got %s",
			stmt.ViewName, table.Schema.PartitionBy, stmt.PartitionColumn)
	}

	mode := catalog.SyncSame
	var g types.Granularity
	if stmt.Granularity != "" {
		parsed, err := types.ParseGranularity(stmt.Granularity)
		if err != nil {
			return nil, err
		}
		mode = catalog.SyncRollup
		g = parsed
	}

	if _, err := e.DB.CreateMaterializedView(stmt.ViewName, stmt.SourceTable, mode, g, stmt.SelectSQL); err != nil {
		if stmt.IfNotExists {
			if _, ok := e.DB.GetView(stmt.ViewName); ok {
				return &Result{Message: "OK"}, nil
			}
		}
		return nil, err
	}
	return &Result{Message: "OK"}, nil
}

func (e *Executor) executeAddPartition(stmt *parser.AlterTableAddPartitionStmt) (*Result, error) {
	table, ok := e.DB.GetTable(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", stmt.TableName)
	}

	lower, err := types.ParseTimeLiteral(stmt.Lower)
	if err != nil {
		return nil, fmt.Errorf("partition %s lower bound: %w", stmt.PartitionName, err)
	}
	upper, err := types.ParseTimeLiteral(stmt.Upper)
	if err != nil {
		return nil, fmt.Errorf("partition %s upper bound: %w", stmt.PartitionName, err)
	}
	r, err := partition.NewRange(lower, upper)
	if err != nil {
		return nil, fmt.Errorf("partition %s: %w", stmt.PartitionName, err)
	}

	if err := table.AddPartition(stmt.PartitionName, r); err != nil {
		return nil, err
	}
	if err := e.DB.PersistTable(table); err != nil {
		return nil, err
	}
	return &Result{Message: "OK"}, nil
}

func (e *Executor) executeDropPartition(stmt *parser.AlterTableDropPartitionStmt) (*Result, error) {
	table, ok := e.DB.GetTable(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", stmt.TableName)
	}
	if err := table.DropPartition(stmt.PartitionName); err != nil {
		return nil, err
	}
	if err := e.DB.PersistTable(table); err != nil {
		return nil, err
	}
	return &Result{Message: "OK"}, nil
}

func (e *Executor) executeInsert(stmt *parser.InsertStmt) (*Result, error) {
	table, ok := e.DB.GetTable(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", stmt.TableName)
	}

	colNames := stmt.Columns
	if len(colNames) == 0 {
		colNames = table.Schema.ColumnNames()
	}

	keyIdx := -1
	for i, name := range colNames {
		if name == table.Schema.PartitionBy {
			keyIdx = i
			break
		}
	}
	if keyIdx < 0 {
		return nil, fmt.Errorf("insert into %s must supply partition column %s",
			stmt.TableName, table.Schema.PartitionBy)
	}

	for i, row := range stmt.Values {
		if len(row) != len(colNames) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i+1, len(row), len(colNames))
		}
		lit := row[keyIdx]
		if !lit.IsString {
			return nil, fmt.Errorf("row %d: partition column %s expects a date literal",
				i+1, table.Schema.PartitionBy)
		}
		kt, err := types.ParseTimeLiteral(lit.Text)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, err := table.Ingest(kt, 1); err != nil {
			return nil, err
		}
	}

	if err := e.DB.PersistTable(table); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("OK, %d rows", len(stmt.Values))}, nil
}

func (e *Executor) executeRefresh(stmt *parser.RefreshMaterializedViewStmt) (*Result, error) {
	v, ok := e.DB.GetView(stmt.ViewName)
	if !ok {
		return nil, fmt.Errorf("materialized view %s does not exist", stmt.ViewName)
	}

	res, err := e.SyncView(v)
	if err != nil {
		return nil, err
	}
	return &Result{
		Message: fmt.Sprintf("OK, %d partitions added, %d dropped, %d refresh tasks",
			len(res.Added), len(res.Dropped), len(res.Tasks)),
	}, nil
}

func (e *Executor) executeDropTable(stmt *parser.DropTableStmt) (*Result, error) {
	if err := e.DB.DropTable(stmt.TableName); err != nil {
		if stmt.IfExists {
			if _, ok := e.DB.GetTable(stmt.TableName); !ok {
				return &Result{Message: "OK"}, nil
			}
		}
		return nil, err
	}
	return &Result{Message: "OK"}, nil
}

func (e *Executor) executeShowTables() (*Result, error) {
	res := &Result{Columns: []string{"name"}}
	for _, name := range e.DB.TableNames() {
		res.Rows = append(res.Rows, []string{name})
	}
	return res, nil
}

func (e *Executor) executeShowViews() (*Result, error) {
	res := &Result{Columns: []string{"name", "source", "mode", "granularity"}}
	for _, name := range e.DB.ViewNames() {
		v, ok := e.DB.GetView(name)
		if !ok {
			continue
		}
		gran := ""
		if v.Mode == catalog.SyncRollup {
			gran = v.Granularity.Name()
		}
		res.Rows = append(res.Rows, []string{v.Name, v.SourceTable, v.Mode.String(), gran})
	}
	return res, nil
}

func (e *Executor) executeShowPartitions(stmt *parser.ShowPartitionsStmt) (*Result, error) {
	if table, ok := e.DB.GetTable(stmt.TableName); ok {
		res := &Result{Columns: []string{"partition", "lower", "upper", "version", "rows"}}
		for _, p := range table.Partitions() {
			res.Rows = append(res.Rows, []string{
				p.Name,
				types.FormatTimeLiteral(p.Range.Lower, types.TypeDateTime),
				types.FormatTimeLiteral(p.Range.Upper, types.TypeDateTime),
				strconv.FormatUint(p.DataVersion, 10),
				strconv.FormatUint(p.NumRows, 10),
			})
		}
		return res, nil
	}

	v, ok := e.DB.GetView(stmt.TableName)
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", stmt.TableName)
	}
	ranges := v.RangeMap()
	res := &Result{Columns: []string{"partition", "lower", "upper"}}
	for _, name := range ranges.SortedNames() {
		r := ranges[name]
		res.Rows = append(res.Rows, []string{
			name,
			types.FormatTimeLiteral(r.Lower, types.TypeDateTime),
			types.FormatTimeLiteral(r.Upper, types.TypeDateTime),
		})
	}
	return res, nil
}
