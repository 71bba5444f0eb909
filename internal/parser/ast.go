package parser

// Statement is the top-level AST node.
type Statement interface {
	statementNode()
}

// StmtVisitor is the double-dispatch hook for DDL statements that are
// handled outside the regular executor switch.
type StmtVisitor interface {
	VisitStopRoutineLoad(*StopRoutineLoadStmt) error
}

// ColumnDefNode defines a column in a CREATE TABLE.
type ColumnDefNode struct {
	Name     string
	TypeName string
}

// CreateTableStmt represents CREATE TABLE.
type CreateTableStmt struct {
	TableName   string
	IfNotExists bool
	Columns     []ColumnDefNode
	Engine      string   // "MergeTree"
	OrderBy     []string // primary key columns
	PartitionBy string   // partition key column name, or empty
}

func (*CreateTableStmt) statementNode() {}

// CreateMaterializedViewStmt represents
//
//	CREATE MATERIALIZED VIEW v ON src PARTITION BY date_trunc('<granularity>', col) AS SELECT ...
//
// PARTITION BY a bare column keeps the source partitioning one-to-one;
// date_trunc re-buckets it at the named granularity.
type CreateMaterializedViewStmt struct {
	ViewName        string
	IfNotExists     bool
	SourceTable     string
	PartitionColumn string
	Granularity     string // empty for same-partition mode
	SelectSQL       string // raw SELECT body after AS
}

func (*CreateMaterializedViewStmt) statementNode() {}

// AlterTableAddPartitionStmt represents
//
//	ALTER TABLE t ADD PARTITION p VALUES FROM '<lit>' TO '<lit>'
type AlterTableAddPartitionStmt struct {
	TableName     string
	PartitionName string
	Lower         string // date/datetime literal text
	Upper         string
}

func (*AlterTableAddPartitionStmt) statementNode() {}

// AlterTableDropPartitionStmt represents ALTER TABLE t DROP PARTITION p.
type AlterTableDropPartitionStmt struct {
	TableName     string
	PartitionName string
}

func (*AlterTableDropPartitionStmt) statementNode() {}

// RefreshMaterializedViewStmt represents REFRESH MATERIALIZED VIEW v.
type RefreshMaterializedViewStmt struct {
	ViewName string
}

func (*RefreshMaterializedViewStmt) statementNode() {}

// ValueLiteral is a literal in an INSERT VALUES tuple.
type ValueLiteral struct {
	Text     string
	IsString bool
}

// InsertStmt represents INSERT INTO ... VALUES ...
type InsertStmt struct {
	TableName string
	Columns   []string        // explicit column list, or nil for all
	Values    [][]ValueLiteral // list of row-value tuples
}

func (*InsertStmt) statementNode() {}

// DropTableStmt represents DROP TABLE.
type DropTableStmt struct {
	TableName string
	IfExists  bool
}

func (*DropTableStmt) statementNode() {}

// ShowTablesStmt represents SHOW TABLES.
type ShowTablesStmt struct{}

func (*ShowTablesStmt) statementNode() {}

// ShowViewsStmt represents SHOW MATERIALIZED VIEWS.
type ShowViewsStmt struct{}

func (*ShowViewsStmt) statementNode() {}

// ShowPartitionsStmt represents SHOW PARTITIONS FROM t.
type ShowPartitionsStmt struct {
	TableName string
}

func (*ShowPartitionsStmt) statementNode() {}

// StopRoutineLoadStmt represents STOP ROUTINE LOAD FOR [db.]name. It is a
// plain value object with no algorithmic content; the executor resolves it
// against the routine load registry.
type StopRoutineLoadStmt struct {
	DbName  string // optional database qualifier
	JobName string
}

func (*StopRoutineLoadStmt) statementNode() {}

// Name returns the routine load job name.
func (s *StopRoutineLoadStmt) Name() string { return s.JobName }

// DbFullName returns the database qualifier, or empty for the current scope.
func (s *StopRoutineLoadStmt) DbFullName() string { return s.DbName }

// ToSQL renders the statement back to its canonical text.
func (s *StopRoutineLoadStmt) ToSQL() string {
	if s.DbName == "" {
		return "STOP ROUTINE LOAD FOR " + s.JobName
	}
	return "STOP ROUTINE LOAD FOR " + s.DbName + "." + s.JobName
}

// Accept dispatches to the visitor.
func (s *StopRoutineLoadStmt) Accept(v StmtVisitor) error {
	return v.VisitStopRoutineLoad(s)
}
