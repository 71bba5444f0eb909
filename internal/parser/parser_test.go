package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := ParseSQL(`CREATE TABLE events (
		ts DateTime,
		user_id UInt64,
		value Float64
	) ENGINE = MergeTree() ORDER BY (ts, user_id) PARTITION BY ts;`)
	require.NoError(t, err)

	ct, ok := stmt.(*CreateTableStmt)
	require.True(t, ok)
	assert.Equal(t, "events", ct.TableName)
	assert.False(t, ct.IfNotExists)
	require.Len(t, ct.Columns, 3)
	assert.Equal(t, ColumnDefNode{Name: "ts", TypeName: "DateTime"}, ct.Columns[0])
	assert.Equal(t, ColumnDefNode{Name: "user_id", TypeName: "UInt64"}, ct.Columns[1])
	assert.Equal(t, "MergeTree", ct.Engine)
	assert.Equal(t, []string{"ts", "user_id"}, ct.OrderBy)
	assert.Equal(t, "ts", ct.PartitionBy)
}

func TestParseCreateTableIfNotExists(t *testing.T) {
	stmt, err := ParseSQL("CREATE TABLE IF NOT EXISTS t (d Date) ORDER BY d PARTITION BY d")
	require.NoError(t, err)

	ct := stmt.(*CreateTableStmt)
	assert.True(t, ct.IfNotExists)
	assert.Equal(t, []string{"d"}, ct.OrderBy)
	assert.Equal(t, "d", ct.PartitionBy)
}

func TestParseCreateMaterializedViewRollup(t *testing.T) {
	stmt, err := ParseSQL(`CREATE MATERIALIZED VIEW daily_sum ON events
		PARTITION BY date_trunc('month', ts)
		AS SELECT ts, sum(value) FROM events GROUP BY ts;`)
	require.NoError(t, err)

	mv, ok := stmt.(*CreateMaterializedViewStmt)
	require.True(t, ok)
	assert.Equal(t, "daily_sum", mv.ViewName)
	assert.Equal(t, "events", mv.SourceTable)
	assert.Equal(t, "month", mv.Granularity)
	assert.Equal(t, "ts", mv.PartitionColumn)
	assert.Equal(t, "SELECT ts, sum(value) FROM events GROUP BY ts", mv.SelectSQL)
}

func TestParseCreateMaterializedViewSamePartition(t *testing.T) {
	stmt, err := ParseSQL("CREATE MATERIALIZED VIEW IF NOT EXISTS mirror ON events PARTITION BY ts AS SELECT * FROM events")
	require.NoError(t, err)

	mv := stmt.(*CreateMaterializedViewStmt)
	assert.True(t, mv.IfNotExists)
	assert.Empty(t, mv.Granularity)
	assert.Equal(t, "ts", mv.PartitionColumn)
	assert.Equal(t, "SELECT * FROM events", mv.SelectSQL)
}

func TestParseCreateMaterializedViewRequiresSelect(t *testing.T) {
	_, err := ParseSQL("CREATE MATERIALIZED VIEW v ON t PARTITION BY ts AS DELETE FROM t")
	assert.Error(t, err)

	_, err = ParseSQL("CREATE MATERIALIZED VIEW v ON t PARTITION BY ts AS")
	assert.Error(t, err)
}

func TestParseAlterTableAddPartition(t *testing.T) {
	stmt, err := ParseSQL("ALTER TABLE events ADD PARTITION p20230101 VALUES FROM '2023-01-01' TO '2023-01-02'")
	require.NoError(t, err)

	add, ok := stmt.(*AlterTableAddPartitionStmt)
	require.True(t, ok)
	assert.Equal(t, "events", add.TableName)
	assert.Equal(t, "p20230101", add.PartitionName)
	assert.Equal(t, "2023-01-01", add.Lower)
	assert.Equal(t, "2023-01-02", add.Upper)
}

func TestParseAlterTableDropPartition(t *testing.T) {
	stmt, err := ParseSQL("ALTER TABLE events DROP PARTITION p20230101;")
	require.NoError(t, err)

	drop := stmt.(*AlterTableDropPartitionStmt)
	assert.Equal(t, "events", drop.TableName)
	assert.Equal(t, "p20230101", drop.PartitionName)
}

func TestParseInsert(t *testing.T) {
	stmt, err := ParseSQL("INSERT INTO events (ts, user_id, value) VALUES ('2023-01-01 10:00:00', 42, 1.5), ('2023-01-01 11:00:00', 7, 2.25)")
	require.NoError(t, err)

	ins, ok := stmt.(*InsertStmt)
	require.True(t, ok)
	assert.Equal(t, "events", ins.TableName)
	assert.Equal(t, []string{"ts", "user_id", "value"}, ins.Columns)
	require.Len(t, ins.Values, 2)
	assert.Equal(t, ValueLiteral{Text: "2023-01-01 10:00:00", IsString: true}, ins.Values[0][0])
	assert.Equal(t, ValueLiteral{Text: "42"}, ins.Values[0][1])
	assert.Equal(t, ValueLiteral{Text: "2.25"}, ins.Values[1][2])
}

func TestParseInsertWithoutColumnList(t *testing.T) {
	stmt, err := ParseSQL("INSERT INTO t VALUES ('2023-01-01', 1)")
	require.NoError(t, err)

	ins := stmt.(*InsertStmt)
	assert.Nil(t, ins.Columns)
	require.Len(t, ins.Values, 1)
	require.Len(t, ins.Values[0], 2)
}

func TestParseDropTable(t *testing.T) {
	stmt, err := ParseSQL("DROP TABLE IF EXISTS events")
	require.NoError(t, err)

	drop := stmt.(*DropTableStmt)
	assert.Equal(t, "events", drop.TableName)
	assert.True(t, drop.IfExists)
}

func TestParseShow(t *testing.T) {
	stmt, err := ParseSQL("SHOW TABLES")
	require.NoError(t, err)
	_, ok := stmt.(*ShowTablesStmt)
	assert.True(t, ok)

	stmt, err = ParseSQL("SHOW MATERIALIZED VIEWS")
	require.NoError(t, err)
	_, ok = stmt.(*ShowViewsStmt)
	assert.True(t, ok)

	stmt, err = ParseSQL("SHOW PARTITIONS FROM events")
	require.NoError(t, err)
	sp, ok := stmt.(*ShowPartitionsStmt)
	require.True(t, ok)
	assert.Equal(t, "events", sp.TableName)
}

func TestParseRefreshMaterializedView(t *testing.T) {
	stmt, err := ParseSQL("REFRESH MATERIALIZED VIEW daily_sum")
	require.NoError(t, err)

	ref := stmt.(*RefreshMaterializedViewStmt)
	assert.Equal(t, "daily_sum", ref.ViewName)
}

func TestParseStopRoutineLoad(t *testing.T) {
	stmt, err := ParseSQL("STOP ROUTINE LOAD FOR clicks_job")
	require.NoError(t, err)

	stop, ok := stmt.(*StopRoutineLoadStmt)
	require.True(t, ok)
	assert.Empty(t, stop.DbFullName())
	assert.Equal(t, "clicks_job", stop.Name())
	assert.Equal(t, "STOP ROUTINE LOAD FOR clicks_job", stop.ToSQL())
}

func TestParseStopRoutineLoadQualified(t *testing.T) {
	stmt, err := ParseSQL("STOP ROUTINE LOAD FOR analytics.clicks_job;")
	require.NoError(t, err)

	stop := stmt.(*StopRoutineLoadStmt)
	assert.Equal(t, "analytics", stop.DbFullName())
	assert.Equal(t, "clicks_job", stop.Name())
	assert.Equal(t, "STOP ROUTINE LOAD FOR analytics.clicks_job", stop.ToSQL())
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"SELECT 1",
		"CREATE",
		"CREATE TABLE t",
		"ALTER TABLE t RENAME PARTITION p",
		"ALTER TABLE t ADD PARTITION p VALUES FROM '2023-01-01'",
		"SHOW COLUMNS",
		"STOP ROUTINE LOAD",
		"DROP TABLE t extra",
	}
	for _, sql := range cases {
		_, err := ParseSQL(sql)
		assert.Error(t, err, "input: %s", sql)
	}
}

func TestLexerLineComments(t *testing.T) {
	stmt, err := ParseSQL("-- drop the staging table\nDROP TABLE staging")
	require.NoError(t, err)

	drop := stmt.(*DropTableStmt)
	assert.Equal(t, "staging", drop.TableName)
}

func TestLexerStringEscapes(t *testing.T) {
	lexer := NewLexer("'it''s'")
	tokens, err := lexer.Tokenize()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tokens), 1)
	assert.Equal(t, TokenString, tokens[0].Type)
	assert.Equal(t, "it's", tokens[0].Literal)
}
