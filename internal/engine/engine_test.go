package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklzl/rollsync/internal/catalog"
	"github.com/mklzl/rollsync/internal/load"
	"github.com/mklzl/rollsync/internal/parser"
)

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	db, err := catalog.NewDatabase(t.TempDir())
	require.NoError(t, err)
	return NewExecutor(db, load.NewRegistry())
}

func mustExec(t *testing.T, e *Executor, sql string) *Result {
	t.Helper()
	stmt, err := parser.ParseSQL(sql)
	require.NoError(t, err, "parse: %s", sql)
	res, err := e.Execute(stmt)
	require.NoError(t, err, "execute: %s", sql)
	return res
}

func setupEventsTable(t *testing.T, e *Executor) {
	t.Helper()
	mustExec(t, e, `CREATE TABLE events (
		ts DateTime,
		user_id UInt64,
		value Float64
	) ENGINE = MergeTree() ORDER BY ts PARTITION BY ts`)
	mustExec(t, e, "ALTER TABLE events ADD PARTITION p20230101 VALUES FROM '2023-01-01' TO '2023-01-02'")
	mustExec(t, e, "ALTER TABLE events ADD PARTITION p20230102 VALUES FROM '2023-01-02' TO '2023-01-03'")
}

func TestRefreshRollupView(t *testing.T) {
	e := newTestExecutor(t)
	setupEventsTable(t, e)
	mustExec(t, e, `CREATE MATERIALIZED VIEW monthly ON events
		PARTITION BY date_trunc('month', ts) AS SELECT ts, sum(value) FROM events GROUP BY ts`)

	v, ok := e.DB.GetView("monthly")
	require.True(t, ok)

	res, err := e.SyncView(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"p202301_202302"}, res.Added)
	assert.Empty(t, res.Dropped)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "p202301_202302", res.Tasks[0].Partition)
	assert.NotEmpty(t, res.Tasks[0].ID)

	// A second cycle with no new data is a no-op.
	res, err = e.SyncView(v)
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Tasks)
}

func TestRefreshAfterIngest(t *testing.T) {
	e := newTestExecutor(t)
	setupEventsTable(t, e)
	mustExec(t, e, `CREATE MATERIALIZED VIEW monthly ON events
		PARTITION BY date_trunc('month', ts) AS SELECT ts, sum(value) FROM events GROUP BY ts`)
	mustExec(t, e, "REFRESH MATERIALIZED VIEW monthly")

	v, ok := e.DB.GetView("monthly")
	require.True(t, ok)

	// New data bumps the base partition's version, so the overlapping
	// view partition goes stale.
	mustExec(t, e, "INSERT INTO events (ts, user_id, value) VALUES ('2023-01-01 10:00:00', 42, 1.5)")

	res, err := e.SyncView(v)
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "p202301_202302", res.Tasks[0].Partition)

	res, err = e.SyncView(v)
	require.NoError(t, err)
	assert.Empty(t, res.Tasks)
}

func TestRefreshSamePartitionView(t *testing.T) {
	e := newTestExecutor(t)
	setupEventsTable(t, e)
	mustExec(t, e, "CREATE MATERIALIZED VIEW mirror ON events PARTITION BY ts AS SELECT * FROM events")

	v, ok := e.DB.GetView("mirror")
	require.True(t, ok)

	res, err := e.SyncView(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"p20230101", "p20230102"}, res.Added)
	require.Len(t, res.Tasks, 2)

	// Dropping a base partition drops the mirrored one on the next cycle.
	mustExec(t, e, "ALTER TABLE events DROP PARTITION p20230102")
	res, err = e.SyncView(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"p20230102"}, res.Dropped)
	assert.Empty(t, res.Added)
}

func TestRefreshExpandsRollupPartition(t *testing.T) {
	e := newTestExecutor(t)
	setupEventsTable(t, e)
	mustExec(t, e, `CREATE MATERIALIZED VIEW monthly ON events
		PARTITION BY date_trunc('month', ts) AS SELECT ts, sum(value) FROM events GROUP BY ts`)
	mustExec(t, e, "REFRESH MATERIALIZED VIEW monthly")

	// A base partition in a new month yields a second rollup partition;
	// the January rollup stays untouched.
	mustExec(t, e, "ALTER TABLE events ADD PARTITION p20230201 VALUES FROM '2023-02-01' TO '2023-02-02'")

	v, _ := e.DB.GetView("monthly")
	res, err := e.SyncView(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"p202302_202303"}, res.Added)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "p202302_202303", res.Tasks[0].Partition)
}

func TestExecuteShowStatements(t *testing.T) {
	e := newTestExecutor(t)
	setupEventsTable(t, e)
	mustExec(t, e, "CREATE MATERIALIZED VIEW mirror ON events PARTITION BY ts AS SELECT * FROM events")

	res := mustExec(t, e, "SHOW TABLES")
	assert.Equal(t, [][]string{{"events"}}, res.Rows)

	res = mustExec(t, e, "SHOW MATERIALIZED VIEWS")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{"mirror", "events", "same", ""}, res.Rows[0])

	res = mustExec(t, e, "SHOW PARTITIONS FROM events")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "p20230101", res.Rows[0][0])
	assert.Equal(t, "2023-01-01 00:00:00", res.Rows[0][1])
}

func TestExecuteDropTableGuards(t *testing.T) {
	e := newTestExecutor(t)
	setupEventsTable(t, e)
	mustExec(t, e, "CREATE MATERIALIZED VIEW mirror ON events PARTITION BY ts AS SELECT * FROM events")

	stmt, err := parser.ParseSQL("DROP TABLE events")
	require.NoError(t, err)
	_, err = e.Execute(stmt)
	assert.Error(t, err)

	mustExec(t, e, "DROP TABLE IF EXISTS no_such_table")
}

func TestExecuteStopRoutineLoad(t *testing.T) {
	e := newTestExecutor(t)
	_, err := e.Loads.Register("", "clicks_job", "events")
	require.NoError(t, err)

	mustExec(t, e, "STOP ROUTINE LOAD FOR clicks_job")
	job, err := e.Loads.Get("", "clicks_job")
	require.NoError(t, err)
	assert.Equal(t, load.JobStopped, job.State)

	stmt, err := parser.ParseSQL("STOP ROUTINE LOAD FOR missing_job")
	require.NoError(t, err)
	_, err = e.Execute(stmt)
	assert.ErrorContains(t, err, "does not exist")
}

func TestExecuteCreateViewRejectsBadGranularity(t *testing.T) {
	e := newTestExecutor(t)
	setupEventsTable(t, e)

	stmt, err := parser.ParseSQL("CREATE MATERIALIZED VIEW weekly ON events PARTITION BY date_trunc('week', ts) AS SELECT * FROM events")
	require.NoError(t, err)
	_, err = e.Execute(stmt)
	assert.ErrorContains(t, err, "unsupported granularity: week")
}

func TestExecuteInsertRequiresCoveringPartition(t *testing.T) {
	e := newTestExecutor(t)
	setupEventsTable(t, e)

	stmt, err := parser.ParseSQL("INSERT INTO events (ts, user_id, value) VALUES ('2024-06-01', 1, 1.0)")
	require.NoError(t, err)
	_, err = e.Execute(stmt)
	assert.ErrorContains(t, err, "no partition")
}
