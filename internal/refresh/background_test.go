package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklzl/rollsync/internal/catalog"
	"github.com/mklzl/rollsync/internal/engine"
	"github.com/mklzl/rollsync/internal/load"
	"github.com/mklzl/rollsync/internal/parser"
)

func setup(t *testing.T) (*engine.Executor, *BackgroundRefresher) {
	t.Helper()
	db, err := catalog.NewDatabase(t.TempDir())
	require.NoError(t, err)
	exec := engine.NewExecutor(db, load.NewRegistry())
	for _, sql := range []string{
		"CREATE TABLE events (ts DateTime, value Float64) ORDER BY ts PARTITION BY ts",
		"ALTER TABLE events ADD PARTITION p20230101 VALUES FROM '2023-01-01' TO '2023-01-02'",
		"CREATE MATERIALIZED VIEW monthly ON events PARTITION BY date_trunc('month', ts) AS SELECT ts, sum(value) FROM events GROUP BY ts",
	} {
		stmt, err := parser.ParseSQL(sql)
		require.NoError(t, err)
		_, err = exec.Execute(stmt)
		require.NoError(t, err)
	}
	return exec, NewBackgroundRefresher(db, exec, 10*time.Millisecond)
}

func TestSyncAllBringsViewsInSync(t *testing.T) {
	exec, br := setup(t)

	br.SyncAll()

	v, ok := exec.DB.GetView("monthly")
	require.True(t, ok)
	ranges := v.RangeMap()
	assert.Equal(t, []string{"p202301_202302"}, ranges.SortedNames())

	// A second cycle finds nothing to do.
	res, err := exec.SyncView(v)
	require.NoError(t, err)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Tasks)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	_, br := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		br.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after context cancellation")
	}
}
