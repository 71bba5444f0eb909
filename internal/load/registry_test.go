package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()

	job, err := r.Register("analytics", "clicks_job", "events")
	require.NoError(t, err)
	assert.Equal(t, JobRunning, job.State)

	_, err = r.Register("analytics", "clicks_job", "events")
	assert.Error(t, err)

	got, err := r.Get("analytics", "clicks_job")
	require.NoError(t, err)
	assert.Equal(t, "events", got.TargetTable)

	require.NoError(t, r.Stop("analytics", "clicks_job"))
	got, err = r.Get("analytics", "clicks_job")
	require.NoError(t, err)
	assert.Equal(t, JobStopped, got.State)

	err = r.Stop("analytics", "clicks_job")
	assert.ErrorContains(t, err, "already stopped")
}

func TestRegistryUnqualifiedNames(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register("", "ingest", "events")
	require.NoError(t, err)
	_, err = r.Register("analytics", "ingest", "events")
	require.NoError(t, err)

	assert.Equal(t, []string{"analytics.ingest", "ingest"}, r.Names())

	err = r.Stop("", "missing")
	assert.ErrorContains(t, err, "does not exist")
}
