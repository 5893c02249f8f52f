package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordAndListRuns(t *testing.T) {
	// Given two recorded runs
	store := newTestStore(t)
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordRun(Run{
		Source: "docs", Documents: 12, Batches: 2,
		Duration: 340 * time.Millisecond, Status: StatusOK, StartedAt: base,
	}))
	require.NoError(t, store.RecordRun(Run{
		Source: "repos", Status: StatusFailed, Error: "clone failed",
		StartedAt: base.Add(time.Minute),
	}))

	// When listing recent runs
	runs, err := store.RecentRuns(10)
	require.NoError(t, err)

	// Then both appear, newest first, with fields round-tripped
	require.Len(t, runs, 2)
	assert.Equal(t, "repos", runs[0].Source)
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "clone failed", runs[0].Error)
	assert.Equal(t, "docs", runs[1].Source)
	assert.Equal(t, 12, runs[1].Documents)
	assert.Equal(t, 2, runs[1].Batches)
	assert.Equal(t, 340*time.Millisecond, runs[1].Duration)
	assert.Equal(t, StatusOK, runs[1].Status)
}

func TestStore_RecentRunsHonorsLimit(t *testing.T) {
	// Given five recorded runs
	store := newTestStore(t)
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(Run{
			Source: "docs", Status: StatusOK, StartedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	// When asking for two
	runs, err := store.RecentRuns(2)
	require.NoError(t, err)

	// Then only two come back
	assert.Len(t, runs, 2)
}

func TestStore_NilStoreIsNoOp(t *testing.T) {
	// Given no store at all
	var store *Store

	// When recording and listing
	err := store.RecordRun(Run{Source: "docs"})
	runs, listErr := store.RecentRuns(10)

	// Then everything is a silent no-op
	assert.NoError(t, err)
	assert.NoError(t, listErr)
	assert.Empty(t, runs)
}
