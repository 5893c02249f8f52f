package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/source"
	"github.com/quarry-search/quarry/internal/stream"
	"github.com/quarry-search/quarry/internal/telemetry"
)

// recordingEngine captures every committed batch.
type recordingEngine struct {
	mu      sync.Mutex
	batches [][]model.Document
	failOn  int // 1-based batch number to fail at, 0 = never
}

func (e *recordingEngine) Index(ctx context.Context, docs []model.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failOn > 0 && len(e.batches)+1 == e.failOn {
		return errors.New("commit refused")
	}
	e.batches = append(e.batches, docs)
	return nil
}

func (e *recordingEngine) Search(ctx context.Context, query string) *stream.Stream[model.FoundItem] {
	return stream.Of[model.FoundItem]()
}

func (e *recordingEngine) Close() error { return nil }

func docs(source string, n int) []model.Document {
	out := make([]model.Document, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.Document{
			ID:      fmt.Sprintf("%d", i+1),
			Source:  source,
			Title:   fmt.Sprintf("doc %d", i+1),
			Content: "content",
		})
	}
	return out
}

func TestDriver_IngestsSourcesInBatches(t *testing.T) {
	// Given two sources with five and three documents, batch size two
	eng := &recordingEngine{}
	srcs := []source.Source{
		source.NewStatic("a", docs("a", 5)),
		source.NewStatic("b", docs("b", 3)),
	}
	driver := New(eng, srcs, WithBatchSize(2))

	// When running
	stats, err := driver.Run(context.Background())

	// Then all documents land in order, grouped into batches of at most two
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Sources)
	assert.Equal(t, 8, stats.Documents)
	assert.Equal(t, 5, stats.Batches)

	require.Len(t, eng.batches, 5)
	assert.Len(t, eng.batches[0], 2)
	assert.Len(t, eng.batches[1], 2)
	assert.Len(t, eng.batches[2], 1) // partial tail of source a
	assert.Equal(t, "a", eng.batches[2][0].Source)
	assert.Len(t, eng.batches[3], 2)
	assert.Len(t, eng.batches[4], 1)
	assert.Equal(t, "b", eng.batches[4][0].Source)
}

func TestDriver_AbortsOnFirstEngineFailure(t *testing.T) {
	// Given an engine that refuses the second batch
	eng := &recordingEngine{failOn: 2}
	srcs := []source.Source{
		source.NewStatic("a", docs("a", 5)),
		source.NewStatic("b", docs("b", 3)),
	}
	driver := New(eng, srcs, WithBatchSize(2))

	// When running
	stats, err := driver.Run(context.Background())

	// Then the run fails naming the source, keeping the committed batch
	require.Error(t, err)
	assert.Contains(t, err.Error(), `ingesting source "a"`)
	assert.Equal(t, 0, stats.Sources)
	assert.Len(t, eng.batches, 1)
}

func TestDriver_FailingSourceAbortsRun(t *testing.T) {
	// Given a first source that fails mid-stream
	eng := &recordingEngine{}
	boom := errors.New("walk exploded")
	failing := &failingSource{id: "bad", err: boom}
	srcs := []source.Source{failing, source.NewStatic("b", docs("b", 3))}
	driver := New(eng, srcs, WithBatchSize(2))

	// When running
	_, err := driver.Run(context.Background())

	// Then the error surfaces and the second source never runs
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	for _, batch := range eng.batches {
		assert.NotEqual(t, "b", batch[0].Source)
	}
}

func TestDriver_RecordsRunHistory(t *testing.T) {
	// Given a driver wired to a run-history store
	runs, err := telemetry.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer runs.Close()

	eng := &recordingEngine{}
	driver := New(eng,
		[]source.Source{source.NewStatic("a", docs("a", 3))},
		WithBatchSize(2), WithRunHistory(runs))

	// When running
	_, err = driver.Run(context.Background())
	require.NoError(t, err)

	// Then the run is recorded
	recorded, err := runs.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, "a", recorded[0].Source)
	assert.Equal(t, 3, recorded[0].Documents)
	assert.Equal(t, 2, recorded[0].Batches)
	assert.Equal(t, telemetry.StatusOK, recorded[0].Status)
}

func TestDriver_LockFileReleasedAfterRun(t *testing.T) {
	// Given a lock-guarded driver
	lockPath := filepath.Join(t.TempDir(), "ingest.lock")
	eng := &recordingEngine{}
	driver := New(eng,
		[]source.Source{source.NewStatic("a", docs("a", 1))},
		WithLockFile(lockPath))

	// When running twice in sequence
	_, err := driver.Run(context.Background())
	require.NoError(t, err)
	_, err = driver.Run(context.Background())

	// Then the second run acquires the released lock
	require.NoError(t, err)
}

type failingSource struct {
	id  string
	err error
}

func (s *failingSource) ID() string { return s.id }

func (s *failingSource) Fetch(ctx context.Context) *stream.Stream[model.Document] {
	return stream.Generate(1, func(tx stream.Sender[model.Document]) error {
		if err := tx.Send(ctx, model.Document{ID: "1", Source: s.id, Title: "t"}); err != nil {
			return err
		}
		return s.err
	})
}
