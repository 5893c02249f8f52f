// Package pipeline drives ingestion: it pulls documents from each
// configured source, groups them into batches, and hands the batches to
// the index engine. Sources run one after another and the run aborts on
// the first failure.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"github.com/quarry-search/quarry/internal/engine"
	"github.com/quarry-search/quarry/internal/source"
	"github.com/quarry-search/quarry/internal/stream"
	"github.com/quarry-search/quarry/internal/telemetry"
)

// DefaultBatchSize is used when the configuration names no batch size.
const DefaultBatchSize = 10

// Stats summarizes one completed run.
type Stats struct {
	Sources   int
	Documents int
	Batches   int
	Duration  time.Duration
}

// Driver owns one ingestion run.
type Driver struct {
	engine    engine.Engine
	sources   []source.Source
	batchSize int
	runs      *telemetry.Store
	lock      *flock.Flock
	logger    *slog.Logger
}

// Option customizes a Driver.
type Option func(*Driver)

// WithBatchSize overrides the batch size.
func WithBatchSize(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// WithRunHistory records each source's outcome in the given store.
func WithRunHistory(runs *telemetry.Store) Option {
	return func(d *Driver) { d.runs = runs }
}

// WithLockFile guards the run with a cross-process file lock so two
// ingestions never write the index at the same time.
func WithLockFile(path string) Option {
	return func(d *Driver) { d.lock = flock.New(path) }
}

// WithLogger injects a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New creates a Driver over the given engine and sources.
func New(eng engine.Engine, sources []source.Source, opts ...Option) *Driver {
	d := &Driver{
		engine:    eng,
		sources:   sources,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run ingests every source in order. The first failing source aborts the
// run; documents committed before the failure stay committed.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	if d.lock != nil {
		locked, err := d.lock.TryLock()
		if err != nil {
			return Stats{}, fmt.Errorf("acquiring ingest lock: %w", err)
		}
		if !locked {
			return Stats{}, fmt.Errorf("another ingestion is already running (lock %s)", d.lock.Path())
		}
		defer func() { _ = d.lock.Unlock() }()
	}

	start := time.Now()
	var total Stats
	for _, src := range d.sources {
		docs, batches, err := d.ingestSource(ctx, src)
		total.Documents += docs
		total.Batches += batches
		if err != nil {
			total.Duration = time.Since(start)
			return total, fmt.Errorf("ingesting source %q: %w", src.ID(), err)
		}
		total.Sources++
	}
	total.Duration = time.Since(start)

	d.logger.Info("ingestion_complete",
		slog.Int("sources", total.Sources),
		slog.Int("documents", total.Documents),
		slog.Int("batches", total.Batches),
		slog.Duration("duration", total.Duration))
	return total, nil
}

func (d *Driver) ingestSource(ctx context.Context, src source.Source) (documents, batches int, err error) {
	started := time.Now()
	d.logger.Info("source_started", slog.String("source", src.ID()))

	defer func() {
		run := telemetry.Run{
			Source:    src.ID(),
			Documents: documents,
			Batches:   batches,
			Duration:  time.Since(started),
			Status:    telemetry.StatusOK,
			StartedAt: started,
		}
		if err != nil {
			run.Status = telemetry.StatusFailed
			run.Error = err.Error()
		}
		if recordErr := d.runs.RecordRun(run); recordErr != nil {
			d.logger.Warn("run_history_write_failed", slog.String("error", recordErr.Error()))
		}
	}()

	grouped := stream.Batch(ctx, src.Fetch(ctx), d.batchSize)
	for item := range grouped.Items() {
		if item.Err != nil {
			return documents, batches, item.Err
		}
		if err := d.engine.Index(ctx, item.Value); err != nil {
			return documents, batches, err
		}
		documents += len(item.Value)
		batches++
		d.logger.Debug("batch_indexed",
			slog.String("source", src.ID()),
			slog.Int("documents", len(item.Value)))
	}

	d.logger.Info("source_indexed",
		slog.String("source", src.ID()),
		slog.Int("documents", documents),
		slog.Int("batches", batches),
		slog.Duration("duration", time.Since(started)))
	return documents, batches, nil
}
