// Package engine wraps the full-text index behind a small facade with a
// strict concurrency contract: Index calls are serialized behind an
// exclusive lock so commits land in invocation order, while any number of
// Search calls run concurrently with each other. A search racing an
// uncommitted Index is not guaranteed to see its documents.
package engine

import (
	"context"

	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/stream"
)

// TopK is the number of ranked results a search returns. It is an engine
// constant, not a per-call knob.
const TopK = 10

// Engine is the indexing and query facade consumed by the pipeline and
// the CLI.
type Engine interface {
	// Index upserts every document in the batch and commits once.
	// Documents are keyed by (source, id): re-indexing the same document
	// replaces it.
	Index(ctx context.Context, docs []model.Document) error

	// Search runs a ranked query over the default fields (title, content)
	// and streams up to TopK results.
	Search(ctx context.Context, query string) *stream.Stream[model.FoundItem]

	// Close releases the underlying index.
	Close() error
}
