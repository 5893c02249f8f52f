// Package source defines the document source abstraction and its three
// implementations: filesystem trees, static document lists, and cloned git
// repositories. Every source produces a single-shot stream of documents
// that terminates on the first error.
package source

import (
	"context"

	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/stream"
)

// Source produces a lazy sequence of documents. Fetch may be called once
// per Source value; the returned stream is single-shot and terminal on
// error.
type Source interface {
	// ID returns the configured source identifier stamped on every
	// document this source produces.
	ID() string

	// Fetch starts producing documents. Cancelling ctx stops production
	// at the next send or I/O boundary.
	Fetch(ctx context.Context) *stream.Stream[model.Document]
}
