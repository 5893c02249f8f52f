package source

import (
	"context"

	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/stream"
)

// Static replays a fixed list of documents in declaration order. Useful
// for seeding an index and for tests.
type Static struct {
	id        string
	documents []model.Document
}

// NewStatic creates a static source.
func NewStatic(id string, documents []model.Document) *Static {
	return &Static{id: id, documents: documents}
}

// ID returns the configured source identifier.
func (s *Static) ID() string { return s.id }

// Fetch replays the documents.
func (s *Static) Fetch(ctx context.Context) *stream.Stream[model.Document] {
	return stream.Of(s.documents...)
}
