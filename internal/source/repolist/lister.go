// Package repolist provides repository listers: producers of the
// repository descriptors that drive the git document source. A lister's
// stream is single-shot, ordered, and terminal on error.
package repolist

import (
	"context"

	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/stream"
)

// Lister produces a lazy sequence of repositories to clone.
type Lister interface {
	List(ctx context.Context) *stream.Stream[model.Repository]
}
