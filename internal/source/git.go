package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	errs "github.com/quarry-search/quarry/internal/errors"
	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/source/repolist"
	"github.com/quarry-search/quarry/internal/stream"
)

// Git composes a repository lister with the filesystem source: each listed
// repository is cloned into an ephemeral temp directory, stripped of its
// version-control metadata, walked with the configured filter, and its
// documents re-emitted on this source's stream.
//
// Repositories are processed one at a time in lister order. A clone
// failure fails the whole source; clones are not retried. The temp
// directory lives exactly as long as one repository's processing.
type Git struct {
	id     string
	lister repolist.Lister
	filter *Filter
	logger *slog.Logger
}

// NewGit creates a git-repository source.
func NewGit(id string, lister repolist.Lister, filter *Filter, logger *slog.Logger) *Git {
	if logger == nil {
		logger = slog.Default()
	}
	return &Git{id: id, lister: lister, filter: filter, logger: logger}
}

// ID returns the configured source identifier.
func (s *Git) ID() string { return s.id }

// Fetch drains the lister and emits every cloned repository's documents.
func (s *Git) Fetch(ctx context.Context) *stream.Stream[model.Document] {
	return stream.Generate(fetchBuffer, func(tx stream.Sender[model.Document]) error {
		repos := s.lister.List(ctx)
		for item := range repos.Items() {
			if item.Err != nil {
				return item.Err
			}
			if err := s.ingestRepository(ctx, item.Value, tx); err != nil {
				return err
			}
		}
		return nil
	})
}

// ingestRepository clones one repository and forwards its documents. The
// clone directory is removed on every exit path.
func (s *Git) ingestRepository(ctx context.Context, repo model.Repository, tx stream.Sender[model.Document]) error {
	dir, err := os.MkdirTemp("", "quarry-clone-*")
	if err != nil {
		return errs.Newf(errs.ErrCodeInternal, err, "creating clone directory for %s", repo.Name)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	s.logger.Info("clone_started",
		slog.String("source", s.id),
		slog.String("repository", repo.Name),
		slog.String("url", repo.CloneURL))

	if _, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: repo.CloneURL}); err != nil {
		return errs.CloneError(repo.Name, err)
	}

	// Keep version-control metadata out of the index.
	if err := os.RemoveAll(filepath.Join(dir, ".git")); err != nil {
		return errs.Newf(errs.ErrCodeFileRead, err, "removing .git metadata for %s", repo.Name)
	}

	docs := NewFileSystem(s.id, []string{dir}, s.filter, s.logger).Fetch(ctx)
	count := 0
	for item := range docs.Items() {
		if item.Err != nil {
			return item.Err
		}
		if err := tx.Send(ctx, item.Value); err != nil {
			return err
		}
		count++
	}

	s.logger.Info("clone_ingested",
		slog.String("source", s.id),
		slog.String("repository", repo.Name),
		slog.Int("documents", count))
	return nil
}
