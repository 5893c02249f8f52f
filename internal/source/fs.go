package source

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	errs "github.com/quarry-search/quarry/internal/errors"
	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/stream"
)

// fetchBuffer is the stream capacity between a source and its consumer.
// One slot is enough: the consumer pulling is what drives production.
const fetchBuffer = 1

// FileSystem produces one document per regular file under its roots that
// passes the filter. Roots are walked concurrently, so emission order
// across roots is not defined; within a root it follows the walk order.
//
// Failure policy: the first walk or read error aborts the entire source.
// A file that vanishes mid-walk is an error, not a skip.
type FileSystem struct {
	id     string
	roots  []string
	filter *Filter
	logger *slog.Logger
}

// NewFileSystem creates a filesystem source. A nil filter accepts every
// file; a nil logger discards logs.
func NewFileSystem(id string, roots []string, filter *Filter, logger *slog.Logger) *FileSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSystem{id: id, roots: roots, filter: filter, logger: logger}
}

// ID returns the configured source identifier.
func (s *FileSystem) ID() string { return s.id }

// Fetch walks every root and emits one document per accepted file.
func (s *FileSystem) Fetch(ctx context.Context) *stream.Stream[model.Document] {
	return stream.Generate(fetchBuffer, func(tx stream.Sender[model.Document]) error {
		g, ctx := errgroup.WithContext(ctx)
		for _, root := range s.roots {
			g.Go(func() error {
				return s.walkRoot(ctx, root, tx)
			})
		}
		return g.Wait()
	})
}

// walkRoot emits documents for one root. Directories and irregular files
// (sockets, symlinks, devices) are skipped; filter rejections are skipped;
// everything else that fails is terminal.
func (s *FileSystem) walkRoot(ctx context.Context, root string, tx stream.Sender[model.Document]) error {
	s.logger.Debug("walk_started", slog.String("source", s.id), slog.String("root", root))

	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return errs.Newf(errs.ErrCodeWalkFailed, err, "walking %s", path)
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !s.filter.Match(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return errs.Newf(errs.ErrCodeFileRead, err, "reading %s", path)
		}

		doc := model.Document{
			ID:       path,
			Source:   s.id,
			Title:    filepath.Base(path),
			Link:     path,
			Content:  string(data),
			Metadata: map[string]string{},
		}
		if err := tx.Send(ctx, doc); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug("walk_complete",
		slog.String("source", s.id),
		slog.String("root", root),
		slog.Int("documents", count))
	return nil
}
