package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/quarry-search/quarry/internal/errors"
	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/source/repolist"
	"github.com/quarry-search/quarry/internal/stream"
)

// initRepo creates a local git repository with the given files committed.
func initRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err = wt.Add(name)
		require.NoError(t, err)
	}

	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestGit_IngestsClonedRepositories(t *testing.T) {
	// Given two local repositories with committed files
	repoA := initRepo(t, map[string]string{"readme.md": "repo a readme", "docs/guide.md": "repo a guide"})
	repoB := initRepo(t, map[string]string{"notes.md": "repo b notes"})

	lister := repolist.NewStatic([]model.Repository{
		{Name: "org/a", CloneURL: repoA},
		{Name: "org/b", CloneURL: repoB},
	})
	src := NewGit("repos", lister, nil, nil)

	// When fetching
	docs, err := stream.Collect(src.Fetch(context.Background()))
	require.NoError(t, err)

	// Then every committed file appears, and no git metadata leaks through
	require.Len(t, docs, 3)
	contents := make([]string, 0, len(docs))
	for _, d := range docs {
		assert.Equal(t, "repos", d.Source)
		assert.NotContains(t, d.Link, ".git")
		contents = append(contents, d.Content)
	}
	sort.Strings(contents)
	assert.Equal(t, []string{"repo a guide", "repo a readme", "repo b notes"}, contents)
}

func TestGit_FilterAppliesToClonedFiles(t *testing.T) {
	// Given a repository mixing markdown and other files
	repo := initRepo(t, map[string]string{"keep.md": "kept", "drop.txt": "dropped"})
	lister := repolist.NewStatic([]model.Repository{{Name: "org/a", CloneURL: repo}})

	filter, err := NewFilter([]string{`\.md$`}, nil)
	require.NoError(t, err)
	src := NewGit("repos", lister, filter, nil)

	// When fetching
	docs, err := stream.Collect(src.Fetch(context.Background()))
	require.NoError(t, err)

	// Then only the markdown file survives
	require.Len(t, docs, 1)
	assert.Equal(t, "kept", docs[0].Content)
}

func TestGit_CloneFailureFailsSource(t *testing.T) {
	// Given a good repository followed by one that cannot be cloned
	good := initRepo(t, map[string]string{"a.md": "fine"})
	lister := repolist.NewStatic([]model.Repository{
		{Name: "org/good", CloneURL: good},
		{Name: "org/broken", CloneURL: filepath.Join(t.TempDir(), "no-such-repo")},
	})
	src := NewGit("repos", lister, nil, nil)

	// When fetching
	docs := make([]model.Document, 0)
	var streamErr error
	for item := range src.Fetch(context.Background()).Items() {
		if item.Err != nil {
			streamErr = item.Err
			continue
		}
		docs = append(docs, item.Value)
	}

	// Then the good repository's documents arrive before the terminal error
	require.Error(t, streamErr)
	assert.Equal(t, errs.ErrCodeCloneFailed, errs.GetCode(streamErr))
	assert.Contains(t, streamErr.Error(), "org/broken")
	assert.Len(t, docs, 1)
}

func TestGit_ListerFailurePropagates(t *testing.T) {
	// Given a lister that fails immediately
	boom := errs.ListingError("listing exploded", nil)
	lister := failingLister{err: boom}
	src := NewGit("repos", lister, nil, nil)

	// When fetching
	_, err := stream.Collect(src.Fetch(context.Background()))

	// Then the listing error is the source's error
	require.Error(t, err)
	assert.Equal(t, errs.ErrCodeListingFailed, errs.GetCode(err))
}

type failingLister struct {
	err error
}

func (l failingLister) List(ctx context.Context) *stream.Stream[model.Repository] {
	return stream.Generate(1, func(stream.Sender[model.Repository]) error {
		return l.err
	})
}
