package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/quarry-search/quarry/internal/config"
	"github.com/quarry-search/quarry/internal/engine"
	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/source"
	"github.com/quarry-search/quarry/internal/source/repolist"
)

// loadConfig resolves the --config flag (or the default location) and
// loads the configuration.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".quarry", "config.yaml")
	}
	return config.Load(path)
}

// openEngine opens the configured index engine.
func openEngine(cfg *config.Config) (*engine.Bleve, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return engine.NewBleve(cfg.IndexPath(), slog.Default())
}

// buildSources turns the source configuration into runnable sources.
func buildSources(ctx context.Context, cfg *config.Config) ([]source.Source, error) {
	sources := make([]source.Source, 0, len(cfg.Sources))
	for _, sc := range cfg.Sources {
		filter, err := source.NewFilter(sc.Include, sc.Exclude)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", sc.ID, err)
		}

		switch sc.Type {
		case config.SourceTypeFS:
			sources = append(sources, source.NewFileSystem(sc.ID, sc.Paths, filter, slog.Default()))
		case config.SourceTypeGitHub:
			lister, err := buildLister(ctx, sc)
			if err != nil {
				return nil, fmt.Errorf("source %q: %w", sc.ID, err)
			}
			sources = append(sources, source.NewGit(sc.ID, lister, filter, slog.Default()))
		default:
			return nil, fmt.Errorf("source %q: unknown type %q", sc.ID, sc.Type)
		}
	}
	return sources, nil
}

// buildLister creates the repository lister for a github source.
func buildLister(ctx context.Context, sc config.SourceConfig) (repolist.Lister, error) {
	rc := sc.Repositories
	switch rc.From {
	case config.RepoListStatic:
		repos := make([]model.Repository, 0, len(rc.List))
		for _, r := range rc.List {
			url, err := repolist.CloneURL(rc.Server, rc.Transport, r.Name)
			if err != nil {
				return nil, err
			}
			repos = append(repos, model.Repository{Name: r.Name, CloneURL: url})
		}
		return repolist.NewStatic(repos), nil
	case config.RepoListAPI:
		token, err := readToken(rc.TokenFile)
		if err != nil {
			return nil, err
		}
		return repolist.NewGitHubStars(ctx, token, rc.StarredBy), nil
	default:
		return nil, fmt.Errorf("unknown repository provider %q", rc.From)
	}
}

// readToken reads the GitHub token from the configured file, falling back
// to the GITHUB_TOKEN environment variable.
func readToken(tokenFile string) (string, error) {
	if tokenFile != "" {
		data, err := os.ReadFile(tokenFile)
		if err != nil {
			return "", fmt.Errorf("reading token file %s: %w", tokenFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(os.Getenv("GITHUB_TOKEN")), nil
}
