// Package config loads and validates the quarry configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	errs "github.com/quarry-search/quarry/internal/errors"
)

// Source types understood by the builder.
const (
	SourceTypeFS     = "fs"
	SourceTypeGitHub = "github"
)

// Repository list providers.
const (
	RepoListStatic = "list"
	RepoListAPI    = "api"
)

// Config is the complete quarry configuration.
type Config struct {
	// DataDir is where the index, logs, lock file and run history live.
	// Defaults to ~/.quarry.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	Sources  []SourceConfig `yaml:"sources" json:"sources"`
	Engine   EngineConfig   `yaml:"engine" json:"engine"`
	Indexing IndexingConfig `yaml:"indexing" json:"indexing"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// SourceConfig declares one document source.
type SourceConfig struct {
	// ID names the source. It becomes the source field of every document
	// the source emits, so it must be unique.
	ID string `yaml:"id" json:"id"`

	// Type is "fs" or "github".
	Type string `yaml:"type" json:"type"`

	// Paths are the filesystem roots walked by an fs source.
	Paths []string `yaml:"paths,omitempty" json:"paths,omitempty"`

	// Include and Exclude are regular expressions matched against the
	// full path of every candidate file.
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`

	// Repositories configures where a github source gets its repository
	// list from.
	Repositories *RepositoriesConfig `yaml:"repositories,omitempty" json:"repositories,omitempty"`
}

// RepositoriesConfig declares the repository list for a github source.
type RepositoriesConfig struct {
	// From is "list" (inline repository names) or "api" (starred
	// repositories fetched from the GitHub API).
	From string `yaml:"from" json:"from"`

	// Server and Transport shape the clone URLs rendered for inline
	// lists. Server defaults to github.com, transport to ssh.
	Server    string `yaml:"server,omitempty" json:"server,omitempty"`
	Transport string `yaml:"transport,omitempty" json:"transport,omitempty"`

	// List holds "owner/name" entries for the "list" provider.
	List []RepoConfig `yaml:"list,omitempty" json:"list,omitempty"`

	// StarredBy is the user whose stars the "api" provider walks.
	StarredBy string `yaml:"starred_by,omitempty" json:"starred_by,omitempty"`

	// TokenFile points at a file holding a GitHub API token. When empty,
	// the GITHUB_TOKEN environment variable is consulted instead.
	TokenFile string `yaml:"token_file,omitempty" json:"token_file,omitempty"`
}

// RepoConfig is one inline repository entry.
type RepoConfig struct {
	Name string `yaml:"name" json:"name"`
}

// EngineConfig selects and places the index engine.
type EngineConfig struct {
	// Type is the engine backend. Only "bleve" is supported.
	Type string `yaml:"type" json:"type"`

	// Path is the on-disk index location. Empty means DataDir/index.bleve.
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// IndexingConfig tunes the ingestion pipeline.
type IndexingConfig struct {
	// BatchSize is how many documents are committed per engine batch.
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// LoggingConfig configures the log output.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		Engine:   EngineConfig{Type: "bleve"},
		Indexing: IndexingConfig{BatchSize: 10},
		Logging:  LoggingConfig{Level: "info"},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quarry"
	}
	return filepath.Join(home, ".quarry")
}

// Load reads the configuration at path, fills defaults, and validates.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errs.ConfigError(fmt.Sprintf("reading config file %s", path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.ConfigError(fmt.Sprintf("parsing config file %s", path), err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir()
	}
	if c.Engine.Type == "" {
		c.Engine.Type = "bleve"
	}
	if c.Indexing.BatchSize <= 0 {
		c.Indexing.BatchSize = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// IndexPath resolves the on-disk index location.
func (c *Config) IndexPath() string {
	if c.Engine.Path != "" {
		return c.Engine.Path
	}
	return filepath.Join(c.DataDir, "index.bleve")
}

// LockPath resolves the ingest lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "ingest.lock")
}

// RunHistoryPath resolves the run-history database location.
func (c *Config) RunHistoryPath() string {
	return filepath.Join(c.DataDir, "runs.db")
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.Engine.Type != "bleve" {
		return errs.ConfigError(fmt.Sprintf("unknown engine type %q", c.Engine.Type), nil)
	}

	seen := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.ID == "" {
			return errs.ConfigError(fmt.Sprintf("source %d has no id", i), nil)
		}
		if seen[src.ID] {
			return errs.ConfigError(fmt.Sprintf("duplicate source id %q", src.ID), nil)
		}
		seen[src.ID] = true

		switch src.Type {
		case SourceTypeFS:
			if len(src.Paths) == 0 {
				return errs.ConfigError(fmt.Sprintf("fs source %q names no paths", src.ID), nil)
			}
		case SourceTypeGitHub:
			if err := validateRepositories(src); err != nil {
				return err
			}
		default:
			return errs.ConfigError(fmt.Sprintf("source %q has unknown type %q", src.ID, src.Type), nil)
		}
	}
	return nil
}

func validateRepositories(src SourceConfig) error {
	repos := src.Repositories
	if repos == nil {
		return errs.ConfigError(fmt.Sprintf("github source %q has no repositories section", src.ID), nil)
	}
	switch repos.From {
	case RepoListStatic:
		if len(repos.List) == 0 {
			return errs.ConfigError(fmt.Sprintf("github source %q lists no repositories", src.ID), nil)
		}
		for _, r := range repos.List {
			if r.Name == "" {
				return errs.ConfigError(fmt.Sprintf("github source %q has a repository without a name", src.ID), nil)
			}
		}
	case RepoListAPI:
		if repos.StarredBy == "" {
			return errs.ConfigError(fmt.Sprintf("github source %q uses the api provider but names no starred_by user", src.ID), nil)
		}
	default:
		return errs.ConfigError(fmt.Sprintf("github source %q has unknown repository provider %q", src.ID, repos.From), nil)
	}
	return nil
}
