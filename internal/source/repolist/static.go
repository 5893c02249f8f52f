package repolist

import (
	"context"
	"fmt"

	errs "github.com/quarry-search/quarry/internal/errors"
	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/stream"
)

// Clone transports understood by CloneURL.
const (
	TransportSSH   = "ssh"
	TransportHTTPS = "https"
)

// DefaultServer is the git server used when the configuration names none.
const DefaultServer = "github.com"

// Static replays a fixed repository list once, in declaration order. It
// performs no network access and cannot fail.
type Static struct {
	repos []model.Repository
}

// NewStatic creates a static lister.
func NewStatic(repos []model.Repository) *Static {
	return &Static{repos: repos}
}

// List replays the repositories.
func (l *Static) List(ctx context.Context) *stream.Stream[model.Repository] {
	return stream.Of(l.repos...)
}

// CloneURL renders an "owner/name" repository into a clone URL for the
// given server and transport. Empty server defaults to github.com, empty
// transport to ssh.
func CloneURL(server, transport, name string) (string, error) {
	if server == "" {
		server = DefaultServer
	}
	switch transport {
	case TransportSSH, "":
		return fmt.Sprintf("git@%s:%s.git", server, name), nil
	case TransportHTTPS:
		return fmt.Sprintf("https://%s/%s.git", server, name), nil
	default:
		return "", errs.ConfigError(fmt.Sprintf("unknown clone transport %q (use %s or %s)", transport, TransportSSH, TransportHTTPS), nil)
	}
}
