package repolist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/quarry-search/quarry/internal/errors"
	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/stream"
)

func TestStatic_ReplaysInOrder(t *testing.T) {
	repos := []model.Repository{
		{Name: "org/a", CloneURL: "git@github.com:org/a.git"},
		{Name: "org/b", CloneURL: "git@github.com:org/b.git"},
	}
	lister := NewStatic(repos)

	listed, err := stream.Collect(lister.List(context.Background()))

	require.NoError(t, err)
	assert.Equal(t, repos, listed)
}

func TestStatic_Empty(t *testing.T) {
	listed, err := stream.Collect(NewStatic(nil).List(context.Background()))

	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestCloneURL(t *testing.T) {
	tests := []struct {
		name      string
		server    string
		transport string
		repo      string
		want      string
	}{
		{name: "ssh default server", transport: TransportSSH, repo: "org/a", want: "git@github.com:org/a.git"},
		{name: "empty transport defaults to ssh", repo: "org/a", want: "git@github.com:org/a.git"},
		{name: "https", transport: TransportHTTPS, repo: "org/a", want: "https://github.com/org/a.git"},
		{name: "custom server ssh", server: "git.corp.example", transport: TransportSSH, repo: "team/tool", want: "git@git.corp.example:team/tool.git"},
		{name: "custom server https", server: "git.corp.example", transport: TransportHTTPS, repo: "team/tool", want: "https://git.corp.example/team/tool.git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CloneURL(tt.server, tt.transport, tt.repo)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCloneURL_UnknownTransport(t *testing.T) {
	_, err := CloneURL("", "ftp", "org/a")

	require.Error(t, err)
	assert.Equal(t, errs.ErrCodeConfigInvalid, errs.GetCode(err))
}
