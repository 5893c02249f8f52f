package repolist

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	errs "github.com/quarry-search/quarry/internal/errors"
	"github.com/quarry-search/quarry/internal/model"
	"github.com/quarry-search/quarry/internal/stream"
)

const (
	// defaultPageSize is the page size requested from the GitHub API.
	defaultPageSize = 100

	// requestTimeout bounds each page request.
	requestTimeout = 30 * time.Second
)

// GitHubStars lists the repositories starred by one user, newest star
// first, walking the paginated API until the server reports no further
// pages. Items already emitted survive a mid-pagination failure; the
// failure itself terminates the stream.
type GitHubStars struct {
	client   *gh.Client
	user     string
	pageSize int
	logger   *slog.Logger
}

// GitHubStarsOption customizes a GitHubStars lister.
type GitHubStarsOption func(*GitHubStars)

// WithPageSize overrides the API page size.
func WithPageSize(n int) GitHubStarsOption {
	return func(l *GitHubStars) {
		if n > 0 {
			l.pageSize = n
		}
	}
}

// WithBaseURL points the lister at a different API endpoint (GitHub
// Enterprise, or a test server). The URL must end with a slash.
func WithBaseURL(raw string) GitHubStarsOption {
	return func(l *GitHubStars) {
		if u, err := url.Parse(raw); err == nil {
			l.client.BaseURL = u
		}
	}
}

// WithLogger injects a logger.
func WithLogger(logger *slog.Logger) GitHubStarsOption {
	return func(l *GitHubStars) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewGitHubStars creates a lister for the given user. An empty token makes
// unauthenticated requests, which GitHub rate-limits aggressively.
func NewGitHubStars(ctx context.Context, token, user string, opts ...GitHubStarsOption) *GitHubStars {
	var client *gh.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc := oauth2.NewClient(ctx, ts)
		tc.Timeout = requestTimeout
		client = gh.NewClient(tc)
	} else {
		client = gh.NewClient(nil)
	}

	l := &GitHubStars{
		client:   client,
		user:     user,
		pageSize: defaultPageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List walks the starred-repository pages. Each request carries the cursor
// the previous response handed back; the cursor dies with the last page.
func (l *GitHubStars) List(ctx context.Context) *stream.Stream[model.Repository] {
	return stream.Generate(1, func(tx stream.Sender[model.Repository]) error {
		opts := &gh.ActivityListStarredOptions{
			Sort:        "created",
			Direction:   "desc",
			ListOptions: gh.ListOptions{PerPage: l.pageSize},
		}

		page := 0
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			starred, resp, err := l.client.Activity.ListStarred(ctx, l.user, opts)
			if err != nil {
				return errs.ListingError(fmt.Sprintf("listing repositories starred by %s (page %d)", l.user, page+1), err)
			}
			page++
			l.logger.Debug("stars_page_fetched",
				slog.String("user", l.user),
				slog.Int("page", page),
				slog.Int("items", len(starred)))

			for _, star := range starred {
				repo := star.GetRepository()
				item := model.Repository{
					Name:     repo.GetFullName(),
					CloneURL: repo.GetCloneURL(),
				}
				if err := tx.Send(ctx, item); err != nil {
					return err
				}
			}

			if resp.NextPage == 0 {
				return nil
			}
			opts.Page = resp.NextPage
		}
	})
}
