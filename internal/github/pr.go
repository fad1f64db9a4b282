package github

import (
	"context"
	"fmt"
	"net/url"

	gh "github.com/google/go-github/v66/github"

	"github.com/awlabs/tasksync/internal/sync"
)

// Fetcher resolves pull requests through the GitHub API. It implements
// sync.ContextSource.
type Fetcher struct {
	tokens TokenSource

	// apiURL overrides the API root, for tests. Must end with a slash.
	apiURL string
}

// NewFetcher creates a fetcher backed by the given token source.
func NewFetcher(tokens TokenSource) *Fetcher {
	return &Fetcher{tokens: tokens}
}

// PullRequestContext fetches the PR and projects it into the fields the sync
// engine reads.
func (f *Fetcher) PullRequestContext(ctx context.Context, repo string, number int) (sync.PRContext, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return sync.PRContext{}, err
	}

	token, err := f.tokens.GetInstallationToken(ctx, repo)
	if err != nil {
		return sync.PRContext{}, fmt.Errorf("failed to authenticate for %s: %w", repo, err)
	}

	client := gh.NewClient(nil).WithAuthToken(token.Token)
	if f.apiURL != "" {
		base, err := url.Parse(f.apiURL)
		if err != nil {
			return sync.PRContext{}, fmt.Errorf("invalid API URL: %w", err)
		}
		client.BaseURL = base
	}

	pr, _, err := client.PullRequests.Get(ctx, owner, name, number)
	if err != nil {
		return sync.PRContext{}, fmt.Errorf("failed to fetch PR %s#%d: %w", repo, number, err)
	}

	return sync.PRContext{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		BaseRef: pr.GetBase().GetRef(),
		Draft:   pr.GetDraft(),
		State:   pr.GetState(),
		Actor:   pr.GetUser().GetLogin(),
	}, nil
}
