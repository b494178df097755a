// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package githubapi

import (
	"context"

	"github.com/google/go-github/v66/github"
	"golang.org/x/sync/errgroup"

	"github.com/archmagece/repoharvest/pkg/httpapi"
	"github.com/archmagece/repoharvest/pkg/records"
)

// PullRequestsFetcher implements fetch_pull_requests (spec.md §4.8).
type PullRequestsFetcher struct {
	client      *github.Client
	concurrency int
}

// NewPullRequestsFetcher builds a PullRequestsFetcher.
func NewPullRequestsFetcher(client *github.Client, concurrency int) *PullRequestsFetcher {
	return &PullRequestsFetcher{client: client, concurrency: concurrency}
}

// FetchAll lists pull requests for every URL, enriching each with a
// per-PR Get call (for additions/deletions/changed_files/commits) at
// bounded concurrency, per spec.md §4.8.
func (f *PullRequestsFetcher) FetchAll(ctx context.Context, urls []string, state records.IssueOrPRState, maxPages int) (map[string]records.PullRequestResult, error) {
	if !state.ValidState() {
		return nil, &StateError{State: string(state)}
	}
	if state == "" {
		state = records.StateAll
	}

	raw := fanOut(ctx, urls, f.concurrency, func(ctx context.Context, owner, repo string) ([]records.PullRequestRecord, error) {
		return f.fetchOne(ctx, owner, repo, state, maxPages)
	})

	out := make(map[string]records.PullRequestResult, len(raw))
	for url, v := range raw {
		out[url] = records.PullRequestResult{PullRequests: v.Value, Err: v.Err}
	}
	return out, nil
}

func (f *PullRequestsFetcher) fetchOne(ctx context.Context, owner, repo string, state records.IssueOrPRState, maxPages int) ([]records.PullRequestRecord, error) {
	opts := &github.PullRequestListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
		State:       string(state),
	}

	prs, err := httpapi.Paginate(maxPages, func(page int) ([]*github.PullRequest, *github.Response, error) {
		opts.Page = page
		return f.client.PullRequests.List(ctx, owner, repo, opts)
	})
	if err != nil {
		return nil, err
	}

	enriched := make([]*github.PullRequest, len(prs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.enrichConcurrency())
	for i, pr := range prs {
		i, pr := i, pr
		g.Go(func() error {
			full, _, err := f.client.PullRequests.Get(gctx, owner, repo, pr.GetNumber())
			if err != nil {
				enriched[i] = pr // fall back to the list-endpoint shape
				return nil
			}
			enriched[i] = full
			return nil
		})
	}
	_ = g.Wait()

	out := make([]records.PullRequestRecord, 0, len(enriched))
	for _, pr := range enriched {
		out = append(out, records.PullRequestRecord{
			ID:                 pr.GetID(),
			Number:             pr.GetNumber(),
			Title:              pr.GetTitle(),
			State:              pr.GetState(),
			CreatedAt:          pr.GetCreatedAt().Time,
			UpdatedAt:          pr.GetUpdatedAt().Time,
			ClosedAt:           timestampPtr(pr.ClosedAt),
			AuthorLogin:        pr.GetUser().GetLogin(),
			AuthorID:           pr.GetUser().GetID(),
			Labels:             labelNames(pr.Labels),
			Assignees:          assigneeLogins(pr.Assignees),
			Body:               pr.GetBody(),
			HTMLURL:            pr.GetHTMLURL(),
			Additions:          pr.GetAdditions(),
			Deletions:          pr.GetDeletions(),
			ChangedFiles:       pr.GetChangedFiles(),
			Commits:            pr.GetCommits(),
			Merged:             pr.GetMerged(),
			IsDraft:            pr.GetDraft(),
			BaseRef:            pr.GetBase().GetRef(),
			HeadRef:            pr.GetHead().GetRef(),
			Mergeable:          pr.Mergeable,
			MergeableState:     pr.GetMergeableState(),
			RequestedReviewers: reviewerLogins(pr.RequestedReviewers),
		})
	}
	return out, nil
}

// enrichConcurrency keeps the per-repository enrichment fan-out under
// the same ceiling the HTTP Fetcher Core uses overall, so one large
// repository's PR enrichment cannot starve other repositories'
// requests.
func (f *PullRequestsFetcher) enrichConcurrency() int {
	if f.concurrency <= 0 {
		return 16
	}
	return f.concurrency
}

func reviewerLogins(users []*github.User) []string {
	logins := make([]string, 0, len(users))
	for _, u := range users {
		logins = append(logins, u.GetLogin())
	}
	return logins
}
