// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package githubapi

import (
	"context"
	"sync"

	"github.com/google/go-github/v66/github"
	"golang.org/x/sync/errgroup"

	"github.com/archmagece/repoharvest/pkg/httpapi"
	"github.com/archmagece/repoharvest/pkg/records"
)

// CodeReviewsFetcher implements fetch_code_reviews (spec.md §4.8).
type CodeReviewsFetcher struct {
	client      *github.Client
	concurrency int
}

// NewCodeReviewsFetcher builds a CodeReviewsFetcher.
func NewCodeReviewsFetcher(client *github.Client, concurrency int) *CodeReviewsFetcher {
	return &CodeReviewsFetcher{client: client, concurrency: concurrency}
}

// FetchAll discovers every PR in each URL's repository, then lists its
// reviews, assembling the url -> {PR number -> []CodeReviewRecord}
// mapping spec.md §4.8 requires.
func (f *CodeReviewsFetcher) FetchAll(ctx context.Context, urls []string, maxPages int) map[string]records.CodeReviewResult {
	raw := fanOut(ctx, urls, f.concurrency, func(ctx context.Context, owner, repo string) (map[int][]records.CodeReviewRecord, error) {
		return f.fetchOne(ctx, owner, repo, maxPages)
	})

	out := make(map[string]records.CodeReviewResult, len(raw))
	for url, v := range raw {
		out[url] = records.CodeReviewResult{ReviewsByPR: v.Value, Err: v.Err}
	}
	return out
}

func (f *CodeReviewsFetcher) fetchOne(ctx context.Context, owner, repo string, maxPages int) (map[int][]records.CodeReviewRecord, error) {
	listOpts := &github.PullRequestListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
		State:       "all",
	}
	prs, err := httpapi.Paginate(maxPages, func(page int) ([]*github.PullRequest, *github.Response, error) {
		listOpts.Page = page
		return f.client.PullRequests.List(ctx, owner, repo, listOpts)
	})
	if err != nil {
		return nil, err
	}

	result := make(map[int][]records.CodeReviewRecord, len(prs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.enrichConcurrency())

	for _, pr := range prs {
		number := pr.GetNumber()
		g.Go(func() error {
			reviews, err := f.fetchReviews(gctx, owner, repo, number, maxPages)
			if err != nil {
				return nil // per-PR failures are dropped; FetchAll surfaces only whole-repo errors
			}
			mu.Lock()
			result[number] = reviews
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return result, nil
}

func (f *CodeReviewsFetcher) fetchReviews(ctx context.Context, owner, repo string, number, maxPages int) ([]records.CodeReviewRecord, error) {
	opts := &github.ListOptions{PerPage: 100}
	reviews, err := httpapi.Paginate(maxPages, func(page int) ([]*github.PullRequestReview, *github.Response, error) {
		opts.Page = page
		return f.client.PullRequests.ListReviews(ctx, owner, repo, number, opts)
	})
	if err != nil {
		return nil, err
	}

	out := make([]records.CodeReviewRecord, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, records.CodeReviewRecord{
			ID:            r.GetID(),
			PRNumber:      number,
			ReviewerLogin: r.GetUser().GetLogin(),
			State:         records.CodeReviewState(r.GetState()),
			SubmittedAt:   r.GetSubmittedAt(),
			Body:          r.GetBody(),
		})
	}
	return out, nil
}

func (f *CodeReviewsFetcher) enrichConcurrency() int {
	if f.concurrency <= 0 {
		return 16
	}
	return f.concurrency
}
