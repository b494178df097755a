// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package githubapi

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/archmagece/repoharvest/pkg/httpapi"
	"github.com/archmagece/repoharvest/pkg/records"
)

// CommentsFetcher implements fetch_comments (spec.md §4.8): the union
// of the issue, commit, pull-request, and review-comment endpoints,
// each result tagged with its records.CommentType.
type CommentsFetcher struct {
	client      *github.Client
	concurrency int
}

// NewCommentsFetcher builds a CommentsFetcher.
func NewCommentsFetcher(client *github.Client, concurrency int) *CommentsFetcher {
	return &CommentsFetcher{client: client, concurrency: concurrency}
}

// FetchAll fetches comments for every URL. commentTypes restricts
// which of the four endpoints are queried; an empty set queries all
// four, per spec.md §4.8.
func (f *CommentsFetcher) FetchAll(ctx context.Context, urls []string, commentTypes []records.CommentType, maxPages int) map[string]records.CommentResult {
	wanted := wantedTypes(commentTypes)

	raw := fanOut(ctx, urls, f.concurrency, func(ctx context.Context, owner, repo string) ([]records.CommentRecord, error) {
		return f.fetchOne(ctx, owner, repo, wanted, maxPages)
	})

	out := make(map[string]records.CommentResult, len(raw))
	for url, v := range raw {
		out[url] = records.CommentResult{Comments: v.Value, Err: v.Err}
	}
	return out
}

func wantedTypes(types []records.CommentType) map[records.CommentType]bool {
	all := map[records.CommentType]bool{
		records.CommentIssue:         true,
		records.CommentCommit:        true,
		records.CommentPullRequest:   true,
		records.CommentReviewComment: true,
	}
	if len(types) == 0 {
		return all
	}
	wanted := make(map[records.CommentType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	return wanted
}

func (f *CommentsFetcher) fetchOne(ctx context.Context, owner, repo string, wanted map[records.CommentType]bool, maxPages int) ([]records.CommentRecord, error) {
	var out []records.CommentRecord

	if wanted[records.CommentIssue] {
		comments, err := f.fetchIssueComments(ctx, owner, repo, maxPages)
		if err != nil {
			return nil, err
		}
		out = append(out, comments...)
	}
	if wanted[records.CommentCommit] {
		comments, err := f.fetchCommitComments(ctx, owner, repo, maxPages)
		if err != nil {
			return nil, err
		}
		out = append(out, comments...)
	}
	if wanted[records.CommentPullRequest] {
		comments, err := f.fetchPullRequestComments(ctx, owner, repo, maxPages)
		if err != nil {
			return nil, err
		}
		out = append(out, comments...)
	}
	if wanted[records.CommentReviewComment] {
		comments, err := f.fetchReviewBodyComments(ctx, owner, repo, maxPages)
		if err != nil {
			return nil, err
		}
		out = append(out, comments...)
	}
	return out, nil
}

func (f *CommentsFetcher) fetchIssueComments(ctx context.Context, owner, repo string, maxPages int) ([]records.CommentRecord, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	comments, err := httpapi.Paginate(maxPages, func(page int) ([]*github.IssueComment, *github.Response, error) {
		opts.Page = page
		return f.client.Issues.ListRepositoryComments(ctx, owner, repo, opts)
	})
	if err != nil {
		return nil, err
	}

	out := make([]records.CommentRecord, 0, len(comments))
	for _, c := range comments {
		out = append(out, records.CommentRecord{
			ID:          c.GetID(),
			Type:        records.CommentIssue,
			AuthorLogin: c.GetUser().GetLogin(),
			CreatedAt:   c.GetCreatedAt().Time,
			UpdatedAt:   c.GetUpdatedAt().Time,
			Body:        c.GetBody(),
			HTMLURL:     c.GetHTMLURL(),
			IssueNumber: issueNumberFromURL(c.GetIssueURL()),
		})
	}
	return out, nil
}

func (f *CommentsFetcher) fetchCommitComments(ctx context.Context, owner, repo string, maxPages int) ([]records.CommentRecord, error) {
	opts := &github.ListOptions{PerPage: 100}
	comments, err := httpapi.Paginate(maxPages, func(page int) ([]*github.RepositoryComment, *github.Response, error) {
		opts.Page = page
		return f.client.Repositories.ListComments(ctx, owner, repo, opts)
	})
	if err != nil {
		return nil, err
	}

	out := make([]records.CommentRecord, 0, len(comments))
	for _, c := range comments {
		out = append(out, records.CommentRecord{
			ID:          c.GetID(),
			Type:        records.CommentCommit,
			AuthorLogin: c.GetUser().GetLogin(),
			CreatedAt:   c.GetCreatedAt().Time,
			UpdatedAt:   c.GetUpdatedAt().Time,
			Body:        c.GetBody(),
			HTMLURL:     c.GetHTMLURL(),
			CommitSHA:   c.GetCommitID(),
		})
	}
	return out, nil
}

func (f *CommentsFetcher) fetchPullRequestComments(ctx context.Context, owner, repo string, maxPages int) ([]records.CommentRecord, error) {
	opts := &github.PullRequestListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	comments, err := httpapi.Paginate(maxPages, func(page int) ([]*github.PullRequestComment, *github.Response, error) {
		opts.Page = page
		// number=0 lists review comments for every PR in the repository.
		return f.client.PullRequests.ListComments(ctx, owner, repo, 0, opts)
	})
	if err != nil {
		return nil, err
	}

	out := make([]records.CommentRecord, 0, len(comments))
	for _, c := range comments {
		out = append(out, records.CommentRecord{
			ID:          c.GetID(),
			Type:        records.CommentPullRequest,
			AuthorLogin: c.GetUser().GetLogin(),
			CreatedAt:   c.GetCreatedAt().Time,
			UpdatedAt:   c.GetUpdatedAt().Time,
			Body:        c.GetBody(),
			HTMLURL:     c.GetHTMLURL(),
			PRNumber:    parseTrailingInt(c.GetPullRequestURL()),
		})
	}
	return out, nil
}

func (f *CommentsFetcher) fetchReviewBodyComments(ctx context.Context, owner, repo string, maxPages int) ([]records.CommentRecord, error) {
	listOpts := &github.PullRequestListOptions{ListOptions: github.ListOptions{PerPage: 100}, State: "all"}
	prs, err := httpapi.Paginate(maxPages, func(page int) ([]*github.PullRequest, *github.Response, error) {
		listOpts.Page = page
		return f.client.PullRequests.List(ctx, owner, repo, listOpts)
	})
	if err != nil {
		return nil, err
	}

	var out []records.CommentRecord
	for _, pr := range prs {
		opts := &github.ListOptions{PerPage: 100}
		reviews, err := httpapi.Paginate(maxPages, func(page int) ([]*github.PullRequestReview, *github.Response, error) {
			opts.Page = page
			return f.client.PullRequests.ListReviews(ctx, owner, repo, pr.GetNumber(), opts)
		})
		if err != nil {
			continue
		}
		for _, r := range reviews {
			if r.GetBody() == "" {
				continue
			}
			out = append(out, records.CommentRecord{
				ID:          r.GetID(),
				Type:        records.CommentReviewComment,
				AuthorLogin: r.GetUser().GetLogin(),
				CreatedAt:   r.GetSubmittedAt(),
				UpdatedAt:   r.GetSubmittedAt(),
				Body:        r.GetBody(),
				HTMLURL:     r.GetHTMLURL(),
				ReviewID:    r.GetID(),
				PRNumber:    pr.GetNumber(),
			})
		}
	}
	return out, nil
}

func issueNumberFromURL(issueURL string) int {
	return parseTrailingInt(issueURL)
}

// parseTrailingInt extracts the trailing numeric path segment from an
// API URL like ".../issues/42" or ".../pulls/7", used to recover a
// parent number from go-github structs that only expose the URL, not
// the number itself.
func parseTrailingInt(apiURL string) int {
	idx := strings.LastIndex(apiURL, "/")
	if idx < 0 || idx+1 >= len(apiURL) {
		return 0
	}
	n, _ := strconv.Atoi(apiURL[idx+1:])
	return n
}
