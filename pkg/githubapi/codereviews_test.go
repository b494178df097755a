// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package githubapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeReviewsFetcher_BuildsPerPRMapping(t *testing.T) {
	client, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/repos/owner/repo/pulls":
			_ = json.NewEncoder(w).Encode([]*github.PullRequest{
				{Number: github.Int(3)},
				{Number: github.Int(5)},
			})
		case "/repos/owner/repo/pulls/3/reviews":
			_ = json.NewEncoder(w).Encode([]*github.PullRequestReview{
				{ID: github.Int64(100), User: &github.User{Login: github.String("alice")}, State: github.String("APPROVED")},
			})
		case "/repos/owner/repo/pulls/5/reviews":
			_ = json.NewEncoder(w).Encode([]*github.PullRequestReview{
				{ID: github.Int64(200), User: &github.User{Login: github.String("bob")}, State: github.String("CHANGES_REQUESTED")},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer closeSrv()

	fetcher := NewCodeReviewsFetcher(client, 4)
	results := fetcher.FetchAll(context.Background(), []string{"owner/repo"}, 0)

	r := results["owner/repo"]
	require.Empty(t, r.Err)
	require.Contains(t, r.ReviewsByPR, 3)
	require.Contains(t, r.ReviewsByPR, 5)
	assert.Equal(t, "alice", r.ReviewsByPR[3][0].ReviewerLogin)
	assert.EqualValues(t, "APPROVED", r.ReviewsByPR[3][0].State)
	assert.Equal(t, "bob", r.ReviewsByPR[5][0].ReviewerLogin)
}

func TestCodeReviewsFetcher_BadURLYieldsPerURLError(t *testing.T) {
	client, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]*github.PullRequest{})
	}))
	defer closeSrv()

	fetcher := NewCodeReviewsFetcher(client, 2)
	results := fetcher.FetchAll(context.Background(), []string{"not-a-valid-url"}, 0)

	r := results["not-a-valid-url"]
	assert.NotEmpty(t, r.Err)
	assert.Empty(t, r.ReviewsByPR)
}
