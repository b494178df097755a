// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package githubapi implements the Domain Fetchers: Collaborators,
// Issues, PullRequests, CodeReviews, and Comments, each built on
// google/go-github/v66 the way pkg/github/provider.go uses it
// (ListOptions{PerPage: 100} plus a resp.NextPage loop, here folded
// into pkg/httpapi.Paginate), fanned out across repositories with
// bounded concurrency via golang.org/x/sync/errgroup.
package githubapi

import "fmt"

// URLError indicates a repository URL could not be parsed into an
// (owner, repo) pair.
type URLError struct {
	URL string
}

func (e *URLError) Error() string { return fmt.Sprintf("githubapi: cannot parse repository URL %q", e.URL) }

// StateError indicates an invalid issue/PR state filter was supplied.
type StateError struct {
	State string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("githubapi: invalid state %q, want one of open, closed, all", e.State)
}
