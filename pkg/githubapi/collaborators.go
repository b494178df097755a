// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package githubapi

import (
	"context"

	"github.com/google/go-github/v66/github"

	"github.com/archmagece/repoharvest/pkg/httpapi"
	"github.com/archmagece/repoharvest/pkg/records"
)

// CollaboratorsFetcher implements fetch_collaborators (spec.md §4.8).
type CollaboratorsFetcher struct {
	client      *github.Client
	concurrency int
}

// NewCollaboratorsFetcher builds a CollaboratorsFetcher.
func NewCollaboratorsFetcher(client *github.Client, concurrency int) *CollaboratorsFetcher {
	return &CollaboratorsFetcher{client: client, concurrency: concurrency}
}

// FetchAll lists collaborators (affiliation=all) for every URL,
// fanning out across repositories the way pkg/github/provider.go's
// list methods page a single one.
func (f *CollaboratorsFetcher) FetchAll(ctx context.Context, urls []string, maxPages int) map[string]records.CollaboratorResult {
	raw := fanOut(ctx, urls, f.concurrency, func(ctx context.Context, owner, repo string) ([]records.CollaboratorRecord, error) {
		return f.fetchOne(ctx, owner, repo, maxPages)
	})

	out := make(map[string]records.CollaboratorResult, len(raw))
	for url, v := range raw {
		out[url] = records.CollaboratorResult{Collaborators: v.Value, Err: v.Err}
	}
	return out
}

func (f *CollaboratorsFetcher) fetchOne(ctx context.Context, owner, repo string, maxPages int) ([]records.CollaboratorRecord, error) {
	opts := &github.ListCollaboratorsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
		Affiliation: "all",
	}

	users, err := httpapi.Paginate(maxPages, func(page int) ([]*github.User, *github.Response, error) {
		opts.Page = page
		return f.client.Repositories.ListCollaborators(ctx, owner, repo, opts)
	})
	if err != nil {
		return nil, err
	}

	out := make([]records.CollaboratorRecord, 0, len(users))
	for _, u := range users {
		out = append(out, records.CollaboratorRecord{
			Login:       u.GetLogin(),
			UserID:      u.GetID(),
			Name:        u.GetName(),
			Email:       u.GetEmail(),
			AvatarURL:   u.GetAvatarURL(),
			Permissions: u.GetPermissions(),
		})
	}
	return out, nil
}
