// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package githubapi

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// valueOrErr is the generic shape every per-URL fetch reduces to before
// a fetcher's FetchAll method reshapes it into its own named
// records.*Result type (records.CollaboratorResult, records.IssueResult,
// ...), matching spec.md §4.9's "per-target error as value-or-string".
type valueOrErr[T any] struct {
	Value T
	Err   string
}

// fanOut runs fetch once per URL with bounded concurrency K, mirroring
// pkg/commitlog.Walker's errgroup.SetLimit sharding but fanning out
// across repositories instead of commit shards. A per-URL failure
// (bad URL, API error) never aborts the other URLs: fetch's error is
// captured into that URL's valueOrErr rather than returned to the
// errgroup, so the group itself never fails.
func fanOut[T any](ctx context.Context, urls []string, concurrency int, fetch func(ctx context.Context, owner, repo string) (T, error)) map[string]valueOrErr[T] {
	results := make(map[string]valueOrErr[T], len(urls))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for _, u := range urls {
		u := u
		g.Go(func() error {
			var v valueOrErr[T]
			owner, repo, err := ParseRepoURL(u)
			if err != nil {
				v.Err = err.Error()
			} else if val, ferr := fetch(gctx, owner, repo); ferr != nil {
				v.Err = ferr.Error()
			} else {
				v.Value = val
			}
			mu.Lock()
			results[u] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
