// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package httpapi

import "github.com/google/go-github/v66/github"

// Paginate drives a go-github list endpoint page by page, following
// resp.NextPage the same way pkg/github/provider.go's list methods do,
// stopping at exhaustion or after maxPages pages (a nil or non-positive
// maxPages means unbounded, per spec.md §4.7).
func Paginate[T any](maxPages int, fetchPage func(page int) ([]T, *github.Response, error)) ([]T, error) {
	var all []T
	page := 0
	for pagesFetched := 0; ; pagesFetched++ {
		if maxPages > 0 && pagesFetched >= maxPages {
			break
		}
		items, resp, err := fetchPage(page)
		if err != nil {
			return all, err
		}
		all = append(all, items...)
		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}
	return all, nil
}
