// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package githubapi

import "strings"

// ParseRepoURL splits a GitHub repository URL into its (owner, repo)
// pair, accepting the same URL shapes
// pkg/repository/update.go's ExtractRepoNameFromURL recognizes:
// https://github.com/owner/repo(.git), git@github.com:owner/repo(.git),
// ssh://git@github.com/owner/repo(.git), and a bare "owner/repo"
// shorthand.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	u := strings.TrimSpace(repoURL)
	if u == "" {
		return "", "", &URLError{URL: repoURL}
	}
	u = strings.TrimSuffix(u, ".git")
	u = strings.TrimSuffix(u, "/")

	var path string
	switch {
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"), strings.HasPrefix(u, "ssh://"):
		idx := strings.Index(u, "://")
		rest := u[idx+3:]
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return "", "", &URLError{URL: repoURL}
		}
		path = rest[slash+1:]
	case strings.Contains(u, "@") && strings.Contains(u, ":"):
		colon := strings.LastIndex(u, ":")
		path = u[colon+1:]
	default:
		path = u
	}

	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &URLError{URL: repoURL}
	}
	return parts[0], parts[1], nil
}
