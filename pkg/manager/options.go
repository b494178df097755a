// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package manager

import (
	"net/http"
	"time"

	"github.com/archmagece/repoharvest/internal/telemetry"
)

// Option configures a Manager at construction time, mirroring the
// functional-options pattern pkg/clone.Engine and pkg/credentials use
// throughout this module.
type Option func(*config)

type config struct {
	username         string
	noCache          bool
	maxPagesDefault  int
	cloneConcurrency int
	httpConcurrency  int
	scratchRoot      string
	progressThrottle time.Duration
	logger           telemetry.Logger
	httpClient       *http.Client // override, mainly for tests
}

func defaultConfig() config {
	return config{
		cloneConcurrency: 0, // 0 defers to pkg/clone's own default
		httpConcurrency:  16,
		progressThrottle: 100 * time.Millisecond,
		logger:           telemetry.NoopLogger{},
	}
}

// WithUsername sets the basic-auth username used when no token is
// configured.
func WithUsername(username string) Option {
	return func(c *config) { c.username = username }
}

// WithNoCache threads the no-op cache-disable switch through to
// pkg/credentials.
func WithNoCache(noCache bool) Option {
	return func(c *config) { c.noCache = noCache }
}

// WithMaxPagesDefault sets the max_pages applied to a fetch call that
// doesn't specify its own. 0 means unbounded.
func WithMaxPagesDefault(pages int) Option {
	return func(c *config) { c.maxPagesDefault = pages }
}

// WithCloneConcurrency overrides the Clone Engine's worker pool size.
func WithCloneConcurrency(n int) Option {
	return func(c *config) { c.cloneConcurrency = n }
}

// WithHTTPConcurrency overrides the HTTP Fetcher Core's cross-repository
// fan-out width (spec.md §4.7's K, default 16).
func WithHTTPConcurrency(n int) Option {
	return func(c *config) { c.httpConcurrency = n }
}

// WithScratchRoot overrides the OS temp directory as the parent of
// every clone's scratch directory.
func WithScratchRoot(dir string) Option {
	return func(c *config) { c.scratchRoot = dir }
}

// WithLogger sets the Logger every owned subsystem reports through.
func WithLogger(l telemetry.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithHTTPClient overrides the HTTP client used by the domain
// fetchers, bypassing pkg/httpapi.NewClient entirely. Intended for
// tests that point the GitHub client at an httptest.Server.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) { c.httpClient = client }
}
