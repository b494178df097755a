// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultFetcherConcurrency = 16
	defaultGitHubRateLimit    = 5000
	retryWaitMin              = 500 * time.Millisecond
	retryWaitMax              = 8 * time.Second
	retryMax                  = 5
)

// Config carries the credential and concurrency settings NewClient
// wires into the returned *http.Client.
type Config struct {
	Token    string
	Username string
	// Concurrency is the number of concurrent outbound requests allowed
	// across all domain fetchers; 0 uses spec.md §4.7's default of 16.
	Concurrency int
}

// NewClient builds the shared HTTP client for the domain fetchers:
// retryablehttp for exponential-backoff retries per spec.md §4.7,
// wrapping an authRoundTripper that injects credentials and updates a
// per-host HostLimiter from response headers.
func NewClient(cfg Config) *http.Client {
	limiter := NewHostLimiter(defaultGitHubRateLimit)

	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.RetryMax = retryMax
	rc.Logger = nil
	rc.CheckRetry = checkRetry
	rc.HTTPClient.Transport = &authRoundTripper{
		token:    cfg.Token,
		username: cfg.Username,
		limiter:  limiter,
		next:     http.DefaultTransport,
	}

	return rc.StandardClient()
}

// FetcherConcurrency returns cfg's configured fan-out width, defaulting
// to spec.md §4.7's K=16.
func (c Config) FetcherConcurrency() int {
	if c.Concurrency <= 0 {
		return defaultFetcherConcurrency
	}
	return c.Concurrency
}

// checkRetry implements spec.md §4.7's retry policy: transient network
// errors and RateLimitError are retried (bounded by RetryMax); 4xx
// other than 403/429 are not. This is the same 403-rate-limit-vs-403-
// authorization distinction ClassifyResponse implements, reused here so
// the retry decision and the final per-URL error agree.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		// Connection-level failures (reset, timeout, DNS) are always
		// worth a retry; they precede any response to classify.
		return true, nil
	}

	if classified := ClassifyResponse(resp); classified != nil {
		if ce, ok := classified.(classifiedError); ok {
			return ce.Retryable(), nil
		}
	}
	return false, nil
}
