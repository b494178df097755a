// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter handles API rate limiting with retry logic.
type Limiter struct {
	mu         sync.Mutex
	limit      int
	remaining  int
	resetTime  time.Time
	retryAfter time.Duration
}

// NewLimiter creates a new rate limiter with default settings.
func NewLimiter(limit int) *Limiter {
	if limit <= 0 {
		limit = 5000 // Default GitHub rate limit
	}
	return &Limiter{
		limit:     limit,
		remaining: limit,
		resetTime: time.Now().Add(1 * time.Hour),
	}
}

// Wait blocks until rate limit allows making a request.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()

	// Check if we need to wait for retry-after
	if l.retryAfter > 0 {
		waitDuration := l.retryAfter
		l.retryAfter = 0
		l.mu.Unlock()

		if err := sleep(ctx, waitDuration); err != nil {
			return err
		}

		l.mu.Lock()
	}

	// Check rate limit
	if l.remaining <= 0 && time.Now().Before(l.resetTime) {
		waitDuration := time.Until(l.resetTime)
		l.mu.Unlock()

		if err := sleep(ctx, waitDuration); err != nil {
			return err
		}

		l.mu.Lock()
	}

	l.remaining--
	l.mu.Unlock()

	return nil
}

// UpdateFromHeaders updates rate limit information from response headers.
// Supports GitHub (X-RateLimit-*) and GitLab (RateLimit-*) headers.
func (l *Limiter) UpdateFromHeaders(resp *http.Response) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// GitHub style headers
	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		if r, err := strconv.Atoi(remaining); err == nil {
			l.remaining = r
		}
	}
	if limit := resp.Header.Get("X-RateLimit-Limit"); limit != "" {
		if lim, err := strconv.Atoi(limit); err == nil {
			l.limit = lim
		}
	}
	if reset := resp.Header.Get("X-RateLimit-Reset"); reset != "" {
		if r, err := strconv.ParseInt(reset, 10, 64); err == nil {
			l.resetTime = time.Unix(r, 0)
		}
	}

	// GitLab style headers (fallback)
	if remaining := resp.Header.Get("RateLimit-Remaining"); remaining != "" {
		if r, err := strconv.Atoi(remaining); err == nil {
			l.remaining = r
		}
	}
	if limit := resp.Header.Get("RateLimit-Limit"); limit != "" {
		if lim, err := strconv.Atoi(limit); err == nil {
			l.limit = lim
		}
	}
	if reset := resp.Header.Get("RateLimit-Reset"); reset != "" {
		if r, err := strconv.ParseInt(reset, 10, 64); err == nil {
			l.resetTime = time.Unix(r, 0)
		}
	}

	// Retry-After header (both)
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			l.retryAfter = time.Duration(seconds) * time.Second
		}
	}
}

// Status returns current rate limit status.
func (l *Limiter) Status() (remaining, limit int, resetTime time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remaining, l.limit, l.resetTime
}

func sleep(ctx context.Context, duration time.Duration) error {
	select {
	case <-time.After(duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
