// Package ratelimit provides rate limiting utilities for Git forge APIs.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"
)

func TestNewLimiter(t *testing.T) {
	tests := []struct {
		name          string
		limit         int
		expectedLimit int
	}{
		{"positive limit", 1000, 1000},
		{"zero limit uses default", 0, 5000},
		{"negative limit uses default", -1, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLimiter(tt.limit)
			if l == nil {
				t.Fatal("NewLimiter returned nil")
			}
			remaining, limit, _ := l.Status()
			if limit != tt.expectedLimit {
				t.Errorf("expected limit %d, got %d", tt.expectedLimit, limit)
			}
			if remaining != tt.expectedLimit {
				t.Errorf("expected remaining %d, got %d", tt.expectedLimit, remaining)
			}
		})
	}
}

func TestLimiter_Wait(t *testing.T) {
	t.Run("immediate return when remaining > 0", func(t *testing.T) {
		l := NewLimiter(100)
		ctx := context.Background()

		start := time.Now()
		err := l.Wait(ctx)
		elapsed := time.Since(start)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if elapsed > 100*time.Millisecond {
			t.Errorf("Wait took too long: %v", elapsed)
		}

		remaining, _, _ := l.Status()
		if remaining != 99 {
			t.Errorf("expected remaining 99, got %d", remaining)
		}
	})

	t.Run("context cancellation while exhausted", func(t *testing.T) {
		l := NewLimiter(100)
		header := make(http.Header)
		header.Set("X-RateLimit-Remaining", "0")
		header.Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(1*time.Hour).Unix(), 10))
		l.UpdateFromHeaders(&http.Response{Header: header})

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		err := l.Wait(ctx)
		if err == nil {
			t.Error("expected error from canceled context")
		}
	})
}

func TestLimiter_UpdateFromHeaders(t *testing.T) {
	t.Run("GitHub style headers", func(t *testing.T) {
		l := NewLimiter(5000)
		resetTime := time.Now().Add(1 * time.Hour).Unix()

		header := make(http.Header)
		header.Set("X-RateLimit-Remaining", "4500")
		header.Set("X-RateLimit-Limit", "5000")
		header.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		resp := &http.Response{Header: header}

		l.UpdateFromHeaders(resp)

		remaining, limit, reset := l.Status()
		if remaining != 4500 {
			t.Errorf("expected remaining 4500, got %d", remaining)
		}
		if limit != 5000 {
			t.Errorf("expected limit 5000, got %d", limit)
		}
		if reset.Unix() != resetTime {
			t.Errorf("expected reset time %d, got %d", resetTime, reset.Unix())
		}
	})

	t.Run("GitLab style headers", func(t *testing.T) {
		l := NewLimiter(2000)
		resetTime := time.Now().Add(30 * time.Minute).Unix()

		header := make(http.Header)
		header.Set("RateLimit-Remaining", "1800")
		header.Set("RateLimit-Limit", "2000")
		header.Set("RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		resp := &http.Response{Header: header}

		l.UpdateFromHeaders(resp)

		remaining, limit, reset := l.Status()
		if remaining != 1800 {
			t.Errorf("expected remaining 1800, got %d", remaining)
		}
		if limit != 2000 {
			t.Errorf("expected limit 2000, got %d", limit)
		}
		if reset.Unix() != resetTime {
			t.Errorf("expected reset time %d, got %d", resetTime, reset.Unix())
		}
	})

	t.Run("Retry-After header", func(t *testing.T) {
		l := NewLimiter(5000)

		header := make(http.Header)
		header.Set("Retry-After", "30")

		resp := &http.Response{Header: header}

		l.UpdateFromHeaders(resp)
		// retryAfter is private, but affects Wait behavior
	})
}

func TestLimiter_Status(t *testing.T) {
	l := NewLimiter(1000)

	remaining, limit, resetTime := l.Status()

	if remaining != 1000 {
		t.Errorf("expected remaining 1000, got %d", remaining)
	}
	if limit != 1000 {
		t.Errorf("expected limit 1000, got %d", limit)
	}
	if resetTime.Before(time.Now()) {
		t.Error("expected reset time to be in the future")
	}
}
