// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRoundTripper_InjectsBearerToken(t *testing.T) {
	var gotAuth, gotAccept, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rt := &authRoundTripper{
		token:   "secret-token",
		limiter: NewHostLimiter(5000),
		next:    http.DefaultTransport,
	}
	client := &http.Client{Transport: rt}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, acceptHeader, gotAccept)
	assert.Equal(t, userAgentHeader, gotUA)
}

func TestAuthRoundTripper_BasicAuthWhenNoToken(t *testing.T) {
	var gotUser string
	var gotOK bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var pw string
		gotUser, pw, gotOK = r.BasicAuth()
		_ = pw
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rt := &authRoundTripper{
		username: "alice",
		limiter:  NewHostLimiter(5000),
		next:     http.DefaultTransport,
	}
	client := &http.Client{Transport: rt}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.True(t, gotOK)
	assert.Equal(t, "alice", gotUser)
}

func TestAuthRoundTripper_FeedsRateLimitHeadersToLimiter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "42")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	limiter := NewHostLimiter(5000)
	rt := &authRoundTripper{token: "t", limiter: limiter, next: http.DefaultTransport}
	client := &http.Client{Transport: rt}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	hostLimiter := limiter.forHost(resp.Request.URL.Host)
	remaining, limit, _ := hostLimiter.Status()
	assert.Equal(t, 42, remaining)
	assert.Equal(t, 5000, limit)
}
