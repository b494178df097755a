// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package httpapi

import "net/http"

const (
	acceptHeader    = "application/vnd.github+json"
	userAgentHeader = "repoharvest/1"
)

// authRoundTripper injects the Authorization/Accept/User-Agent headers
// spec.md §4.7 requires and feeds every response's rate-limit headers
// back into a shared HostLimiter, generalizing the teacher's
// provider-level oauth2.NewClient wiring (pkg/github/provider.go's
// initClient) into a transport any http.Client can use, so it composes
// with retryablehttp's own transport wrapping.
type authRoundTripper struct {
	token    string
	username string
	limiter  *HostLimiter
	next     http.RoundTripper
}

func (rt *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := rt.limiter.Wait(req); err != nil {
		return nil, err
	}

	req = req.Clone(req.Context())
	switch {
	case rt.token != "":
		req.Header.Set("Authorization", "Bearer "+rt.token)
	case rt.username != "":
		req.SetBasicAuth(rt.username, "")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", acceptHeader)
	}
	req.Header.Set("User-Agent", userAgentHeader)

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	rt.limiter.Observe(resp)
	return resp, nil
}
