// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package httpapi

import (
	"net/http"
	"sync"

	"github.com/archmagece/repoharvest/pkg/ratelimit"
)

// HostLimiter generalizes the teacher's single pkg/ratelimit.Limiter
// into one limiter per host, so unrelated hosting services (or a
// future GitLab/Gitea client sharing this transport) never contend on
// the same reset-time bookkeeping.
type HostLimiter struct {
	mu       sync.Mutex
	perHost  map[string]*ratelimit.Limiter
	newLimit int
}

// NewHostLimiter builds a HostLimiter. defaultLimit seeds each
// newly-seen host's budget before its first response headers arrive.
func NewHostLimiter(defaultLimit int) *HostLimiter {
	return &HostLimiter{
		perHost:  make(map[string]*ratelimit.Limiter),
		newLimit: defaultLimit,
	}
}

func (h *HostLimiter) forHost(host string) *ratelimit.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.perHost[host]
	if !ok {
		l = ratelimit.NewLimiter(h.newLimit)
		h.perHost[host] = l
	}
	return l
}

// Wait blocks until req's host is allowed to proceed.
func (h *HostLimiter) Wait(req *http.Request) error {
	return h.forHost(req.URL.Host).Wait(req.Context())
}

// Observe feeds resp's rate-limit headers back into the limiter for
// resp.Request's host.
func (h *HostLimiter) Observe(resp *http.Response) {
	h.forHost(resp.Request.URL.Host).UpdateFromHeaders(resp)
}
