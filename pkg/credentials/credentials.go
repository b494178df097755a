// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package credentials holds the immutable bundle a Manager is
// constructed with: username, bearer token, cache-disable flag, and an
// optional default page cap. Nothing in this package ever logs the
// token; String and GoString are overridden so a stray fmt.Printf or
// %+v in a log statement can't leak it.
package credentials

import "fmt"

// Credentials is an immutable bundle of authentication and behavior
// settings shared by every subsystem a Manager owns. Once constructed
// it is never mutated; SetToken-style updates in the teacher's provider
// packages are replaced here by constructing a new Credentials and a
// new Manager, since spec.md treats "credentials live in an immutable
// config object" as an invariant, not a convenience.
type Credentials struct {
	username    string
	token       string
	noCache     bool
	maxPageCap  int // 0 means unbounded; mirrors max_pages=None
}

// Option configures a Credentials bundle at construction time.
type Option func(*Credentials)

// WithUsername sets the basic-auth username used when token is empty.
func WithUsername(username string) Option {
	return func(c *Credentials) {
		c.username = username
	}
}

// WithNoCache disables the no-op on-disk cache switch. The core never
// persists API responses beyond a Manager's lifetime regardless (see
// spec.md Non-goals), so this flag only exists to be threaded through
// to a future cache layer without an API break.
func WithNoCache(noCache bool) Option {
	return func(c *Credentials) {
		c.noCache = noCache
	}
}

// WithMaxPageCap sets a default max_pages applied when a fetch call
// does not specify its own. 0 (the zero value) means unbounded.
func WithMaxPageCap(pages int) Option {
	return func(c *Credentials) {
		c.maxPageCap = pages
	}
}

// New builds an immutable Credentials bundle. token may be empty; when
// it is, and username is set, basic auth is used instead of bearer auth
// (see pkg/httpapi).
func New(token string, opts ...Option) Credentials {
	c := Credentials{token: token}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Username returns the configured basic-auth username, or "".
func (c Credentials) Username() string { return c.username }

// Token returns the bearer token, or "".
func (c Credentials) Token() string { return c.token }

// NoCache reports whether the cache-disable flag was set.
func (c Credentials) NoCache() bool { return c.noCache }

// DefaultMaxPages returns the configured default page cap, or 0 for
// unbounded.
func (c Credentials) DefaultMaxPages() int { return c.maxPageCap }

// HasToken reports whether a bearer token is configured.
func (c Credentials) HasToken() bool { return c.token != "" }

// String never includes the token; it exists so Credentials can be
// embedded in structs that get logged or printed without risking a
// leak via %v / %+v.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{username:%q, hasToken:%v, noCache:%v, maxPageCap:%d}",
		c.username, c.HasToken(), c.noCache, c.maxPageCap)
}

// GoString mirrors String so %#v is equally safe.
func (c Credentials) GoString() string {
	return c.String()
}
