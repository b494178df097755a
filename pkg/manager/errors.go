// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package manager

import "errors"

// Sentinel errors for Manager operations, in the teacher's
// errors.New-sentinel style (pkg/branch/errors.go, pkg/history/errors.go).
var (
	// ErrRuntimeNotInitialized indicates an operation was called before
	// Init(). This is a programmer error, not a per-target one: it
	// fails the whole call synchronously, per spec.md §4.1's "a fatal
	// initialization error... fails the operation synchronously."
	ErrRuntimeNotInitialized = errors.New("manager: runtime not initialized, call Init() first")

	// ErrUnknownURL indicates an operation named a URL that was never
	// passed to Register or the Manager's initial URL list.
	ErrUnknownURL = errors.New("manager: unknown repository URL")

	// ErrNotCloned indicates an operation that requires
	// CloneState=Completed was called on a URL that hasn't reached
	// that state yet.
	ErrNotCloned = errors.New("manager: repository is not in a completed clone state")

	// ErrMissingCredential indicates neither a token nor a username was
	// configured, and an operation needs one.
	ErrMissingCredential = errors.New("manager: no credential configured")
)
