// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package branches implements the Branch Inspector: it enumerates
// local and remote-tracking refs and resolves each one's tip commit,
// generalizing the teacher's local-only branch.List to also walk
// refs/remotes/* and resolve the symbolic HEAD target.
package branches

import "fmt"

// InspectError wraps a failure to enumerate or resolve refs.
type InspectError struct {
	Cause error
}

func (e *InspectError) Error() string {
	return fmt.Sprintf("branches: %v", e.Cause)
}

func (e *InspectError) Unwrap() error { return e.Cause }
