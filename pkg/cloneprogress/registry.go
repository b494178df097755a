// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package cloneprogress implements the Progress Registry: a concurrent
// map from repository URL to its current CloneState. Readers take a
// snapshot without blocking writers for longer than the cost of copying
// one entry; writers update a single entry under that entry's own lock,
// never a map-wide one.
package cloneprogress

import (
	"sync"

	"github.com/archmagece/repoharvest/pkg/records"
)

// entry guards one URL's CloneState independently of every other entry.
type entry struct {
	mu    sync.Mutex
	state records.CloneState
}

// Registry is the Progress Registry. The zero value is not usable; use
// NewRegistry.
type Registry struct {
	entries sync.Map // map[string]*entry
}

// NewRegistry creates an empty Progress Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) entryFor(url string) *entry {
	v, _ := r.entries.LoadOrStore(url, &entry{state: records.QueuedState()})
	return v.(*entry)
}

// Register ensures url has a tracked entry, defaulting to Queued. It is
// idempotent: re-registering a known URL does not reset its state.
func (r *Registry) Register(url string) {
	r.entryFor(url)
}

// Get returns the current CloneState for url and whether it is known.
func (r *Registry) Get(url string) (records.CloneState, bool) {
	v, ok := r.entries.Load(url)
	if !ok {
		return records.CloneState{}, false
	}
	e := v.(*entry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, true
}

// Snapshot returns a point-in-time copy of every tracked URL's state.
// Each entry is individually consistent; the snapshot as a whole is not
// atomic across entries, per spec.
func (r *Registry) Snapshot() map[string]records.CloneTaskView {
	out := make(map[string]records.CloneTaskView)
	r.entries.Range(func(k, v any) bool {
		url := k.(string)
		e := v.(*entry)
		e.mu.Lock()
		state := e.state
		e.mu.Unlock()
		out[url] = records.CloneTaskView{URL: url, State: state}
		return true
	})
	return out
}

// Reset transitions url back to Queued, atomically, regardless of its
// current state. This is what issuing a new clone(url) call does.
func (r *Registry) Reset(url string) {
	e := r.entryFor(url)
	e.mu.Lock()
	e.state = records.QueuedState()
	e.mu.Unlock()
}

// MarkCloning transitions url to Cloning at the given progress. Only
// valid coming from Queued or an existing Cloning state; the Clone
// Engine is the only caller.
func (r *Registry) MarkCloning(url string, progress int) {
	e := r.entryFor(url)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsTerminal() {
		return
	}
	e.state = records.CloningState(progress)
}

// UpdateProgress applies a new progress percentage within Cloning.
// Updates with a lower percentage than the current value are dropped
// (monotonic progress); updates after a terminal state are dropped too.
func (r *Registry) UpdateProgress(url string, progress int) {
	e := r.entryFor(url)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.IsTerminal() {
		return
	}
	if progress < e.state.Progress {
		return
	}
	e.state = records.CloningState(progress)
}

// MarkCompleted transitions url to the terminal Completed state.
func (r *Registry) MarkCompleted(url, scratchPath string) {
	e := r.entryFor(url)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = records.CompletedState(scratchPath)
}

// MarkFailed transitions url to the terminal Failed state.
func (r *Registry) MarkFailed(url, message string) {
	e := r.entryFor(url)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = records.FailedState(message)
}
