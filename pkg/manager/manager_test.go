// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package manager

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archmagece/repoharvest/internal/testutil"
	"github.com/archmagece/repoharvest/pkg/records"
)

func TestManager_OperationsFailBeforeInit(t *testing.T) {
	m := New(nil, "")

	_, err := m.Clone(context.Background(), "https://github.com/o/r")
	assert.ErrorIs(t, err, ErrRuntimeNotInitialized)

	_, err = m.FetchCloneTasks()
	assert.ErrorIs(t, err, ErrRuntimeNotInitialized)

	_, err = m.AnalyzeCommits(context.Background(), "https://github.com/o/r")
	assert.ErrorIs(t, err, ErrRuntimeNotInitialized)

	_, err = m.FetchCollaborators(context.Background(), nil, 0)
	assert.ErrorIs(t, err, ErrRuntimeNotInitialized)
}

func TestManager_InitIsIdempotent(t *testing.T) {
	m := New(nil, "", WithScratchRoot(t.TempDir()))
	require.NoError(t, m.Init())
	require.NoError(t, m.Init())
	t.Cleanup(m.Close)
}

func TestManager_CloneLifecycleReachesCompleted(t *testing.T) {
	origin := testutil.TempGitRepoWithCommit(t)

	m := New([]string{origin}, "", WithScratchRoot(t.TempDir()))
	require.NoError(t, m.Init())
	t.Cleanup(m.Close)

	state, err := m.Clone(context.Background(), origin)
	require.NoError(t, err)
	assert.Equal(t, records.PhaseCompleted, state.Phase)
	assert.NotEmpty(t, state.ScratchPath)

	tasks, err := m.FetchCloneTasks()
	require.NoError(t, err)
	assert.Equal(t, records.PhaseCompleted, tasks[origin].State.Phase)
}

func TestManager_ReCloneResetsFromTerminalState(t *testing.T) {
	origin := testutil.TempGitRepoWithCommit(t)

	m := New([]string{origin}, "", WithScratchRoot(t.TempDir()))
	require.NoError(t, m.Init())
	t.Cleanup(m.Close)

	first, err := m.Clone(context.Background(), origin)
	require.NoError(t, err)
	require.Equal(t, records.PhaseCompleted, first.Phase)
	firstScratch := first.ScratchPath

	// Re-cloning an already-terminal URL must run the Clone Engine
	// again (a fresh scratch directory, not the stale Completed value
	// returned untouched) rather than short-circuiting on the old
	// terminal state.
	second, err := m.Clone(context.Background(), origin)
	require.NoError(t, err)
	assert.Equal(t, records.PhaseCompleted, second.Phase)
	assert.NotEmpty(t, second.ScratchPath)
	assert.NotEqual(t, firstScratch, second.ScratchPath)

	tasks, err := m.FetchCloneTasks()
	require.NoError(t, err)
	assert.Equal(t, records.PhaseCompleted, tasks[origin].State.Phase)
	assert.Equal(t, second.ScratchPath, tasks[origin].State.ScratchPath)
}

func TestManager_CloneAllNeverFailsAsWhole(t *testing.T) {
	good := testutil.TempGitRepoWithCommit(t)
	bad := "/nonexistent/not-a-repo"

	m := New([]string{good, bad}, "", WithScratchRoot(t.TempDir()))
	require.NoError(t, m.Init())
	t.Cleanup(m.Close)

	states, err := m.CloneAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records.PhaseCompleted, states[good].Phase)
	assert.Equal(t, records.PhaseFailed, states[bad].Phase)
}

func TestManager_AnalyzeCommitsRequiresCompletedClone(t *testing.T) {
	m := New([]string{"https://github.com/o/r"}, "", WithScratchRoot(t.TempDir()))
	require.NoError(t, m.Init())
	t.Cleanup(m.Close)

	_, err := m.AnalyzeCommits(context.Background(), "https://github.com/o/r")
	assert.ErrorIs(t, err, ErrNotCloned)

	_, err = m.AnalyzeCommits(context.Background(), "https://github.com/unknown/repo")
	assert.ErrorIs(t, err, ErrUnknownURL)
}

func TestManager_AnalyzeCommitsWalksClonedRepo(t *testing.T) {
	origin := testutil.TempGitRepoWithCommit(t)

	m := New([]string{origin}, "", WithScratchRoot(t.TempDir()))
	require.NoError(t, m.Init())
	t.Cleanup(m.Close)

	_, err := m.Clone(context.Background(), origin)
	require.NoError(t, err)

	commits, err := m.AnalyzeCommits(context.Background(), origin)
	require.NoError(t, err)
	assert.Len(t, commits, 1)
}

func TestManager_AnalyzeBranchesIsolatesPerURLErrors(t *testing.T) {
	origin := testutil.TempGitRepoWithCommit(t)

	m := New([]string{origin, "https://github.com/unknown/repo"}, "", WithScratchRoot(t.TempDir()))
	require.NoError(t, m.Init())
	t.Cleanup(m.Close)

	_, err := m.Clone(context.Background(), origin)
	require.NoError(t, err)

	results, err := m.AnalyzeBranches(context.Background(), []string{origin, "https://github.com/unknown/repo"})
	require.NoError(t, err)
	assert.Empty(t, results[origin].Err)
	assert.NotEmpty(t, results["https://github.com/unknown/repo"].Err)
}

func newFakeGitHubServer(t *testing.T, handler http.HandlerFunc) *Manager {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	// go-github's default BaseURL is https://api.github.com; redirect every
	// request to the test server instead of trying to repoint BaseURL.
	redirecting := &http.Client{Transport: redirectTransport{target: srv.URL}}
	m := New(nil, "token", WithScratchRoot(t.TempDir()), WithHTTPClient(redirecting))
	require.NoError(t, m.Init())
	t.Cleanup(m.Close)
	return m
}

// redirectTransport sends every request to target regardless of the
// original host, letting tests hand the go-github client a real
// *http.Client while still using a relative BaseURL ("/").
type redirectTransport struct {
	target string
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	u, err := req.URL.Parse(rt.target + req.URL.Path)
	if err != nil {
		return nil, err
	}
	u.RawQuery = req.URL.RawQuery
	clone.URL = u
	clone.Host = u.Host
	return http.DefaultTransport.RoundTrip(clone)
}

func TestManager_FetchCollaboratorsReturnsMappedResult(t *testing.T) {
	m := newFakeGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"login": "alice", "id": 1, "permissions": map[string]bool{"admin": true}},
		})
	})

	results, err := m.FetchCollaborators(context.Background(), []string{"https://github.com/o/r"}, 0)
	require.NoError(t, err)
	require.Empty(t, results["https://github.com/o/r"].Err)
	require.Len(t, results["https://github.com/o/r"].Collaborators, 1)
	assert.Equal(t, "alice", results["https://github.com/o/r"].Collaborators[0].Login)
}

func TestManager_FetchIssuesRejectsInvalidState(t *testing.T) {
	m := newFakeGitHubServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	})

	_, err := m.FetchIssues(context.Background(), []string{"https://github.com/o/r"}, "bogus", 0)
	require.Error(t, err)
}
