// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package manager implements the Manager Façade: the single entry
// point spec.md §4.1 describes, composing the Progress Registry, Clone
// Engine, Commit Walker, Blame Engine, Branch Inspector, HTTP Fetcher
// Core, and Domain Fetchers behind the operation set spec.md names.
package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/go-github/v66/github"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/archmagece/repoharvest/internal/telemetry"
	"github.com/archmagece/repoharvest/pkg/blame"
	"github.com/archmagece/repoharvest/pkg/branches"
	"github.com/archmagece/repoharvest/pkg/clone"
	"github.com/archmagece/repoharvest/pkg/cloneprogress"
	"github.com/archmagece/repoharvest/pkg/commitlog"
	"github.com/archmagece/repoharvest/pkg/credentials"
	"github.com/archmagece/repoharvest/pkg/githubapi"
	"github.com/archmagece/repoharvest/pkg/httpapi"
	"github.com/archmagece/repoharvest/pkg/records"
)

// Manager is the façade every caller drives. The zero value is not
// usable; construct with New and call Init before issuing operations.
type Manager struct {
	creds credentials.Credentials
	cfg   config

	registry *cloneprogress.Registry

	initOnce sync.Once
	initErr  error
	ready    bool

	cloneEngine     *clone.Engine
	walker          *commitlog.Walker
	blameEngine     *blame.Engine
	branchInspector *branches.Inspector

	collaborators *githubapi.CollaboratorsFetcher
	issues        *githubapi.IssuesFetcher
	pullRequests  *githubapi.PullRequestsFetcher
	codeReviews   *githubapi.CodeReviewsFetcher
	comments      *githubapi.CommentsFetcher

	logger telemetry.Logger
	sf     singleflight.Group
}

// New constructs a Manager tracking urls from the start, authenticated
// with token (may be empty if WithUsername supplies basic auth
// instead). Call Init before issuing any other operation.
func New(urls []string, token string, opts ...Option) *Manager {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	credOpts := []credentials.Option{credentials.WithNoCache(cfg.noCache), credentials.WithMaxPageCap(cfg.maxPagesDefault)}
	if cfg.username != "" {
		credOpts = append(credOpts, credentials.WithUsername(cfg.username))
	}

	m := &Manager{
		creds:    credentials.New(token, credOpts...),
		cfg:      cfg,
		registry: cloneprogress.NewRegistry(),
		logger:   cfg.logger,
	}
	m.Register(urls)
	return m
}

// Register extends the known URL set. Idempotent: re-registering a
// known URL does not reset its CloneState.
func (m *Manager) Register(urls []string) {
	for _, u := range urls {
		m.registry.Register(u)
	}
}

// Init builds every owned subsystem. It is idempotent and safe to call
// from multiple goroutines; only the first call does any work, and its
// error (if any) is returned by every subsequent call too.
func (m *Manager) Init() error {
	m.initOnce.Do(func() {
		m.initErr = m.init()
		m.ready = m.initErr == nil
	})
	return m.initErr
}

func (m *Manager) init() error {
	cloneEngine, err := clone.New(m.registry,
		clone.WithLogger(m.logger),
		clone.WithScratchRoot(m.cfg.scratchRoot),
		clone.WithConcurrency(m.cfg.cloneConcurrency),
	)
	if err != nil {
		return fmt.Errorf("manager: clone engine: %w", err)
	}
	m.cloneEngine = cloneEngine

	m.walker = commitlog.New()

	blameEngine, err := blame.New()
	if err != nil {
		return fmt.Errorf("manager: blame engine: %w", err)
	}
	m.blameEngine = blameEngine

	m.branchInspector = branches.New()

	httpClient := m.cfg.httpClient
	if httpClient == nil {
		httpClient = httpapi.NewClient(httpapi.Config{
			Token:       m.creds.Token(),
			Username:    m.creds.Username(),
			Concurrency: m.cfg.httpConcurrency,
		})
	}
	ghClient := github.NewClient(httpClient)

	concurrency := m.cfg.httpConcurrency
	m.collaborators = githubapi.NewCollaboratorsFetcher(ghClient, concurrency)
	m.issues = githubapi.NewIssuesFetcher(ghClient, concurrency)
	m.pullRequests = githubapi.NewPullRequestsFetcher(ghClient, concurrency)
	m.codeReviews = githubapi.NewCodeReviewsFetcher(ghClient, concurrency)
	m.comments = githubapi.NewCommentsFetcher(ghClient, concurrency)

	return nil
}

func (m *Manager) checkReady() error {
	if !m.ready {
		return ErrRuntimeNotInitialized
	}
	return nil
}

// resolveMaxPages applies the Manager's configured default when a
// caller passes a non-positive maxPages, matching max_pages=None's
// "unbounded, unless a default is configured" semantics.
func (m *Manager) resolveMaxPages(maxPages int) int {
	if maxPages > 0 {
		return maxPages
	}
	return m.cfg.maxPagesDefault
}

// Clone ensures url is known, transitions it Queued->Cloning, and
// blocks until it reaches a terminal CloneState. The returned error
// reports only a synchronous failure to dispatch the Clone Engine
// (e.g. ErrRuntimeNotInitialized); a failed clone is reported via the
// returned CloneState's Failed phase, not a non-nil error, so callers
// that want fire-and-forget semantics can ignore it and poll
// FetchCloneTasks instead.
func (m *Manager) Clone(ctx context.Context, url string) (records.CloneState, error) {
	if err := m.checkReady(); err != nil {
		return records.CloneState{}, err
	}
	m.registry.Register(url)

	// The Clone Engine always leaves a terminal state in the registry
	// even on failure, so its error is not returned here: the caller
	// sees the failure as the Failed state read back from the registry.
	// Reset runs inside the singleflight func so only the call that
	// actually dispatches the Clone Engine rewinds the registry to
	// Queued; a caller that merely joins an in-flight clone via
	// singleflight must never rewind a state some other goroutine is
	// concurrently progressing through Cloning.
	v, _, _ := m.sf.Do("clone:"+url, func() (any, error) {
		m.registry.Reset(url)
		_, _ = m.cloneEngine.Clone(ctx, url, m.creds)
		state, _ := m.registry.Get(url)
		return state, nil
	})
	return v.(records.CloneState), nil
}

// CloneAll invokes Clone on every known URL concurrently. It never
// fails as a whole; individual failures are observable only via
// FetchCloneTasks, per spec.md §4.1.
func (m *Manager) CloneAll(ctx context.Context) (map[string]records.CloneState, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}

	snapshot := m.registry.Snapshot()
	out := make(map[string]records.CloneState, len(snapshot))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for url := range snapshot {
		url := url
		g.Go(func() error {
			state, _ := m.Clone(gctx, url)
			mu.Lock()
			out[url] = state
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// FetchCloneTasks snapshots the Progress Registry.
func (m *Manager) FetchCloneTasks() (map[string]records.CloneTaskView, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	return m.registry.Snapshot(), nil
}

// completedScratchPath returns url's scratch path, requiring
// CloneState=Completed.
func (m *Manager) completedScratchPath(url string) (string, error) {
	state, known := m.registry.Get(url)
	if !known {
		return "", ErrUnknownURL
	}
	if state.Phase != records.PhaseCompleted {
		return "", ErrNotCloned
	}
	return state.ScratchPath, nil
}

// AnalyzeCommits requires CloneState=Completed for url and returns its
// full reachable commit history via the Commit Walker.
func (m *Manager) AnalyzeCommits(ctx context.Context, url string) ([]records.CommitRecord, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	scratchPath, err := m.completedScratchPath(url)
	if err != nil {
		return nil, err
	}

	v, err, _ := m.sf.Do("commits:"+url, func() (any, error) {
		return m.walker.Walk(ctx, scratchPath, repoNameFromURL(url))
	})
	if err != nil {
		return nil, err
	}
	return v.([]records.CommitRecord), nil
}

// BulkBlame requires CloneState=Completed for url and blames every
// path in it, in parallel. Unknown paths yield a per-path error entry;
// the operation itself never fails for that reason.
func (m *Manager) BulkBlame(ctx context.Context, url string, paths []string) (map[string]records.BlameResult, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	scratchPath, err := m.completedScratchPath(url)
	if err != nil {
		return nil, err
	}

	results := m.blameEngine.BlameAll(ctx, scratchPath, paths)
	out := make(map[string]records.BlameResult, len(results))
	for _, r := range results {
		if r.Err != nil {
			out[r.Path] = records.BlameResult{Err: r.Err.Error()}
			continue
		}
		out[r.Path] = records.BlameResult{Lines: r.Lines}
	}
	return out, nil
}

// AnalyzeBranches requires CloneState=Completed for each URL in urls
// and returns a per-URL mapping of branch lists or error strings.
func (m *Manager) AnalyzeBranches(ctx context.Context, urls []string) (map[string]records.BranchResult, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}

	out := make(map[string]records.BranchResult, len(urls))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, url := range urls {
		url := url
		g.Go(func() error {
			var result records.BranchResult
			scratchPath, err := m.completedScratchPath(url)
			if err != nil {
				result.Err = err.Error()
			} else if branchList, err := m.branchInspector.Inspect(gctx, scratchPath); err != nil {
				result.Err = err.Error()
			} else {
				result.Branches = branchList
			}
			mu.Lock()
			out[url] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// FetchCollaborators lists collaborators for every URL.
func (m *Manager) FetchCollaborators(ctx context.Context, urls []string, maxPages int) (map[string]records.CollaboratorResult, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	return m.collaborators.FetchAll(ctx, urls, m.resolveMaxPages(maxPages)), nil
}

// FetchIssues lists issues (including PRs, tagged) for every URL.
func (m *Manager) FetchIssues(ctx context.Context, urls []string, state records.IssueOrPRState, maxPages int) (map[string]records.IssueResult, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	return m.issues.FetchAll(ctx, urls, state, m.resolveMaxPages(maxPages))
}

// FetchPullRequests lists enriched pull requests for every URL.
func (m *Manager) FetchPullRequests(ctx context.Context, urls []string, state records.IssueOrPRState, maxPages int) (map[string]records.PullRequestResult, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	return m.pullRequests.FetchAll(ctx, urls, state, m.resolveMaxPages(maxPages))
}

// FetchCodeReviews lists reviews per pull request for every URL.
func (m *Manager) FetchCodeReviews(ctx context.Context, urls []string, maxPages int) (map[string]records.CodeReviewResult, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	return m.codeReviews.FetchAll(ctx, urls, m.resolveMaxPages(maxPages)), nil
}

// FetchComments lists comments across the requested comment types for
// every URL. An empty commentTypes queries all four endpoints.
func (m *Manager) FetchComments(ctx context.Context, urls []string, commentTypes []records.CommentType, maxPages int) (map[string]records.CommentResult, error) {
	if err := m.checkReady(); err != nil {
		return nil, err
	}
	return m.comments.FetchAll(ctx, urls, commentTypes, m.resolveMaxPages(maxPages)), nil
}

// Close releases the Clone and Blame Engines' worker pools.
func (m *Manager) Close() {
	if m.cloneEngine != nil {
		m.cloneEngine.Close()
	}
	if m.blameEngine != nil {
		m.blameEngine.Close()
	}
}

func repoNameFromURL(url string) string {
	if owner, repo, err := githubapi.ParseRepoURL(url); err == nil {
		return owner + "/" + repo
	}
	return url
}
