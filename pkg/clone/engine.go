// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package clone implements the Clone Engine: given a repository URL and
// credentials, it allocates a scratch directory, shells out to git to
// populate it, streams progress into a Progress Registry, and reports
// a terminal CloneState. Concurrency is bounded by a worker pool so a
// caller can fan out over hundreds of URLs without spawning hundreds
// of git processes at once.
package clone

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/archmagece/repoharvest/internal/gitcmd"
	"github.com/archmagece/repoharvest/internal/telemetry"
	"github.com/archmagece/repoharvest/pkg/cloneprogress"
	"github.com/archmagece/repoharvest/pkg/credentials"
)

// progressPattern matches git's "Counting objects", "Compressing
// objects", "Receiving objects" and "Resolving deltas" side-band lines
// ("<phase>: NN% (x/y)"). All phases are mapped onto the same 0-100
// scale; because the Progress Registry drops any value lower than the
// last one recorded, a phase that restarts from a lower percentage
// leaves the reported progress unchanged until it catches up.
var progressPattern = regexp.MustCompile(`(?:Receiving objects|Resolving deltas|Counting objects|Compressing objects):\s+(\d{1,3})%`)

// Engine clones repositories into scratch directories with bounded
// concurrency. The zero value is not usable; construct with New.
type Engine struct {
	executor    *gitcmd.Executor
	registry    *cloneprogress.Registry
	pool        *ants.Pool
	scratchRoot string
	logger      telemetry.Logger
	throttle    time.Duration
}

// Option configures an Engine at construction time.
type Option func(*engineConfig)

type engineConfig struct {
	concurrency int
	scratchRoot string
	gitBinary   string
	logger      telemetry.Logger
	throttle    time.Duration
}

// WithConcurrency overrides the default min(8, NumCPU) clone
// concurrency limit. A non-positive n keeps the default.
func WithConcurrency(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithScratchRoot overrides the OS temp directory as the parent of
// every scratch directory this Engine allocates.
func WithScratchRoot(dir string) Option {
	return func(c *engineConfig) { c.scratchRoot = dir }
}

// WithGitBinary overrides the "git" binary resolved from PATH.
func WithGitBinary(path string) Option {
	return func(c *engineConfig) { c.gitBinary = path }
}

// WithLogger sets the Logger used for clone lifecycle events.
func WithLogger(l telemetry.Logger) Option {
	return func(c *engineConfig) { c.logger = l }
}

// WithProgressThrottle overrides the 100ms default interval between
// Progress Registry updates.
func WithProgressThrottle(d time.Duration) Option {
	return func(c *engineConfig) { c.throttle = d }
}

// New builds an Engine reporting into registry. registry must not be
// nil.
func New(registry *cloneprogress.Registry, opts ...Option) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("clone: registry must not be nil")
	}

	cfg := engineConfig{
		concurrency: defaultConcurrency(),
		gitBinary:   "git",
		logger:      telemetry.NoopLogger{},
		throttle:    100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.scratchRoot == "" {
		cfg.scratchRoot = os.TempDir()
	}

	pool, err := ants.NewPool(cfg.concurrency, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("clone: failed to create worker pool: %w", err)
	}

	return &Engine{
		executor:    gitcmd.NewExecutor(gitcmd.WithGitBinary(cfg.gitBinary)),
		registry:    registry,
		pool:        pool,
		scratchRoot: cfg.scratchRoot,
		logger:      cfg.logger,
		throttle:    cfg.throttle,
	}, nil
}

func defaultConcurrency() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	if n < 1 {
		return 1
	}
	return n
}

// Close releases the worker pool. Calling it while clones are
// in-flight blocks until they drain.
func (e *Engine) Close() {
	e.pool.Release()
}

// Clone clones url into a freshly allocated scratch directory and
// blocks until the repository reaches a terminal CloneState, which is
// also pushed to the Engine's Progress Registry as the clone
// progresses. Excess calls beyond the configured concurrency queue in
// the worker pool's FIFO. Cancelling ctx abandons the clone after the
// current git process exits (SIGTERM, then SIGKILL after 5s); the
// partially-written scratch directory is left on disk for the caller
// to sweep.
func (e *Engine) Clone(ctx context.Context, repoURL string, creds credentials.Credentials) (scratchPath string, err error) {
	e.registry.MarkCloning(repoURL, 0)

	type outcome struct {
		path string
		err  error
	}
	done := make(chan outcome, 1)

	submitErr := e.pool.Submit(func() {
		path, cloneErr := e.runClone(ctx, repoURL, creds.Token(), creds.Username())
		done <- outcome{path: path, err: cloneErr}
	})
	if submitErr != nil {
		e.registry.MarkFailed(repoURL, submitErr.Error())
		return "", fmt.Errorf("clone: failed to submit job for %s: %w", repoURL, submitErr)
	}

	out := <-done
	if out.err != nil {
		e.registry.MarkFailed(repoURL, out.err.Error())
		return "", out.err
	}
	e.registry.MarkCompleted(repoURL, out.path)
	return out.path, nil
}

func (e *Engine) runClone(ctx context.Context, repoURL, token, username string) (string, error) {
	scratchDir, err := e.allocateScratchDir(repoURL)
	if err != nil {
		return "", fmt.Errorf("clone: scratch dir allocation failed: %w", err)
	}

	cloneURL, err := injectCredentials(repoURL, token, username)
	if err != nil {
		return "", fmt.Errorf("clone: %w", err)
	}

	e.logger.Info("clone starting", "url", repoURL, "scratch", scratchDir)

	var lastReported time.Time
	onLine := func(line string) {
		m := progressPattern.FindStringSubmatch(line)
		if m == nil {
			return
		}
		pct, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			return
		}
		now := time.Now()
		if now.Sub(lastReported) < e.throttle {
			return
		}
		lastReported = now
		e.registry.UpdateProgress(repoURL, pct)
	}

	result, err := e.executor.StreamStderr(ctx, scratchDir, onLine,
		"clone", "--progress", "--no-checkout", cloneURL, ".")

	if err != nil {
		return "", &Error{URL: repoURL, Cause: err}
	}
	if result.ExitCode != 0 {
		e.logger.Warn("clone failed", "url", repoURL, "exitCode", result.ExitCode)
		return "", &Error{
			URL:      repoURL,
			ExitCode: result.ExitCode,
			Stderr:   redactCredentials(lastNonEmptyLine(result.Stderr)),
		}
	}

	e.registry.UpdateProgress(repoURL, 100)
	e.logger.Info("clone completed", "url", repoURL, "scratch", scratchDir)
	return scratchDir, nil
}

// allocateScratchDir creates a fresh empty directory under the
// Engine's scratch root, unique per (repository, attempt) so two
// concurrent clones of the same URL (e.g. from two Manager instances)
// never collide.
func (e *Engine) allocateScratchDir(repoURL string) (string, error) {
	name := sanitizeForDirName(repoURL)
	if err := os.MkdirAll(e.scratchRoot, 0o755); err != nil {
		return "", err
	}
	return os.MkdirTemp(e.scratchRoot, "repoharvest-"+name+"-*")
}

func sanitizeForDirName(repoURL string) string {
	replacer := strings.NewReplacer("/", "-", ":", "-", "@", "-", "\\", "-")
	name := replacer.Replace(repoURL)
	if len(name) > 48 {
		name = name[len(name)-48:]
	}
	return name
}

// injectCredentials rewrites an HTTPS clone URL to carry a bearer
// token (GitHub's x-access-token convention) or basic-auth username,
// never touching the argv the caller passed in. The rewritten URL is
// handed straight to exec.Command and is never logged; callers must
// not log the return value either.
func injectCredentials(repoURL, token, username string) (string, error) {
	if token == "" {
		return repoURL, nil
	}
	if err := gitcmd.SanitizeURL(repoURL); err != nil {
		return "", err
	}
	if !strings.HasPrefix(repoURL, "https://") && !strings.HasPrefix(repoURL, "http://") {
		// Credential injection only applies to HTTPS/HTTP remotes; SSH
		// remotes authenticate via the user's own key material.
		return repoURL, nil
	}

	parsed, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("invalid clone URL: %w", err)
	}

	user := username
	if user == "" {
		user = "x-access-token"
	}
	parsed.User = url.UserPassword(user, token)
	return parsed.String(), nil
}

// userinfoPattern matches the user:pass@ portion of a URL so it can be
// stripped from anything bound for a Failed CloneState's error message
// or a log line. Git itself usually masks credentials it echoes back
// in fatal errors, but this is the second layer.
var userinfoPattern = regexp.MustCompile(`://[^/@\s]+@`)

func redactCredentials(line string) string {
	return userinfoPattern.ReplaceAllString(line, "://")
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return strings.TrimSpace(lines[i])
		}
	}
	return ""
}
