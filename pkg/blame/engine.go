// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package blame

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"

	"github.com/archmagece/repoharvest/internal/gitcmd"
	"github.com/archmagece/repoharvest/pkg/records"
)

// FileResult is one file's blame outcome: either Lines is populated,
// or Err explains why the file couldn't be blamed. A path missing at
// HEAD is reported via Err rather than aborting the whole batch.
type FileResult struct {
	Path  string
	Lines []records.BlameLineRecord
	Err   error
}

// Engine blames files against HEAD with bounded parallelism.
type Engine struct {
	executor *gitcmd.Executor
	pool     *ants.Pool
	ownsPool bool
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	concurrency int
	pool        *ants.Pool
}

// WithConcurrency overrides the default runtime.NumCPU() parallelism.
// Ignored if WithPool is also given.
func WithConcurrency(n int) Option {
	return func(c *engineConfig) { c.concurrency = n }
}

// WithPool shares an existing ants.Pool (e.g. the Clone Engine's)
// instead of creating a dedicated one. The Engine will not release a
// shared pool on Close.
func WithPool(pool *ants.Pool) Option {
	return func(c *engineConfig) { c.pool = pool }
}

// New builds a blame Engine.
func New(opts ...Option) (*Engine, error) {
	cfg := engineConfig{concurrency: runtime.NumCPU()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}

	if cfg.pool != nil {
		return &Engine{executor: gitcmd.NewExecutor(), pool: cfg.pool, ownsPool: false}, nil
	}

	pool, err := ants.NewPool(cfg.concurrency)
	if err != nil {
		return nil, fmt.Errorf("blame: failed to create worker pool: %w", err)
	}
	return &Engine{executor: gitcmd.NewExecutor(), pool: pool, ownsPool: true}, nil
}

// Close releases the worker pool if this Engine created it.
func (e *Engine) Close() {
	if e.ownsPool {
		e.pool.Release()
	}
}

// BlameAll blames every path in paths against HEAD in repoPath,
// bounded by the Engine's concurrency. Results preserve the order of
// paths; a single file's failure does not prevent the others from
// completing.
func (e *Engine) BlameAll(ctx context.Context, repoPath string, paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	var wg sync.WaitGroup
	wg.Add(len(paths))

	for i, p := range paths {
		i, p := i, p
		submitErr := e.pool.Submit(func() {
			defer wg.Done()
			lines, err := e.blameOne(ctx, repoPath, p)
			if err != nil {
				results[i] = FileResult{Path: p, Err: &FileError{Path: p, Cause: err}}
				return
			}
			results[i] = FileResult{Path: p, Lines: lines}
		})
		if submitErr != nil {
			wg.Done()
			results[i] = FileResult{Path: p, Err: &FileError{Path: p, Cause: submitErr}}
		}
	}

	wg.Wait()
	return results
}

func (e *Engine) blameOne(ctx context.Context, repoPath, path string) ([]records.BlameLineRecord, error) {
	result, err := e.executor.Run(ctx, repoPath, "blame", "--porcelain", "HEAD", "--", path)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("git blame exited %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return parsePorcelain(result.Stdout)
}

var headerPattern = regexp.MustCompile(`^([0-9a-f]{7,40}) (\d+) (\d+)(?: (\d+))?$`)

type commitMeta struct {
	authorName  string
	authorEmail string
}

// parsePorcelain decodes `git blame --porcelain` output. A commit's
// author fields only appear the first time that SHA is mentioned in
// the stream; later hunks attributed to the same commit are cached.
func parsePorcelain(output string) ([]records.BlameLineRecord, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	meta := make(map[string]*commitMeta)
	var lines []records.BlameLineRecord

	var curSHA string
	var curOrig, curFinal int
	var cur *commitMeta

	for scanner.Scan() {
		line := scanner.Text()

		if m := headerPattern.FindStringSubmatch(line); m != nil {
			curSHA = m[1]
			curOrig, _ = strconv.Atoi(m[2])
			curFinal, _ = strconv.Atoi(m[3])
			if existing, ok := meta[curSHA]; ok {
				cur = existing
			} else {
				cur = &commitMeta{}
				meta[curSHA] = cur
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "author "):
			cur.authorName = strings.TrimPrefix(line, "author ")
		case strings.HasPrefix(line, "author-mail "):
			cur.authorEmail = strings.Trim(strings.TrimPrefix(line, "author-mail "), "<>")
		case strings.HasPrefix(line, "\t"):
			content := decodeUTF8Lenient(strings.TrimPrefix(line, "\t"))
			lines = append(lines, records.BlameLineRecord{
				SHA:            curSHA,
				AuthorName:     cur.authorName,
				AuthorEmail:    cur.authorEmail,
				OriginalLineNo: curOrig,
				FinalLineNo:    curFinal,
				Content:        content,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning blame output: %w", err)
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].FinalLineNo < lines[j].FinalLineNo
	})
	return lines, nil
}

// decodeUTF8Lenient replaces invalid UTF-8 byte sequences with the
// Unicode replacement character, since a file under blame may be
// encoded as anything and spec requires best-effort decoding rather
// than a hard failure.
func decodeUTF8Lenient(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
			i++
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}
