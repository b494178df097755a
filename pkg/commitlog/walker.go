// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package commitlog

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/archmagece/repoharvest/internal/gitcmd"
	"github.com/archmagece/repoharvest/pkg/records"
)

// unitSeparator and recordSeparator are the ASCII unit and record
// separator control bytes (0x1f, 0x1e), placed directly into the
// pretty-format string that git echoes back verbatim. They're safe
// delimiters because a commit message can contain
// '|' or any printable character but essentially never contains these
// control codes, so parsing never has to guess about escaping.
const (
	unitSeparator   = "\x1f"
	recordSeparator = "\x1e"
)

var logFormat = strings.Join([]string{
	"%H", "%P", "%an", "%ae", "%at", "%ai", "%cn", "%ce", "%ct", "%ci", "%B",
}, unitSeparator) + recordSeparator

// Walker discovers and extracts every commit reachable from any local
// branch of a cloned repository.
type Walker struct {
	executor *gitcmd.Executor
	shards   int
}

// Option configures a Walker.
type Option func(*Walker)

// WithShardCount overrides the default runtime.NumCPU() shard count
// used to parallelize the walk.
func WithShardCount(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.shards = n
		}
	}
}

// New builds a Walker.
func New(opts ...Option) *Walker {
	w := &Walker{
		executor: gitcmd.NewExecutor(),
		shards:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.shards < 1 {
		w.shards = 1
	}
	return w
}

// Walk enumerates every commit reachable from any ref in repoPath and
// returns CommitRecord for each, tagged with repoName. Order is
// deterministic: author timestamp descending, SHA ascending as a
// tiebreak, independent of shard scheduling.
func (w *Walker) Walk(ctx context.Context, repoPath, repoName string) ([]records.CommitRecord, error) {
	shas, err := w.executor.RunLines(ctx, repoPath, "rev-list", "--all")
	if err != nil {
		return nil, &WalkError{Cause: fmt.Errorf("discovering reachable commits: %w", err)}
	}
	if len(shas) == 0 {
		return nil, nil
	}

	shardCount := w.shards
	if shardCount > len(shas) {
		shardCount = len(shas)
	}
	shards := make([][]string, shardCount)
	for i, sha := range shas {
		idx := i % shardCount
		shards[idx] = append(shards[idx], sha)
	}

	results := make([][]records.CommitRecord, shardCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(shardCount)

	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			recs := make([]records.CommitRecord, 0, len(shard))
			for _, sha := range shard {
				rec, err := w.loadCommit(gctx, repoPath, repoName, sha)
				if err != nil {
					return err
				}
				recs = append(recs, rec)
			}
			results[i] = recs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []records.CommitRecord
	for _, shard := range results {
		out = append(out, shard...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AuthorTimestamp != out[j].AuthorTimestamp {
			return out[i].AuthorTimestamp > out[j].AuthorTimestamp
		}
		return out[i].SHA < out[j].SHA
	})
	return out, nil
}

func (w *Walker) loadCommit(ctx context.Context, repoPath, repoName, sha string) (records.CommitRecord, error) {
	result, err := w.executor.Run(ctx, repoPath,
		"show", "--format="+logFormat, "--numstat", "-m", "--first-parent", sha)
	if err != nil {
		return records.CommitRecord{}, &WalkError{SHA: sha, Cause: err}
	}
	if result.ExitCode != 0 {
		return records.CommitRecord{}, &WalkError{SHA: sha, Cause: fmt.Errorf("git show exited %d: %s", result.ExitCode, result.Stderr)}
	}

	rec, err := parseShowOutput(result.Stdout, repoName)
	if err != nil {
		return records.CommitRecord{}, &WalkError{SHA: sha, Cause: err}
	}
	return rec, nil
}

func parseShowOutput(output, repoName string) (records.CommitRecord, error) {
	sepIdx := strings.Index(output, recordSeparator)
	if sepIdx == -1 {
		return records.CommitRecord{}, fmt.Errorf("malformed git show output: missing record separator")
	}
	header := output[:sepIdx]
	numstatBlock := output[sepIdx+len(recordSeparator):]

	fields := strings.SplitN(header, unitSeparator, 11)
	if len(fields) != 11 {
		return records.CommitRecord{}, fmt.Errorf("malformed git show header: expected 11 fields, got %d", len(fields))
	}

	sha := fields[0]
	parents := strings.Fields(fields[1])
	authorTimestamp, _ := strconv.ParseInt(fields[4], 10, 64)
	authorOffset := parseISOOffsetMinutes(fields[5])
	committerTimestamp, _ := strconv.ParseInt(fields[8], 10, 64)
	committerOffset := parseISOOffsetMinutes(fields[9])
	message := strings.TrimRight(fields[10], "\n")

	additions, deletions := sumNumstat(numstatBlock)

	return records.CommitRecord{
		SHA:             sha,
		RepositoryName:  repoName,
		Message:         message,
		AuthorName:      fields[2],
		AuthorEmail:     fields[3],
		AuthorTimestamp: authorTimestamp,
		AuthorOffset:    authorOffset,
		CommitterName:   fields[6],
		CommitterEmail:  fields[7],
		CommitterTime:   committerTimestamp,
		CommitterOffset: committerOffset,
		Additions:       additions,
		Deletions:       deletions,
		IsMerge:         len(parents) >= 2,
	}, nil
}

// parseISOOffsetMinutes extracts the signed timezone offset, in
// minutes, from a %ai/%ci-formatted timestamp such as
// "2024-01-02 15:04:05 +0900".
func parseISOOffsetMinutes(iso string) int {
	t, err := time.Parse("2006-01-02 15:04:05 -0700", strings.TrimSpace(iso))
	if err != nil {
		return 0
	}
	_, offsetSeconds := t.Zone()
	return offsetSeconds / 60
}

func sumNumstat(block string) (additions, deletions int) {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		// Binary files report "-" for both columns.
		a, errA := strconv.Atoi(fields[0])
		d, errD := strconv.Atoi(fields[1])
		if errA != nil || errD != nil {
			continue
		}
		additions += a
		deletions += d
	}
	return additions, deletions
}
