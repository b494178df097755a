// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package branches

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/archmagece/repoharvest/internal/gitcmd"
	"github.com/archmagece/repoharvest/pkg/records"
)

const fieldSep = "\x1f"

var refFormat = strings.Join([]string{
	"%(refname)", "%(objectname)", "%(contents:subject)",
	"%(authorname)", "%(authoremail)", "%(authordate:unix)",
}, fieldSep)

// Inspector enumerates branches and remote-tracking refs.
type Inspector struct {
	executor *gitcmd.Executor
}

// New builds an Inspector.
func New() *Inspector {
	return &Inspector{executor: gitcmd.NewExecutor()}
}

// Inspect enumerates refs/heads/* (IsRemote=false) and refs/remotes/*
// (IsRemote=true), excluding refs/remotes/*/HEAD symbolic refs, and
// marks the branch matching the symbolic HEAD target with IsHead. If
// HEAD is detached, no record carries IsHead=true.
func (i *Inspector) Inspect(ctx context.Context, repoPath string) ([]records.BranchRecord, error) {
	lines, err := i.executor.RunLines(ctx, repoPath,
		"for-each-ref", "--format="+refFormat, "refs/heads", "refs/remotes")
	if err != nil {
		return nil, &InspectError{Cause: fmt.Errorf("enumerating refs: %w", err)}
	}

	headBranch, detached := i.currentHead(ctx, repoPath)

	out := make([]records.BranchRecord, 0, len(lines))
	for _, line := range lines {
		rec, ok, parseErr := parseRefLine(line)
		if parseErr != nil {
			return nil, &InspectError{Cause: parseErr}
		}
		if !ok {
			continue
		}
		if !detached && !rec.IsRemote && rec.Name == headBranch {
			rec.IsHead = true
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRefLine(line string) (records.BranchRecord, bool, error) {
	fields := strings.SplitN(line, fieldSep, 6)
	if len(fields) != 6 {
		return records.BranchRecord{}, false, fmt.Errorf("malformed for-each-ref line: %q", line)
	}
	refname := fields[0]

	var name string
	var isRemote bool
	switch {
	case strings.HasPrefix(refname, "refs/heads/"):
		name = strings.TrimPrefix(refname, "refs/heads/")
		isRemote = false
	case strings.HasPrefix(refname, "refs/remotes/"):
		name = strings.TrimPrefix(refname, "refs/remotes/")
		isRemote = true
		if strings.HasSuffix(name, "/HEAD") {
			// Symbolic pointer to the remote's default branch, not a
			// real ref.
			return records.BranchRecord{}, false, nil
		}
	default:
		return records.BranchRecord{}, false, nil
	}

	authorTime, _ := strconv.ParseInt(fields[5], 10, 64)

	return records.BranchRecord{
		Name:            name,
		IsRemote:        isRemote,
		TipSHA:          fields[1],
		TipShortMessage: fields[2],
		TipAuthorName:   fields[3],
		TipAuthorEmail:  strings.Trim(fields[4], "<>"),
		TipAuthorTime:   authorTime,
	}, true, nil
}

// currentHead returns the name of the branch HEAD points to, and
// whether HEAD is detached. It mirrors the teacher's
// rev-parse --abbrev-ref HEAD check: a literal "HEAD" result means
// detached.
func (i *Inspector) currentHead(ctx context.Context, repoPath string) (string, bool) {
	name, err := i.executor.RunOutput(ctx, repoPath, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || name == "HEAD" || name == "" {
		return "", true
	}
	return name, false
}
