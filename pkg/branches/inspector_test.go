// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package branches

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archmagece/repoharvest/internal/testutil"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=Test", "GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_COMMITTER_NAME=Test", "GIT_COMMITTER_EMAIL=test@test.com")
	out, err := cmd.CombinedOutput()
	require.NoErrorf(t, err, "git %v failed: %s", args, out)
}

func gitOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoErrorf(t, err, "git %v failed", args)
	return string(out)
}

func TestInspector_InspectLocalAndRemoteRefs(t *testing.T) {
	origin := testutil.TempGitRepoWithCommit(t)
	mainBranch := trimmedOutput(t, origin, "symbolic-ref", "--short", "HEAD")

	clone := t.TempDir()
	runGit(t, filepath.Dir(clone), "clone", origin, clone)
	runGit(t, clone, "checkout", "-b", "feature")
	require.NoError(t, os.WriteFile(filepath.Join(clone, "f.txt"), []byte("x"), 0o644))
	runGit(t, clone, "add", ".")
	runGit(t, clone, "commit", "-m", "feature work")
	runGit(t, clone, "checkout", mainBranch)

	insp := New()
	recs, err := insp.Inspect(context.Background(), clone)
	require.NoError(t, err)

	var localNames, remoteNames []string
	var headCount int
	for _, r := range recs {
		if r.IsRemote {
			remoteNames = append(remoteNames, r.Name)
			assert.NotContains(t, r.Name, "/HEAD")
		} else {
			localNames = append(localNames, r.Name)
		}
		if r.IsHead {
			headCount++
			assert.False(t, r.IsRemote)
			assert.Equal(t, mainBranch, r.Name)
		}
	}

	assert.Contains(t, localNames, mainBranch)
	assert.Contains(t, localNames, "feature")
	assert.Contains(t, remoteNames, "origin/"+mainBranch)
	assert.Equal(t, 1, headCount)
}

func TestInspector_DetachedHeadHasNoHeadRecord(t *testing.T) {
	dir := testutil.TempGitRepoWithCommit(t)
	sha := trimmedOutput(t, dir, "rev-parse", "HEAD")
	runGit(t, dir, "checkout", sha)

	insp := New()
	recs, err := insp.Inspect(context.Background(), dir)
	require.NoError(t, err)

	for _, r := range recs {
		assert.False(t, r.IsHead)
	}
}

func trimmedOutput(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out := gitOutput(t, dir, args...)
	for len(out) > 0 && (out[len(out)-1] == '\n' || out[len(out)-1] == '\r') {
		out = out[:len(out)-1]
	}
	return out
}

func TestParseRefLine(t *testing.T) {
	line := "refs/heads/main\x1fdeadbeef\x1fsubject line\x1fAlice\x1f<alice@example.com>\x1f1700000000"
	rec, ok, err := parseRefLine(line)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "main", rec.Name)
	assert.False(t, rec.IsRemote)
	assert.Equal(t, "deadbeef", rec.TipSHA)
	assert.Equal(t, "alice@example.com", rec.TipAuthorEmail)
}

func TestParseRefLine_SkipsRemoteHeadSymref(t *testing.T) {
	line := "refs/remotes/origin/HEAD\x1fdeadbeef\x1fsubject\x1fAlice\x1f<alice@example.com>\x1f1700000000"
	_, ok, err := parseRefLine(line)
	require.NoError(t, err)
	assert.False(t, ok)
}
