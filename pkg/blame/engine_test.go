// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package blame

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

func TestEngine_BlameAllOrdersLinesAscending(t *testing.T) {
	dir := testutil.TempGitRepo(t)

	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "add file")

	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nTHREE-EDITED\nfour\n"), 0o644))
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "edit file")

	engine, err := New()
	require.NoError(t, err)
	defer engine.Close()

	results := engine.BlameAll(context.Background(), dir, []string{"file.txt"})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	lines := results[0].Lines
	require.Len(t, lines, 4)
	for i, l := range lines {
		assert.Equal(t, i+1, l.FinalLineNo)
	}
	assert.Equal(t, "one", lines[0].Content)
	assert.Equal(t, "THREE-EDITED", lines[2].Content)
	assert.Equal(t, "Test", lines[0].AuthorName)
	assert.Equal(t, "test@test.com", lines[0].AuthorEmail)
}

func TestEngine_BlameAllMissingFileReportsErrorNotPanic(t *testing.T) {
	dir := testutil.TempGitRepoWithCommit(t)

	engine, err := New()
	require.NoError(t, err)
	defer engine.Close()

	results := engine.BlameAll(context.Background(), dir, []string{"does-not-exist.txt"})
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestEngine_BlameAllPreservesInputOrderAcrossFiles(t *testing.T) {
	dir := testutil.TempGitRepo(t)
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name+"\n"), 0o644))
	}
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "add three files")

	engine, err := New(WithConcurrency(2))
	require.NoError(t, err)
	defer engine.Close()

	paths := []string{"a.txt", "b.txt", "c.txt"}
	results := engine.BlameAll(context.Background(), dir, paths)
	require.Len(t, results, 3)
	for i, want := range paths {
		assert.Equal(t, want, results[i].Path)
		require.NoError(t, results[i].Err)
		require.Len(t, results[i].Lines, 1)
	}
}

func TestDecodeUTF8Lenient(t *testing.T) {
	valid := "hello, world"
	assert.Equal(t, valid, decodeUTF8Lenient(valid))

	invalid := "bad\xffbyte"
	decoded := decodeUTF8Lenient(invalid)
	assert.Contains(t, decoded, "bad")
	assert.Contains(t, decoded, "byte")
	assert.Contains(t, decoded, "�")
}

func TestParsePorcelain_RepeatedCommitReusesMetadata(t *testing.T) {
	porcelain := "aaaa111 1 1 2\n" +
		"author Alice\n" +
		"author-mail <alice@example.com>\n" +
		"author-time 1700000000\n" +
		"author-tz +0000\n" +
		"committer Alice\n" +
		"committer-mail <alice@example.com>\n" +
		"committer-time 1700000000\n" +
		"committer-tz +0000\n" +
		"summary first\n" +
		"filename file.txt\n" +
		"\tline one\n" +
		"aaaa111 2 2\n" +
		"\tline two\n"

	lines, err := parsePorcelain(porcelain)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Alice", lines[0].AuthorName)
	assert.Equal(t, "alice@example.com", lines[0].AuthorEmail)
	assert.Equal(t, "Alice", lines[1].AuthorName)
	assert.Equal(t, "alice@example.com", lines[1].AuthorEmail)
}
