// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ParsesYAMLAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoharvest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
github:
  token: file-token
  username: alice
runtime:
  clone_concurrency: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.GitHub.Token)
	assert.Equal(t, "alice", cfg.GitHub.Username)
	assert.Equal(t, 3, cfg.Runtime.CloneConcurrency)
	assert.Equal(t, 16, cfg.Runtime.HTTPConcurrency) // untouched default survives partial YAML
}

func TestLoad_EnvOverridesTakePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoharvest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
github:
  token: file-token
`), 0o644))

	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("GITHUB_USERNAME", "env-user")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.GitHub.Token)
	assert.Equal(t, "env-user", cfg.GitHub.Username)
}

func TestLoadDefault_FallsBackToDefaultsWhenNoFileExists(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(cwd) }()

	t.Setenv("HOME", dir)

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Runtime.CloneConcurrency)
	assert.Equal(t, 16, cfg.Runtime.HTTPConcurrency)
}
