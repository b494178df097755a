// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package config loads repoharvest's runtime configuration: GitHub
// credentials, the out-of-scope tracker base URL, and the Manager's
// concurrency/behavior defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	GitHub  GitHubConfig  `yaml:"github"`
	Tracker TrackerConfig `yaml:"tracker"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

// GitHubConfig holds GitHub-specific configuration.
type GitHubConfig struct {
	Token    string `yaml:"token"`
	Username string `yaml:"username"`
	BaseURL  string `yaml:"base_url"` // For GitHub Enterprise
}

// TrackerConfig holds the out-of-scope secondary tracker's base URL
// passthrough, per spec.md §6 ("only its interface shape is noted").
// No client for it is implemented here.
type TrackerConfig struct {
	BaseURL string `yaml:"base_url"`
}

// RuntimeConfig holds the Manager's concurrency and behavior defaults.
type RuntimeConfig struct {
	CloneConcurrency int    `yaml:"clone_concurrency"`
	HTTPConcurrency  int    `yaml:"http_concurrency"`
	MaxPagesDefault  int    `yaml:"max_pages_default"` // 0 means unbounded
	ScratchRoot      string `yaml:"scratch_root"`      // "" uses os.TempDir()
	NoCache          bool   `yaml:"no_cache"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			CloneConcurrency: 8,
			HTTPConcurrency:  16,
		},
	}
}

// Load loads configuration from file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadDefault loads configuration from default locations.
func LoadDefault() (*Config, error) {
	locations := []string{
		"repoharvest.yaml",
		".repoharvest.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "repoharvest", "config.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return Load(loc)
		}
	}

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		c.GitHub.Token = token
	}
	if username := os.Getenv("GITHUB_USERNAME"); username != "" {
		c.GitHub.Username = username
	}
}
