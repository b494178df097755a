// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package cmd implements the repoharvest CLI commands. It is a thin
// driver over pkg/manager: every subcommand registers its repository
// URLs, builds a Manager, calls Init, and prints the result. No state
// is persisted across invocations.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/archmagece/repoharvest/internal/config"
	"github.com/archmagece/repoharvest/internal/telemetry"
	"github.com/archmagece/repoharvest/pkg/cliutil"
	"github.com/archmagece/repoharvest/pkg/manager"
)

var (
	appVersion string

	verbose         bool
	quiet           bool
	outputFormat    string
	flagToken       string
	flagUsername    string
	flagConfig      string
	flagMaxPages    int
	flagCloneConc   int
	flagHTTPConc    int
	flagScratchRoot string
)

var rootCmd = &cobra.Command{
	Use:   "repoharvest",
	Short: "Clone, walk, and fetch repository history and hosting-service metadata",
	Long: `repoharvest clones repositories, walks their commit history, blames files,
inspects branches, and fetches collaborators, issues, pull requests, code
reviews, and comments from a Git hosting service's REST API.
` + cliutil.QuickStartHelp(`  # Clone a repository and list its commits
  repoharvest clone https://github.com/owner/repo
  repoharvest commits https://github.com/owner/repo

  # Fetch issues across several repositories
  repoharvest issues https://github.com/owner/repo1 https://github.com/owner/repo2`),
	Version: appVersion,
}

// Execute adds every subcommand and runs the CLI. Exit codes follow
// spec.md §6: 0 success, 1 unrecoverable failure, 2 misconfiguration.
func Execute(version string) {
	appVersion = version
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if _, ok := err.(*misconfigError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// misconfigError marks an error as exit code 2 (misconfiguration)
// rather than the default exit code 1 (unrecoverable failure).
type misconfigError struct{ err error }

func (e *misconfigError) Error() string { return e.err.Error() }
func (e *misconfigError) Unwrap() error { return e.err }

func misconfig(err error) error { return &misconfigError{err: err} }

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "json", "output format: json|pretty")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "bearer token (default: $GITHUB_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "basic-auth username (default: $GITHUB_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a repoharvest.yaml config file")
	rootCmd.PersistentFlags().IntVar(&flagMaxPages, "max-pages", 0, "default page cap for paginated fetches (0 = unbounded)")
	rootCmd.PersistentFlags().IntVar(&flagCloneConc, "clone-concurrency", 0, "clone worker pool size (0 = configured value, default 8)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPConc, "http-concurrency", 0, "cross-repository HTTP fan-out width (0 = manager default)")
	rootCmd.PersistentFlags().StringVar(&flagScratchRoot, "scratch-root", "", "parent directory for clone scratch dirs (default: OS temp dir)")
}

// loadConfig resolves the effective configuration: config file (or its
// default search locations) with env vars and CLI flags applied on top,
// flags taking precedence.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, misconfig(fmt.Errorf("loading config: %w", err))
	}

	if flagToken != "" {
		cfg.GitHub.Token = flagToken
	}
	if flagUsername != "" {
		cfg.GitHub.Username = flagUsername
	}
	if flagMaxPages != 0 {
		cfg.Runtime.MaxPagesDefault = flagMaxPages
	}
	if flagCloneConc != 0 {
		cfg.Runtime.CloneConcurrency = flagCloneConc
	}
	if flagHTTPConc != 0 {
		cfg.Runtime.HTTPConcurrency = flagHTTPConc
	}
	if flagScratchRoot != "" {
		cfg.Runtime.ScratchRoot = flagScratchRoot
	}
	return cfg, nil
}

// newManager builds and initializes a Manager tracking urls, using the
// effective configuration. Callers own the returned Manager and should
// Close it when done.
func newManager(urls []string) (*manager.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	m := manager.New(urls, cfg.GitHub.Token,
		manager.WithUsername(cfg.GitHub.Username),
		manager.WithNoCache(cfg.Runtime.NoCache),
		manager.WithMaxPagesDefault(cfg.Runtime.MaxPagesDefault),
		manager.WithCloneConcurrency(cfg.Runtime.CloneConcurrency),
		manager.WithHTTPConcurrency(cfg.Runtime.HTTPConcurrency),
		manager.WithScratchRoot(cfg.Runtime.ScratchRoot),
		manager.WithLogger(cliLogger()),
	)
	if err := m.Init(); err != nil {
		return nil, fmt.Errorf("initializing manager: %w", err)
	}
	return m, nil
}

// cliLogger resolves --verbose/--quiet into the Logger passed to the
// Manager: --quiet silences it entirely, --verbose enables zap's
// debug level, and the default is a production zap logger at info
// level.
func cliLogger() telemetry.Logger {
	if quiet {
		return telemetry.NoopLogger{}
	}
	return telemetry.NewZapLoggerOrNoop(verbose)
}

func printResult(v any) error {
	return cliutil.WriteJSON(os.Stdout, v, outputFormat == "pretty" || verbose)
}
