// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var branchesCmd = &cobra.Command{
	Use:   "branches <url>...",
	Short: "Clone repositories (if needed) and list their local and remote branches",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(args)
		if err != nil {
			return err
		}
		defer m.Close()

		ctx := context.Background()
		if _, err := m.CloneAll(ctx); err != nil {
			return err
		}

		results, err := m.AnalyzeBranches(ctx, args)
		if err != nil {
			return err
		}
		return printResult(results)
	},
}

func init() {
	rootCmd.AddCommand(branchesCmd)
}
