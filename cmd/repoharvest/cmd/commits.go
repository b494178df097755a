// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var commitsCmd = &cobra.Command{
	Use:   "commits <url>",
	Short: "Clone a repository (if needed) and list its full commit history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		m, err := newManager([]string{url})
		if err != nil {
			return err
		}
		defer m.Close()

		ctx := context.Background()
		if _, err := m.Clone(ctx, url); err != nil {
			return err
		}

		commits, err := m.AnalyzeCommits(ctx, url)
		if err != nil {
			return err
		}
		return printResult(commits)
	},
}

func init() {
	rootCmd.AddCommand(commitsCmd)
}
