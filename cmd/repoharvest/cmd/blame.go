// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var blameCmd = &cobra.Command{
	Use:   "blame <url> <path>...",
	Short: "Clone a repository (if needed) and blame the given paths",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, paths := args[0], args[1:]
		m, err := newManager([]string{url})
		if err != nil {
			return err
		}
		defer m.Close()

		ctx := context.Background()
		if _, err := m.Clone(ctx, url); err != nil {
			return err
		}

		results, err := m.BulkBlame(ctx, url, paths)
		if err != nil {
			return err
		}
		return printResult(results)
	},
}

func init() {
	rootCmd.AddCommand(blameCmd)
}
