// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <url>...",
	Short: "Clone one or more repositories and report their terminal state",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(args)
		if err != nil {
			return err
		}
		defer m.Close()

		if len(args) == 1 {
			state, err := m.Clone(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printResult(state)
		}

		states, err := m.CloneAll(context.Background())
		if err != nil {
			return err
		}
		return printResult(states)
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks <url>...",
	Short: "Print the current CloneState of every given repository",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(args)
		if err != nil {
			return err
		}
		defer m.Close()

		tasks, err := m.FetchCloneTasks()
		if err != nil {
			return err
		}
		return printResult(tasks)
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
	rootCmd.AddCommand(tasksCmd)
}
