// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/archmagece/repoharvest/pkg/records"
)

var (
	issueStateFilter string
	prStateFilter    string
)

var collaboratorsCmd = &cobra.Command{
	Use:   "collaborators <url>...",
	Short: "Fetch collaborators for the given repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(nil)
		if err != nil {
			return err
		}
		defer m.Close()

		results, err := m.FetchCollaborators(context.Background(), args, flagMaxPages)
		if err != nil {
			return err
		}
		return printResult(results)
	},
}

var issuesCmd = &cobra.Command{
	Use:   "issues <url>...",
	Short: "Fetch issues (including pull requests, tagged) for the given repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(nil)
		if err != nil {
			return err
		}
		defer m.Close()

		results, err := m.FetchIssues(context.Background(), args, records.IssueOrPRState(issueStateFilter), flagMaxPages)
		if err != nil {
			return err
		}
		return printResult(results)
	},
}

var pullRequestsCmd = &cobra.Command{
	Use:   "pull-requests <url>...",
	Short: "Fetch enriched pull requests for the given repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(nil)
		if err != nil {
			return err
		}
		defer m.Close()

		results, err := m.FetchPullRequests(context.Background(), args, records.IssueOrPRState(prStateFilter), flagMaxPages)
		if err != nil {
			return err
		}
		return printResult(results)
	},
}

var codeReviewsCmd = &cobra.Command{
	Use:   "code-reviews <url>...",
	Short: "Fetch code reviews per pull request for the given repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(nil)
		if err != nil {
			return err
		}
		defer m.Close()

		results, err := m.FetchCodeReviews(context.Background(), args, flagMaxPages)
		if err != nil {
			return err
		}
		return printResult(results)
	},
}

var commentTypesFlag string

var commentsCmd = &cobra.Command{
	Use:   "comments <url>...",
	Short: "Fetch comments for the given repositories",
	Long: `Fetch comments for the given repositories.

--types accepts a comma-separated subset of issue,commit,pull_request,review_comment.
An empty value (the default) fetches all four.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager(nil)
		if err != nil {
			return err
		}
		defer m.Close()

		var types []records.CommentType
		if commentTypesFlag != "" {
			for _, t := range strings.Split(commentTypesFlag, ",") {
				types = append(types, records.CommentType(strings.TrimSpace(t)))
			}
		}

		results, err := m.FetchComments(context.Background(), args, types, flagMaxPages)
		if err != nil {
			return err
		}
		return printResult(results)
	},
}

func init() {
	issuesCmd.Flags().StringVar(&issueStateFilter, "state", "", "filter by state: open|closed|all (default: all)")
	pullRequestsCmd.Flags().StringVar(&prStateFilter, "state", "", "filter by state: open|closed|all (default: all)")
	commentsCmd.Flags().StringVar(&commentTypesFlag, "types", "", "comma-separated comment types to fetch (default: all)")

	rootCmd.AddCommand(collaboratorsCmd, issuesCmd, pullRequestsCmd, codeReviewsCmd, commentsCmd)
}
