// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	repoharvest "github.com/archmagece/repoharvest"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(repoharvest.VersionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
