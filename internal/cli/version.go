// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go":         runtime.Version(),
		}
		return OutputJSON(cmd.OutOrStdout(), jsonOutput, "version", func() (interface{}, error) {
			if !jsonOutput {
				fmt.Fprintf(cmd.OutOrStdout(), "backoffice version %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			}
			return info, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
