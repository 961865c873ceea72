// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/backoffice-tui/internal/config"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Back-office session guard",
	Long: `backoffice keeps an operator's back-office session alive.

It watches the stored access token, warns before it expires, and lets the
operator extend the session or sign out. Without a subcommand it runs the
interactive dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		applyColorProfile()
	},
	RunE: runSession,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.backoffice/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var silent errSilent
	if !errors.As(err, &silent) {
		DisplayError(os.Stderr, err, jsonOutput)
	}
	return GetExitCode(err)
}

// loadConfig reads --config, or the default location.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, configError{err}
	}
	return cfg, nil
}
