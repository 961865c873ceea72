// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Extend the session now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withServices(cmd.Context(), func(ctx context.Context, svc *services) error {
			if err := svc.auth.Refresh(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("[OK]")+" Session extended")
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored credentials",
	Long: `Sign out at the backend and clear the stored credentials.

Local credentials are removed even when the backend cannot be reached.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withServices(cmd.Context(), func(ctx context.Context, svc *services) error {
			err := svc.auth.SignOut(ctx)
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), WarnStyle.Render("[!]")+" Signed out locally; backend sign-out failed")
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("[OK]")+" Signed out")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd, logoutCmd)
}

// withServices loads config and services, runs fn, then closes everything.
func withServices(ctx context.Context, fn func(ctx context.Context, svc *services) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, closer, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	svc, err := openServices(cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(ctx, svc)
}
