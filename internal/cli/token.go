// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/backoffice-tui/internal/auth"
	"github.com/jeranaias/backoffice-tui/internal/session"
)

var (
	tokenRefresh string
	tokenSubject string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored credentials",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [ACCESS_TOKEN]",
	Short: "Store an access token",
	Long: `Store an access token (and optionally a refresh token).

With no argument, or "-", the access token is read from stdin. A running
session guard picks up the change through the token file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenSet,
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored credentials without contacting the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStoreFromConfig()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return NewCommandError("token", "clear", "could not remove token file", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("[OK]")+" Credentials cleared")
		return nil
	},
}

func init() {
	tokenSetCmd.Flags().StringVar(&tokenRefresh, "refresh", "", "refresh token to store alongside")
	tokenSetCmd.Flags().StringVar(&tokenSubject, "subject", "", "subject to show when the token carries none")

	tokenCmd.AddCommand(tokenSetCmd, tokenClearCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenSet(cmd *cobra.Command, args []string) error {
	access := ""
	if len(args) == 1 && args[0] != "-" {
		access = args[0]
	} else {
		read, err := readToken(cmd.InOrStdin())
		if err != nil {
			return NewCommandError("token", "set", "could not read token from stdin", err)
		}
		access = read
	}
	if access == "" {
		return usageError{errors.New("access token is empty")}
	}

	store, err := openStoreFromConfig()
	if err != nil {
		return err
	}

	creds := auth.Credentials{
		AccessToken:  access,
		RefreshToken: tokenRefresh,
		Subject:      tokenSubject,
	}
	if err := store.Set(creds); err != nil {
		return NewCommandError("token", "set", "could not write token file", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, SuccessStyle.Render("[OK]")+" Token stored in "+store.Path())

	// Stored regardless; the timer simply stays idle for such tokens
	if _, err := session.NewJWTDecoder().Expiry(access); err != nil {
		fmt.Fprintln(out, WarnStyle.Render("[!]")+" Token expiry cannot be read ("+err.Error()+"), no warning will be shown")
	}
	return nil
}

func readToken(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func openStoreFromConfig() (*auth.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return auth.OpenStore(cfg.TokenFile())
}
