// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/backoffice-tui/internal/auth"
	"github.com/jeranaias/backoffice-tui/internal/session"
	"github.com/jeranaias/backoffice-tui/internal/ui/components"
)

// nowFunc is the clock used by status; tests pin it.
var nowFunc = time.Now

// StatusInfo is the status command's JSON payload.
type StatusInfo struct {
	SignedIn      bool      `json:"signed_in"`
	Subject       string    `json:"subject,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	WarnAt        time.Time `json:"warn_at,omitempty"`
	SecondsLeft   int       `json:"seconds_left"`
	Expired       bool      `json:"expired"`
	DecodeError   string    `json:"decode_error,omitempty"`
	TokenFile     string    `json:"token_file"`
	AuthMode      string    `json:"auth_mode"`
	WarningWindow int       `json:"warning_window_secs"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session and when it expires",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return OutputJSON(cmd.OutOrStdout(), jsonOutput, "status", func() (interface{}, error) {
			cfg, err := loadConfig()
			if err != nil {
				return nil, err
			}
			store, err := auth.OpenStore(cfg.TokenFile())
			if err != nil {
				return nil, err
			}

			info := StatusInfo{
				TokenFile:     store.Path(),
				AuthMode:      cfg.Auth.Mode,
				WarningWindow: cfg.Session.WarningWindowSecs,
			}
			fillStatus(&info, store.Credentials(), cfg.WarningWindow(), nowFunc())

			if !jsonOutput {
				printStatus(cmd.OutOrStdout(), info)
			}
			return info, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func fillStatus(info *StatusInfo, creds auth.Credentials, window time.Duration, now time.Time) {
	info.SignedIn = creds.SignedIn()
	info.Subject = creds.Subject
	if !info.SignedIn {
		return
	}

	tok, err := session.NewJWTDecoder().Inspect(creds.AccessToken)
	if err != nil {
		info.DecodeError = err.Error()
		return
	}
	if tok.Subject != "" {
		info.Subject = tok.Subject
	}
	info.ExpiresAt = tok.ExpiresAt
	info.WarnAt = tok.ExpiresAt.Add(-window)

	left := int(tok.ExpiresAt.Sub(now) / time.Second)
	if left <= 0 {
		left = 0
		info.Expired = true
	}
	info.SecondsLeft = left
}

func printStatus(w io.Writer, info StatusInfo) {
	row := func(label, value string) {
		fmt.Fprintln(w, LabelStyle.Render(label)+value)
	}

	switch {
	case !info.SignedIn:
		fmt.Fprintln(w, WarnStyle.Render("[!]")+" Not signed in")
	case info.DecodeError != "":
		fmt.Fprintln(w, WarnStyle.Render("[!]")+" Stored token cannot be read: "+info.DecodeError)
	case info.Expired:
		fmt.Fprintln(w, ErrorStyle.Render("[X]")+" Session expired")
	default:
		fmt.Fprintln(w, SuccessStyle.Render("[OK]")+" Session active")
	}

	if info.Subject != "" {
		row("Subject", info.Subject)
	}
	if !info.ExpiresAt.IsZero() {
		row("Expires", info.ExpiresAt.Local().Format(time.DateTime))
		row("Warns at", info.WarnAt.Local().Format(time.DateTime))
		if !info.Expired {
			row("Remaining", components.FormatCountdown(info.SecondsLeft))
		}
	}
	row("Auth mode", info.AuthMode)
	row("Token file", DimStyle.Render(info.TokenFile))
}
