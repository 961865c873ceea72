// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/backoffice-tui/internal/audit"
	"github.com/jeranaias/backoffice-tui/internal/util"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent session events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return OutputJSON(cmd.OutOrStdout(), jsonOutput, "audit", func() (interface{}, error) {
			cfg, err := loadConfig()
			if err != nil {
				return nil, err
			}
			if !cfg.Audit.Enabled {
				return nil, NewCommandError("audit", "show", "auditing is disabled",
					errors.New("set audit.enabled = true"))
			}

			store, err := audit.Open(cfg.AuditPath())
			if err != nil {
				return nil, err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), auditLimit)
			if err != nil {
				return nil, err
			}

			if !jsonOutput {
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, DimStyle.Render("No session events recorded"))
				}
				for _, e := range entries {
					line := e.At.Local().Format(time.DateTime) + "  " + util.PadWidth(e.Event, 18)
					if e.Seconds > 0 {
						line += fmt.Sprintf(" %3ds", e.Seconds)
					}
					if len(e.Cycle) >= 8 {
						line += "  " + DimStyle.Render(e.Cycle[:8])
					}
					fmt.Fprintln(out, line)
				}
			}
			return entries, nil
		})
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "number of events to show")
	rootCmd.AddCommand(auditCmd)
}
