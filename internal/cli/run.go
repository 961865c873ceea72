// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/backoffice-tui/internal/config"
	"github.com/jeranaias/backoffice-tui/internal/logging"
	"github.com/jeranaias/backoffice-tui/internal/ui/app"
)

var headless bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the session and warn before it expires",
	Long: `Run the session guard.

On a terminal this opens the dashboard:
  r - Refresh the session now
  l - Logout
  q - Quit

When the countdown dialog is open, enter keeps the session and l signs out.
When stdout is not a terminal (or with --headless) the countdown is written
as plain lines instead. SIGHUP makes the timer re-read the stored token.`,
	RunE: runSession,
}

func init() {
	runCmd.Flags().BoolVar(&headless, "headless", false, "write plain lines instead of the dashboard")
	rootCmd.AddCommand(runCmd)
}

func runSession(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if headless || !IsStdoutTTY() {
		return runHeadless(ctx, svc, cmd.OutOrStdout())
	}
	return runDashboard(ctx, svc)
}

func openLog(cfg *config.Config) (logging.Logger, io.Closer, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, configError{err}
	}
	log, closer, err := logging.OpenFile(level, cfg.LogFile())
	if err != nil {
		return nil, nil, err
	}
	return log.WithField("version", Version), closer, nil
}

func runDashboard(ctx context.Context, svc *services) error {
	view := app.NewProgramView()
	g := svc.wire(view)
	defer g.stop()

	model := app.New(app.Options{
		Actions:       g.presenter,
		Refresher:     svc.auth,
		Token:         app.TokenState(svc.store.Token()),
		Window:        svc.cfg.WarningWindow(),
		Dark:          svc.cfg.UI.Theme == "dark",
		ActionTimeout: svc.cfg.RetryMaxElapsed() + svc.cfg.RequestTimeout(),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	view.Attach(p)

	unsub := svc.store.Subscribe(func(access string) {
		view.Send(app.TokenState(access))
	})
	defer unsub()

	if err := g.start(ctx); err != nil {
		return err
	}
	go forwardHangups(ctx, g)

	svc.log.Info("dashboard started")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

func runHeadless(ctx context.Context, svc *services, out io.Writer) error {
	view := app.NewLogView(out)
	g := svc.wire(view)
	defer g.stop()

	if err := g.start(ctx); err != nil {
		return err
	}
	go forwardHangups(ctx, g)

	state := app.TokenState(svc.store.Token())
	switch {
	case !state.Present:
		fmt.Fprintln(out, "[i] Not signed in, waiting for a token")
	case state.Err != nil:
		fmt.Fprintf(out, "[!] Stored token cannot be read: %v\n", state.Err)
	default:
		fmt.Fprintf(out, "[i] Watching session for %s, expires %s\n",
			orUnknown(state.Info.Subject), state.Info.ExpiresAt.Local().Format("15:04:05"))
	}

	select {
	case <-ctx.Done():
	case <-view.Done():
	}
	return nil
}

// forwardHangups turns SIGHUP into a timer restart.
func forwardHangups(ctx context.Context, g *guard) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			g.svc.log.Info("SIGHUP received, restarting timer")
			g.restart()
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
