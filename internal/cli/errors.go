// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/jeranaias/backoffice-tui/internal/auth"
	"github.com/jeranaias/backoffice-tui/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed command with context.
type CommandError struct {
	Command string // e.g. "token"
	Action  string // e.g. "set"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a CommandError.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// configError marks failures to load or save configuration.
type configError struct {
	err error
}

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as JSON in json mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}

	if jsonMode {
		output := map[string]interface{}{
			"success":    false,
			"error":      err.Error(),
			"error_type": errorType(err),
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(output)
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

func errorType(err error) string {
	var cmdErr *CommandError
	var verrs config.ValidateErrors
	var cfgErr configError
	switch {
	case errors.As(err, &verrs), errors.As(err, &cfgErr):
		return "config_error"
	case errors.Is(err, auth.ErrNotSignedIn), errors.Is(err, auth.ErrRefreshRejected):
		return "auth_error"
	case errors.As(err, &cmdErr):
		return "command_error"
	default:
		return "generic_error"
	}
}

// GetExitCode maps an error to the process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var verrs config.ValidateErrors
	var cfgErr configError
	if errors.As(err, &verrs) || errors.As(err, &cfgErr) {
		return ExitConfigError
	}

	if errors.Is(err, auth.ErrNotSignedIn) || errors.Is(err, auth.ErrRefreshRejected) {
		return ExitAuthError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ExitTimeoutError
		}
		return ExitNetworkError
	}

	var usageErr usageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	return ExitGeneralError
}

// usageError marks bad arguments or flags.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }
