// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	"github.com/jeranaias/backoffice-tui/internal/session"
)

// =============================================================================
// MESSAGES FROM OUTSIDE THE PROGRAM
// =============================================================================

// WarningMsg opens the expiry dialog.
type WarningMsg struct {
	Seconds int
}

// TickMsg updates the dialog countdown.
type TickMsg struct {
	Seconds int
}

// DialogClosedMsg hides the expiry dialog.
type DialogClosedMsg struct{}

// SignedOutMsg shows the signed-out notice. The program quits shortly after.
type SignedOutMsg struct {
	Reason string
}

// TokenMsg reports the token currently held by the credential store.
// Present is false once the user is signed out.
type TokenMsg struct {
	Present bool
	Info    session.TokenInfo

	// Err is set when the token could not be decoded.
	Err error
}

// =============================================================================
// INTERNAL MESSAGES
// =============================================================================

type action int

const (
	actionStay action = iota
	actionRefresh
	actionLogout
)

func (a action) String() string {
	switch a {
	case actionStay:
		return "stay signed in"
	case actionRefresh:
		return "refresh"
	case actionLogout:
		return "logout"
	default:
		return "unknown"
	}
}

type actionDoneMsg struct {
	action action
	err    error
}

type clockMsg time.Time

type quitMsg struct{}

// TokenState builds the TokenMsg for an access token. An empty token means
// signed out.
func TokenState(access string) TokenMsg {
	if access == "" {
		return TokenMsg{}
	}
	info, err := session.NewJWTDecoder().Inspect(access)
	return TokenMsg{Present: true, Info: info, Err: err}
}
