// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:generate mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "View=View,Authenticator=Authenticator"

package presenter

import "context"

// View renders the session-timeout dialog.
type View interface {
	// Open shows the dialog with the given number of seconds left.
	Open(seconds int)

	// Update changes the displayed number of seconds.
	Update(seconds int)

	// Close hides the dialog.
	Close()

	// SignedOut tells the user the session ended.
	SignedOut(reason string)
}

// Authenticator refreshes or terminates the signed-in session.
type Authenticator interface {
	// Refresh obtains a fresh access token. The new token reaches the
	// timer through the token store, not through the return value.
	Refresh(ctx context.Context) error

	// SignOut ends the session. Local credentials are cleared even when
	// the remote call fails.
	SignOut(ctx context.Context) error
}
