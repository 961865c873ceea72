// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth holds the signed-in user's credentials and talks to the
// backend to refresh or end the session.
//
// # Key Types
//
//   - Store: credentials persisted to a 0600 JSON file, with change subscribers
//   - Watcher: reloads the Store when another process rewrites the file
//   - RESTClient: refresh and logout against the back-office JSON API
//   - OAuth2Client: refresh-token grant plus RFC 7009 revocation
//
// Both clients satisfy presenter.Authenticator. Sign-out is best effort on
// the wire but always clears the local credentials.
package auth

import "errors"

var (
	// ErrNotSignedIn is returned when an operation needs credentials that
	// are not present.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrRefreshRejected is returned when the backend refuses to extend the
	// session. Retrying will not help.
	ErrRefreshRejected = errors.New("session refresh rejected")
)
