// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable pieces of the backoffice dashboard.

  - Header (header.go) - title bar with the signed-in subject and a session badge.
  - SessionTimeoutOverlay (session_timeout_overlay.go) - modal countdown shown
    before the access token expires, and the signed-out notice after.
  - KeyMap (keys.go) - key bindings shared by the dashboard and the overlay.

Components are plain structs rendered from the root model's View; they do
not run commands of their own.

	overlay := components.NewSessionTimeoutOverlay(components.DefaultKeyMap())
	overlay.SetSize(80, 24)
	overlay.Show(30)
	fmt.Println(overlay.View())
*/
package components
