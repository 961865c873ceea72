// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the backoffice command line with cobra and wires the
session guard together.

# Commands

	backoffice [run]          dashboard, or plain lines when not on a terminal
	backoffice status         stored session and its expiry
	backoffice token set|clear
	backoffice refresh        extend the session now
	backoffice logout         sign out at the backend and locally
	backoffice audit          recent session events
	backoffice config path|get|set|keys
	backoffice version

Every command takes --config and --json.

# Wiring

run builds one event bus and one event loop. The session timer lives on the
loop goroutine; the credential store, the token-file watcher, SIGHUP and the
presenter's closed event all reach it by posting to the loop:

	store change   -> timer.SetToken
	session:closed -> timer.Close
	session:restart, SIGHUP -> timer.Restart

Exit codes follow GetExitCode: 3 for configuration problems, 4 when not
signed in or the refresh was rejected, 5 for network errors.
*/
package cli
