// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session warns a signed-in user before their access token expires.
//
// # Key Types
//
//   - Timer: schedules the warning from the token's exp claim and drives a
//     one-second countdown
//   - ExpiryDecoder: the narrow capability that turns a token into an expiry
//   - JWTDecoder: default decoder for compact JWTs
//
// # Lifecycle
//
// Idle (no token) -> Armed (wake-up pending) -> Counting (ticker running)
// -> Expired. SetToken and Restart always clear the previous schedule
// first; Close returns to Idle without emitting anything.
//
// # Events
//
// A cycle emits at most one session:expiring with the full window length,
// then session:tick with strictly decreasing remaining seconds, then
// exactly one session:expired when the count reaches zero.
//
// # Usage
//
//	loop := eventloop.New()
//	timer := session.NewTimer(bus, loop, session.Config{Window: 30 * time.Second})
//	loop.Post(func() { timer.SetToken(accessToken) })
package session
