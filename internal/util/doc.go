// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the backoffice packages.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file replacement with fsync
//   - TruncateWidth: display-width aware truncation for terminal cells
//   - PadWidth: right-pad to a display width
//
// # Usage
//
//	// Persist credentials without ever exposing a half-written file
//	err := util.AtomicWriteFile(path, data, 0600, 0700)
//
//	// Fit a subject into a fixed dashboard column
//	cell := util.TruncateWidth(subject, 24)
package util
