// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages.
//
// A Message carries an ID, a Role (user, assistant, or system), a
// timestamp, and its text content. Assistant messages produced by a
// streaming response are built incrementally: text arrives through
// AppendDelta while IsStreaming is true, and FinalizeStream freezes the
// accumulated content. Consumers should read text through DisplayContent,
// which is correct in both phases.
package model
