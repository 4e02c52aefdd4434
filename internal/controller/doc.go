// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller owns the conversation lifecycle: appending turns,
// running the single in-flight stream, cancel-then-send preemption, and the
// idle heartbeat that nudges a quiet learner during timed interviews.
//
// The controller is the only writer of the conversation. User sends, timer
// ticks, and heartbeat checks all funnel through its mutex, and the UI reads
// results from a buffered event channel. At most one stream is ever open:
// sending while one is in flight cancels it first, keeping the interrupted
// partial; a heartbeat never preempts anything.
package controller
