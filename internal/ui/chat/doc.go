// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat is the Bubble Tea view for the lumina TUI.

The Model owns the transcript viewport, the input area, a session picker
overlay, and the transient error toast. It never touches the backend
directly: turns go through the driver, and driver lifecycle events come
back in as tea messages via MapEvent and program.Send.

Transcript state always renders from store snapshots, so the view cannot
observe a half-committed turn.
*/
package chat
