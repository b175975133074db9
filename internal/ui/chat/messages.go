// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lumina-tui/internal/chat"
	"github.com/jeranaias/lumina-tui/internal/model"
)

// =============================================================================
// DRIVER EVENT MESSAGES
// =============================================================================

// TurnStartedMsg is sent when a user turn has been committed.
type TurnStartedMsg struct {
	SessionID     string
	UserMessageID string
}

// ThinkingMsg is sent when the request is in flight with no reply yet.
type ThinkingMsg struct {
	SessionID string
	ReplyID   string
}

// ReplyBeganMsg is sent when the first reply fragment arrives.
type ReplyBeganMsg struct {
	SessionID string
	ReplyID   string
}

// FragmentMsg is sent for each committed reply fragment.
type FragmentMsg struct {
	SessionID string
	ReplyID   string
	Fragment  string
}

// TurnSettledMsg is sent when a turn completes cleanly.
type TurnSettledMsg struct {
	SessionID string
	ReplyID   string
}

// TurnFailedMsg is sent when a turn ends in error. The transcript already
// holds the finalized degraded reply; this message only drives the toast.
type TurnFailedMsg struct {
	SessionID string
	ReplyID   string
	Err       error
}

// MapEvent converts a driver event into its tea message. Wired into the
// driver's emit callback through program.Send.
func MapEvent(ev chat.Event) tea.Msg {
	switch e := ev.(type) {
	case chat.TurnStartedEvent:
		return TurnStartedMsg{SessionID: e.SessionID, UserMessageID: e.UserMessageID}
	case chat.ThinkingEvent:
		return ThinkingMsg{SessionID: e.SessionID, ReplyID: e.ReplyID}
	case chat.ReplyBeganEvent:
		return ReplyBeganMsg{SessionID: e.SessionID, ReplyID: e.ReplyID}
	case chat.FragmentEvent:
		return FragmentMsg{SessionID: e.SessionID, ReplyID: e.ReplyID, Fragment: e.Fragment}
	case chat.TurnSettledEvent:
		return TurnSettledMsg{SessionID: e.SessionID, ReplyID: e.ReplyID}
	case chat.TurnFailedEvent:
		return TurnFailedMsg{SessionID: e.SessionID, ReplyID: e.ReplyID, Err: e.Err}
	default:
		return nil
	}
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// ErrorToastMsg shows a transient error toast.
type ErrorToastMsg struct {
	Text string
}

// ToastDismissMsg hides the toast. Seq guards against a stale timer
// dismissing a newer toast.
type ToastDismissMsg struct {
	Seq int
}

// AttachmentAddedMsg is sent when a file was encoded for the next turn.
type AttachmentAddedMsg struct {
	Attachment model.Attachment
}

// AttachmentFailedMsg is sent when encoding a file failed.
type AttachmentFailedMsg struct {
	Path string
	Err  error
}

// SessionsSavedMsg reports the result of an archive save.
type SessionsSavedMsg struct {
	Err error
}

// ConfigReloadedMsg is sent when the config file changed on disk.
type ConfigReloadedMsg struct {
	Model string
	Err   error
}
