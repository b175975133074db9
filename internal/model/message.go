// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/lumina-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message. The two values are wire literals:
// they are sent verbatim in backend requests.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleModel:
		return "Lumina"
	default:
		return string(r)
	}
}

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment is one piece of media bound to a message. Data carries the
// full-fidelity base64 payload sent to the backend; PreviewPath is a local,
// display-only reference that never goes over the wire. Attachments are
// immutable once created.
type Attachment struct {
	MIMEType    string `json:"mime_type"`
	Data        string `json:"data"`
	PreviewPath string `json:"preview_path,omitempty"`
}

// IsImage reports whether the attachment is an image.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.MIMEType, "image/")
}

// IsVideo reports whether the attachment is a video.
func (a Attachment) IsVideo() bool {
	return strings.HasPrefix(a.MIMEType, "video/")
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a session. A user message is created
// fully formed; a model message is created empty on the first streamed
// fragment, grows by text appends while IsStreaming is set, and is frozen
// when IsStreaming is cleared.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	IsStreaming bool         `json:"-"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// NewUserMessage creates a fully-formed user message.
func NewUserMessage(text string, attachments []Attachment) Message {
	return Message{
		ID:          uuid.NewString(),
		Role:        RoleUser,
		Text:        text,
		Attachments: attachments,
		Timestamp:   time.Now(),
	}
}

// NewModelMessage creates an empty, streaming model message with the given
// id. The caller owns the id so it can keep appending fragments to the same
// message for the rest of the turn.
func NewModelMessage(id string) Message {
	return Message{
		ID:          id,
		Role:        RoleModel,
		IsStreaming: true,
		Timestamp:   time.Now(),
	}
}

// IsEmpty reports whether the message carries neither text nor attachments.
// Empty messages are excluded from backend requests.
func (m Message) IsEmpty() bool {
	return m.Text == "" && len(m.Attachments) == 0
}

// Preview returns a single-line, rune-truncated preview of the message
// text, for session lists.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.FirstLine(m.Text), maxRunes)
}

// NewMessageID generates a unique message id.
func NewMessageID() string {
	return uuid.NewString()
}
