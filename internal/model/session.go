// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// WELCOME MESSAGE
// =============================================================================

// WelcomeID is the fixed id of the greeting message seeded into every new
// session. It is also the exclusion key for backend history: the welcome
// message is local flavor, not conversation.
const WelcomeID = "welcome"

// WelcomeText is the greeting shown at the top of every new session.
const WelcomeText = "Hello! I'm Lumina. I can see, read, and think. Show me an image or ask me anything."

// WelcomeMessage returns the greeting message for a new session.
func WelcomeMessage() Message {
	return Message{
		ID:        WelcomeID,
		Role:      RoleModel,
		Text:      WelcomeText,
		Timestamp: time.Now(),
	}
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

const (
	// SentinelTitle is the title a session starts with. The first user
	// message replaces it exactly once.
	SentinelTitle = "New Chat"

	// ImageOnlyTitle is used when the first user message has no text.
	ImageOnlyTitle = "Image Analysis"

	// TitleMaxRunes is the truncation point for derived titles.
	TitleMaxRunes = 30
)

// DeriveTitle derives a session title from the first user message's text:
// the first 30 characters, with "..." appended when the text is longer, or
// ImageOnlyTitle when there is no text at all.
func DeriveTitle(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ImageOnlyTitle
	}
	runes := []rune(text)
	if len(runes) <= TitleMaxRunes {
		return text
	}
	return string(runes[:TitleMaxRunes]) + "..."
}

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession is one independent conversation thread. Messages are
// append-only during a turn; insertion order is chronological order.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSession creates a session with the sentinel title and the welcome
// message. Every session contains at least one message from birth.
func NewSession() ChatSession {
	return ChatSession{
		ID:        uuid.NewString(),
		Title:     SentinelTitle,
		Messages:  []Message{WelcomeMessage()},
		Timestamp: time.Now(),
	}
}

// MessageByID returns the message with the given id, if present.
func (s ChatSession) MessageByID(id string) (Message, bool) {
	for _, m := range s.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// LastMessage returns the most recent message. The welcome-message invariant
// guarantees ok is true for any session created through NewSession.
func (s ChatSession) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// HasDerivedTitle reports whether the title has moved past the sentinel.
func (s ChatSession) HasDerivedTitle() bool {
	return s.Title != SentinelTitle
}
