// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// This package defines the core domain types used throughout the application
// for representing conversations with the Gemini backend.
//
// # Key Types
//
//   - ChatSession: One conversation thread with its own history and title
//   - Message: Single message with role, text, attachments, and timestamp
//   - Attachment: Image or video payload bound to a message
//   - Role: Message role enumeration (user, model)
//
// # Usage
//
// Create a session and add a user message:
//
//	session := model.NewSession()
//	msg := model.NewUserMessage("Hello!", nil)
//	session.Messages = append(session.Messages, msg)
//
// Sessions start with the sentinel title "New Chat"; DeriveTitle computes
// the permanent title from the first user message.
package model
