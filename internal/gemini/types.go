// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini implements the streaming client for the Gemini generative
// API: request assembly from chat history, SSE transport, and text fragment
// extraction.
package gemini

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Part is one element of a content turn: either inline media or text, never
// both. The zero-valued field is omitted from the wire form.
type Part struct {
	InlineData *InlineData `json:"inline_data,omitempty"`
	Text       string      `json:"text,omitempty"`
}

// InlineData carries base64-encoded media inside a request part.
type InlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// Content is one conversational turn attributed to a role ("user" or
// "model").
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// SystemInstruction carries the persona prompt. It rides outside the
// contents array and has no role.
type SystemInstruction struct {
	Parts []Part `json:"parts"`
}

// GenerateRequest is the body of a streamGenerateContent call.
type GenerateRequest struct {
	SystemInstruction *SystemInstruction `json:"system_instruction,omitempty"`
	Contents          []Content          `json:"contents"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// GenerateChunk is one SSE event of a streaming response. Only the fields
// the client consumes are declared; the API sends more.
type GenerateChunk struct {
	Candidates []Candidate `json:"candidates"`
	Error      *APIError   `json:"error,omitempty"`
}

// Candidate is one generated alternative. Streaming responses carry a
// single candidate whose parts hold the incremental text.
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// APIError is the structured error body the API returns on failed calls.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Text concatenates the text parts of the chunk's first candidate. Chunks
// without candidates (metadata-only events) yield the empty string.
func (c *GenerateChunk) Text() string {
	if len(c.Candidates) == 0 {
		return ""
	}
	var out string
	for _, p := range c.Candidates[0].Content.Parts {
		out += p.Text
	}
	return out
}
