// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType classifies client failures so callers can branch on category
// without string matching.
type ErrorType int

const (
	// ErrTypeConnection covers dial, TLS, and transport-level failures.
	ErrTypeConnection ErrorType = iota
	// ErrTypeAuth covers rejected or missing API keys (401/403).
	ErrTypeAuth
	// ErrTypeRateLimit covers 429 responses and local limiter rejection.
	ErrTypeRateLimit
	// ErrTypeAPI covers other non-2xx responses from the service.
	ErrTypeAPI
	// ErrTypeStream covers failures mid-stream, after a 200 was received.
	ErrTypeStream
	// ErrTypeCanceled covers context cancellation and timeouts.
	ErrTypeCanceled
)

// String returns the category name.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeAuth:
		return "auth"
	case ErrTypeRateLimit:
		return "rate_limit"
	case ErrTypeAPI:
		return "api"
	case ErrTypeStream:
		return "stream"
	case ErrTypeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ClientError is the error type returned by all client operations.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gemini: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("gemini: %s", e.Message)
}

func (e *ClientError) Unwrap() error { return e.Cause }

// newError builds a ClientError.
func newError(t ErrorType, msg string, cause error) *ClientError {
	return &ClientError{Type: t, Message: msg, Cause: cause}
}

// NewEmptyReplyError reports a stream that ended cleanly without producing
// any reply text.
func NewEmptyReplyError() *ClientError {
	return newError(ErrTypeStream, "stream ended without any reply text", nil)
}

// IsType reports whether err is a ClientError of the given category.
func IsType(err error, t ErrorType) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == t
}
