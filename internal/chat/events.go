// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat drives a streaming conversation turn: it snapshots history,
// commits the user message, runs the backend stream, and reconciles every
// fragment into the session store.
package chat

// =============================================================================
// DRIVER EVENTS
// =============================================================================

// Event is a notification emitted by the driver as a turn progresses. The
// UI layer maps events onto its own message types; the driver itself has no
// rendering dependencies.
type Event interface{ isEvent() }

// TurnStartedEvent fires after the user message is committed to the store.
type TurnStartedEvent struct {
	SessionID     string
	UserMessageID string
}

// ThinkingEvent fires when the request is in flight but no reply text has
// arrived yet. The UI shows its typing indicator during this window.
type ThinkingEvent struct {
	SessionID string
	ReplyID   string
}

// ReplyBeganEvent fires once per turn, when the first fragment creates the
// streaming model message.
type ReplyBeganEvent struct {
	SessionID string
	ReplyID   string
}

// FragmentEvent fires after each fragment is committed to the store.
type FragmentEvent struct {
	SessionID string
	ReplyID   string
	Fragment  string
}

// TurnSettledEvent fires when the turn completes and the reply message is
// finalized.
type TurnSettledEvent struct {
	SessionID string
	ReplyID   string
}

// TurnFailedEvent fires when the turn ends in error. The reply message, if
// one was begun, has already been finalized around whatever text it holds
// (at minimum the fallback sentence).
type TurnFailedEvent struct {
	SessionID string
	ReplyID   string
	Err       error
}

func (TurnStartedEvent) isEvent() {}
func (ThinkingEvent) isEvent()    {}
func (ReplyBeganEvent) isEvent()  {}
func (FragmentEvent) isEvent()    {}
func (TurnSettledEvent) isEvent() {}
func (TurnFailedEvent) isEvent()  {}

// =============================================================================
// PHASES
// =============================================================================

// Phase is the driver's turn lifecycle state.
type Phase int

const (
	// PhaseIdle means no turn is in flight.
	PhaseIdle Phase = iota
	// PhaseSentUserTurn means the user message is committed and the
	// request is being assembled.
	PhaseSentUserTurn
	// PhaseThinking means the request is in flight with no reply text yet.
	PhaseThinking
	// PhaseStreaming means reply fragments are arriving.
	PhaseStreaming
	// PhaseSettled means the last turn completed cleanly.
	PhaseSettled
	// PhaseErrored means the last turn ended in error.
	PhaseErrored
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSentUserTurn:
		return "sent_user_turn"
	case PhaseThinking:
		return "thinking"
	case PhaseStreaming:
		return "streaming"
	case PhaseSettled:
		return "settled"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Busy reports whether a turn is in flight.
func (p Phase) Busy() bool {
	return p == PhaseSentUserTurn || p == PhaseThinking || p == PhaseStreaming
}
