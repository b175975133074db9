// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/lumina-tui/internal/gemini"
	"github.com/jeranaias/lumina-tui/internal/model"
	"github.com/jeranaias/lumina-tui/internal/store"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrBusy is returned when a send is attempted while a turn is in flight.
var ErrBusy = errors.New("chat: a turn is already in flight")

// ErrEmptyTurn is returned when a send carries neither text nor attachments.
var ErrEmptyTurn = errors.New("chat: nothing to send")

// ErrNoSession is returned when the active session id references no session.
var ErrNoSession = errors.New("chat: no active session")

// =============================================================================
// DRIVER
// =============================================================================

// Generator is the backend the driver streams replies from. It must emit at
// least one fragment even on failure (the fallback contract) and return the
// underlying error for notification.
type Generator interface {
	StreamReply(ctx context.Context, history []model.Message, onFragment gemini.FragmentFunc) error
}

// Driver runs one streaming turn at a time against the session store.
//
// The critical ordering: the active session id and its history are snapshot
// BEFORE the user message is appended, and every store write of the turn
// targets that snapshot id. A session switch mid-stream therefore cannot
// misroute fragments into the newly active session, and a deleted session
// degrades to silent no-ops in the store.
type Driver struct {
	store *store.Store
	gen   Generator
	emit  func(Event)

	mu     sync.Mutex
	phase  Phase
	cancel context.CancelFunc
}

// NewDriver creates a driver. emit receives lifecycle events from the
// turn's goroutine; a nil emit discards them.
func NewDriver(st *store.Store, gen Generator, emit func(Event)) *Driver {
	if emit == nil {
		emit = func(Event) {}
	}
	return &Driver{
		store: st,
		gen:   gen,
		emit:  emit,
		phase: PhaseIdle,
	}
}

// Phase returns the current lifecycle phase.
func (d *Driver) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// Cancel aborts the in-flight turn, if any. The turn settles through its
// normal error path: fallback text if nothing arrived, finalize, failed
// event.
func (d *Driver) Cancel() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Send commits a user turn to the active session and streams the reply in a
// background goroutine. It returns immediately after the user message is
// committed; progress arrives through events.
func (d *Driver) Send(ctx context.Context, text string, attachments []model.Attachment) error {
	if text == "" && len(attachments) == 0 {
		return ErrEmptyTurn
	}

	d.mu.Lock()
	if d.phase.Busy() {
		d.mu.Unlock()
		return ErrBusy
	}

	// Snapshot before the append: the turn is pinned to this session and
	// this history regardless of what the user does next.
	sess, ok := d.store.ActiveSession()
	if !ok {
		d.mu.Unlock()
		return ErrNoSession
	}
	sessionID := sess.ID

	userMsg, ok := d.store.AppendUserMessage(sessionID, text, attachments)
	if !ok {
		d.mu.Unlock()
		return ErrNoSession
	}

	turnCtx, cancel := context.WithCancel(ctx)
	d.phase = PhaseSentUserTurn
	d.cancel = cancel
	d.mu.Unlock()

	d.emit(TurnStartedEvent{SessionID: sessionID, UserMessageID: userMsg.ID})

	// The request history is the snapshot plus the just-committed user
	// message, not a re-read of the store: concurrent edits to the session
	// after this point belong to the next turn.
	history := append(append([]model.Message(nil), sess.Messages...), userMsg)

	go d.runTurn(turnCtx, cancel, sessionID, history)
	return nil
}

// runTurn executes the streaming half of a turn on its own goroutine.
func (d *Driver) runTurn(ctx context.Context, cancel context.CancelFunc, sessionID string, history []model.Message) {
	defer cancel()

	replyID := model.NewMessageID()
	d.setPhase(PhaseThinking)
	d.emit(ThinkingEvent{SessionID: sessionID, ReplyID: replyID})

	began := false
	err := d.gen.StreamReply(ctx, history, func(fragment string) {
		if !began {
			began = true
			d.store.BeginModelMessage(sessionID, replyID)
			d.setPhase(PhaseStreaming)
			d.emit(ReplyBeganEvent{SessionID: sessionID, ReplyID: replyID})
		}
		d.store.AppendFragment(sessionID, replyID, fragment)
		d.emit(FragmentEvent{SessionID: sessionID, ReplyID: replyID, Fragment: fragment})
	})

	// A clean stream that produced no text still needs a reply to settle
	// around: degrade it to the fallback sentence.
	if err == nil && !began {
		err = gemini.NewEmptyReplyError()
		began = true
		d.store.BeginModelMessage(sessionID, replyID)
		d.store.AppendFragment(sessionID, replyID, gemini.FallbackText)
		d.emit(FragmentEvent{SessionID: sessionID, ReplyID: replyID, Fragment: gemini.FallbackText})
	}

	if began {
		d.store.FinalizeMessage(sessionID, replyID)
	}

	d.mu.Lock()
	d.cancel = nil
	if err != nil {
		d.phase = PhaseErrored
	} else {
		d.phase = PhaseSettled
	}
	d.mu.Unlock()

	if err != nil {
		d.emit(TurnFailedEvent{SessionID: sessionID, ReplyID: replyID, Err: err})
		return
	}
	d.emit(TurnSettledEvent{SessionID: sessionID, ReplyID: replyID})
}

func (d *Driver) setPhase(p Phase) {
	d.mu.Lock()
	d.phase = p
	d.mu.Unlock()
}
