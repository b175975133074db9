// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns the session collection and the active-session pointer.
package store

import (
	"sync"

	"github.com/jeranaias/lumina-tui/internal/model"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// Store holds every chat session and the id of the active one. It is the only
// owner of session state: all mutation goes through its operations, and each
// operation replaces state wholesale (copy-on-write) rather than mutating in
// place. Snapshots handed out by the read methods therefore stay immutable
// even while later operations commit.
//
// The Store is safe for concurrent use. The UI reads snapshots between
// operations; streaming turns write through the operations from their own
// goroutines.
type Store struct {
	mu       sync.RWMutex
	sessions []model.ChatSession
	activeID string
}

// New creates a store seeded with one fresh session, which becomes active.
// Every session carries the welcome message from birth, so the collection is
// never empty and the active session never has an empty transcript.
func New() *Store {
	first := model.NewSession()
	return &Store{
		sessions: []model.ChatSession{first},
		activeID: first.ID,
	}
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// CreateSession inserts a new session at the front of the collection and
// makes it active. Returns a snapshot of the new session.
func (s *Store) CreateSession() model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := model.NewSession()
	next := make([]model.ChatSession, 0, len(s.sessions)+1)
	next = append(next, sess)
	next = append(next, s.sessions...)
	s.sessions = next
	s.activeID = sess.ID
	return sess
}

// SelectSession sets the active session id. The id is not validated: an id
// that references no session leaves the store with an absent active session,
// which the read methods report as "no messages" rather than failing.
func (s *Store) SelectSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
}

// AppendUserMessage appends a fully-formed user message to the named session
// and derives the session title if it is still the sentinel. Returns the
// appended message and true, or false if the session id is unknown (no-op).
func (s *Store) AppendUserMessage(sessionID, text string, attachments []model.Attachment) (model.Message, bool) {
	msg := model.NewUserMessage(text, attachments)
	ok := s.updateSession(sessionID, func(sess model.ChatSession) model.ChatSession {
		sess.Messages = appendMessage(sess.Messages, msg)
		if sess.Title == model.SentinelTitle {
			sess.Title = model.DeriveTitle(text)
		}
		return sess
	})
	if !ok {
		return model.Message{}, false
	}
	return msg, true
}

// BeginModelMessage appends a new, empty model message with IsStreaming set
// to the named session. Called exactly once per turn, on the first fragment.
func (s *Store) BeginModelMessage(sessionID, messageID string) bool {
	return s.updateSession(sessionID, func(sess model.ChatSession) model.ChatSession {
		sess.Messages = appendMessage(sess.Messages, model.NewModelMessage(messageID))
		return sess
	})
}

// AppendFragment concatenates fragment onto the named message's text. A
// missing session or message id is a silent no-op: it indicates a stale
// reference from a racing turn, not corrupt data, and must never crash the
// store.
func (s *Store) AppendFragment(sessionID, messageID, fragment string) bool {
	return s.updateMessage(sessionID, messageID, func(m model.Message) model.Message {
		m.Text += fragment
		return m
	})
}

// FinalizeMessage clears IsStreaming on the named message. Idempotent:
// finalizing an already-final message changes nothing.
func (s *Store) FinalizeMessage(sessionID, messageID string) bool {
	return s.updateMessage(sessionID, messageID, func(m model.Message) model.Message {
		m.IsStreaming = false
		return m
	})
}

// Replace swaps in an externally assembled collection, e.g. a restored
// archive. An empty collection is rejected in favor of a fresh seed so the
// at-least-one-session invariant holds.
func (s *Store) Replace(sessions []model.ChatSession, activeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(sessions) == 0 {
		first := model.NewSession()
		s.sessions = []model.ChatSession{first}
		s.activeID = first.ID
		return
	}
	s.sessions = append([]model.ChatSession(nil), sessions...)
	s.activeID = activeID
	if _, ok := s.findLocked(activeID); !ok {
		s.activeID = s.sessions[0].ID
	}
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// Sessions returns a snapshot of the collection, newest first.
func (s *Store) Sessions() []model.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ChatSession(nil), s.sessions...)
}

// ActiveID returns the active session id. The id may be dangling after a
// SelectSession with an unknown id; callers that need messages should use
// ActiveSession or ActiveMessages, which handle absence.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// ActiveSession returns a snapshot of the active session, if one exists.
func (s *Store) ActiveSession() (model.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(s.activeID)
}

// Session returns a snapshot of the named session, if it exists.
func (s *Store) Session(id string) (model.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(id)
}

// ActiveMessages returns the active session's transcript, or nil when the
// active id is dangling ("no messages to show", never a crash).
func (s *Store) ActiveMessages() []model.Message {
	sess, ok := s.ActiveSession()
	if !ok {
		return nil
	}
	return sess.Messages
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// findLocked locates a session by id. Caller holds at least the read lock.
func (s *Store) findLocked(id string) (model.ChatSession, bool) {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return model.ChatSession{}, false
}

// updateSession rebuilds the collection with fn applied to the named session.
// Returns false (and commits nothing) when the id is unknown.
func (s *Store) updateSession(id string, fn func(model.ChatSession) model.ChatSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, sess := range s.sessions {
		if sess.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	next := append([]model.ChatSession(nil), s.sessions...)
	next[idx] = fn(next[idx])
	s.sessions = next
	return true
}

// updateMessage rebuilds the named session with fn applied to the named
// message. Returns false when either id is unknown.
func (s *Store) updateMessage(sessionID, messageID string, fn func(model.Message) model.Message) bool {
	found := false
	ok := s.updateSession(sessionID, func(sess model.ChatSession) model.ChatSession {
		for i, m := range sess.Messages {
			if m.ID == messageID {
				msgs := append([]model.Message(nil), sess.Messages...)
				msgs[i] = fn(m)
				sess.Messages = msgs
				found = true
				break
			}
		}
		return sess
	})
	return ok && found
}

// appendMessage appends onto a fresh slice so older snapshots keep their
// backing array untouched.
func appendMessage(msgs []model.Message, msg model.Message) []model.Message {
	next := make([]model.Message, 0, len(msgs)+1)
	next = append(next, msgs...)
	next = append(next, msg)
	return next
}
