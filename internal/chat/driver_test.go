// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/lumina-tui/internal/gemini"
	"github.com/jeranaias/lumina-tui/internal/model"
	"github.com/jeranaias/lumina-tui/internal/store"
)

// fakeGenerator scripts a streaming reply for tests. It mirrors the client
// contract: fallback fragment on failure with nothing sent, error returned
// either way.
type fakeGenerator struct {
	fragments []string
	err       error
	// onStream, when set, runs after the first fragment is delivered. Used
	// to interleave store mutations mid-stream.
	onStream func()

	gotHistory []model.Message
}

func (f *fakeGenerator) StreamReply(ctx context.Context, history []model.Message, onFragment gemini.FragmentFunc) error {
	f.gotHistory = history
	sent := false
	for i, frag := range f.fragments {
		onFragment(frag)
		sent = true
		if i == 0 && f.onStream != nil {
			f.onStream()
		}
	}
	if f.err != nil && !sent {
		onFragment(gemini.FallbackText)
	}
	return f.err
}

// collectEvents wires a driver to a channel and returns a helper that waits
// for the terminal event of a turn, returning everything seen.
func collectEvents(t *testing.T) (func(Event), func() []Event) {
	t.Helper()
	ch := make(chan Event, 64)
	emit := func(ev Event) { ch <- ev }
	wait := func() []Event {
		var events []Event
		deadline := time.After(2 * time.Second)
		for {
			select {
			case ev := <-ch:
				events = append(events, ev)
				switch ev.(type) {
				case TurnSettledEvent, TurnFailedEvent:
					return events
				}
			case <-deadline:
				t.Fatalf("turn did not settle; events so far: %v", events)
			}
		}
	}
	return emit, wait
}

func TestSend_HappyPath(t *testing.T) {
	st := store.New()
	gen := &fakeGenerator{fragments: []string{"Hello", ", world"}}
	emit, wait := collectEvents(t)
	d := NewDriver(st, gen, emit)

	if err := d.Send(context.Background(), "hi", nil); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	events := wait()

	// Lifecycle order: started, thinking, began, fragments, settled.
	if _, ok := events[0].(TurnStartedEvent); !ok {
		t.Errorf("first event %T, want TurnStartedEvent", events[0])
	}
	if _, ok := events[1].(ThinkingEvent); !ok {
		t.Errorf("second event %T, want ThinkingEvent", events[1])
	}
	if _, ok := events[2].(ReplyBeganEvent); !ok {
		t.Errorf("third event %T, want ReplyBeganEvent", events[2])
	}
	last := events[len(events)-1]
	settled, ok := last.(TurnSettledEvent)
	if !ok {
		t.Fatalf("last event %T, want TurnSettledEvent", last)
	}

	sess, _ := st.ActiveSession()
	reply, ok := sess.MessageByID(settled.ReplyID)
	if !ok {
		t.Fatal("reply not in store")
	}
	if reply.Text != "Hello, world" {
		t.Errorf("reply text = %q", reply.Text)
	}
	if reply.IsStreaming {
		t.Error("settled reply should be finalized")
	}
	if d.Phase() != PhaseSettled {
		t.Errorf("phase = %v, want settled", d.Phase())
	}
}

func TestSend_HistorySnapshotExcludesNothing(t *testing.T) {
	st := store.New()
	gen := &fakeGenerator{fragments: []string{"ok"}}
	emit, wait := collectEvents(t)
	d := NewDriver(st, gen, emit)

	if err := d.Send(context.Background(), "question", nil); err != nil {
		t.Fatal(err)
	}
	wait()

	// History handed to the backend: welcome + the new user message. The
	// backend client is responsible for excluding the welcome turn.
	if len(gen.gotHistory) != 2 {
		t.Fatalf("history length = %d, want 2", len(gen.gotHistory))
	}
	if gen.gotHistory[0].ID != model.WelcomeID {
		t.Error("history should start at the snapshot")
	}
	if gen.gotHistory[1].Text != "question" {
		t.Error("history should end with the committed user message")
	}
}

func TestSend_EmptyTurnRejected(t *testing.T) {
	d := NewDriver(store.New(), &fakeGenerator{}, nil)
	if err := d.Send(context.Background(), "", nil); !errors.Is(err, ErrEmptyTurn) {
		t.Errorf("expected ErrEmptyTurn, got %v", err)
	}
}

func TestSend_AttachmentOnlyTurnAllowed(t *testing.T) {
	st := store.New()
	gen := &fakeGenerator{fragments: []string{"A cat."}}
	emit, wait := collectEvents(t)
	d := NewDriver(st, gen, emit)

	att := model.Attachment{MIMEType: "image/png", Data: "aGk="}
	if err := d.Send(context.Background(), "", []model.Attachment{att}); err != nil {
		t.Fatalf("attachment-only send failed: %v", err)
	}
	wait()

	sess, _ := st.ActiveSession()
	if sess.Title != model.ImageOnlyTitle {
		t.Errorf("title = %q, want %q", sess.Title, model.ImageOnlyTitle)
	}
}

func TestSend_BusyRejected(t *testing.T) {
	st := store.New()
	release := make(chan struct{})
	gen := &fakeGenerator{fragments: []string{"slow"}, onStream: func() { <-release }}
	emit, wait := collectEvents(t)
	d := NewDriver(st, gen, emit)

	if err := d.Send(context.Background(), "first", nil); err != nil {
		t.Fatal(err)
	}
	// The turn is in flight (blocked in onStream); a second send must bounce.
	waitForBusy(t, d)
	if err := d.Send(context.Background(), "second", nil); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	close(release)
	wait()

	if err := d.Send(context.Background(), "third", nil); err != nil {
		t.Errorf("send after settle should succeed, got %v", err)
	}
	wait()
}

func TestSend_MidStreamSessionSwitch(t *testing.T) {
	st := store.New()
	origID := st.ActiveID()

	var d *Driver
	gen := &fakeGenerator{fragments: []string{"part one ", "part two"}}
	gen.onStream = func() {
		// Switch sessions while fragments are still arriving.
		st.CreateSession()
	}
	emit, wait := collectEvents(t)
	d = NewDriver(st, gen, emit)

	if err := d.Send(context.Background(), "pinned", nil); err != nil {
		t.Fatal(err)
	}
	events := wait()

	settled := events[len(events)-1].(TurnSettledEvent)
	if settled.SessionID != origID {
		t.Errorf("turn settled against %q, want original %q", settled.SessionID, origID)
	}

	// All text landed in the original session, none in the new one.
	orig, _ := st.Session(origID)
	reply, ok := orig.MessageByID(settled.ReplyID)
	if !ok || reply.Text != "part one part two" {
		t.Errorf("original session reply = %+v", reply)
	}
	active, _ := st.ActiveSession()
	if active.ID == origID {
		t.Fatal("session switch did not take")
	}
	if len(active.Messages) != 1 {
		t.Errorf("new session should hold only its welcome message, has %d", len(active.Messages))
	}
}

func TestSend_FailureDegradesToFallback(t *testing.T) {
	st := store.New()
	gen := &fakeGenerator{err: errors.New("boom")}
	emit, wait := collectEvents(t)
	d := NewDriver(st, gen, emit)

	if err := d.Send(context.Background(), "hi", nil); err != nil {
		t.Fatal(err)
	}
	events := wait()

	failed, ok := events[len(events)-1].(TurnFailedEvent)
	if !ok {
		t.Fatalf("last event %T, want TurnFailedEvent", events[len(events)-1])
	}
	if failed.Err == nil {
		t.Error("failed event should carry the error")
	}

	sess, _ := st.ActiveSession()
	reply, ok := sess.MessageByID(failed.ReplyID)
	if !ok {
		t.Fatal("degraded reply should still exist in the transcript")
	}
	if reply.Text != gemini.FallbackText {
		t.Errorf("reply text = %q, want fallback", reply.Text)
	}
	if reply.IsStreaming {
		t.Error("degraded reply must be finalized")
	}
	if d.Phase() != PhaseErrored {
		t.Errorf("phase = %v, want errored", d.Phase())
	}
}

func TestSend_EmptyStreamDegrades(t *testing.T) {
	st := store.New()
	gen := &fakeGenerator{} // clean return, zero fragments
	emit, wait := collectEvents(t)
	d := NewDriver(st, gen, emit)

	if err := d.Send(context.Background(), "hi", nil); err != nil {
		t.Fatal(err)
	}
	events := wait()

	failed, ok := events[len(events)-1].(TurnFailedEvent)
	if !ok {
		t.Fatalf("empty stream should fail the turn, got %T", events[len(events)-1])
	}
	sess, _ := st.ActiveSession()
	reply, _ := sess.MessageByID(failed.ReplyID)
	if reply.Text != gemini.FallbackText {
		t.Errorf("reply text = %q, want fallback", reply.Text)
	}
}

func TestSend_PartialStreamKeptOnFailure(t *testing.T) {
	st := store.New()
	gen := &fakeGenerator{fragments: []string{"partial "}, err: errors.New("cut off")}
	emit, wait := collectEvents(t)
	d := NewDriver(st, gen, emit)

	if err := d.Send(context.Background(), "hi", nil); err != nil {
		t.Fatal(err)
	}
	events := wait()

	failed := events[len(events)-1].(TurnFailedEvent)
	sess, _ := st.ActiveSession()
	reply, _ := sess.MessageByID(failed.ReplyID)
	if reply.Text != "partial " {
		t.Errorf("partial text should be kept verbatim, got %q", reply.Text)
	}
	if strings.Contains(reply.Text, gemini.FallbackText) {
		t.Error("fallback must not be appended after real text")
	}
}

func TestCancel(t *testing.T) {
	st := store.New()

	canceled := make(chan struct{})
	gen := &ctxGenerator{started: make(chan struct{}), unblock: canceled}
	emit, wait := collectEvents(t)
	d := NewDriver(st, gen, emit)

	if err := d.Send(context.Background(), "hi", nil); err != nil {
		t.Fatal(err)
	}
	<-gen.started
	d.Cancel()
	events := wait()

	if _, ok := events[len(events)-1].(TurnFailedEvent); !ok {
		t.Errorf("canceled turn should fail, got %T", events[len(events)-1])
	}
	if d.Phase() != PhaseErrored {
		t.Errorf("phase = %v, want errored", d.Phase())
	}
}

// ctxGenerator blocks until its context is canceled, then honors the
// fallback contract.
type ctxGenerator struct {
	started chan struct{}
	unblock chan struct{}
}

func (g *ctxGenerator) StreamReply(ctx context.Context, history []model.Message, onFragment gemini.FragmentFunc) error {
	close(g.started)
	<-ctx.Done()
	onFragment(gemini.FallbackText)
	return ctx.Err()
}

func waitForBusy(t *testing.T, d *Driver) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if d.Phase().Busy() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("driver never became busy")
}
