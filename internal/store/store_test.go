// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/lumina-tui/internal/model"
)

func TestNew_SeedsOneActiveSession(t *testing.T) {
	st := New()

	sessions := st.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 seeded session, got %d", len(sessions))
	}
	if st.ActiveID() != sessions[0].ID {
		t.Errorf("active id %q does not match seeded session %q", st.ActiveID(), sessions[0].ID)
	}
	if sessions[0].Title != model.SentinelTitle {
		t.Errorf("seeded title = %q, want %q", sessions[0].Title, model.SentinelTitle)
	}
	msgs := st.ActiveMessages()
	if len(msgs) != 1 || msgs[0].ID != model.WelcomeID {
		t.Errorf("seeded session should contain only the welcome message, got %d messages", len(msgs))
	}
}

func TestCreateSession_FrontInsertAndActivate(t *testing.T) {
	st := New()
	first := st.Sessions()[0]

	created := st.CreateSession()

	sessions := st.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != created.ID {
		t.Errorf("new session should be at the front, front is %q", sessions[0].ID)
	}
	if sessions[1].ID != first.ID {
		t.Errorf("prior session should follow, got %q", sessions[1].ID)
	}
	if st.ActiveID() != created.ID {
		t.Errorf("new session should be active, active is %q", st.ActiveID())
	}
}

func TestSelectSession(t *testing.T) {
	st := New()
	first := st.Sessions()[0]
	st.CreateSession()

	st.SelectSession(first.ID)

	if st.ActiveID() != first.ID {
		t.Errorf("active = %q, want %q", st.ActiveID(), first.ID)
	}
}

func TestSelectSession_DanglingID(t *testing.T) {
	st := New()

	st.SelectSession("no-such-session")

	if _, ok := st.ActiveSession(); ok {
		t.Error("dangling active id should report no active session")
	}
	if msgs := st.ActiveMessages(); msgs != nil {
		t.Errorf("dangling active id should yield nil messages, got %d", len(msgs))
	}
}

func TestAppendUserMessage(t *testing.T) {
	st := New()
	id := st.ActiveID()

	msg, ok := st.AppendUserMessage(id, "Explain quantum computing in simple terms for a five year old", nil)
	if !ok {
		t.Fatal("append to known session should succeed")
	}
	if msg.Role != model.RoleUser {
		t.Errorf("role = %q, want %q", msg.Role, model.RoleUser)
	}

	sess, _ := st.ActiveSession()
	if len(sess.Messages) != 2 {
		t.Fatalf("expected welcome + user message, got %d", len(sess.Messages))
	}
	if !strings.HasSuffix(sess.Title, "...") {
		t.Errorf("long first message should derive a truncated title, got %q", sess.Title)
	}
}

func TestAppendUserMessage_TitleDerivedOnce(t *testing.T) {
	st := New()
	id := st.ActiveID()

	st.AppendUserMessage(id, "First question", nil)
	st.AppendUserMessage(id, "Second question", nil)

	sess, _ := st.ActiveSession()
	if sess.Title != "First question" {
		t.Errorf("title should stick to the first derivation, got %q", sess.Title)
	}
}

func TestAppendUserMessage_ImageOnlyTitle(t *testing.T) {
	st := New()
	id := st.ActiveID()
	att := model.Attachment{MIMEType: "image/png", Data: "aGk="}

	st.AppendUserMessage(id, "", []model.Attachment{att})

	sess, _ := st.ActiveSession()
	if sess.Title != model.ImageOnlyTitle {
		t.Errorf("title = %q, want %q", sess.Title, model.ImageOnlyTitle)
	}
}

func TestAppendUserMessage_UnknownSession(t *testing.T) {
	st := New()
	before := st.Sessions()

	_, ok := st.AppendUserMessage("gone", "hello", nil)

	if ok {
		t.Error("append to unknown session should report failure")
	}
	after := st.Sessions()
	if len(after) != len(before) || len(after[0].Messages) != len(before[0].Messages) {
		t.Error("failed append should leave the store untouched")
	}
}

func TestStreamingLifecycle(t *testing.T) {
	st := New()
	id := st.ActiveID()
	replyID := model.NewMessageID()

	if !st.BeginModelMessage(id, replyID) {
		t.Fatal("BeginModelMessage failed")
	}
	st.AppendFragment(id, replyID, "Hello")
	st.AppendFragment(id, replyID, ", world")
	st.FinalizeMessage(id, replyID)

	sess, _ := st.ActiveSession()
	reply, ok := sess.MessageByID(replyID)
	if !ok {
		t.Fatal("reply message not found")
	}
	if reply.Text != "Hello, world" {
		t.Errorf("text = %q, want %q", reply.Text, "Hello, world")
	}
	if reply.IsStreaming {
		t.Error("finalized message should not be streaming")
	}
	if reply.Role != model.RoleModel {
		t.Errorf("role = %q, want %q", reply.Role, model.RoleModel)
	}
}

func TestAppendFragment_StaleIDsAreNoOps(t *testing.T) {
	st := New()
	id := st.ActiveID()
	replyID := model.NewMessageID()
	st.BeginModelMessage(id, replyID)

	if st.AppendFragment("gone", replyID, "x") {
		t.Error("unknown session should be a no-op")
	}
	if st.AppendFragment(id, "gone", "x") {
		t.Error("unknown message should be a no-op")
	}

	sess, _ := st.ActiveSession()
	reply, _ := sess.MessageByID(replyID)
	if reply.Text != "" {
		t.Errorf("no-op appends should not alter text, got %q", reply.Text)
	}
}

func TestFinalizeMessage_Idempotent(t *testing.T) {
	st := New()
	id := st.ActiveID()
	replyID := model.NewMessageID()
	st.BeginModelMessage(id, replyID)
	st.AppendFragment(id, replyID, "done")

	st.FinalizeMessage(id, replyID)
	st.FinalizeMessage(id, replyID)

	sess, _ := st.ActiveSession()
	reply, _ := sess.MessageByID(replyID)
	if reply.IsStreaming || reply.Text != "done" {
		t.Errorf("double finalize altered the message: streaming=%v text=%q", reply.IsStreaming, reply.Text)
	}
}

func TestSnapshots_Immutable(t *testing.T) {
	st := New()
	id := st.ActiveID()

	before, _ := st.ActiveSession()
	beforeCount := len(before.Messages)

	st.AppendUserMessage(id, "mutates the store, not the snapshot", nil)
	replyID := model.NewMessageID()
	st.BeginModelMessage(id, replyID)
	st.AppendFragment(id, replyID, "fragment")

	if len(before.Messages) != beforeCount {
		t.Errorf("snapshot message count changed: %d -> %d", beforeCount, len(before.Messages))
	}
	if before.Messages[0].Text != model.WelcomeText {
		t.Error("snapshot welcome text changed under later writes")
	}
}

func TestReplace(t *testing.T) {
	st := New()

	a := model.NewSession()
	b := model.NewSession()
	st.Replace([]model.ChatSession{a, b}, b.ID)

	if st.Len() != 2 {
		t.Fatalf("expected 2 sessions after replace, got %d", st.Len())
	}
	if st.ActiveID() != b.ID {
		t.Errorf("active = %q, want %q", st.ActiveID(), b.ID)
	}
}

func TestReplace_EmptyReseeds(t *testing.T) {
	st := New()

	st.Replace(nil, "")

	if st.Len() != 1 {
		t.Fatalf("empty replace should reseed a single session, got %d", st.Len())
	}
	if _, ok := st.ActiveSession(); !ok {
		t.Error("reseeded store should have an active session")
	}
}

func TestReplace_UnknownActiveFallsBackToFirst(t *testing.T) {
	st := New()
	a := model.NewSession()

	st.Replace([]model.ChatSession{a}, "gone")

	if st.ActiveID() != a.ID {
		t.Errorf("unknown active id should fall back to first session, got %q", st.ActiveID())
	}
}

func TestStore_ConcurrentWrites(t *testing.T) {
	st := New()
	id := st.ActiveID()
	replyID := model.NewMessageID()
	st.BeginModelMessage(id, replyID)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			st.AppendFragment(id, replyID, fmt.Sprintf("[%02d]", n))
			st.Sessions()
			st.ActiveMessages()
		}(i)
	}
	wg.Wait()
	st.FinalizeMessage(id, replyID)

	sess, _ := st.ActiveSession()
	reply, _ := sess.MessageByID(replyID)
	if len(reply.Text) != 50*4 {
		t.Errorf("expected all 50 fragments committed, text length %d", len(reply.Text))
	}
}
