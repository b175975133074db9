// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/lumina-tui/internal/chat"
	"github.com/jeranaias/lumina-tui/internal/config"
	"github.com/jeranaias/lumina-tui/internal/gemini"
	"github.com/jeranaias/lumina-tui/internal/model"
	"github.com/jeranaias/lumina-tui/internal/store"
)

type nullGenerator struct{}

func (nullGenerator) StreamReply(ctx context.Context, history []model.Message, onFragment gemini.FragmentFunc) error {
	onFragment("ok")
	return nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	st := store.New()
	driver := chat.NewDriver(st, nullGenerator{}, nil)
	return New(st, driver, nil, config.Default(), "gemini-2.5-flash")
}

func TestMapEvent(t *testing.T) {
	tests := []struct {
		name string
		in   chat.Event
		want interface{}
	}{
		{"started", chat.TurnStartedEvent{SessionID: "s"}, TurnStartedMsg{SessionID: "s"}},
		{"thinking", chat.ThinkingEvent{SessionID: "s", ReplyID: "r"}, ThinkingMsg{SessionID: "s", ReplyID: "r"}},
		{"began", chat.ReplyBeganEvent{SessionID: "s", ReplyID: "r"}, ReplyBeganMsg{SessionID: "s", ReplyID: "r"}},
		{"fragment", chat.FragmentEvent{SessionID: "s", ReplyID: "r", Fragment: "x"}, FragmentMsg{SessionID: "s", ReplyID: "r", Fragment: "x"}},
		{"settled", chat.TurnSettledEvent{SessionID: "s", ReplyID: "r"}, TurnSettledMsg{SessionID: "s", ReplyID: "r"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapEvent(tt.in); got != tt.want {
				t.Errorf("MapEvent(%T) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapEvent_Failed(t *testing.T) {
	err := errors.New("boom")
	got := MapEvent(chat.TurnFailedEvent{SessionID: "s", ReplyID: "r", Err: err})
	failed, ok := got.(TurnFailedMsg)
	if !ok {
		t.Fatalf("got %T, want TurnFailedMsg", got)
	}
	if failed.Err != err {
		t.Error("error not carried through")
	}
}

func TestAttachmentLabel(t *testing.T) {
	tests := []struct {
		att  model.Attachment
		want string
	}{
		{model.Attachment{MIMEType: "image/png", PreviewPath: "/tmp/cat.png"}, "cat.png (image)"},
		{model.Attachment{MIMEType: "video/mp4", PreviewPath: "clip.mp4"}, "clip.mp4 (video)"},
		{model.Attachment{MIMEType: "image/png"}, "image/png (image)"},
	}
	for _, tt := range tests {
		if got := attachmentLabel(tt.att); got != tt.want {
			t.Errorf("attachmentLabel(%q) = %q, want %q", tt.att.PreviewPath, got, tt.want)
		}
	}
}

func TestRunCommand_Unknown(t *testing.T) {
	m := newTestModel(t)
	next, cmd, handled := m.runCommand("/bogus")
	if !handled {
		t.Fatal("slash commands are always handled")
	}
	if next.toast == "" {
		t.Error("unknown command should raise a toast")
	}
	if cmd == nil {
		t.Error("toast should schedule its dismiss")
	}
}

func TestRunCommand_New(t *testing.T) {
	m := newTestModel(t)
	before := m.store.Len()
	next, _, _ := m.runCommand("/new")
	if next.store.Len() != before+1 {
		t.Errorf("sessions = %d, want %d", next.store.Len(), before+1)
	}
}

func TestRunCommand_SelectOutOfRange(t *testing.T) {
	m := newTestModel(t)
	next, _, _ := m.runCommand("/select 9")
	if next.toast == "" {
		t.Error("out-of-range select should raise a toast")
	}
}

func TestSend_EmptyIgnored(t *testing.T) {
	m := newTestModel(t)
	next, cmd, handled := m.send("")
	if !handled {
		t.Fatal("empty send is consumed")
	}
	if cmd != nil {
		t.Error("empty send should do nothing")
	}
	if next.busy() {
		t.Error("empty send must not start a turn")
	}
}

func TestToastDismiss_StaleSeqIgnored(t *testing.T) {
	m := newTestModel(t)
	m.toast = "current"
	m.toastSeq = 2

	next, _ := m.Update(ToastDismissMsg{Seq: 1})
	if next.(Model).toast != "current" {
		t.Error("stale dismiss cleared a newer toast")
	}

	next, _ = m.Update(ToastDismissMsg{Seq: 2})
	if next.(Model).toast != "" {
		t.Error("matching dismiss should clear the toast")
	}
}
