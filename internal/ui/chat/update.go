// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// toastDuration is how long the error toast stays up before auto-dismiss.
const toastDuration = 5 * time.Second

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		model, cmd, handled := m.handleKey(msg)
		if handled {
			return model, cmd
		}
		m = model

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	// Driver lifecycle.
	case TurnStartedMsg:
		m.refreshTranscript(true)

	case ThinkingMsg:
		m.thinking = true
		cmds = append(cmds, m.spinner.Tick)

	case ReplyBeganMsg:
		m.thinking = false
		m.streaming = true
		m.refreshTranscript(true)

	case FragmentMsg:
		m.refreshTranscript(true)

	case TurnSettledMsg:
		m.thinking = false
		m.streaming = false
		m.refreshTranscript(true)
		cmds = append(cmds, m.saveSessionCmd(msg.SessionID))

	case TurnFailedMsg:
		m.thinking = false
		m.streaming = false
		m.refreshTranscript(true)
		m.toast = ConnectionToastText
		m.toastSeq++
		cmds = append(cmds, dismissToastCmd(m.toastSeq), m.saveSessionCmd(msg.SessionID))

	// UI messages.
	case ErrorToastMsg:
		m.toast = msg.Text
		m.toastSeq++
		cmds = append(cmds, dismissToastCmd(m.toastSeq))

	case ToastDismissMsg:
		if msg.Seq == m.toastSeq {
			m.toast = ""
		}

	case AttachmentAddedMsg:
		m.pending = append(m.pending, msg.Attachment)

	case AttachmentFailedMsg:
		m.toast = msg.Err.Error()
		m.toastSeq++
		cmds = append(cmds, dismissToastCmd(m.toastSeq))

	case ConfigReloadedMsg:
		if msg.Err == nil && msg.Model != "" {
			m.modelName = msg.Model
		}

	case SessionsSavedMsg:
		if msg.Err != nil {
			m.toast = "Could not save session: " + msg.Err.Error()
			m.toastSeq++
			cmds = append(cmds, dismissToastCmd(m.toastSeq))
		}
	}

	// Forward everything else to the focused widgets.
	if !m.pickerOpen {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes key presses. handled=false passes the key through to
// the widgets.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if m.pickerOpen {
		return m.handlePickerKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Sequence(m.saveAllCmd(), tea.Quit), true

	case "esc":
		if m.busy() {
			m.driver.Cancel()
			return m, nil, true
		}
		return m, nil, false

	case "ctrl+n":
		m.newSession()
		return m, nil, true

	case "ctrl+o":
		m.pickerOpen = true
		m.pickerIndex = m.activeIndex()
		return m, nil, true

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if strings.HasPrefix(text, "/") {
			m.input.Reset()
			return m.runCommand(text)
		}
		return m.send(text)
	}

	return m, nil, false
}

// handlePickerKey drives the session picker overlay.
func (m Model) handlePickerKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc", "ctrl+o":
		m.pickerOpen = false
	case "up", "k":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "down", "j":
		if m.pickerIndex < m.store.Len()-1 {
			m.pickerIndex++
		}
	case "enter":
		sessions := m.store.Sessions()
		if m.pickerIndex >= 0 && m.pickerIndex < len(sessions) {
			m.store.SelectSession(sessions[m.pickerIndex].ID)
			m.refreshTranscript(true)
		}
		m.pickerOpen = false
	case "ctrl+c":
		m.quitting = true
		return m, tea.Sequence(m.saveAllCmd(), tea.Quit), true
	}
	return m, nil, true
}

// send commits a turn. Attachment-only turns are allowed; fully empty input
// is ignored.
func (m Model) send(text string) (Model, tea.Cmd, bool) {
	if m.busy() {
		return m, nil, true
	}
	if text == "" && len(m.pending) == 0 {
		return m, nil, true
	}

	attachments := m.pending
	m.pending = nil
	m.input.Reset()

	if err := m.driver.Send(context.Background(), text, attachments); err != nil {
		m.toast = err.Error()
		m.toastSeq++
		return m, dismissToastCmd(m.toastSeq), true
	}
	m.refreshTranscript(true)
	return m, nil, true
}

// newSession creates and activates a fresh session.
func (m *Model) newSession() {
	m.store.CreateSession()
	m.pending = nil
	m.refreshTranscript(true)
}

// activeIndex returns the active session's position in the picker list.
func (m *Model) activeIndex() int {
	active := m.store.ActiveID()
	for i, sess := range m.store.Sessions() {
		if sess.ID == active {
			return i
		}
	}
	return 0
}

// resize recomputes the layout after a terminal size change.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	headerHeight := 2
	statusHeight := 1
	vpHeight := height - headerHeight - statusHeight - inputHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(width - 4)
	m.refreshTranscript(false)
}

// refreshTranscript rebuilds the viewport content from the store.
func (m *Model) refreshTranscript(follow bool) {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if follow && atBottom {
		m.viewport.GotoBottom()
	}
}

// dismissToastCmd schedules the toast auto-dismiss.
func dismissToastCmd(seq int) tea.Cmd {
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return ToastDismissMsg{Seq: seq}
	})
}

// saveSessionCmd persists one session to the archive, if enabled.
func (m Model) saveSessionCmd(sessionID string) tea.Cmd {
	if m.archive == nil {
		return nil
	}
	sess, ok := m.store.Session(sessionID)
	if !ok {
		return nil
	}
	archive := m.archive
	return func() tea.Msg {
		return SessionsSavedMsg{Err: archive.Save(sess)}
	}
}

// saveAllCmd persists every session before quit, if enabled.
func (m Model) saveAllCmd() tea.Cmd {
	if m.archive == nil {
		return nil
	}
	archive := m.archive
	sessions := m.store.Sessions()
	return func() tea.Msg {
		return SessionsSavedMsg{Err: archive.SaveAll(sessions)}
	}
}
