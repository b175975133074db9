// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lumina-tui/internal/attachment"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// runCommand dispatches a slash command typed into the input.
func (m Model) runCommand(line string) (Model, tea.Cmd, bool) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/new":
		m.newSession()
		return m, nil, true

	case "/sessions":
		m.pickerOpen = true
		m.pickerIndex = m.activeIndex()
		return m, nil, true

	case "/select":
		if len(args) != 1 {
			return m.toastf("usage: /select <number>")
		}
		n, err := strconv.Atoi(args[0])
		sessions := m.store.Sessions()
		if err != nil || n < 1 || n > len(sessions) {
			return m.toastf("no session %s (1-%d)", args[0], len(sessions))
		}
		m.store.SelectSession(sessions[n-1].ID)
		m.refreshTranscript(true)
		return m, nil, true

	case "/attach":
		if len(args) == 0 {
			return m.toastf("usage: /attach <path>")
		}
		// Paths may contain spaces; everything after the command is one path.
		path := strings.TrimSpace(strings.TrimPrefix(line, cmd))
		return m, attachCmd(path), true

	case "/drop":
		m.pending = nil
		return m, nil, true

	case "/save":
		if m.archive == nil {
			return m.toastf("session persistence is disabled (storage.enabled)")
		}
		return m, m.saveAllCmd(), true

	case "/help":
		return m.toastf("/new /sessions /select n /attach path /drop /save /quit")

	case "/quit":
		m.quitting = true
		return m, tea.Sequence(m.saveAllCmd(), tea.Quit), true

	default:
		return m.toastf("unknown command %s (/help)", cmd)
	}
}

// toastf shows a formatted toast with the standard auto-dismiss.
func (m Model) toastf(format string, args ...interface{}) (Model, tea.Cmd, bool) {
	m.toast = fmt.Sprintf(format, args...)
	m.toastSeq++
	return m, dismissToastCmd(m.toastSeq), true
}

// attachCmd encodes a file off the update loop.
func attachCmd(path string) tea.Cmd {
	return func() tea.Msg {
		att, err := attachment.Encode(path)
		if err != nil {
			return AttachmentFailedMsg{Path: path, Err: err}
		}
		return AttachmentAddedMsg{Attachment: att}
	}
}
