// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lumina-tui/internal/model"
	"github.com/jeranaias/lumina-tui/internal/util"
)

// streamCursor marks the live tail of a streaming reply.
const streamCursor = "▌"

// View renders the whole screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.pickerOpen {
		b.WriteString(m.renderPicker())
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")

	if m.toast != "" {
		b.WriteString(m.theme.ErrorToast.Render(m.toast))
		b.WriteString("\n")
	}
	if m.thinking {
		b.WriteString(m.spinner.View())
		b.WriteString(m.theme.ThinkingText.Render(" Lumina is thinking..."))
		b.WriteString("\n")
	}

	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderHeader draws the brand line with the session title.
func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("✦ Lumina")
	title := m.theme.HeaderTitle.Render(util.TruncateWidth(m.activeTitle(), m.width/2))
	line := brand + "  " + title
	return m.theme.Header.Width(m.width).Render(line)
}

// renderTranscript builds the viewport content from the active session.
func (m Model) renderTranscript() string {
	msgs := m.store.ActiveMessages()
	if len(msgs) == 0 {
		return m.theme.ThinkingText.Render("No session selected.")
	}

	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg))
	}
	return strings.Join(parts, "\n\n")
}

// renderMessage draws one message bubble with sender, attachments, text,
// and timestamp.
func (m Model) renderMessage(msg model.Message) string {
	var sender, bubble lipgloss.Style
	switch msg.Role {
	case model.RoleUser:
		sender = m.theme.SenderUser
		bubble = m.theme.UserBubble
	default:
		sender = m.theme.SenderLumina
		bubble = m.theme.LuminaBubble
	}

	var b strings.Builder
	b.WriteString(sender.Render(msg.Role.DisplayName()))
	if m.cfg.UI.ShowTimestamps {
		b.WriteString("  ")
		b.WriteString(m.theme.Timestamp.Render(msg.Timestamp.Format("15:04")))
	}
	b.WriteString("\n")

	for _, att := range msg.Attachments {
		b.WriteString(m.theme.AttachChip.Render(attachmentLabel(att)))
		b.WriteString("\n")
	}

	text := msg.Text
	if msg.IsStreaming {
		text += m.theme.StreamCursor.Render(streamCursor)
	}
	if text != "" {
		b.WriteString(text)
	}

	return bubble.MaxWidth(m.theme.BubbleWidth()).Render(b.String())
}

// renderPicker draws the session overlay list.
func (m Model) renderPicker() string {
	sessions := m.store.Sessions()
	active := m.store.ActiveID()

	var b strings.Builder
	b.WriteString(m.theme.SenderLumina.Render("Sessions"))
	b.WriteString("\n\n")
	for i, sess := range sessions {
		label := util.TruncateWidth(sess.Title, m.width-20)
		if !sess.HasDerivedTitle() {
			label = m.theme.InputPlaceholder.Render(label)
		}
		meta := fmt.Sprintf(" %d messages", len(sess.Messages))
		if last, ok := sess.LastMessage(); ok {
			if p := last.Preview(32); p != "" {
				meta += " • " + p
			}
		}
		if sess.ID == active {
			meta += " • current"
		}
		line := label + m.theme.SessionMeta.Render(meta)
		if i == m.pickerIndex {
			b.WriteString(m.theme.SessionItemSelected.Render("› " + line))
		} else {
			b.WriteString(m.theme.SessionItem.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.StatusDesc.Render("↑/↓ select • enter open • esc close"))

	content := m.theme.SessionList.Width(m.width - 4).Render(b.String())
	return lipgloss.Place(m.width, m.viewport.Height, lipgloss.Center, lipgloss.Top, content)
}

// renderInput draws the input area with pending attachment chips.
func (m Model) renderInput() string {
	var b strings.Builder
	if len(m.pending) > 0 {
		chips := make([]string, len(m.pending))
		for i, att := range m.pending {
			chips[i] = m.theme.PendingChip.Render("📎 " + attachmentLabel(att))
		}
		b.WriteString(strings.Join(chips, "  "))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return m.theme.InputContainer.Width(m.width).Render(b.String())
}

// renderStatusBar draws the shortcut hints and model name.
func (m Model) renderStatusBar() string {
	hints := []string{
		m.theme.StatusKey.Render("enter") + m.theme.StatusDesc.Render(" send"),
		m.theme.StatusKey.Render("^n") + m.theme.StatusDesc.Render(" new"),
		m.theme.StatusKey.Render("^o") + m.theme.StatusDesc.Render(" sessions"),
		m.theme.StatusKey.Render("esc") + m.theme.StatusDesc.Render(" cancel"),
		m.theme.StatusKey.Render("^c") + m.theme.StatusDesc.Render(" quit"),
	}
	left := strings.Join(hints, "  ")
	right := m.theme.StatusDesc.Render(m.modelName)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// attachmentLabel names an attachment for chips: file name plus media kind.
func attachmentLabel(att model.Attachment) string {
	name := filepath.Base(att.PreviewPath)
	if name == "." || name == "" {
		name = att.MIMEType
	}
	switch {
	case att.IsVideo():
		return name + " (video)"
	case att.IsImage():
		return name + " (image)"
	default:
		return name
	}
}
