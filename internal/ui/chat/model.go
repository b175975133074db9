// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/lumina-tui/internal/chat"
	"github.com/jeranaias/lumina-tui/internal/config"
	"github.com/jeranaias/lumina-tui/internal/model"
	"github.com/jeranaias/lumina-tui/internal/storage"
	"github.com/jeranaias/lumina-tui/internal/store"
	"github.com/jeranaias/lumina-tui/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// ConnectionToastText is the toast shown when a turn fails.
const ConnectionToastText = "Unable to connect to Lumina. " +
	"Please check your internet connection and try again."

const inputHeight = 3

// =============================================================================
// MODEL
// =============================================================================

// Model is the TUI root component: transcript viewport, input area, session
// picker, toast, and the wiring into the turn driver.
type Model struct {
	store   *store.Store
	driver  *chat.Driver
	archive *storage.Archive // nil when persistence is off
	cfg     config.Config
	theme   *styles.Theme

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	// pending holds attachments queued for the next send.
	pending []model.Attachment

	thinking  bool
	streaming bool

	toast    string
	toastSeq int

	pickerOpen  bool
	pickerIndex int

	modelName string
	width     int
	height    int
	ready     bool
	quitting  bool
}

// New creates the root model. archive may be nil when persistence is
// disabled.
func New(st *store.Store, driver *chat.Driver, archive *storage.Archive, cfg config.Config, modelName string) Model {
	theme := styles.NewTheme(cfg.UI.Theme)

	ta := textarea.New()
	ta.Placeholder = "Message Lumina... (/help for commands)"
	ta.Prompt = "┃ "
	ta.CharLimit = 0
	ta.SetHeight(inputHeight - 2)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		store:     st,
		driver:    driver,
		archive:   archive,
		cfg:       cfg,
		theme:     theme,
		input:     ta,
		spinner:   sp,
		modelName: modelName,
	}
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// busy reports whether a turn is in flight.
func (m *Model) busy() bool {
	return m.thinking || m.streaming
}

// activeTitle returns the active session's display title.
func (m *Model) activeTitle() string {
	sess, ok := m.store.ActiveSession()
	if !ok {
		return ""
	}
	return sess.Title
}
