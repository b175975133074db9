// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/lumina-tui/internal/attachment"
	"github.com/jeranaias/lumina-tui/internal/chat"
	"github.com/jeranaias/lumina-tui/internal/config"
	"github.com/jeranaias/lumina-tui/internal/model"
	"github.com/jeranaias/lumina-tui/internal/storage"
	"github.com/jeranaias/lumina-tui/internal/store"
	"github.com/jeranaias/lumina-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Sky).
			Bold(true)

	luminaStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Crimson).
			Bold(true)
)

// =============================================================================
// REPL
// =============================================================================

// Repl is the line-oriented chat mode, used when the terminal cannot host
// the full-screen UI or when requested with --plain. It shares the store,
// driver, and archive with the TUI; only the presentation differs.
type Repl struct {
	store    *store.Store
	driver   *chat.Driver
	archive  *storage.Archive
	line     *liner.State
	history  string
	pending  []model.Attachment
	settled  chan struct{}
	lastFail error
}

// NewRepl creates a REPL around an existing store. The driver is created
// here so its events print inline instead of going through a tea program.
func NewRepl(st *store.Store, gen chat.Generator, archive *storage.Archive) *Repl {
	r := &Repl{
		store:   st,
		archive: archive,
	}
	r.driver = chat.NewDriver(st, gen, r.onEvent)

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	r.line = line

	if dir, err := config.Dir(); err == nil {
		r.history = filepath.Join(dir, "chat_history")
		if f, err := os.Open(r.history); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

// Close saves input history and releases the terminal.
func (r *Repl) Close() {
	if r.history != "" {
		if err := os.MkdirAll(filepath.Dir(r.history), 0o700); err == nil {
			if f, err := os.OpenFile(r.history, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
				r.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	r.line.Close()
}

// onEvent prints driver progress inline. Fragments stream straight to
// stdout; the settled channel releases the prompt loop.
func (r *Repl) onEvent(ev chat.Event) {
	switch e := ev.(type) {
	case chat.ThinkingEvent:
		fmt.Print(luminaStyle.Render("Lumina: "))
	case chat.FragmentEvent:
		fmt.Print(e.Fragment)
	case chat.TurnSettledEvent:
		fmt.Println()
		r.lastFail = nil
		close(r.settled)
	case chat.TurnFailedEvent:
		fmt.Println()
		r.lastFail = e.Err
		close(r.settled)
	}
}

// Run is the main prompt loop. It returns on /quit, Ctrl+D, or Ctrl+C.
func (r *Repl) Run(ctx context.Context) error {
	welcome := r.store.ActiveMessages()
	if len(welcome) > 0 {
		fmt.Println(luminaStyle.Render("Lumina: ") + welcome[0].Text)
	}

	for {
		input, err := r.line.Prompt(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C or EOF ends the session.
			fmt.Println()
			return r.saveAll()
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			quit := r.handleCommand(input)
			if quit {
				return r.saveAll()
			}
			continue
		}

		r.sendAndWait(ctx, input)
	}
}

// sendAndWait runs one turn synchronously: the REPL has no update loop to
// hand fragments to, so it blocks until the turn settles.
func (r *Repl) sendAndWait(ctx context.Context, text string) {
	r.settled = make(chan struct{})
	attachments := r.pending
	r.pending = nil

	if err := r.driver.Send(ctx, text, attachments); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error] ")+err.Error())
		return
	}
	<-r.settled

	if r.lastFail != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[Error] ")+r.lastFail.Error())
	}
	if r.archive != nil {
		if sess, ok := r.store.ActiveSession(); ok {
			if err := r.archive.Save(sess); err != nil {
				fmt.Fprintln(os.Stderr, errorStyle.Render("[Error] ")+err.Error())
			}
		}
	}
}

// handleCommand dispatches slash commands. Returns true to quit.
func (r *Repl) handleCommand(input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		return true

	case "/new":
		sess := r.store.CreateSession()
		fmt.Println(infoStyle.Render("Started a new chat (" + sess.ID[:8] + ")"))

	case "/sessions":
		active := r.store.ActiveID()
		for i, sess := range r.store.Sessions() {
			marker := "  "
			if sess.ID == active {
				marker = "* "
			}
			fmt.Printf("%s%d. %s (%d messages)\n", marker, i+1, sess.Title, len(sess.Messages))
		}

	case "/select":
		sessions := r.store.Sessions()
		if len(fields) != 2 {
			fmt.Println(infoStyle.Render("usage: /select <number>"))
			break
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(sessions) {
			fmt.Println(errorStyle.Render(fmt.Sprintf("no session %s (1-%d)", fields[1], len(sessions))))
			break
		}
		r.store.SelectSession(sessions[n-1].ID)
		r.printTranscript()

	case "/attach":
		path := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
		if path == "" {
			fmt.Println(infoStyle.Render("usage: /attach <path>"))
			break
		}
		att, err := attachment.Encode(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("[Error] ")+err.Error())
			break
		}
		r.pending = append(r.pending, att)
		fmt.Println(infoStyle.Render("Attached " + filepath.Base(path) + " (" + att.MIMEType + ")"))

	case "/drop":
		r.pending = nil
		fmt.Println(infoStyle.Render("Dropped pending attachments"))

	case "/history":
		r.printTranscript()

	case "/save":
		if err := r.saveAll(); err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("[Error] ")+err.Error())
		} else if r.archive != nil {
			fmt.Println(infoStyle.Render("Saved to " + r.archive.Dir()))
		}

	case "/help", "/h":
		fmt.Println(infoStyle.Render("/new /sessions /select n /attach path /drop /history /save /quit"))

	default:
		fmt.Println(errorStyle.Render("unknown command " + fields[0] + " (/help)"))
	}
	return false
}

// printTranscript dumps the active session to stdout.
func (r *Repl) printTranscript() {
	for _, msg := range r.store.ActiveMessages() {
		name := msg.Role.DisplayName()
		style := promptStyle
		if msg.Role == model.RoleModel {
			style = luminaStyle
		}
		for _, att := range msg.Attachments {
			fmt.Println(infoStyle.Render("  [" + att.MIMEType + "] " + filepath.Base(att.PreviewPath)))
		}
		fmt.Println(style.Render(name+": ") + msg.Text)
	}
}

// saveAll persists every session when the archive is enabled.
func (r *Repl) saveAll() error {
	if r.archive == nil {
		return nil
	}
	return r.archive.SaveAll(r.store.Sessions())
}
