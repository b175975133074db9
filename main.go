// lumina TUI - a multimodal AI chat for your terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/lumina-tui/internal/chat"
	"github.com/jeranaias/lumina-tui/internal/cli"
	"github.com/jeranaias/lumina-tui/internal/config"
	"github.com/jeranaias/lumina-tui/internal/gemini"
	"github.com/jeranaias/lumina-tui/internal/storage"
	"github.com/jeranaias/lumina-tui/internal/store"
	uichat "github.com/jeranaias/lumina-tui/internal/ui/chat"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion()
		return
	case cli.CmdHelp:
		cli.PrintUsage()
		return
	}

	cfgPath := args.ConfigPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.DefaultPath()
		if err != nil {
			fatal(err)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(err)
	}
	if args.Model != "" {
		cfg.API.Model = args.Model
	}

	client := gemini.NewClient(gemini.ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		APIKey:            cfg.API.Key,
		Model:             cfg.API.Model,
		Timeout:           timeoutFrom(cfg),
		RequestsPerMinute: cfg.API.RequestsPerMinute,
	})

	st := store.New()

	var archive *storage.Archive
	if cfg.Storage.Enabled {
		dir, err := cfg.SessionsDir()
		if err != nil {
			fatal(err)
		}
		archive, err = storage.NewArchive(dir)
		if err != nil {
			fatal(err)
		}
		restoreSessions(st, archive)
	}

	// A pipe or dumb terminal cannot host the alternate screen.
	if cmd == cli.CmdChat || !term.IsTerminal(int(os.Stdout.Fd())) {
		runRepl(st, client, archive)
		return
	}

	runTUI(st, client, archive, cfg, cfgPath)
}

// restoreSessions loads the archive into the store, newest first. An empty
// or unreadable archive leaves the seeded session in place.
func restoreSessions(st *store.Store, archive *storage.Archive) {
	sessions, err := archive.LoadAll()
	if err != nil || len(sessions) == 0 {
		return
	}
	st.Replace(sessions, sessions[0].ID)
}

// runTUI wires the driver into a bubbletea program and blocks until exit.
func runTUI(st *store.Store, client *gemini.Client, archive *storage.Archive, cfg config.Config, cfgPath string) {
	driver := chat.NewDriver(st, client, func(ev chat.Event) {
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p == nil {
			return
		}
		if msg := uichat.MapEvent(ev); msg != nil {
			p.Send(msg)
		}
	})

	m := uichat.New(st, driver, archive, cfg, client.Model())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Hot-reload: a changed config file updates the model name in the
	// status bar. Connection settings apply on next launch.
	watcher, err := config.Watch(cfgPath, func(next config.Config, err error) {
		programMu.Lock()
		prog := programRef
		programMu.Unlock()
		if prog == nil {
			return
		}
		if err != nil {
			prog.Send(uichat.ConfigReloadedMsg{Err: err})
			return
		}
		prog.Send(uichat.ConfigReloadedMsg{Model: next.API.Model})
	})
	if err == nil {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

// runRepl runs the line-oriented mode.
func runRepl(st *store.Store, client *gemini.Client, archive *storage.Archive) {
	repl := cli.NewRepl(st, client, archive)
	defer repl.Close()
	if err := repl.Run(context.Background()); err != nil {
		fatal(err)
	}
}

func timeoutFrom(cfg config.Config) time.Duration {
	return time.Duration(cfg.API.TimeoutSeconds) * time.Second
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "lumina:", err)
	os.Exit(1)
}
