// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and runs the plain REPL mode.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	// CmdTUI launches the full-screen interface (the default).
	CmdTUI Command = iota
	// CmdChat runs the line-oriented REPL, for dumb terminals and pipes.
	CmdChat
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Model      string
	ConfigPath string
	Plain      bool
}

const usageText = `lumina - a multimodal AI chat for your terminal

Usage:
  lumina              Launch the TUI
  lumina chat         Line-oriented REPL (no alternate screen)
  lumina version      Print version information

Flags:
  -m, --model NAME    Use a specific model (overrides config)
  --config PATH       Use an alternate config file
  --plain             Alias for the chat command

Environment:
  LUMINA_API_KEY      API key (also GEMINI_API_KEY)
  LUMINA_MODEL        Model override
  LUMINA_BASE_URL     API endpoint override

Interactive commands (both modes):
  /new /sessions /select n /attach path /drop /save /help /quit
`

// Parse reads os.Args and returns the command plus flags.
func Parse() (Command, Args) {
	cmd := CmdTUI
	var args Args

	rest := os.Args[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		switch {
		case arg == "chat":
			cmd = CmdChat
		case arg == "version", arg == "--version", arg == "-V":
			cmd = CmdVersion
		case arg == "help", arg == "--help", arg == "-h":
			cmd = CmdHelp
		case arg == "--plain":
			args.Plain = true
		case arg == "-m", arg == "--model":
			if i+1 < len(rest) {
				i++
				args.Model = rest[i]
			}
		case strings.HasPrefix(arg, "--model="):
			args.Model = strings.TrimPrefix(arg, "--model=")
		case arg == "--config":
			if i+1 < len(rest) {
				i++
				args.ConfigPath = rest[i]
			}
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		}
	}

	if args.Plain && cmd == CmdTUI {
		cmd = CmdChat
	}
	return cmd, args
}

// PrintUsage writes the usage text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information to stdout.
func PrintVersion() {
	fmt.Printf("lumina %s (%s, built %s)\n", Version, GitCommit, BuildDate)
}
