// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing and dispatch for xst.
//
// Running xst with no arguments starts the full-screen TUI. A small set
// of subcommands cover scripted use: a line-oriented chat REPL, a status
// printout, and config inspection.
package cli

import (
	"fmt"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the top-level command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

const usageText = `xst - terminal client for the xst chat service

Usage:
  xst                        Start the TUI (default)
  xst chat                   Line-oriented chat REPL
  xst status, s              Show backend and session status
  xst config [show|set|path] Configuration
  xst version                Print version information
  xst help                   Show this help

Chat REPL Commands:
  /new                       Create a new conversation
  /list                      List conversations
  /switch <n>                Switch to conversation n from /list
  /quit                      Exit the REPL

Config Commands:
  xst config                 Show current configuration (default)
  xst config show            Show current configuration
  xst config set <key> <value>
  xst config path            Show config file location
  xst config reset           Reset to defaults

Configuration Keys:
  api.base_url               Backend base URL (required)
  api.timeout_secs           Request timeout in seconds
  api.upload_timeout_secs    Upload timeout in seconds
  ui.theme                   dark, light, or auto
  ui.markdown                Render assistant replies as markdown
  ui.sidebar_width           Conversation list width
  upload.cooldown_secs       Seconds between image uploads
  upload.max_size_mb         Maximum image size in MB

Flags:
  --json                     JSON output (status, config show)
  -q, --quiet                Suppress decorative output

Environment:
  XST_API_BASE_URL           Overrides api.base_url
  XST_THEME                  Overrides ui.theme
  XST_NO_MARKDOWN            Disables markdown rendering
  XST_LOG_LEVEL              trace, debug, info, warn, error, off
`

// Args holds parsed top-level arguments.
type Args struct {
	Quiet bool
	JSON  bool

	// Parser holds the subcommand-level arguments for commands that
	// take them (chat, config).
	Parser *ArgParser
}

// Parse splits argv (without the program name) into a command and its
// arguments.
func Parse(argv []string) (Command, Args) {
	var args Args
	var remaining []string

	for _, arg := range argv {
		switch arg {
		case "-q", "--quiet":
			args.Quiet = true
		case "--json":
			args.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	args.Parser = NewArgParser(remaining[1:])

	switch cmd {
	case "tui":
		return CmdTUI, args
	case "chat":
		return CmdChat, args
	case "status", "s":
		return CmdStatus, args
	case "config":
		return CmdConfig, args
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// PrintUsage prints the top-level usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("xst version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// HandleHelp prints usage and returns success.
func HandleHelp() {
	PrintUsage()
}
