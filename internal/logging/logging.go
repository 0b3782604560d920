// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures structured logging for xst.
//
// The TUI owns the terminal, so logs go to ~/.xst/xst.log instead of
// stderr. Callers use the global zerolog logger (rs/zerolog/log) after
// Init has run.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logFile *os.File

// Init routes the global logger to the xst log file. Returns the log
// file path. Safe to call once at startup; callers must Close on exit.
func Init() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".xst")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create log directory: %w", err)
	}

	path := filepath.Join(dir, "xst.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return "", fmt.Errorf("could not open log file: %w", err)
	}

	logFile = file
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(file).With().Timestamp().Logger().Level(levelFromEnv())

	return path, nil
}

// InitWriter routes the global logger to an arbitrary writer. Used by
// the non-TUI subcommands and tests where stderr is fine.
func InitWriter(w io.Writer) {
	log.Logger = zerolog.New(w).With().Timestamp().Logger().Level(levelFromEnv())
}

// Close flushes and closes the log file if Init opened one.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// levelFromEnv reads XST_LOG_LEVEL, defaulting to info.
func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv("XST_LOG_LEVEL")) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
