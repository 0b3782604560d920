// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Unified argument parsing for xst subcommands.
//
// All subcommands parse their arguments through ArgParser so that flag
// syntax stays consistent: --flag value, --flag=value, and bare boolean
// flags are all accepted, and anything else is positional.
package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// knownBoolFlags are flags that never take a value. Everything else that
// starts with a dash is assumed to want the following token as its value
// unless the =value form is used.
var knownBoolFlags = map[string]bool{
	"json":    true,
	"verbose": true,
	"quiet":   true,
	"confirm": true,
	"help":    true,
}

// ArgParser holds the decomposed arguments of one subcommand invocation.
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
	raw        []string
}

// NewArgParser parses the argument list that follows the top-level command
// word. The first non-flag token becomes the subcommand.
func NewArgParser(args []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
		raw:       args,
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case strings.HasPrefix(arg, "--"):
			name := strings.TrimPrefix(arg, "--")
			if eq := strings.Index(name, "="); eq >= 0 {
				p.flags[name[:eq]] = name[eq+1:]
			} else if knownBoolFlags[name] {
				p.boolFlags[name] = true
			} else if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				p.flags[name] = args[i+1]
				i++
			} else {
				p.boolFlags[name] = true
			}

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			name := strings.TrimPrefix(arg, "-")
			if knownBoolFlags[name] {
				p.boolFlags[name] = true
			} else if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				p.flags[name] = args[i+1]
				i++
			} else {
				p.boolFlags[name] = true
			}

		default:
			if p.subcommand == "" {
				p.subcommand = strings.ToLower(arg)
			} else {
				p.positional = append(p.positional, arg)
			}
		}
		i++
	}

	return p
}

// Subcommand returns the first non-flag argument, lowercased, or "".
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a named flag and whether it was present.
func (p *ArgParser) Flag(name string) (string, bool) {
	v, ok := p.flags[name]
	return v, ok
}

// FlagOrDefault returns the flag value or def if the flag is absent.
func (p *ArgParser) FlagOrDefault(name, def string) string {
	if v, ok := p.flags[name]; ok {
		return v
	}
	return def
}

// FlagInt returns the flag parsed as an int.
func (p *ArgParser) FlagInt(name string) (int, bool) {
	v, ok := p.flags[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// BoolFlag reports whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[name]
}

// HasFlag reports whether a flag was given in either form.
func (p *ArgParser) HasFlag(name string) bool {
	if _, ok := p.flags[name]; ok {
		return true
	}
	return p.boolFlags[name]
}

// Positional returns the nth positional argument after the subcommand.
func (p *ArgParser) Positional(n int) (string, bool) {
	if n < 0 || n >= len(p.positional) {
		return "", false
	}
	return p.positional[n], true
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// JoinPositional joins all positional arguments with spaces. Used by
// commands that accept free text.
func (p *ArgParser) JoinPositional() string {
	return strings.Join(p.positional, " ")
}

// Raw returns the original argument slice.
func (p *ArgParser) Raw() []string {
	return p.raw
}

// =============================================================================
// PARSE HELPERS
// =============================================================================

// ParseBoolString interprets common true/false spellings.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value %q (use true/false)", s)
}
