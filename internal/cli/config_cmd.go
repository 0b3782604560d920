// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command implementation for xst.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display current configuration
//   set <key> <value>   Set a configuration value
//   reset               Reset to default configuration
//   path                Show configuration file path
//
// Examples:
//   xst config                          Show current config
//   xst config show --json              Config in JSON format
//   xst config set api.base_url https://chat.example.com
//   xst config set ui.theme light
//   xst config set upload.cooldown_secs 60
//   xst config reset
//   xst config path
package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xst-ai/xst-tui/internal/config"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	configKeyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(26)

	configValueStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald)

	configSuccessStyle = lipgloss.NewStyle().
				Foreground(styles.Emerald).
				Bold(true)

	configPathStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Italic(true)
)

// =============================================================================
// COMMAND HANDLER
// =============================================================================

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) error {
	sub := "show"
	if args.Parser != nil && args.Parser.Subcommand() != "" {
		sub = args.Parser.Subcommand()
	}

	switch sub {
	case "show":
		return configShow(args)
	case "set":
		return configSet(args)
	case "reset":
		return configReset()
	case "path":
		return configPath()
	default:
		return fmt.Errorf("unknown config subcommand %q (use show, set, reset, or path)", sub)
	}
}

func configShow(args Args) error {
	cfg := config.Global()

	if args.JSON {
		out, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printEntry := func(key, value string) {
		fmt.Printf("%s %s\n", configKeyStyle.Render(key), configValueStyle.Render(value))
	}

	base := cfg.API.BaseURL
	if base == "" {
		base = "(not set)"
	}
	printEntry("api.base_url", base)
	printEntry("api.timeout_secs", strconv.Itoa(cfg.API.TimeoutSecs))
	printEntry("api.upload_timeout_secs", strconv.Itoa(cfg.API.UploadTimeoutSecs))
	printEntry("ui.theme", cfg.UI.Theme)
	printEntry("ui.markdown", strconv.FormatBool(cfg.UI.Markdown))
	printEntry("ui.sidebar_width", strconv.Itoa(cfg.UI.SidebarWidth))
	printEntry("upload.cooldown_secs", strconv.Itoa(cfg.Upload.CooldownSecs))
	printEntry("upload.max_size_mb", strconv.Itoa(cfg.Upload.MaxSizeMB))

	if p, err := config.ConfigPathTOML(); err == nil {
		fmt.Println()
		fmt.Println(configPathStyle.Render(p))
	}
	return nil
}

func configSet(args Args) error {
	if args.Parser == nil || args.Parser.PositionalCount() < 2 {
		return fmt.Errorf("usage: xst config set <key> <value>")
	}
	key, _ := args.Parser.Positional(0)
	value, _ := args.Parser.Positional(1)

	cfg := config.Global()
	if err := applyConfigKey(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	config.SetGlobal(cfg)

	fmt.Println(configSuccessStyle.Render(fmt.Sprintf("Set %s = %s", key, value)))
	return nil
}

// applyConfigKey writes one dotted key into the config struct.
func applyConfigKey(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "api.base_url":
		cfg.API.BaseURL = strings.TrimRight(value, "/")
	case "api.timeout_secs":
		return setIntKey(&cfg.API.TimeoutSecs, key, value)
	case "api.upload_timeout_secs":
		return setIntKey(&cfg.API.UploadTimeoutSecs, key, value)
	case "ui.theme":
		cfg.UI.Theme = strings.ToLower(value)
	case "ui.markdown":
		b, err := ParseBoolString(value)
		if err != nil {
			return err
		}
		cfg.UI.Markdown = b
	case "ui.sidebar_width":
		return setIntKey(&cfg.UI.SidebarWidth, key, value)
	case "upload.cooldown_secs":
		return setIntKey(&cfg.Upload.CooldownSecs, key, value)
	case "upload.max_size_mb":
		return setIntKey(&cfg.Upload.MaxSizeMB, key, value)
	default:
		return fmt.Errorf("unknown configuration key %q (see xst help)", key)
	}
	return nil
}

func setIntKey(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s needs an integer, got %q", key, value)
	}
	*dst = n
	return nil
}

func configReset() error {
	cfg := config.Default()
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	config.SetGlobal(cfg)
	fmt.Println(configSuccessStyle.Render("Configuration reset to defaults."))
	return nil
}

func configPath() error {
	p, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	fmt.Println(p)
	return nil
}
