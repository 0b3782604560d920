// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command implementation for xst.
//
// Command: status
// Short:   Display backend and session status
// Aliases: s
//
// Examples:
//   xst status                 Show status
//   xst s                      Show status (short alias)
//   xst status --json          Status in JSON format
//
// Status Sections:
//   Backend:   Configured base URL and reachability
//   Account:   Logged-in email, power balance, low-power warning
//   Session:   Saved session file location and state
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/xst-ai/xst-tui/internal/api"
	"github.com/xst-ai/xst-tui/internal/config"
	"github.com/xst-ai/xst-tui/internal/session"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	statusTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(styles.Cyan).
				MarginBottom(1)

	statusLabelStyle = lipgloss.NewStyle().
				Foreground(styles.TextSecondary).
				Width(12)

	statusOKStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	statusWarnStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	statusErrStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// statusReport is the JSON shape of the status output.
type statusReport struct {
	BaseURL       string `json:"baseUrl"`
	ConfigPath    string `json:"configPath,omitempty"`
	SessionPath   string `json:"sessionPath,omitempty"`
	Reachable     bool   `json:"reachable"`
	LoggedIn      bool   `json:"loggedIn"`
	Email         string `json:"email,omitempty"`
	Power         int    `json:"power,omitempty"`
	LowPower      bool   `json:"lowPower,omitempty"`
	Conversations int    `json:"conversations,omitempty"`
	Error         string `json:"error,omitempty"`
}

// =============================================================================
// COMMAND HANDLER
// =============================================================================

// HandleStatus prints backend and session status.
func HandleStatus(args Args) error {
	cfg := config.Global()
	report := statusReport{BaseURL: cfg.API.BaseURL}

	if p, err := config.ConfigPathTOML(); err == nil {
		report.ConfigPath = p
	}

	if cfg.API.BaseURL == "" {
		report.Error = "no backend configured"
		return printStatus(args, report)
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: time.Duration(cfg.API.TimeoutSecs) * time.Second,
	})

	if store, err := session.NewStore(); err == nil {
		report.SessionPath = store.Path()
		if cookies, err := store.Load(cfg.API.BaseURL); err == nil && cookies != nil {
			client.SetCookies(cookies)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), replRequestTimeout)
	defer cancel()

	user, err := client.Me(ctx)
	switch {
	case err == nil:
		report.Reachable = true
		report.LoggedIn = true
		report.Email = user.Email
		report.Power = user.Power
		report.LowPower = user.IsLowPower()
		if convs, err := client.Conversations(ctx); err == nil {
			report.Conversations = len(convs)
		}
	case api.IsUnauthorized(err):
		// The backend answered, there is just no valid session.
		report.Reachable = true
	default:
		report.Error = err.Error()
	}

	return printStatus(args, report)
}

func printStatus(args Args, report statusReport) error {
	if args.JSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if !args.Quiet {
		fmt.Println(statusTitleStyle.Render("xst status"))
	}

	printField := func(label, value string) {
		fmt.Printf("%s %s\n", statusLabelStyle.Render(label), value)
	}

	if report.BaseURL == "" {
		printField("Backend", statusErrStyle.Render("not configured"))
		fmt.Println()
		fmt.Println("Set one with: xst config set api.base_url https://your-server")
		return nil
	}
	printField("Backend", report.BaseURL)

	switch {
	case report.Error != "":
		printField("Status", statusErrStyle.Render("unreachable: "+report.Error))
	case !report.LoggedIn:
		printField("Status", statusOKStyle.Render("reachable"))
		printField("Account", statusWarnStyle.Render("not logged in"))
	default:
		printField("Status", statusOKStyle.Render("reachable"))
		printField("Account", report.Email)
		power := fmt.Sprintf("%d", report.Power)
		if report.LowPower {
			power = statusWarnStyle.Render(power + " (low, recharge soon)")
		} else {
			power = statusOKStyle.Render(power)
		}
		printField("Power", power)
		printField("Chats", fmt.Sprintf("%d", report.Conversations))
	}

	if report.ConfigPath != "" {
		printField("Config", report.ConfigPath)
	}
	if report.SessionPath != "" {
		printField("Session", report.SessionPath)
	}
	return nil
}
