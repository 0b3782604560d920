// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-oriented chat REPL for xst.
//
// Command: chat
// Short:   Interactive chat without the full-screen TUI
//
// Examples:
//   xst chat                  Start the REPL (prompts for login if needed)
//   xst chat -q               Suppress the banner and power readout
//
// The REPL reuses the saved TUI session when one exists. Input history
// is persisted to <config dir>/chat_history across runs.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"

	"github.com/xst-ai/xst-tui/internal/api"
	"github.com/xst-ai/xst-tui/internal/config"
	"github.com/xst-ai/xst-tui/internal/model"
	"github.com/xst-ai/xst-tui/internal/session"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

const replRequestTimeout = 30 * time.Second

// Replies can take a while once the assistant starts thinking.
const replSendTimeout = 120 * time.Second

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	replyStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	replErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	replInfoStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	replWarnStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with history loaded from the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Non-empty
// input is appended to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// ReadPassword reads a password without echoing it.
func (c *ChatCLI) ReadPassword(prompt string) (string, error) {
	return c.line.PasswordPrompt(prompt)
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// replSession holds the state for one REPL run.
type replSession struct {
	client *api.Client
	store  *session.Store
	input  *ChatCLI

	user          *model.User
	conversations []model.Conversation
	active        *model.Conversation

	quiet bool
}

// =============================================================================
// COMMAND HANDLER
// =============================================================================

// HandleChat runs the line-oriented chat REPL.
func HandleChat(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	cfg := config.Global()
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("no backend configured; run: xst config set api.base_url https://your-server")
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       time.Duration(cfg.API.TimeoutSecs) * time.Second,
		UploadTimeout: time.Duration(cfg.API.UploadTimeoutSecs) * time.Second,
	})

	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	input := NewChatCLI()
	defer input.Close()

	s := &replSession{
		client: client,
		store:  store,
		input:  input,
		quiet:  args.Quiet,
	}

	if err := s.ensureLogin(); err != nil {
		return err
	}
	if err := s.refresh(); err != nil {
		return err
	}

	if !s.quiet {
		fmt.Printf("Logged in as %s (power: %d). Type /help for commands.\n",
			s.user.Email, s.user.Power)
	}

	return s.loop()
}

// ensureLogin restores the saved session and falls back to an
// interactive login prompt when the cookie is missing or expired.
func (s *replSession) ensureLogin() error {
	if cookies, err := s.store.Load(s.client.BaseURL()); err == nil && cookies != nil {
		s.client.SetCookies(cookies)

		ctx, cancel := context.WithTimeout(context.Background(), replRequestTimeout)
		user, err := s.client.Me(ctx)
		cancel()
		if err == nil {
			s.user = user
			return nil
		}
		if !api.IsUnauthorized(err) {
			return fmt.Errorf("reaching backend: %w", err)
		}
		// Saved cookie is stale, fall through to the prompt.
		s.client.ClearSession()
	}

	return s.promptLogin()
}

// promptLogin asks for credentials on the terminal and saves the
// resulting session cookie.
func (s *replSession) promptLogin() error {
	for attempt := 0; attempt < 3; attempt++ {
		email, err := s.input.ReadInput("Email: ")
		if err != nil {
			return fmt.Errorf("login aborted")
		}
		password, err := s.input.ReadPassword("Password: ")
		if err != nil {
			return fmt.Errorf("login aborted")
		}

		ctx, cancel := context.WithTimeout(context.Background(), replRequestTimeout)
		err = s.client.Login(ctx, strings.TrimSpace(email), password)
		cancel()
		if err != nil {
			if api.IsUnauthorized(err) {
				fmt.Println(replErrorStyle.Render("Invalid email or password."))
				continue
			}
			return fmt.Errorf("login: %w", err)
		}

		ctx, cancel = context.WithTimeout(context.Background(), replRequestTimeout)
		user, err := s.client.Me(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("fetching account: %w", err)
		}
		s.user = user

		if err := s.store.Save(s.client.BaseURL(), s.client.Cookies()); err != nil {
			log.Warn().Err(err).Msg("saving session after repl login")
		}
		return nil
	}
	return fmt.Errorf("too many failed login attempts")
}

// refresh reloads the conversation list and keeps the active selection
// when it still exists.
func (s *replSession) refresh() error {
	ctx, cancel := context.WithTimeout(context.Background(), replRequestTimeout)
	defer cancel()

	convs, err := s.client.Conversations(ctx)
	if err != nil {
		return fmt.Errorf("listing conversations: %w", err)
	}
	s.conversations = convs

	if s.active != nil {
		for i := range convs {
			if convs[i].ID == s.active.ID {
				s.active = &s.conversations[i]
				return nil
			}
		}
	}
	if len(convs) > 0 {
		s.active = &s.conversations[0]
	} else {
		s.active = nil
	}
	return nil
}

// =============================================================================
// REPL LOOP
// =============================================================================

func (s *replSession) loop() error {
	for {
		input, err := s.input.ReadInput(promptStyle.Render("xst> "))
		if err != nil {
			// Ctrl+C or Ctrl+D exits cleanly.
			if err == liner.ErrPromptAborted {
				fmt.Println()
				return nil
			}
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			cont, err := s.handleSlashCommand(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", replErrorStyle.Render("[Error]"), err)
			}
			if !cont {
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}

		if err := s.sendMessage(input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", replErrorStyle.Render("[Error]"), err)
		}
	}
}

// handleSlashCommand runs one /command. The bool result is false when
// the REPL should exit.
func (s *replSession) handleSlashCommand(input string) (bool, error) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/quit", "/exit", "/q":
		return false, nil

	case "/help", "/?":
		fmt.Println(replInfoStyle.Render(strings.TrimSpace(`
/new            Create a new conversation
/list           List conversations
/switch <n>     Switch to conversation n from /list
/quit           Exit`)))
		return true, nil

	case "/new":
		ctx, cancel := context.WithTimeout(context.Background(), replRequestTimeout)
		id, err := s.client.CreateConversation(ctx)
		cancel()
		if err != nil {
			return true, err
		}
		if err := s.refresh(); err != nil {
			return true, err
		}
		for i := range s.conversations {
			if s.conversations[i].ID == id {
				s.active = &s.conversations[i]
			}
		}
		fmt.Println(replInfoStyle.Render("Created a new conversation."))
		return true, nil

	case "/list":
		if len(s.conversations) == 0 {
			fmt.Println(replInfoStyle.Render("No conversations yet. Use /new."))
			return true, nil
		}
		for i, c := range s.conversations {
			marker := "  "
			if s.active != nil && c.ID == s.active.ID {
				marker = "* "
			}
			fmt.Printf("%s%d. %s\n", marker, i+1, c.DisplayTitle())
		}
		return true, nil

	case "/switch":
		if len(fields) < 2 {
			return true, fmt.Errorf("usage: /switch <n>")
		}
		n, ok := indexArg(fields[1], len(s.conversations))
		if !ok {
			return true, fmt.Errorf("no such conversation: %s", fields[1])
		}
		s.active = &s.conversations[n]
		fmt.Println(replInfoStyle.Render("Switched to: " + s.active.DisplayTitle()))
		return true, nil

	default:
		return true, fmt.Errorf("unknown command %s (try /help)", cmd)
	}
}

// sendMessage posts one message to the active conversation and prints
// the assistant reply.
func (s *replSession) sendMessage(text string) error {
	if s.active == nil {
		ctx, cancel := context.WithTimeout(context.Background(), replRequestTimeout)
		_, err := s.client.CreateConversation(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("creating conversation: %w", err)
		}
		if err := s.refresh(); err != nil {
			return err
		}
		if s.active == nil {
			return fmt.Errorf("no conversation available")
		}
	}

	if s.user != nil && s.user.IsLowPower() {
		fmt.Println(replWarnStyle.Render(
			fmt.Sprintf("Power is low (%d). Recharge in the TUI before the balance runs out.", s.user.Power)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), replSendTimeout)
	reply, err := s.client.Send(ctx, s.active.ID, text)
	cancel()
	if err != nil {
		if api.IsUnauthorized(err) {
			s.store.Clear()
			return fmt.Errorf("session expired; restart xst chat to log in again")
		}
		return err
	}

	fmt.Println(replyStyle.Render(WrapText(reply, GetTerminalWidth())))

	// Sends cost power and the backend may retitle the conversation.
	ctx, cancel = context.WithTimeout(context.Background(), replRequestTimeout)
	if user, err := s.client.Me(ctx); err == nil {
		s.user = user
	}
	cancel()
	if err := s.refresh(); err != nil {
		log.Warn().Err(err).Msg("refreshing conversations after send")
	}
	return nil
}

// indexArg parses a 1-based list index.
func indexArg(s string, n int) (int, bool) {
	var idx int
	if _, err := fmt.Sscanf(s, "%d", &idx); err != nil {
		return 0, false
	}
	if idx < 1 || idx > n {
		return 0, false
	}
	return idx - 1, true
}
