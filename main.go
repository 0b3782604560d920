// xst - terminal client for the xst chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/xst-ai/xst-tui/internal/api"
	"github.com/xst-ai/xst-tui/internal/cli"
	"github.com/xst-ai/xst-tui/internal/config"
	"github.com/xst-ai/xst-tui/internal/logging"
	"github.com/xst-ai/xst-tui/internal/session"
	"github.com/xst-ai/xst-tui/internal/ui/chat"
	"github.com/xst-ai/xst-tui/internal/ui/components"
	"github.com/xst-ai/xst-tui/internal/ui/login"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference so the config watcher can push reloads into
// the running TUI.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	switch cmd {
	case cli.CmdTUI:
		runTUI()
	case cli.CmdChat:
		logging.InitWriter(os.Stderr)
		if err := cli.HandleChat(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdStatus:
		logging.InitWriter(nil)
		if err := cli.HandleStatus(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdConfig:
		logging.InitWriter(nil)
		if err := cli.HandleConfig(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

// =============================================================================
// APP MODEL
// =============================================================================

// appState tracks which top-level screen owns the terminal.
type appState int

const (
	stateLogin appState = iota
	stateChat
	stateFatalConfig
)

// configReloadedMsg is pushed by the config file watcher.
type configReloadedMsg struct {
	cfg *config.Config
}

// appModel is the top-level Bubble Tea model. It gates the chat screen
// behind an established session and swaps back to the login form when
// the session expires or the user logs out.
type appModel struct {
	theme  *styles.Theme
	client *api.Client
	cfg    *config.Config
	store  *session.Store

	state appState
	login login.Model
	chat  chat.Model

	width  int
	height int
}

func newAppModel(theme *styles.Theme, client *api.Client, cfg *config.Config, store *session.Store) appModel {
	m := appModel{
		theme:  theme,
		client: client,
		cfg:    cfg,
		store:  store,
		state:  stateLogin,
		login:  login.New(theme, client),
	}

	// An empty base URL is a fatal configuration error: the UI shows the
	// setup instructions instead of a login form that cannot succeed.
	if cfg.API.BaseURL == "" {
		m.state = stateFatalConfig
		return m
	}

	// A saved cookie skips the login form. The chat screen's first
	// account fetch rejects stale cookies and drops back here.
	if store != nil {
		if cookies, err := store.Load(client.BaseURL()); err == nil && cookies != nil {
			client.SetCookies(cookies)
			m.state = stateChat
			m.chat = chat.New(theme, client, cfg)
		}
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	switch m.state {
	case stateChat:
		return m.chat.Init()
	case stateFatalConfig:
		return nil
	default:
		return m.login.Init()
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.login.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// Nothing to interact with; any key exits.
		if m.state == stateFatalConfig {
			return m, tea.Quit
		}

	case login.AuthSuccessMsg:
		return m.enterChat()

	case chat.SessionExpiredMsg:
		return m.leaveChat("Session expired. Please log in again.")

	case chat.LogoutDoneMsg:
		if msg.Err != nil {
			log.Warn().Err(msg.Err).Msg("logout request failed")
		}
		return m.leaveChat("")

	case configReloadedMsg:
		m.cfg = msg.cfg
		// A base URL arriving on disk recovers the fatal-config state
		// without a restart.
		if m.state == stateFatalConfig && msg.cfg.API.BaseURL != "" {
			m.client = api.NewClientWithConfig(&api.ClientConfig{
				BaseURL:       msg.cfg.API.BaseURL,
				Timeout:       time.Duration(msg.cfg.API.TimeoutSecs) * time.Second,
				UploadTimeout: time.Duration(msg.cfg.API.UploadTimeoutSecs) * time.Second,
			})
			m.state = stateLogin
			m.login = login.New(m.theme, m.client)
			m.login.SetSize(m.width, m.height)
			return m, m.login.Init()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case stateLogin:
		m.login, cmd = m.login.Update(msg)
	case stateChat:
		m.chat, cmd = m.chat.Update(msg)
	}
	return m, cmd
}

// enterChat persists the session cookie and swaps to the chat screen.
func (m appModel) enterChat() (tea.Model, tea.Cmd) {
	if m.store != nil {
		if err := m.store.Save(m.client.BaseURL(), m.client.Cookies()); err != nil {
			log.Warn().Err(err).Msg("saving session")
		}
	}

	m.state = stateChat
	m.chat = chat.New(m.theme, m.client, m.cfg)

	if m.width > 0 {
		size := tea.WindowSizeMsg{Width: m.width, Height: m.height}
		m.chat, _ = m.chat.Update(size)
	}
	return m, m.chat.Init()
}

// leaveChat clears the stored session and swaps back to the login form.
func (m appModel) leaveChat(notice string) (tea.Model, tea.Cmd) {
	m.client.ClearSession()
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			log.Warn().Err(err).Msg("clearing session store")
		}
	}

	m.state = stateLogin
	m.login = login.New(m.theme, m.client)
	if notice != "" {
		m.login = m.login.WithNotice(notice)
	}

	m.login.SetSize(m.width, m.height)
	return m, m.login.Init()
}

func (m appModel) View() string {
	switch m.state {
	case stateChat:
		return m.chat.View()
	case stateFatalConfig:
		return m.fatalConfigView()
	default:
		return m.login.View()
	}
}

// fatalConfigView renders the setup instructions inside the alt screen.
func (m appModel) fatalConfigView() string {
	content := strings.Join([]string{
		m.theme.ErrorStyle.Render("No backend configured"),
		"",
		"Point xst at your server first:",
		"",
		"  xst config set api.base_url https://your-server",
		"",
		"or set the XST_API_BASE_URL environment variable.",
		"",
		m.theme.ShortcutDesc.Render("press any key to exit"),
	}, "\n")

	box := m.theme.ModalBox.Render(content)
	if m.width > 0 && m.height > 0 {
		return components.PlaceModal(box, m.width, m.height)
	}
	return box
}

// =============================================================================
// TUI STARTUP
// =============================================================================

func runTUI() {
	// The TUI owns the terminal, so logs go to a file.
	logPath, err := logging.Init()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	defer logging.Close()

	// A missing base URL still starts the UI: the app model renders the
	// fatal-config state with the setup instructions.
	cfg := config.Global()

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       time.Duration(cfg.API.TimeoutSecs) * time.Second,
		UploadTimeout: time.Duration(cfg.API.UploadTimeoutSecs) * time.Second,
	})

	store, err := session.NewStore()
	if err != nil {
		log.Warn().Err(err).Msg("session persistence disabled")
		store = nil
	}

	theme := styles.NewTheme()
	app := newAppModel(theme, client, cfg, store)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Config edits on disk reach the running UI without a restart.
	watcher, err := config.NewWatcher(func(reloaded *config.Config) {
		programMu.Lock()
		prog := programRef
		programMu.Unlock()
		if prog != nil {
			prog.Send(configReloadedMsg{cfg: reloaded})
		}
	})
	if err != nil {
		log.Warn().Err(err).Msg("config watcher disabled")
	} else if err := watcher.Watch(); err != nil {
		log.Warn().Err(err).Msg("config watcher disabled")
	} else {
		defer watcher.Close()
	}

	log.Info().Str("log", logPath).Str("backend", cfg.API.BaseURL).Msg("starting tui")

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
