// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main chat screen: conversation sidebar,
// message thread, composer, and the recharge modal.
package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/xst-ai/xst-tui/internal/api"
	"github.com/xst-ai/xst-tui/internal/config"
	"github.com/xst-ai/xst-tui/internal/model"
	"github.com/xst-ai/xst-tui/internal/ui/components"
	"github.com/xst-ai/xst-tui/internal/ui/styles"
	"github.com/xst-ai/xst-tui/internal/util"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat screen state.
type Model struct {
	theme  *styles.Theme
	client *api.Client
	keys   KeyMap

	// Identity gate. The screen stays in a loading state until /api/me
	// succeeds, the same way the page refused to render without it.
	user        *model.User
	gateLoading bool
	gateErr     string

	sidebar   components.Sidebar
	statusBar components.StatusBar
	toasts    *components.ToastManager
	recharge  components.RechargeModal
	spinner   components.Spinner
	viewport  viewport.Model
	composer  Composer

	showRecharge bool

	activeConv    string
	messages      []model.Message
	loadingThread bool
	sending       bool

	// An /attach uploads immediately; sends wait for the URL.
	uploading bool

	renderer     *glamour.TermRenderer
	markdown     bool
	sidebarWidth int
	width        int
	height       int
	ready        bool
}

// New creates the chat screen.
func New(theme *styles.Theme, client *api.Client, cfg *config.Config) Model {
	cooldown := time.Duration(cfg.Upload.CooldownSecs) * time.Second

	return Model{
		theme:        theme,
		client:       client,
		keys:         DefaultKeyMap(),
		gateLoading:  true,
		sidebar:      components.NewSidebar(theme),
		statusBar:    components.NewStatusBar(theme),
		toasts:       components.NewToastManager(),
		recharge:     components.NewRechargeModal(theme),
		spinner:      components.NewThinkingSpinner(),
		composer:     NewComposer(theme, cooldown, cfg.Upload.MaxSizeMB),
		markdown:     cfg.UI.Markdown,
		sidebarWidth: cfg.UI.SidebarWidth,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchMeCmd(m.client),
		fetchConversationsCmd(m.client),
		components.ToastTickCmd(),
		m.composer.Focus(),
	)
}

// User returns the gated identity, nil before the gate passes.
func (m Model) User() *model.User {
	return m.user
}

// ActiveConversation returns the selected conversation ID.
func (m Model) ActiveConversation() string {
	return m.activeConv
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.ToastTickMsg:
		m.toasts.TickToasts()
		return m, components.ToastTickCmd()

	case MeResultMsg:
		return m.handleMeResult(msg)

	case PowerUpdatedMsg:
		return m, fetchMeCmd(m.client)

	case ConversationsMsg:
		return m.handleConversations(msg)

	case ConversationCreatedMsg:
		return m.handleConversationCreated(msg)

	case MessagesLoadedMsg:
		return m.handleMessagesLoaded(msg)

	case SendResultMsg:
		return m.handleSendResult(msg)

	case UploadResultMsg:
		return m.handleUploadResult(msg)

	case PayPreparedMsg:
		// A stale answer for a modal the user already closed.
		if !m.showRecharge {
			return m, nil
		}
		if msg.Err != nil {
			m.recharge.SetError(msg.Err.Error())
			return m, nil
		}
		// Success hands off to the browser and closes the modal; the
		// balance refreshes with the next /api/me fetch. The toast keeps
		// the link around for copy/paste.
		m.showRecharge = false
		m.recharge.Reset()
		m.toasts.AddStatus("payment link: " + msg.QRCodeURL)
		if err := util.OpenBrowser(msg.QRCodeURL); err != nil {
			log.Debug().Err(err).Msg("could not open browser")
		}
		return m, nil
	}

	return m.updateChildren(msg)
}

// updateChildren forwards messages to focusable child components.
func (m Model) updateChildren(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.showRecharge {
		m.composer, cmd = m.composer.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// resize recomputes the layout and rebuilds the markdown renderer for
// the new wrap width.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true

	sidebarW := m.sidebarWidth
	if sidebarW > width/3 {
		sidebarW = width / 3
	}
	mainW := width - sidebarW

	headerH := 1
	composerH := 5
	statusH := 1
	threadH := height - headerH - composerH - statusH
	if threadH < 3 {
		threadH = 3
	}

	m.viewport = viewport.New(mainW-2, threadH)
	m.sidebar.SetSize(sidebarW, threadH+composerH)
	m.composer.SetWidth(mainW)
	m.statusBar.SetWidth(width)

	if m.markdown {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(mainW-6),
		)
		if err != nil {
			log.Debug().Err(err).Msg("glamour renderer unavailable")
			m.renderer = nil
		} else {
			m.renderer = renderer
		}
	}

	m.refreshThread()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showRecharge {
		return m.handleRechargeKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Logout):
		return m, logoutCmd(m.client)

	case key.Matches(msg, m.keys.NewConversation):
		return m, createConversationCmd(m.client)

	case key.Matches(msg, m.keys.NextConv):
		m.sidebar.Next()
		return m.switchToSelected()

	case key.Matches(msg, m.keys.PrevConv):
		m.sidebar.Prev()
		return m.switchToSelected()

	case key.Matches(msg, m.keys.Recharge):
		m.showRecharge = true
		m.recharge.Reset()
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	return m.updateChildren(msg)
}

func (m Model) handleRechargeKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CloseModal):
		m.showRecharge = false
		m.recharge.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}

	if m.recharge.State() == components.RechargeChoosing {
		switch msg.String() {
		case "left", "h":
			m.recharge.PrevAmount()
		case "right", "l":
			m.recharge.NextAmount()
		case "tab":
			m.recharge.ToggleMethod()
		case "enter":
			m.recharge.BeginPrepare()
			return m, preparePayCmd(m.client, m.recharge.Amount(), m.recharge.Method())
		}
	}

	return m, nil
}

// switchToSelected loads the thread for the sidebar's selected conversation.
func (m Model) switchToSelected() (Model, tea.Cmd) {
	selected := m.sidebar.Selected()
	if selected == nil || selected.ID == m.activeConv {
		return m, nil
	}
	m.activeConv = selected.ID
	m.messages = nil
	m.loadingThread = true
	m.refreshThread()
	return m, loadMessagesCmd(m.client, selected.ID)
}

// =============================================================================
// SUBMIT FLOW
// =============================================================================

// submit handles enter in the composer: slash commands, then the
// optimistic send (with upload first when an image is staged).
func (m Model) submit() (Model, tea.Cmd) {
	value := m.composer.Value()

	switch cmd, arg := parseCommand(value); cmd {
	case cmdAttach:
		if err := m.composer.Attach(arg); err != nil {
			if errors.Is(err, ErrCooldown) {
				m.toasts.AddWarning(err.Error())
			} else {
				m.toasts.AddError(err.Error())
			}
			m.composer.ClearInput()
			return m, nil
		}
		m.composer.ClearInput()
		m.uploading = true
		m.spinner.SetMessage("Uploading")
		return m, tea.Batch(
			uploadCmd(m.client, m.composer.PendingPath()),
			m.spinner.Start(),
		)

	case cmdDetach:
		m.composer.Detach()
		m.composer.ClearInput()
		m.toasts.AddStatus("attachment removed")
		return m, nil
	}

	text := strings.TrimSpace(value)
	if text == "" && m.composer.Attachment() == "" {
		return m, nil
	}
	if m.sending || m.uploading {
		return m, nil
	}

	// Low balance warns but never blocks; the backend is the arbiter
	// of whether the send is affordable.
	if m.user != nil && m.user.IsLowPower() {
		m.toasts.AddWarning("power is low, recharge with ctrl+b to keep chatting")
	}

	if m.activeConv == "" {
		m.toasts.AddStatus("no conversation selected, press ctrl+t to start one")
		return m, nil
	}

	// The image URL rides in the message content as its own line; the
	// renderer classifies it back into an image segment.
	content := text
	if url := m.composer.Attachment(); url != "" {
		if content == "" {
			content = url
		} else {
			content = content + "\n" + url
		}
	}
	return m.beginSend(content)
}

// beginSend appends the optimistic user message and fires the request.
func (m Model) beginSend(content string) (Model, tea.Cmd) {
	localMsg := model.NewUserMessage(content)
	m.messages = append(m.messages, localMsg)
	m.sending = true
	m.composer.Reset()
	m.spinner.SetMessage("Thinking")
	m.refreshThread()

	return m, tea.Batch(
		sendMessageCmd(m.client, m.activeConv, localMsg.ID, content),
		m.spinner.Start(),
	)
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleMeResult(msg MeResultMsg) (Model, tea.Cmd) {
	m.gateLoading = false
	if msg.Err != nil {
		m.gateErr = "could not load your account: " + msg.Err.Error()
		return m, nil
	}
	m.gateErr = ""
	m.user = msg.User
	m.statusBar.SetUser(msg.User)
	return m, nil
}

func (m Model) handleConversations(msg ConversationsMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.AddError("could not load conversations")
		return m, nil
	}
	m.sidebar.SetConversations(msg.Conversations)

	// First load: open the most recent conversation, matching the
	// redirect-to-first behavior on login.
	if m.activeConv == "" && len(msg.Conversations) > 0 {
		return m.switchToSelected()
	}
	return m, nil
}

func (m Model) handleConversationCreated(msg ConversationCreatedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.AddError("could not create conversation")
		return m, nil
	}

	m.activeConv = msg.ID
	m.messages = nil
	m.loadingThread = false
	m.refreshThread()

	// Refresh the list so the new conversation appears, then select it.
	return m, tea.Batch(
		fetchConversationsCmd(m.client),
		loadMessagesCmd(m.client, msg.ID),
	)
}

func (m Model) handleMessagesLoaded(msg MessagesLoadedMsg) (Model, tea.Cmd) {
	// A stale load for a conversation the user already left.
	if msg.ConversationID != m.activeConv {
		return m, nil
	}
	m.loadingThread = false
	if msg.Err != nil {
		// A failed history load shows an empty thread, not stale
		// messages from the previous conversation.
		m.messages = nil
		m.toasts.AddError("could not load messages")
		m.refreshThread()
		return m, nil
	}
	m.messages = msg.Messages
	m.sidebar.SelectID(msg.ConversationID)
	m.refreshThread()
	return m, nil
}

func (m Model) handleSendResult(msg SendResultMsg) (Model, tea.Cmd) {
	m.sending = false
	m.spinner.Stop()

	if msg.ConversationID != m.activeConv {
		return m, nil
	}

	if msg.Err != nil {
		m.resolveLocal(msg.LocalID, model.StatusFailed)
		m.toasts.AddError("send failed: " + msg.Err.Error())
		m.refreshThread()
		return m, nil
	}

	m.resolveLocal(msg.LocalID, model.StatusConfirmed)
	m.messages = append(m.messages, model.NewAssistantMessage(msg.Reply))
	m.refreshThread()

	// Sends cost power and may have titled the conversation.
	return m, tea.Batch(
		fetchMeCmd(m.client),
		fetchConversationsCmd(m.client),
	)
}

func (m Model) handleUploadResult(msg UploadResultMsg) (Model, tea.Cmd) {
	m.uploading = false

	m.spinner.Stop()

	if msg.Err != nil {
		// A previously uploaded attachment stays untouched.
		m.composer.CancelUpload()
		if api.IsRateLimited(msg.Err) {
			m.toasts.AddWarning(msg.Err.Error())
		} else {
			m.toasts.AddError("upload failed: " + msg.Err.Error())
		}
		return m, nil
	}

	m.composer.ConfirmUpload(msg.URL)
	m.toasts.AddSuccess("image attached, sends with your next message")
	return m, nil
}

// resolveLocal updates the status of an optimistic message by local ID.
func (m *Model) resolveLocal(localID string, status model.Status) {
	for i := range m.messages {
		if m.messages[i].ID == localID {
			m.messages[i].Status = status
			return
		}
	}
}
