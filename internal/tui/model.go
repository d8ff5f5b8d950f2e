package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/render"
	"github.com/diogo/ayurchat/internal/transcript"
	"github.com/diogo/ayurchat/internal/widget"
)

// Controller is the chat controller the program drives. *widget.Widget implements it.
type Controller interface {
	CheckInitialState() widget.ViewState
	SubmitMessage(ctx context.Context, text string)
	Login(ctx context.Context, email, name string) error
	Logout(ctx context.Context)
	Transcript() []models.Message
}

var _ Controller = (*widget.Widget)(nil)

// Results of commands started by the model
type (
	submitDoneMsg struct{}
	loginDoneMsg  struct{ err error }
	exportDoneMsg struct {
		path string
		err  error
	}
	copyDoneMsg struct{ err error }
)

const (
	focusEmail = iota
	focusName
)

// Option configures the Model
type Option func(*Model)

// WithRenderOptions sets how assistant answers are rendered
func WithRenderOptions(opts render.Options) Option {
	return func(m *Model) {
		m.renderOpts = opts
	}
}

// WithExportMeta sets the header written by /export
func WithExportMeta(meta transcript.Meta) Option {
	return func(m *Model) {
		m.meta = meta
	}
}

// WithClipboard replaces the clipboard writer used by Ctrl+Y
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copyFn = write
	}
}

// Model represents the TUI state. Screen, transcript and send state are
// driven by the controller through ProgramView messages.
type Model struct {
	ctx        context.Context
	ctrl       Controller
	renderOpts render.Options
	meta       transcript.Meta
	copyFn     func(string) error

	screen      widget.ViewState
	screenKnown bool

	// Login form
	email     textinput.Model
	name      textinput.Model
	focus     int
	loggingIn bool

	// Chat screen
	viewport    viewport.Model
	textarea    textarea.Model
	spinner     spinner.Model
	nodes       []widget.Node
	thinking    string
	sendEnabled bool
	pending     bool

	alert  string
	notice string

	ready  bool
	width  int
	height int
}

// NewModel creates the program model for ctrl
func NewModel(ctx context.Context, ctrl Controller, opts ...Option) Model {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Prompt = ""
	email.Focus()

	name := textinput.New()
	name.Placeholder = "Your name"
	name.CharLimit = 100
	name.Prompt = ""

	ta := textarea.New()
	ta.Placeholder = "Ask about doshas, herbs, daily routines..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := Model{
		ctx:         ctx,
		ctrl:        ctrl,
		renderOpts:  render.DefaultOptions(),
		copyFn:      clipboard.WriteAll,
		email:       email,
		name:        name,
		textarea:    ta,
		spinner:     s,
		sendEnabled: true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init asks the controller for the initial screen
func (m Model) Init() tea.Cmd {
	ctrl := m.ctrl
	return tea.Batch(
		textinput.Blink,
		func() tea.Msg {
			ctrl.CheckInitialState()
			return nil
		},
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case showLoginMsg:
		m.screen = widget.LoginScreen
		m.screenKnown = true
		m.textarea.Blur()
		m.setFocus(focusEmail)

	case showChatMsg:
		m.screen = widget.ChatScreen
		m.screenKnown = true
		m.email.Blur()
		m.name.Blur()
		cmds = append(cmds, m.textarea.Focus())
		m.refreshViewport()

	case appendNodeMsg:
		m.nodes = append(m.nodes, msg.node)
		m.refreshViewport()

	case showThinkingMsg:
		m.thinking = msg.text
		m.refreshViewport()
		cmds = append(cmds, m.spinner.Tick)

	case removeThinkingMsg:
		m.thinking = ""
		m.refreshViewport()

	case clearInputMsg:
		m.textarea.Reset()

	case sendEnabledMsg:
		m.sendEnabled = msg.enabled

	case scrollBottomMsg:
		m.viewport.GotoBottom()

	case alertMsg:
		m.alert = msg.text

	case submitDoneMsg:
		m.pending = false

	case loginDoneMsg:
		m.loggingIn = false

	case exportDoneMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.notice = "Transcript saved to " + msg.path
		}

	case copyDoneMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.notice = "Answer copied to clipboard"
		}

	case spinner.TickMsg:
		if m.thinking != "" || m.loggingIn {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	// an alert is modal: the next key only dismisses it
	if m.alert != "" {
		m.alert = ""
		return m, nil
	}

	if msg.String() == "esc" {
		return m, tea.Quit
	}

	if !m.screenKnown {
		return m, nil
	}
	if m.screen == widget.LoginScreen {
		return m.updateLogin(msg)
	}
	return m.updateChat(msg)
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.setFocus((m.focus + 1) % 2)
		return m, nil

	case "enter":
		if m.focus == focusEmail {
			m.setFocus(focusName)
			return m, nil
		}
		if m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		ctx, ctrl := m.ctx, m.ctrl
		email, name := m.email.Value(), m.name.Value()
		return m, tea.Batch(
			func() tea.Msg {
				return loginDoneMsg{err: ctrl.Login(ctx, email, name)}
			},
			m.spinner.Tick,
		)
	}

	var cmd tea.Cmd
	if m.focus == focusEmail {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.name, cmd = m.name.Update(msg)
	}
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+y":
		text, ok := m.lastAnswer()
		if !ok {
			m.notice = "No answer to copy yet"
			return m, nil
		}
		write := m.copyFn
		return m, func() tea.Msg {
			return copyDoneMsg{err: write(text)}
		}

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		return m.submit()
	}

	if m.pending || !m.sendEnabled {
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// submit handles Enter on the chat screen. Send is blocked while a request
// is in flight, including the gap before the controller disables it.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.pending || !m.sendEnabled {
		return m, nil
	}

	text := m.textarea.Value()
	input := strings.TrimSpace(text)
	if input == "" {
		return m, nil
	}

	ctx, ctrl := m.ctx, m.ctrl

	switch {
	case input == "exit" || input == "quit" || input == "/exit" || input == "/quit":
		return m, tea.Quit

	case input == "/logout":
		m.textarea.Reset()
		return m, func() tea.Msg {
			ctrl.Logout(ctx)
			return nil
		}

	case input == "/clear":
		m.textarea.Reset()
		m.nodes = nil
		m.notice = ""
		m.refreshViewport()
		return m, nil

	case input == "/export" || strings.HasPrefix(input, "/export "):
		m.textarea.Reset()
		path := strings.TrimSpace(strings.TrimPrefix(input, "/export"))
		if path == "" {
			m.notice = "Usage: /export <file.md|file.json>"
			return m, nil
		}
		meta := m.meta
		meta.ExportedAt = time.Now()
		return m, func() tea.Msg {
			err := transcript.WriteFile(path, ctrl.Transcript(), meta)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("transcript export failed")
			}
			return exportDoneMsg{path: path, err: err}
		}
	}

	m.pending = true
	m.notice = ""
	return m, func() tea.Msg {
		ctrl.SubmitMessage(ctx, text)
		return submitDoneMsg{}
	}
}

func (m *Model) setFocus(field int) {
	m.focus = field
	if field == focusEmail {
		m.email.Focus()
		m.name.Blur()
	} else {
		m.name.Focus()
		m.email.Blur()
	}
}

func (m Model) lastAnswer() (string, bool) {
	for i := len(m.nodes) - 1; i >= 0; i-- {
		if m.nodes[i].Role == models.RoleAssistant {
			return m.nodes[i].Content, true
		}
	}
	return "", false
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 4
	inputHeight := 6
	statusHeight := 1
	padding := 2

	vpHeight := height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := width - 4

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.email.Width = contentWidth / 2
	m.name.Width = contentWidth / 2
	m.refreshViewport()
}

// refreshViewport rebuilds the transcript from the nodes and the thinking row
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	for i, node := range m.nodes {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(renderNode(node, bubbleWidth, m.renderOpts))
		content.WriteString("\n")
	}

	if m.thinking != "" {
		if len(m.nodes) > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.spinner.View() + " " + thinkingStyle.Render(m.thinking))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderNode draws one transcript entry. User text is shown verbatim;
// assistant text goes through the markdown renderer.
func renderNode(node widget.Node, width int, opts render.Options) string {
	if node.Class == widget.ClassUser {
		label := userLabelStyle.Render("● " + node.Header)
		bubble := userBubbleStyle.Width(width).Render(render.Sanitize(node.Content))
		return label + "\n" + bubble
	}

	label := assistantLabelStyle.Render("🕉 " + node.Header)
	rendered := render.Answer(node.Content, opts.WithWidth(width-4))
	bubble := assistantBubbleStyle.Width(width).Render(rendered)
	return label + "\n" + bubble
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready || !m.screenKnown {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	sections := []string{m.renderHeader(contentWidth)}

	if m.screen == widget.LoginScreen {
		sections = append(sections, m.renderLogin(contentWidth))
	} else {
		sections = append(sections, m.renderChat(contentWidth)...)
	}

	if m.alert != "" {
		sections = append(sections, alertStyle.Render(m.alert)+hintStyle.Render("  press any key"))
	}
	if m.notice != "" {
		sections = append(sections, subtitleStyle.Render(m.notice))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int) string {
	parts := []string{titleStyle.Render("🕉️ " + models.AssistantName)}
	if m.meta.BaseURL != "" {
		parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render(m.meta.BaseURL))
	}
	return headerStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Center, parts...))
}

func (m Model) renderLogin(width int) string {
	label := func(text string, focused bool) string {
		if focused {
			return formFocusedStyle.Render("› " + text)
		}
		return formLabelStyle.Render("  " + text)
	}

	button := formButtonStyle.Render("Login")
	if m.loggingIn {
		button = m.spinner.View() + " " + hintStyle.Render("Logging in...")
	}

	form := lipgloss.JoinVertical(
		lipgloss.Left,
		welcomeTitleStyle.Render("Welcome to the AyurVeda Assistant"),
		subtitleStyle.Render("Log in with your email and name to start chatting."),
		"",
		label("Email", m.focus == focusEmail),
		"  "+m.email.View(),
		"",
		label("Name", m.focus == focusName),
		"  "+m.name.View(),
		button,
	)
	return formPanelStyle.Width(width).Render(form)
}

func (m Model) renderChat(width int) []string {
	var messages string
	if len(m.nodes) == 0 && m.thinking == "" {
		messages = m.renderWelcome()
	} else {
		messages = m.viewport.View()
	}
	panel := messagesAreaStyle.Width(width).Height(m.viewport.Height).Render(messages)

	var input string
	if m.pending || !m.sendEnabled {
		input = m.spinner.View() + " " + hintStyle.Render("Waiting for the assistant...")
	} else {
		input = lipgloss.JoinVertical(lipgloss.Left, inputLabelStyle.Render(models.UserName), m.textarea.View())
	}

	return []string{panel, inputPanelStyle.Width(width).Render(input)}
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("🕉️"),
		welcomeTitleStyle.Width(width).Render("Namaste! Ask me anything about Ayurveda."),
		hintStyle.Width(width).Render("Type a question below and press Enter"),
	)

	top := (m.viewport.Height - lipgloss.Height(content)) / 2
	if top < 0 {
		top = 0
	}
	return strings.Repeat("\n", top) + content
}

func (m Model) renderStatusBar(width int) string {
	type shortcut struct{ key, desc string }
	shortcuts := []shortcut{{"Tab", "Next field"}, {"Enter", "Login"}, {"Esc", "Quit"}}
	if m.screen == widget.ChatScreen {
		shortcuts = []shortcut{
			{"Enter", "Send"},
			{"Ctrl+Y", "Copy"},
			{"/logout", "Logout"},
			{"/export", "Save"},
			{"Esc", "Quit"},
		}
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// Run starts the program and binds view to it. It returns when the user
// quits; callers should then join the controller's detached work.
func Run(ctx context.Context, ctrl Controller, view *ProgramView, opts ...Option) error {
	m := NewModel(ctx, ctrl, opts...)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	view.Bind(p.Send)
	defer view.Bind(nil)

	_, err := p.Run()
	return err
}
