// Package tui renders a chat.Session as a full-screen terminal chat.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/shivamgupta214/outfox-health-assessment/internal/chat"
)

const (
	title              = "AI Hospital Data Chat"
	placeholderOpen    = "Type your message..."
	placeholderWaiting = "Connecting..."
	helpText           = "enter send · ctrl+s send · pgup/pgdn scroll · esc quit"

	userSpeaker   = "You"
	aiSpeaker     = "AI"
	defaultWidth  = 80
	defaultHeight = 24
	// header, status bar, framed input and help line
	chromeHeight = 6
)

type sessionChangedMsg struct{}

type sessionDoneMsg struct{}

type submitResultMsg struct {
	text string
	err  error
}

// Model is the bubbletea model of the chat screen.
type Model struct {
	session *chat.Session
	styles  styles

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model

	width    int
	height   int
	rendered int
	quitting bool
}

// New builds the chat screen for s. The caller keeps ownership of s; the
// model only closes it when the user quits.
func New(s *chat.Session) Model {
	st := defaultStyles()

	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.stateWait

	m := Model{
		session:    s,
		styles:     st,
		input:      input,
		transcript: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner:    sp,
		width:      defaultWidth,
		height:     defaultHeight,
	}
	m.refreshPlaceholder()
	m.refreshTranscript()
	return m
}

// Run drives the chat screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, s *chat.Session, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(s), opts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitChanged(m.session))
}

// waitChanged blocks until the session reports new state.
func waitChanged(s *chat.Session) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.Changed():
			return sessionChangedMsg{}
		case <-s.Done():
			return sessionDoneMsg{}
		}
	}
}

func submit(s *chat.Session, text string) tea.Cmd {
	ch := s.Submit(text)
	return func() tea.Msg {
		return submitResultMsg{text: text, err: <-ch}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			m.session.Close()
			return m, tea.Quit
		case tea.KeyEnter, tea.KeyCtrlS:
			text := m.input.Value()
			m.session.Input().SetPending(text)
			return m, submit(m.session, text)
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.session.Input().SetPending(m.input.Value())
		return m, cmd

	case submitResultMsg:
		// Rejected queries stay in the box for editing, and so does
		// anything typed while the submit was in flight.
		if msg.err == nil && m.input.Value() == msg.text {
			m.input.Reset()
		}
		return m, nil

	case sessionChangedMsg:
		m.refreshPlaceholder()
		m.refreshTranscript()
		return m, waitChanged(m.session)

	case sessionDoneMsg:
		m.refreshPlaceholder()
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	h := m.height - chromeHeight
	if h < 1 {
		h = 1
	}
	m.transcript.Width = m.width
	m.transcript.Height = h
	m.input.Width = m.width - 8
}

func (m *Model) refreshPlaceholder() {
	if m.session.State() == chat.StateOpen {
		m.input.Placeholder = placeholderOpen
	} else {
		m.input.Placeholder = placeholderWaiting
	}
}

// refreshTranscript re-renders every entry and follows the newest one
// whenever the log grew.
func (m *Model) refreshTranscript() {
	msgs := m.session.Messages()
	m.transcript.SetContent(m.renderMessages(msgs))
	if len(msgs) != m.rendered {
		m.rendered = len(msgs)
		m.transcript.GotoBottom()
	}
}

func (m Model) renderMessages(msgs []chat.Message) string {
	width := m.transcript.Width - 2
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(m.styles.user.Render(userSpeaker) + "\n")
			b.WriteString(m.styles.userBody.Render(wordwrap.String(msg.Content, width)))
		case chat.RoleAI:
			b.WriteString(m.styles.ai.Render(aiSpeaker) + "\n")
			b.WriteString(m.styles.aiBody.Render(wordwrap.String(msg.Content, width)))
		default:
			b.WriteString(m.styles.status.Render("• " + wordwrap.String(msg.Content, width-2)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	state := m.session.State()
	var label string
	switch state {
	case chat.StateOpen:
		label = m.styles.stateOK.Render("● connected")
	case chat.StateClosed:
		label = m.styles.stateDown.Render("● closed")
	default:
		label = m.spinner.View() + " " + m.styles.stateWait.Render(state.String())
	}
	return m.styles.statusBar.Render(label)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := m.styles.header.Width(m.width).Render(title)
	input := m.styles.inputFrame.Width(m.width - 2).Render(m.input.View())
	help := m.styles.help.Render(helpText)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.transcript.View(),
		m.statusLine(),
		input,
		help,
	)
}
