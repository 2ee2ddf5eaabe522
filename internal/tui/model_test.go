package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivamgupta214/outfox-health-assessment/internal/chat"
	"github.com/shivamgupta214/outfox-health-assessment/internal/transport"
)

// answerDialer opens instantly and answers every frame with a fixed reply.
type answerDialer struct {
	reply string
}

func (d answerDialer) Open(_ string, l transport.Listener) transport.Conn {
	go l.OnOpen()
	return &answerConn{l: l, reply: d.reply}
}

type answerConn struct {
	l     transport.Listener
	reply string
}

func (c *answerConn) Send(string) error {
	go c.l.OnMessage(c.reply)
	return nil
}

func (c *answerConn) Close() error {
	go c.l.OnClose(nil)
	return nil
}

func newOpenSession(t *testing.T) *chat.Session {
	t.Helper()
	s, err := chat.NewSession(context.Background(), chat.Options{
		URL:    "ws://navigator.test/ws/ask",
		Dialer: answerDialer{reply: "Found 3 providers"},
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	require.Eventually(t, func() bool {
		return s.State() == chat.StateOpen && s.Log().Len() == 1
	}, 2*time.Second, 5*time.Millisecond)
	return s
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestViewShowsConnectedSession(t *testing.T) {
	s := newOpenSession(t)
	m := New(s)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	assert.Equal(t, placeholderOpen, m.input.Placeholder)
	view := m.View()
	assert.Contains(t, view, title)
	assert.Contains(t, view, chat.StatusConnected)
	assert.Contains(t, view, "connected")
}

func TestTypingMirrorsPendingBuffer(t *testing.T) {
	s := newOpenSession(t)
	m := typeText(t, New(s), "chest pain")

	assert.Equal(t, "chest pain", m.input.Value())
	assert.Equal(t, "chest pain", s.Input().Pending())
}

func TestEnterSubmitsAndClearsInput(t *testing.T) {
	s := newOpenSession(t)
	m := typeText(t, New(s), " chest pain ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	result, ok := cmd().(submitResultMsg)
	require.True(t, ok)
	require.NoError(t, result.err)

	m, _ = update(t, m, result)
	assert.Empty(t, m.input.Value())

	require.Eventually(t, func() bool { return s.Log().Len() == 3 }, 2*time.Second, 5*time.Millisecond)
	m, cmd = update(t, m, sessionChangedMsg{})
	assert.NotNil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "chest pain")
	assert.Contains(t, view, "Found 3 providers")
	assert.True(t, m.transcript.AtBottom())
}

func TestTextTypedDuringSubmitSurvives(t *testing.T) {
	s := newOpenSession(t)
	m := typeText(t, New(s), "chest pain")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = typeText(t, m, " and knee")

	result := cmd().(submitResultMsg)
	require.NoError(t, result.err)
	assert.Equal(t, "chest pain", result.text)

	m, _ = update(t, m, result)
	assert.Equal(t, "chest pain and knee", m.input.Value())
	assert.Equal(t, "chest pain and knee", s.Input().Pending())
}

func TestRejectedSubmitKeepsInput(t *testing.T) {
	s := newOpenSession(t)
	m := typeText(t, New(s), "   ")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	result := cmd().(submitResultMsg)
	require.ErrorIs(t, result.err, chat.ErrEmptyQuery)

	m, _ = update(t, m, result)
	assert.Equal(t, "   ", m.input.Value())

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.StatusEmptyQuery, msgs[1].Content)
}

func TestEscClosesSession(t *testing.T) {
	s := newOpenSession(t)
	m := New(s)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	select {
	case <-s.Done():
	default:
		t.Fatal("session still running after quit")
	}
	assert.Equal(t, chat.StateClosed, s.State())
}
