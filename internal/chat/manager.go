package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shivamgupta214/outfox-health-assessment/internal/transport"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

var (
	ErrNotOpen       = errors.New("not connected")
	ErrEmptyQuery    = errors.New("empty query")
	ErrSessionClosed = errors.New("session closed")
)

// DefaultReconnectDelay is the fixed wait between a lost connection and the
// next attempt.
const DefaultReconnectDelay = 3 * time.Second

// Manager owns the single live connection of a session and its retry timer.
// Every method except State runs on the session loop.
type Manager struct {
	url    string
	dialer transport.Dialer
	sched  Scheduler
	delay  time.Duration
	log    *MessageLog
	post   func(event)
	notify func()
	logger zerolog.Logger

	state       stateBox
	conn        transport.Conn
	gen         uint64
	cancelRetry func() bool
}

func newManager(url string, dialer transport.Dialer, sched Scheduler, delay time.Duration,
	msgs *MessageLog, post func(event), notify func(), logger zerolog.Logger) *Manager {
	return &Manager{
		url:    url,
		dialer: dialer,
		sched:  sched,
		delay:  delay,
		log:    msgs,
		post:   post,
		notify: notify,
		logger: logger,
	}
}

func (m *Manager) State() ConnectionState {
	return m.state.Load()
}

func (m *Manager) setState(s ConnectionState) {
	prev := m.state.Load()
	if prev == s {
		return
	}
	m.state.Store(s)
	m.logger.Debug().
		Str("from", prev.String()).
		Str(log.FieldState, s.String()).
		Uint64(log.FieldConnGen, m.gen).
		Msg("connection state changed")
	m.notify()
}

// connect opens a connection unless one is already pending or open.
func (m *Manager) connect() {
	if m.State() == StateClosed || m.conn != nil {
		return
	}
	if m.cancelRetry != nil {
		m.cancelRetry()
		m.cancelRetry = nil
	}

	m.gen++
	m.setState(StateConnecting)
	m.logger.Info().Uint64(log.FieldConnGen, m.gen).Msg("connecting")
	m.conn = m.dialer.Open(m.url, connListener{gen: m.gen, post: m.post})
}

// handle is the transition table for connection lifecycle events.
func (m *Manager) handle(ev event) {
	if m.State() == StateClosed || ev.gen != m.gen {
		m.logger.Debug().
			Str("event", ev.kind.String()).
			Uint64(log.FieldConnGen, ev.gen).
			Msg("dropping stale event")
		return
	}

	switch ev.kind {
	case evOpened:
		m.setState(StateOpen)
		m.log.Append(RoleStatus, StatusConnected)

	case evMessage:
		m.log.Append(RoleAI, ev.text)

	case evError:
		m.logger.Warn().Err(ev.err).Uint64(log.FieldConnGen, ev.gen).Msg("transport error")
		m.log.Append(RoleStatus, statusErrorPrefix+describe(ev.err))

	case evClosed:
		if m.cancelRetry != nil {
			return
		}
		m.conn = nil
		m.setState(StateReconnecting)
		m.log.Append(RoleStatus, StatusDisconnected)
		m.scheduleRetry()

	case evRetry:
		m.cancelRetry = nil
		m.connect()
	}
}

func (m *Manager) scheduleRetry() {
	gen := m.gen
	m.logger.Info().
		Int64(log.FieldDelay, m.delay.Milliseconds()).
		Uint64(log.FieldConnGen, gen).
		Msg("reconnect scheduled")
	m.cancelRetry = m.sched.AfterFunc(m.delay, func() {
		m.post(event{kind: evRetry, gen: gen})
	})
}

// send transmits text unframed. It writes nothing unless the connection is
// open and text is non-blank.
func (m *Manager) send(text string) error {
	if m.State() != StateOpen || m.conn == nil {
		return ErrNotOpen
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyQuery
	}
	if err := m.conn.Send(text); err != nil {
		return fmt.Errorf("failed to send query: %w", err)
	}
	return nil
}

// close tears down the connection and any pending retry. Terminal.
func (m *Manager) close() {
	if m.State() == StateClosed {
		return
	}
	if m.cancelRetry != nil {
		m.cancelRetry()
		m.cancelRetry = nil
	}
	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Debug().Err(err).Msg("close connection")
		}
		m.conn = nil
	}
	m.gen++
	m.setState(StateClosed)
	m.logger.Info().Msg("connection manager closed")
}

func describe(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
