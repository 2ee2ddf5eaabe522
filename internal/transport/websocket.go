package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/shivamgupta214/outfox-health-assessment/internal/config"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

// WSDialer opens gorilla/websocket client connections.
type WSDialer struct {
	dialer *websocket.Dialer
	config config.WebSocketConfig
	logger zerolog.Logger
}

// NewWSDialer fills unset values of cfg with the defaults.
func NewWSDialer(cfg config.WebSocketConfig) *WSDialer {
	cfg = cfg.WithDefaults()
	return &WSDialer{
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
		config: cfg,
		logger: log.L().With().Str("component", "ws_dialer").Logger(),
	}
}

// Open returns immediately; the dial and both pumps run on their own
// goroutines and report through l.
func (d *WSDialer) Open(url string, l Listener) Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &wsConn{
		send:   make(chan string, d.config.SendBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
		config: d.config,
		logger: d.logger.With().Str(log.FieldEndpoint, url).Logger(),
	}
	go c.run(ctx, d.dialer, url, l)
	return c
}

type wsConn struct {
	send      chan string
	done      chan struct{}
	closeOnce sync.Once
	cancel    context.CancelFunc
	open      atomic.Bool
	local     atomic.Bool
	config    config.WebSocketConfig
	logger    zerolog.Logger
}

func (c *wsConn) Send(text string) error {
	if !c.open.Load() {
		return ErrNotOpen
	}
	select {
	case c.send <- text:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (c *wsConn) Close() error {
	c.local.Store(true)
	c.shutdown()
	return nil
}

func (c *wsConn) shutdown() {
	c.closeOnce.Do(func() {
		c.open.Store(false)
		close(c.done)
		c.cancel()
	})
}

func (c *wsConn) run(ctx context.Context, dialer *websocket.Dialer, url string, l Listener) {
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		c.shutdown()
		if !c.local.Load() {
			l.OnError(fmt.Errorf("failed to connect: %w", err))
		}
		l.OnClose(err)
		return
	}

	select {
	case <-c.done:
		ws.Close()
		l.OnClose(nil)
		return
	default:
	}

	c.open.Store(true)
	l.OnOpen()

	go c.writePump(ws)
	err = c.readPump(ws, l)
	c.shutdown()
	l.OnClose(err)
}

func (c *wsConn) readPump(ws *websocket.Conn, l Listener) error {
	defer ws.Close()

	if c.config.MaxMessageSize > 0 {
		ws.SetReadLimit(c.config.MaxMessageSize)
	}
	ws.SetReadDeadline(time.Now().Add(c.config.PongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		msgType, message, err := ws.ReadMessage()
		if err != nil {
			if c.local.Load() {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn().Err(err).Msg("websocket read failed")
				l.OnError(err)
			}
			return err
		}
		if msgType != websocket.TextMessage {
			c.logger.Debug().Int("type", msgType).Msg("ignoring non-text frame")
			continue
		}
		l.OnMessage(string(message))
	}
}

func (c *wsConn) writePump(ws *websocket.Conn) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case text := <-c.send:
			ws.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
				c.logger.Warn().Err(err).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			ws.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			err := ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
			if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
				c.logger.Debug().Err(err).Msg("close frame not sent")
			}
			return
		}
	}
}
