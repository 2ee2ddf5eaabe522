package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/shivamgupta214/outfox-health-assessment/internal/config"
	"github.com/shivamgupta214/outfox-health-assessment/internal/service"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

const routeAsk = "/ws/ask"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler answers free-text questions over a WebSocket. Each inbound text
// frame gets exactly one text reply, in order.
type WSHandler struct {
	navigatorService service.NavigatorService
	wsCfg            config.WebSocketConfig
}

func NewWSHandler(svc service.NavigatorService, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		navigatorService: svc,
		wsCfg:            wsCfg.WithDefaults(),
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET(routeAsk, h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	id := uuid.New().String()
	logger := l.With().Str(log.FieldSessionID, id).Logger()
	ctx := log.WithLogger(c.Request.Context(), logger)

	a := &asker{
		conn:   conn,
		send:   make(chan string, h.wsCfg.SendBuffer),
		done:   make(chan struct{}),
		config: h.wsCfg,
	}
	logger.Info().Msg("ask socket opened")

	go a.writePump()
	a.readPump(func(query string) {
		reply := h.navigatorService.Answer(ctx, query)
		select {
		case a.send <- reply:
		case <-a.done:
		}
	})
	close(a.send)
	<-a.done

	logger.Info().Msg("ask socket closed")
}

type asker struct {
	conn   *websocket.Conn
	send   chan string
	done   chan struct{} // closed when writePump exits
	config config.WebSocketConfig
}

func (a *asker) readPump(handle func(string)) {
	a.conn.SetReadLimit(a.config.MaxMessageSize)
	a.conn.SetReadDeadline(time.Now().Add(a.config.PongWait))
	a.conn.SetPongHandler(func(string) error {
		a.conn.SetReadDeadline(time.Now().Add(a.config.PongWait))
		return nil
	})

	for {
		kind, message, err := a.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		handle(string(message))
	}
}

func (a *asker) writePump() {
	ticker := time.NewTicker(a.config.PingInterval)
	defer func() {
		ticker.Stop()
		a.conn.Close()
		close(a.done)
	}()

	for {
		select {
		case message, ok := <-a.send:
			a.conn.SetWriteDeadline(time.Now().Add(a.config.WriteWait))
			if !ok {
				a.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := a.conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
				return
			}

		case <-ticker.C:
			a.conn.SetWriteDeadline(time.Now().Add(a.config.WriteWait))
			if err := a.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
