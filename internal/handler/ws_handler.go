package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Owoblo/exam-monitor/internal/audit"
	"github.com/Owoblo/exam-monitor/internal/config"
	"github.com/Owoblo/exam-monitor/internal/hub"
	pkglog "github.com/Owoblo/exam-monitor/pkg/log"
)

const TransportWebSocket = "ws"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are enforced by the CORS layer
	},
}

// WSHandler streams the same events as /stream over a WebSocket.
// Monitors only receive; inbound frames are read to track liveness and
// otherwise discarded.
type WSHandler struct {
	hub    *hub.Hub
	config config.WebSocketConfig
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(h *hub.Hub, cfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:    h,
		config: cfg,
	}
}

// RegisterRoutes registers the WebSocket route.
func (h *WSHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws", h.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and drains one subscriber into it.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	l := pkglog.Ctx(ctx)

	// Registered before the handshake completes, like the SSE stream.
	sub := h.hub.Subscribe(TransportWebSocket)
	defer h.hub.Unsubscribe(sub)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	audit.LogWithDetail(ctx, audit.ActionMonitorJoined, "", sub.ID, "monitor websocket opened")

	go h.readPump(conn, cancel)
	go h.pingPump(ctx, conn)

	err = h.hub.Drain(ctx, sub, func(event hub.Event) error {
		conn.SetWriteDeadline(time.Now().Add(h.config.WriteWait))
		return conn.WriteMessage(websocket.TextMessage, event.Data)
	})

	if errors.Is(err, hub.ErrSubscriberDropped) {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"),
			time.Now().Add(h.config.WriteWait),
		)
	}

	l.Info().Err(err).Str(pkglog.FieldSubscriberID, sub.ID).Msg("monitor websocket closed")
	audit.LogWithDetail(ctx, audit.ActionMonitorLeft, "", sub.ID, "monitor websocket closed")
}

// readPump ends the session when the peer goes away or stops answering pings.
func (h *WSHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(h.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(h.config.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(h.config.PongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				l := pkglog.L()
				l.Error().Err(err).Msg("websocket error")
			}
			return
		}
	}
}

func (h *WSHandler) pingPump(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.config.WriteWait)); err != nil {
				return
			}
		}
	}
}
