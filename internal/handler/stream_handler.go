package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Owoblo/exam-monitor/internal/audit"
	"github.com/Owoblo/exam-monitor/internal/hub"
	pkglog "github.com/Owoblo/exam-monitor/pkg/log"
)

const TransportSSE = "sse"

// StreamHandler serves the server-sent event stream to monitors.
type StreamHandler struct {
	hub *hub.Hub
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(h *hub.Hub) *StreamHandler {
	return &StreamHandler{hub: h}
}

// RegisterRoutes registers the stream route.
func (h *StreamHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/stream", h.HandleStream)
}

// HandleStream holds the response open and writes one "data:" frame per
// event until the monitor disconnects or falls too far behind.
func (h *StreamHandler) HandleStream(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		l.Error().Msg("response writer does not support streaming")
		c.Status(http.StatusInternalServerError)
		return
	}

	// Subscribe before the headers go out so a monitor that has seen the
	// response never misses a later publish.
	sub := h.hub.Subscribe(TransportSSE)
	defer h.hub.Unsubscribe(sub)

	audit.LogWithDetail(ctx, audit.ActionMonitorJoined, "", sub.ID, "monitor stream opened")

	w := c.Writer
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	err := h.hub.Drain(ctx, sub, func(event hub.Event) error {
		if _, err := fmt.Fprintf(w, "data: %s\n\n", event.Data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	evt := l.Info().Str(pkglog.FieldSubscriberID, sub.ID)
	if errors.Is(err, hub.ErrSubscriberDropped) {
		evt = l.Warn().Str(pkglog.FieldSubscriberID, sub.ID)
	}
	evt.Err(err).Msg("monitor stream closed")

	audit.LogWithDetail(ctx, audit.ActionMonitorLeft, "", sub.ID, "monitor stream closed")
}
