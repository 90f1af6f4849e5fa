package sse

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-deribit-gateway/internal/infrastructure/hub"
	"go-deribit-gateway/internal/infrastructure/logger"
)

// ServerSentEventHandler serves read-only consumers. SSE has no inbound
// channel, so the topic is fixed up front via the query string instead of a
// subscribe frame.
type ServerSentEventHandler struct {
	hub    *hub.Hub
	logger logger.Logger
}

func NewServerSentEventHandler(hubInstance *hub.Hub, log logger.Logger) *ServerSentEventHandler {
	return &ServerSentEventHandler{
		hub:    hubInstance,
		logger: log.WithField("handler", "sse"),
	}
}

// Connect handles SSE connection requests, e.g.
// GET /stream?topic=book.BTC-PERPETUAL.100ms
func (h *ServerSentEventHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("hub is not running")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "service temporarily unavailable",
		})
		return
	}

	topic := c.Query("topic")
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "topic query parameter is required",
		})
		return
	}

	connID := "sse-" + uuid.NewString()
	conn := hub.NewSSEConnection(c.Request.Context(), connID, c.Writer, h.logger)

	if err := h.hub.Register(conn); err != nil {
		h.logger.Errorf("failed to register consumer: %v", err)
		conn.Close()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to register connection",
		})
		return
	}

	if err := h.hub.Subscribe(connID, topic); err != nil {
		h.logger.Errorf("failed to subscribe consumer: %v", err)
		h.hub.Unregister(connID)
		return
	}

	sse.Encode(c.Writer, sse.Event{
		Event: "connected",
		Data: map[string]interface{}{
			"connection_id": connID,
			"topic":         topic,
			"timestamp":     time.Now().Format(time.RFC3339),
		},
	})
	c.Writer.Flush()

	// Hold the handler until the consumer or the hub closes the connection.
	select {
	case <-conn.Context().Done():
	case <-c.Request.Context().Done():
	}
	h.hub.Unregister(connID)
	h.logger.Infof("consumer %s gone", connID)
}

// SSEHeadersMiddleware sets the event-stream headers before the handler runs.
func SSEHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Next()
	}
}
