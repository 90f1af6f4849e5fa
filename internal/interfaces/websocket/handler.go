package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-deribit-gateway/internal/infrastructure/hub"
	"go-deribit-gateway/internal/infrastructure/logger"
)

// WebSocketHandler upgrades consumer connections and hands them to the hub.
type WebSocketHandler struct {
	hub      *hub.Hub
	logger   logger.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler instance.
func NewWebSocketHandler(hubInstance *hub.Hub, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hubInstance,
		logger: log.WithField("handler", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Local broadcast endpoint, consumers are trusted processes.
				return true
			},
		},
	}
}

// Connect handles WebSocket connection upgrade requests. The consumer
// registers interest afterwards by sending {"subscribe":"<topic>"} frames.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("hub is not running")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "service temporarily unavailable",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("failed to upgrade connection: %v", err)
		return
	}

	connID := "ws-" + uuid.NewString()
	wsConn := hub.NewWebSocketConnection(connID, conn, h.hub.HandleMessage, h.logger)

	if err := h.hub.Register(wsConn); err != nil {
		h.logger.Errorf("failed to register consumer: %v", err)
		wsConn.Close()
		return
	}

	// Hold the handler until the consumer goes away.
	<-wsConn.Context().Done()
	h.logger.Infof("consumer %s gone", connID)
}

// GetConnections returns information about connected consumers.
func (h *WebSocketHandler) GetConnections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"total_connections": h.hub.ConnectionCount(),
		"topics":            h.hub.Topics(),
		"hub_running":       h.hub.IsRunning(),
	})
}
