package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-deribit-gateway/internal/infrastructure/hub"
	"go-deribit-gateway/internal/infrastructure/logger"
)

// PublishHandler injects a broadcast by hand, for testing the fan-out path
// without a live exchange connection.
type PublishHandler struct {
	hub    *hub.Hub
	logger logger.Logger
}

type PublishRequest struct {
	Topic   string `json:"topic"   binding:"required"`
	Payload string `json:"payload" binding:"required"`
}

func NewPublishHandler(hubInstance *hub.Hub, log logger.Logger) *PublishHandler {
	return &PublishHandler{
		hub:    hubInstance,
		logger: log.WithField("handler", "publish"),
	}
}

func (h *PublishHandler) Publish(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("invalid publish request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request format",
		})
		return
	}

	h.hub.Broadcast(req.Topic, req.Payload)

	c.JSON(http.StatusOK, gin.H{
		"status":      "published",
		"topic":       req.Topic,
		"subscribers": h.hub.SubscriberCount(req.Topic),
	})
}
