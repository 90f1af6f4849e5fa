package sse

import (
	"github.com/gin-gonic/gin"

	"go-deribit-gateway/internal/infrastructure/hub"
	"go-deribit-gateway/internal/infrastructure/logger"
)

func InitSSERouter(log logger.Logger, hubInstance *hub.Hub, rg *gin.RouterGroup) {
	sseHandler := NewServerSentEventHandler(hubInstance, log)

	sseGroup := rg.Group("/stream")
	sseGroup.GET("", SSEHeadersMiddleware(), sseHandler.Connect)
}
