package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-deribit-gateway/internal/infrastructure/hub"
	"go-deribit-gateway/internal/infrastructure/logger"
	"go-deribit-gateway/internal/interfaces/rest/v1/handler"
	"go-deribit-gateway/internal/interfaces/sse"
	"go-deribit-gateway/internal/interfaces/websocket"
)

func InitRouter(hubInstance *hub.Hub, log logger.Logger) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	rootGroup := router.Group("")

	rootGroup.GET("/hub/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"hub_running": hubInstance.IsRunning(),
			"connections": hubInstance.ConnectionCount(),
			"topics":      hubInstance.Topics(),
		})
	})

	publishHandler := handler.NewPublishHandler(hubInstance, log)
	apiGroup := rootGroup.Group("/api")
	{
		apiGroup.POST("/v1/publish", publishHandler.Publish)
	}

	sse.InitSSERouter(log, hubInstance, rootGroup)
	websocket.InitWebSocketRouter(log, hubInstance, rootGroup)

	return router
}
