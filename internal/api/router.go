package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Hirdyansh9/Orderbook/internal/config"
	"github.com/Hirdyansh9/Orderbook/internal/logging"
)

func NewRouter(logger *logging.Logger, cfg config.Config, h *Handler, ws *WSHandler) *gin.Engine {
	if cfg.API.Mode != "" {
		gin.SetMode(cfg.API.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	r.GET("/health", h.Health)

	api := r.Group(cfg.API.BasePath, IdentityMiddleware())
	{
		// Policies
		api.GET("/policies", ownerOnly(), h.GetPolicy)
		api.PUT("/policies", ownerOnly(), h.UpdatePolicy)

		// Notifications
		api.GET("/notifications", h.ListNotifications)
		api.GET("/notifications/unread/count", h.UnreadCount)
		api.PATCH("/notifications/read-all", h.MarkAllRead)
		api.PATCH("/notifications/:id/read", h.MarkRead)
		api.DELETE("/notifications/:id", h.DeleteNotification)
		api.POST("/notifications/manual", ownerOnly(), h.CreateManual)
		api.POST("/notifications/test-triggers", ownerOnly(), h.TestTriggers)

		if ws != nil {
			api.GET("/ws", ws.Serve)
		}
	}
	return r
}
