package httpt

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *InboxHandler) setupRoutes() {
	h.router.GET("/health", h.healthHandler)
	h.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.router.GET("/notifications", h.listHandler)
	h.router.GET("/notifications/unread-count", h.unreadCountHandler)
	h.router.GET("/notifications/stats", h.statsHandler)
	h.router.GET("/notifications/:id", h.getHandler)
	h.router.POST("/notifications/:id/read", h.markReadHandler)
	h.router.POST("/notifications/read-all", h.markAllReadHandler)
}
