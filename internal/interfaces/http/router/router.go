package router

import (
	"github.com/gin-gonic/gin"

	"book_orders/internal/interfaces/http/handler"
	"book_orders/internal/interfaces/http/middleware"
	"book_orders/pkg/logger"
)

// RegisterRoutes mounts the order routes at the root and under /api.
func RegisterRoutes(r *gin.Engine, orderHandler *handler.OrderHandler, log logger.Logger, allowOrigins []string) {
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(log),
		middleware.CORS(allowOrigins),
	)

	r.GET("/health", orderHandler.Health)

	for _, g := range []*gin.RouterGroup{r.Group(""), r.Group("/api")} {
		g.POST("/orders", orderHandler.CreateOrder)
		g.GET("/orders", orderHandler.ListOrders)
	}
}
