package gin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ginlib "github.com/gin-gonic/gin"

	"book_orders/internal/config"
	"book_orders/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	log        logger.Logger
}

// NewEngine returns a bare engine with panic recovery. Panics are logged
// and answered with the generic internal error body.
func NewEngine(log logger.Logger) *ginlib.Engine {
	r := ginlib.New()
	r.Use(ginlib.CustomRecovery(func(c *ginlib.Context, recovered any) {
		log.WithContext(c.Request.Context()).Error("panic recovered",
			logger.Any("panic", recovered),
			logger.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ginlib.H{
			"error": "internal error",
			"code":  "INTERNAL_ERROR",
		})
	}))
	return r
}

func NewServer(cfg config.ServerConfig, engine *ginlib.Engine, log logger.Logger) *Server {
	return &Server{
		log: log,
		httpServer: &http.Server{
			Addr:              cfg.Address(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run blocks until the server stops. A server stopped by Shutdown returns nil.
func (s *Server) Run() error {
	if s.httpServer.Handler == nil {
		return fmt.Errorf("gin engine is nil")
	}
	s.log.Info("HTTP server listening", logger.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
