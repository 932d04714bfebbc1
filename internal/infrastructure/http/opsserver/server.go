// Package opsserver serves health, readiness, metrics and diagnostics on a
// port separate from the public API
package opsserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/pkg/healthcheck"
)

// Server is the operations HTTP server
type Server struct {
	engine *gin.Engine
	server *http.Server
	logger *zap.Logger
}

// NewServer builds the ops router. metrics and diagnostics may be nil.
func NewServer(cfg *config.Config, health *healthcheck.HealthCheck, metrics http.Handler, diagnostics *Diagnostics, logger *zap.Logger) *Server {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: gin.New(),
		logger: logger.Named("ops"),
	}
	s.engine.Use(s.recovery(), s.accessLog())

	s.engine.GET("/health", health.Handler())
	s.engine.GET("/health/live", health.LivenessHandler())
	s.engine.GET("/health/ready", health.ReadinessHandler())

	if metrics != nil && cfg.Monitoring.EnableMetrics {
		path := cfg.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.engine.GET(path, gin.WrapH(metrics))
	}

	if diagnostics != nil {
		diagnostics.RegisterRoutes(s.engine.Group("/debug"))
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.OpsPort),
		Handler:           s.engine,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting ops server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ops server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down ops server")
	return s.server.Shutdown(ctx)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}

		// probes hit these every few seconds
		if status < 400 {
			s.logger.Debug("Ops request", fields...)
			return
		}
		s.logger.Warn("Ops request failed", fields...)
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}
