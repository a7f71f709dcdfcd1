// Package api implements the HTTP surface: run triggering, run and report
// retrieval, health, Prometheus metrics, and a WebSocket run-progress feed.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/allthingstrust/truststack/pkg/config"
	"github.com/allthingstrust/truststack/pkg/orchestrator"
	"github.com/allthingstrust/truststack/pkg/store"
	"github.com/allthingstrust/truststack/pkg/version"
)

// Server is the HTTP API server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	cfg        *config.Config
	orc        *orchestrator.Orchestrator
	db         *store.Store
	hub        *WSHub
	metrics    *Metrics
}

// NewServer wires routes against the given config, orchestrator and store.
func NewServer(cfg *config.Config, orc *orchestrator.Orchestrator, db *store.Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery(), securityHeaders())

	s := &Server{
		engine:  e,
		cfg:     cfg,
		orc:     orc,
		db:      db,
		hub:     NewWSHub(),
		metrics: NewMetrics(),
	}
	go s.hub.Run()
	s.setupRoutes()
	return s
}

// setupRoutes registers every endpoint.
func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	v1 := s.engine.Group("/api/v1")
	v1.POST("/runs", s.createRunHandler)
	v1.GET("/runs/:id", s.getRunHandler)
	v1.GET("/runs/:id/report", s.getReportHandler)
	v1.GET("/ws", s.wsHandler)
}

// Run starts the HTTP server on addr (blocking).
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.engine}
	return s.httpServer.ListenAndServe()
}

// Serve starts the HTTP server on a pre-created listener; used by tests that
// need a random OS-assigned port.
func (s *Server) Serve(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.engine}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := s.db.Pool().Ping(reqCtx); err != nil {
		dbStatus = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy", Version: version.Full(), Database: dbStatus,
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: version.Full(), Database: dbStatus})
}

// securityHeaders sets a small set of defensive response headers.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
