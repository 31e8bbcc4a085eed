// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/cache"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

const (
	RequestIDHeader = "X-Request-ID"

	loggerKey       = "logger"
	shutdownTimeout = 10 * time.Second
)

// Service is the analyzer surface served over HTTP.
type Service interface {
	Scan(ctx context.Context) ([]engine.ScanResult, error)
	Alerts(ctx context.Context) ([]engine.Alert, error)
	Score(ctx context.Context) float64
	Compliance(ctx context.Context, profile engine.Profile) (engine.ComplianceReport, error)
}

// ProfileSource resolves compliance standards by name.
type ProfileSource interface {
	GetProfile(name string) (engine.Profile, bool)
	ListStandards() []string
}

type Server struct {
	svc      Service
	profiles ProfileSource
	cache    cache.Cache
	log      logr.Logger
	router   *gin.Engine
}

func New(svc Service, profiles ProfileSource, c cache.Cache, log logr.Logger) *Server {
	if c == nil {
		c = cache.Nop{}
	}
	s := &Server{
		svc:      svc,
		profiles: profiles,
		cache:    c,
		log:      log.WithName("server"),
		router:   gin.New(),
	}

	s.router.Use(gin.Recovery(), s.requestContext())
	s.router.GET("/", s.rootHandler)
	s.router.GET("/health", s.healthHandler)

	v1 := s.router.Group("/api/v1")
	security := v1.Group("/security")
	security.GET("/scan", s.scanHandler)
	security.GET("/alerts", s.alertsHandler)
	security.GET("/score", s.scoreHandler)
	v1.GET("/compliance/report", s.complianceHandler)
	v1.GET("/compliance/standards", s.standardsHandler)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// requestContext tags each request with an id and logs its outcome.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)

		log := s.log.WithValues("request_id", id)
		c.Set(loggerKey, log)

		start := time.Now()
		c.Next()
		log.V(1).Info("Request served",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start).String())
	}
}

func requestLogger(c *gin.Context) logr.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if log, ok := v.(logr.Logger); ok {
			return log
		}
	}
	return logr.Discard()
}

// internalError logs err and answers with a fixed body so upstream error
// text never reaches the client.
func internalError(c *gin.Context, err error, msg string) {
	requestLogger(c).Error(err, msg)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
}
