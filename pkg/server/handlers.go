package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/cache"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to AWS Cybersecurity Analyzer API"})
}

func (s *Server) healthHandler(c *gin.Context) {
	code, status, cacheState := http.StatusOK, "healthy", "connected"
	if err := s.cache.Ping(c.Request.Context()); err != nil {
		if errors.Is(err, cache.ErrDisabled) {
			cacheState = "disabled"
		} else {
			code, status, cacheState = http.StatusServiceUnavailable, "unhealthy", err.Error()
			requestLogger(c).Error(err, "Cache health check failed")
		}
	}
	c.JSON(code, gin.H{
		"status": status,
		"api":    "running",
		"cache":  cacheState,
	})
}

func (s *Server) scanHandler(c *gin.Context) {
	results, err := s.svc.Scan(c.Request.Context())
	if err != nil {
		internalError(c, err, "Scan failed")
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) alertsHandler(c *gin.Context) {
	alerts, err := s.svc.Alerts(c.Request.Context())
	if err != nil {
		internalError(c, err, "Alert retrieval failed")
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) scoreHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"score": s.svc.Score(c.Request.Context())})
}

func (s *Server) complianceHandler(c *gin.Context) {
	standard := c.DefaultQuery("standard", engine.DefaultStandard)
	profile, ok := s.profiles.GetProfile(standard)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "unknown compliance standard"})
		return
	}

	report, err := s.svc.Compliance(c.Request.Context(), profile)
	if err != nil {
		internalError(c, err, "Compliance report failed")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) standardsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"standards": s.profiles.ListStandards()})
}
