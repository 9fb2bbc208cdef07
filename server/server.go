// Package server exposes the content pipeline over HTTP. Every stage is
// individually addressable for debugging and integration, and the full
// pipeline runs behind a single endpoint. All /v1 routes require the
// configured X-API-Key; health and metrics do not.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contentmesh/contentmesh/audit"
	"github.com/contentmesh/contentmesh/core"
	"github.com/contentmesh/contentmesh/dossier"
	"github.com/contentmesh/contentmesh/logging"
	"github.com/contentmesh/contentmesh/pipeline"
	"github.com/contentmesh/contentmesh/synthesis"
	"github.com/contentmesh/contentmesh/topics"
)

// Options configure a Server.
type Options struct {
	// APIKey guards the /v1 routes; empty disables authentication.
	APIKey string
	// Gatherer backs the /metrics endpoint; nil disables it.
	Gatherer prometheus.Gatherer
	Logger   logging.Logger
}

// Server routes HTTP requests to pipeline stages.
type Server struct {
	orchestrator *pipeline.Orchestrator
	scanner      *topics.Scanner
	builder      *dossier.Builder
	synthesizer  *synthesis.Synthesizer
	auditor      *audit.Auditor
	opts         Options
	engine       *gin.Engine
}

// New builds the server and its routes.
func New(
	orchestrator *pipeline.Orchestrator,
	scanner *topics.Scanner,
	builder *dossier.Builder,
	synthesizer *synthesis.Synthesizer,
	auditor *audit.Auditor,
	optFns ...func(o *Options),
) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		orchestrator: orchestrator,
		scanner:      scanner,
		builder:      builder,
		synthesizer:  synthesizer,
		auditor:      auditor,
		opts:         opts,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.opts.Logger.Info("HTTP server listening", "addr", addr)
	return s.engine.Run(addr)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	if s.opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/v1", s.authMiddleware())
	v1.POST("/pipeline/run", s.handlePipelineRun)
	v1.POST("/topics/run", s.handleTopicsRun)
	v1.POST("/dossier/run", s.handleDossierRun)
	v1.POST("/synthesis/run", s.handleSynthesisRun)
	v1.POST("/audit/run", s.handleAuditRun)
	return r
}

// authMiddleware enforces the X-API-Key header on guarded routes.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.opts.APIKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-Key") != s.opts.APIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type pipelineRunRequest struct {
	OverrideTopic string `json:"override_topic"`
}

// handlePipelineRun executes a complete run. The run result is always
// returned; privacy-violation aborts map to 400, other stage failures to 500.
func (s *Server) handlePipelineRun(c *gin.Context) {
	// An empty body is a valid "no override" request.
	var req pipelineRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := s.orchestrator.Run(c.Request.Context(), req.OverrideTopic)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	switch {
	case result.Status == core.StatusError && result.Reason == pipeline.ReasonPrivacyViolation:
		c.JSON(http.StatusBadRequest, result)
	case result.Status == core.StatusError:
		c.JSON(http.StatusInternalServerError, result)
	default:
		c.JSON(http.StatusOK, result)
	}
}

type topicsRunRequest struct {
	OverrideTopic string `json:"override_topic"`
}

func (s *Server) handleTopicsRun(c *gin.Context) {
	var req topicsRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	selection, err := s.scanner.Run(c.Request.Context(), req.OverrideTopic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, selection)
}

type dossierRunRequest struct {
	Topic string `json:"topic" binding:"required"`
}

func (s *Server) handleDossierRun(c *gin.Context) {
	var req dossierRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := s.builder.Build(c.Request.Context(), req.Topic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, d)
}

type synthesisRunRequest struct {
	Topic   string        `json:"topic" binding:"required"`
	Dossier *core.Dossier `json:"dossier" binding:"required"`
}

func (s *Server) handleSynthesisRun(c *gin.Context) {
	var req synthesisRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article, err := s.synthesizer.Run(c.Request.Context(), req.Topic, req.Dossier)
	if err != nil {
		if errors.Is(err, synthesis.ErrPrivacyViolation) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  err.Error(),
				"reason": pipeline.ReasonPrivacyViolation,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, article)
}

type auditRunRequest struct {
	Article *core.Article `json:"article" binding:"required"`
	Dossier *core.Dossier `json:"dossier" binding:"required"`
}

func (s *Server) handleAuditRun(c *gin.Context) {
	var req auditRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.auditor.Run(c.Request.Context(), req.Article, req.Dossier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":  report,
		"article": req.Article,
	})
}
