// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/debatelens/internal/logging"
	"github.com/ppiankov/debatelens/internal/model"
)

// maxClaims bounds one request
const maxClaims = 200

// Analyzer is the part of the pipeline the server drives
type Analyzer interface {
	Analyze(ctx context.Context, claims []model.Claim) []model.EnrichedClaim
	AnalyzeText(ctx context.Context, paragraph string) ([]model.EnrichedClaim, error)
	Classify(ctx context.Context, claims []model.Claim) []model.ClassificationResult
	Report(input string, claims []model.EnrichedClaim) *model.Report
}

type Server struct {
	analyzer Analyzer
	logger   *zap.Logger
	version  string
}

func NewServer(analyzer Analyzer, logger *zap.Logger, version string) *Server {
	return &Server{
		analyzer: analyzer,
		logger:   logging.OrNop(logger),
		version:  version,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)

	v1 := r.Group("/v1")
	v1.POST("/analyze", s.Analyze)
	v1.POST("/classify", s.Classify)

	return r
}

// AnalyzeRequest carries either explicit claims or a paragraph to extract from
type AnalyzeRequest struct {
	Claims []string `json:"claims"`
	Text   string   `json:"text"`
}

func (s *Server) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	hasText := strings.TrimSpace(req.Text) != ""

	switch {
	case hasText && len(req.Claims) > 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Send either claims or text, not both"})
	case hasText:
		claims, err := s.analyzer.AnalyzeText(ctx, req.Text)
		if err != nil {
			s.logger.Error("analyze text failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze text"})
			return
		}
		c.JSON(http.StatusOK, s.analyzer.Report(req.Text, claims))
	default:
		claims, ok := s.bindClaims(c, req.Claims)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, s.analyzer.Report("", s.analyzer.Analyze(ctx, claims)))
	}
}

// ClassifyRequest lists claims to label without evidence retrieval
type ClassifyRequest struct {
	Claims []string `json:"claims"`
}

func (s *Server) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	claims, ok := s.bindClaims(c, req.Claims)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": s.analyzer.Classify(c.Request.Context(), claims)})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

// bindClaims numbers claim texts from 1 and rejects empty or oversized batches
func (s *Server) bindClaims(c *gin.Context, texts []string) ([]model.Claim, bool) {
	claims := make([]model.Claim, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		claims = append(claims, model.Claim{ID: len(claims) + 1, Text: t})
	}

	switch {
	case len(claims) == 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": "No claims given"})
		return nil, false
	case len(claims) > maxClaims:
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Too many claims", "max": maxClaims})
		return nil, false
	}
	return claims, true
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()))
	}
}
