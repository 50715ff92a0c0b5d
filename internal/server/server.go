// Package server exposes the enrichment engine over HTTP.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/genesetlab/overrep/internal/catalog"
	"github.com/genesetlab/overrep/internal/duckdb"
	"github.com/genesetlab/overrep/internal/enrich"
	"github.com/genesetlab/overrep/internal/metrics"
)

// Server wires the engine, catalog and run store behind a gin router.
// The store and metrics may be nil; the matching endpoints then degrade
// gracefully.
type Server struct {
	engine  *enrich.Engine
	catalog *catalog.Catalog
	store   *duckdb.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	router  *gin.Engine
}

// New builds a Server with all routes registered.
func New(engine *enrich.Engine, cat *catalog.Catalog, store *duckdb.Store, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:  engine,
		catalog: cat,
		store:   store,
		metrics: m,
		logger:  logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/healthz", s.handleHealth)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/methods", s.handleMethods)
		v1.GET("/libraries", s.handleLibraries)
		v1.GET("/backgrounds", s.handleBackgrounds)
		v1.POST("/enrich", s.handleEnrich)
		v1.GET("/runs", s.handleListRuns)
		v1.GET("/runs/:id", s.handleGetRun)
	}

	s.router = router
	return s
}

// Router returns the underlying gin engine, for http.Server and tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
