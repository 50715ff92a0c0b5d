package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/genesetlab/overrep/internal/duckdb"
	"github.com/genesetlab/overrep/internal/enrich"
	"github.com/genesetlab/overrep/internal/geneset"
)

// statusClientClosedRequest mirrors the nginx convention for requests
// abandoned by the caller.
const statusClientClosedRequest = 499

type enrichRequest struct {
	Genes       []string `json:"genes" binding:"required"`
	Name        string   `json:"name"`
	Library     string   `json:"library" binding:"required"`
	Background  string   `json:"background"`
	Method      string   `json:"method"`
	NoNormalize bool     `json:"no_normalize"`
	KeepInvalid bool     `json:"keep_invalid"`
}

type geneSetInfo struct {
	Name       string             `json:"name"`
	Size       int                `json:"size"`
	Validation geneset.Validation `json:"validation"`
}

type enrichResponse struct {
	GeneSet geneSetInfo `json:"gene_set"`
	Run     *enrich.Run `json:"run"`
}

type libraryInfo struct {
	Name        string `json:"name"`
	Organism    string `json:"organism"`
	NumTerms    int    `json:"num_terms"`
	UniqueGenes int    `json:"unique_genes"`
}

type backgroundInfo struct {
	Name     string `json:"name"`
	Organism string `json:"organism"`
	Size     int    `json:"size"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"methods": enrich.Methods(),
		"default": enrich.FishersExact,
	})
}

func (s *Server) handleLibraries(c *gin.Context) {
	libs := s.catalog.Libraries()
	infos := make([]libraryInfo, 0, len(libs))
	for _, lib := range libs {
		infos = append(infos, libraryInfo{
			Name:        lib.Name(),
			Organism:    lib.Organism(),
			NumTerms:    lib.NumTerms(),
			UniqueGenes: lib.Size(),
		})
	}
	c.JSON(http.StatusOK, infos)
}

func (s *Server) handleBackgrounds(c *gin.Context) {
	bgs := s.catalog.Backgrounds()
	infos := make([]backgroundInfo, 0, len(bgs))
	for _, bg := range bgs {
		infos = append(infos, backgroundInfo{
			Name:     bg.Name(),
			Organism: bg.Organism(),
			Size:     bg.Size(),
		})
	}
	c.JSON(http.StatusOK, infos)
}

func (s *Server) handleEnrich(c *gin.Context) {
	var req enrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Genes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one gene is required"})
		return
	}

	methodName := req.Method
	if methodName == "" {
		methodName = string(enrich.FishersExact)
	}
	method, err := enrich.ParseMethod(methodName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lib, ok := s.catalog.Library(req.Library)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("library %q not found", req.Library)})
		return
	}

	var bg *geneset.Background
	if req.Background != "" {
		bg, ok = s.catalog.Background(req.Background)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("background %q not found", req.Background)})
			return
		}
	} else {
		bg, ok = s.catalog.DefaultBackground()
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no background gene sets loaded"})
			return
		}
	}

	name := req.Name
	if name == "" {
		name = "gene_set"
	}
	gs := geneset.New(name, req.Genes, bg, geneset.Options{
		Normalize: !req.NoNormalize,
		Filter:    !req.KeepInvalid,
	})

	start := time.Now()
	run, err := s.engine.Run(c.Request.Context(), gs, lib, bg, method)
	if err != nil {
		s.recordRun(method, "error", time.Since(start), 0)
		s.writeRunError(c, err)
		return
	}
	s.recordRun(method, "ok", time.Since(start), len(run.Results))

	if s.store != nil {
		if err := s.store.SaveRun(c.Request.Context(), run); err != nil {
			s.logger.Warn("persist run failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, enrichResponse{
		GeneSet: geneSetInfo{
			Name:       gs.Name(),
			Size:       gs.Size(),
			Validation: gs.Validation(),
		},
		Run: run,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "run store disabled"})
		return
	}
	runs, err := s.store.ListRuns(c.Request.Context())
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if runs == nil {
		runs = []duckdb.RunSummary{}
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "run store disabled"})
		return
	}
	id := c.Param("id")
	run, err := s.store.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("run %q not found", id)})
			return
		}
		s.logger.Error("load run failed", zap.String("run_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) recordRun(method enrich.Method, status string, elapsed time.Duration, terms int) {
	if s.metrics == nil {
		return
	}
	s.metrics.RunsTotal.WithLabelValues(string(method), status).Inc()
	s.metrics.RunDuration.Observe(elapsed.Seconds())
	s.metrics.TermsProcessed.Add(float64(terms))
}

func (s *Server) writeRunError(c *gin.Context, err error) {
	var unsupported *enrich.UnsupportedMethodError
	var invalidBg *enrich.InvalidBackgroundError
	switch {
	case errors.As(err, &unsupported), errors.As(err, &invalidBg):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(statusClientClosedRequest, gin.H{"error": "request canceled"})
	default:
		s.logger.Error("enrichment run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
