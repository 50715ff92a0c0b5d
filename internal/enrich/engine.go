// Package enrich computes gene set enrichment: it scores every term of a
// library against a query gene set within a background population, adjusts
// the p-values for multiple testing and ranks the outcome.
package enrich

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/genesetlab/overrep/internal/geneset"
	"github.com/genesetlab/overrep/internal/stats"
)

// InvalidBackgroundError reports a background population too small to
// contain the union of the query gene set and one term's genes. Such a
// table would have a negative cell.
type InvalidBackgroundError struct {
	Term       string
	UnionSize  int
	Background int
}

func (e *InvalidBackgroundError) Error() string {
	return fmt.Sprintf("background covers %d genes but term %q and the gene set union to %d; choose a background containing both",
		e.Background, e.Term, e.UnionSize)
}

// Engine runs enrichment analyses. Construct with NewEngine; the zero
// value has no logger.
type Engine struct {
	workers int
	logger  *zap.Logger
}

// NewEngine returns an engine sized to the available hardware parallelism.
// Logging is off until SetLogger.
func NewEngine() *Engine {
	return &Engine{logger: zap.NewNop()}
}

// SetWorkers bounds the per-term fan-out. Zero or negative selects one
// worker per CPU.
func (e *Engine) SetWorkers(n int) { e.workers = n }

// SetLogger attaches a logger for run summaries.
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Run scores every library term against the gene set. The method selector
// and the background are validated before any term is scored, so an
// invalid run produces no partial results. Scoring fans out across the
// worker pool; correction and ranking run once all terms are in.
func (e *Engine) Run(ctx context.Context, gs *geneset.GeneSet, lib *geneset.Library, bg *geneset.Background, method Method) (*Run, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	run := &Run{
		ID:          uuid.NewString(),
		Name:        runName(gs.Name(), lib.Name(), bg.Name(), createdAt),
		GeneSet:     gs.Name(),
		GeneSetSize: gs.Size(),
		Library:     lib.Name(),
		Background:  bg.Name(),
		Method:      method,
		CreatedAt:   createdAt,
		Results:     []TermResult{},
	}

	terms := lib.Terms()
	if len(terms) == 0 {
		return run, nil
	}

	if err := validateBackground(gs, lib, bg); err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := parallelMap(ctx, terms, e.workers, func(term geneset.Term) (TermResult, error) {
		return scoreTerm(gs, bg, method, term)
	})
	if err != nil {
		return nil, err
	}

	pvalues := make([]float64, len(results))
	for i, r := range results {
		pvalues[i] = r.PValue
	}
	for i, fdr := range stats.BenjaminiHochberg(pvalues) {
		results[i].FDR = fdr
	}

	rankOrder(results)
	run.Results = results

	e.logger.Info("enrichment run complete",
		zap.String("run_id", run.ID),
		zap.String("gene_set", run.GeneSet),
		zap.String("library", run.Library),
		zap.String("background", run.Background),
		zap.String("method", string(method)),
		zap.Int("terms", len(results)),
		zap.Duration("elapsed", time.Since(start)))

	return run, nil
}

// runName builds the human-readable run identifier used for snapshot and
// export file names.
func runName(geneSet, library, background string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s", geneSet, library, background,
		at.Format("2006-01-02 15:04:05"))
}

// validateBackground checks that the population contains the union of the
// gene set and every term, the precondition for non-negative contingency
// cells.
func validateBackground(gs *geneset.GeneSet, lib *geneset.Library, bg *geneset.Background) error {
	for _, term := range lib.Terms() {
		seen := make(map[string]struct{}, len(term.Genes))
		extra := 0
		for _, g := range term.Genes {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			if !gs.Contains(g) {
				extra++
			}
		}
		if union := gs.Size() + extra; union > bg.Size() {
			return &InvalidBackgroundError{
				Term:       term.Name,
				UnionSize:  union,
				Background: bg.Size(),
			}
		}
	}
	return nil
}

// scoreTerm computes one term's overlap and p-value. Pure: safe to call
// from multiple workers.
func scoreTerm(gs *geneset.GeneSet, bg *geneset.Background, method Method, term geneset.Term) (TermResult, error) {
	termGenes := make(map[string]struct{}, len(term.Genes))
	for _, g := range term.Genes {
		termGenes[g] = struct{}{}
	}

	overlap := []string{}
	for g := range termGenes {
		if gs.Contains(g) {
			overlap = append(overlap, g)
		}
	}
	sort.Strings(overlap)

	tab, err := stats.NewTable(len(overlap), len(termGenes), gs.Size(), bg.Size())
	if err != nil {
		return TermResult{}, fmt.Errorf("term %q: %w", term.Name, err)
	}

	var p float64
	switch method {
	case FishersExact:
		p = tab.FisherExact()
	case Hypergeometric:
		p = tab.HypergeometricTail()
	case ChiSquared:
		p = tab.ChiSquared()
	default:
		return TermResult{}, &UnsupportedMethodError{Method: string(method)}
	}

	return TermResult{
		Term:         term.Name,
		Description:  term.Description,
		Overlap:      overlap,
		OverlapCount: len(overlap),
		TermSize:     len(termGenes),
		OverlapSize:  fmt.Sprintf("%d/%d", len(overlap), len(termGenes)),
		PValue:       p,
	}, nil
}
