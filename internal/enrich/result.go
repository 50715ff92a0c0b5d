package enrich

import (
	"sort"
	"time"
)

// TermResult is the scored outcome for a single library term.
type TermResult struct {
	Rank         int      `json:"rank"`
	Term         string   `json:"term"`
	Description  string   `json:"description"`
	Overlap      []string `json:"overlap"`
	OverlapCount int      `json:"overlap_count"`
	TermSize     int      `json:"term_size"`
	OverlapSize  string   `json:"overlap_size"`
	PValue       float64  `json:"p-value"`
	FDR          float64  `json:"fdr"`
}

// Run captures one complete enrichment analysis: what was tested, when,
// and the ranked results.
type Run struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	GeneSet     string       `json:"gene_set"`
	GeneSetSize int          `json:"gene_set_size"`
	Library     string       `json:"library"`
	Background  string       `json:"background"`
	Method      Method       `json:"method"`
	CreatedAt   time.Time    `json:"created_at"`
	Results     []TermResult `json:"results"`
}

// rankOrder sorts results by ascending raw p-value, keeping library order
// for ties, and assigns ranks 1..len(results) in that order.
func rankOrder(results []TermResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].PValue < results[j].PValue
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}
