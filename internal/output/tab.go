// Package output renders enrichment runs as delimited tables, JSON, HTML
// and reproducibility snapshots. All views are pure transforms of the
// ranked result list.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/genesetlab/overrep/internal/enrich"
)

// Columns is the fixed column order of the tabular views.
var Columns = []string{"rank", "term", "description", "overlap", "overlap_size", "p-value", "fdr"}

// TabWriter writes ranked results in tab-delimited format.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited results writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(Columns, "\t") + "\n")
	return err
}

// Write writes a single result row. Overlap genes are comma-joined.
func (tw *TabWriter) Write(r enrich.TermResult) error {
	values := []string{
		strconv.Itoa(r.Rank),
		r.Term,
		r.Description,
		strings.Join(r.Overlap, ","),
		r.OverlapSize,
		formatFloat(r.PValue),
		formatFloat(r.FDR),
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// WriteTSV renders a whole run, header included.
func WriteTSV(w io.Writer, run *enrich.Run) error {
	tw := NewTabWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range run.Results {
		if err := tw.Write(r); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// formatFloat uses the shortest representation that survives a round trip
// back to the same float64.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
