package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/genesetlab/overrep/internal/enrich"
)

// RunSummary is the run-level view used in listings; results are loaded
// separately with GetRun.
type RunSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	GeneSet     string    `json:"gene_set"`
	GeneSetSize int       `json:"gene_set_size"`
	Library     string    `json:"library"`
	Background  string    `json:"background"`
	Method      string    `json:"method"`
	NumTerms    int       `json:"num_terms"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveRun persists a run and its result rows. The result batch goes
// through the Appender API.
func (s *Store) SaveRun(ctx context.Context, run *enrich.Run) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, name, gene_set, gene_set_size, library, background, method, num_terms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.GeneSet, int64(run.GeneSetSize), run.Library,
		run.Background, string(run.Method), int64(len(run.Results)), run.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(run.Results) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "run_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range run.Results {
		if err := appender.AppendRow(
			run.ID, int64(r.Rank), r.Term, r.Description,
			strings.Join(r.Overlap, ","), int64(r.OverlapCount), int64(r.TermSize),
			r.PValue, r.FDR,
		); err != nil {
			return fmt.Errorf("append result row: %w", err)
		}
	}

	return appender.Flush()
}

// ListRuns returns run summaries, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, name, gene_set, gene_set_size, library, background, method, num_terms, created_at
		FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Name, &r.GeneSet, &r.GeneSetSize,
			&r.Library, &r.Background, &r.Method, &r.NumTerms, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun loads a stored run with its full result list in rank order. A
// missing run surfaces sql.ErrNoRows in the wrapped error.
func (s *Store) GetRun(ctx context.Context, id string) (*enrich.Run, error) {
	run := &enrich.Run{ID: id, Results: []enrich.TermResult{}}
	var method string
	err := s.db.QueryRowContext(ctx, `SELECT
		name, gene_set, gene_set_size, library, background, method, created_at
		FROM runs WHERE run_id = ?`, id).
		Scan(&run.Name, &run.GeneSet, &run.GeneSetSize, &run.Library,
			&run.Background, &method, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}
	run.Method = enrich.Method(method)

	rows, err := s.db.QueryContext(ctx, `SELECT
		term_rank, term, description, overlap, overlap_count, term_size, p_value, fdr
		FROM run_results WHERE run_id = ? ORDER BY term_rank`, id)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r enrich.TermResult
		var overlap string
		if err := rows.Scan(&r.Rank, &r.Term, &r.Description, &overlap,
			&r.OverlapCount, &r.TermSize, &r.PValue, &r.FDR); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Overlap = []string{}
		if overlap != "" {
			r.Overlap = strings.Split(overlap, ",")
		}
		r.OverlapSize = fmt.Sprintf("%d/%d", r.OverlapCount, r.TermSize)
		run.Results = append(run.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return run, nil
}
