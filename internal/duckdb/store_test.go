package duckdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genesetlab/overrep/internal/enrich"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func storedRun(id, name string, at time.Time) *enrich.Run {
	return &enrich.Run{
		ID:          id,
		Name:        name,
		GeneSet:     "query",
		GeneSetSize: 5,
		Library:     "go_bp",
		Background:  "hgnc_symbols",
		Method:      enrich.FishersExact,
		CreatedAt:   at,
		Results: []enrich.TermResult{
			{
				Rank: 1, Term: "Apoptosis", Description: "GO:0006915",
				Overlap:      []string{"BAX", "TP53"},
				OverlapCount: 2, TermSize: 4, OverlapSize: "2/4",
				PValue: 0.0031, FDR: 0.0062,
			},
			{
				Rank: 2, Term: "Cell Cycle", Description: "GO:0007049",
				Overlap:      []string{},
				OverlapCount: 0, TermSize: 3, OverlapSize: "0/3",
				PValue: 1, FDR: 1,
			},
		},
	}
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestSaveAndGetRun(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	at := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	run := storedRun("run-1", "query_go_bp_hgnc_symbols_2026-01-15 10:30:00", at)
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, run.Name, got.Name)
	assert.Equal(t, run.GeneSet, got.GeneSet)
	assert.Equal(t, run.GeneSetSize, got.GeneSetSize)
	assert.Equal(t, run.Library, got.Library)
	assert.Equal(t, run.Background, got.Background)
	assert.Equal(t, run.Method, got.Method)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt), "got %v", got.CreatedAt)

	require.Len(t, got.Results, 2)
	assert.Equal(t, run.Results[0], got.Results[0])
	assert.Equal(t, run.Results[1], got.Results[1])
}

func TestGetRun_NotFound(t *testing.T) {
	s := openInMemory(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListRuns_MostRecentFirst(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	older := storedRun("run-old", "older", time.Date(2026, 1, 14, 8, 0, 0, 0, time.UTC))
	newer := storedRun("run-new", "newer", time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveRun(ctx, older))
	require.NoError(t, s.SaveRun(ctx, newer))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-new", runs[0].ID)
	assert.Equal(t, "run-old", runs[1].ID)
	assert.Equal(t, 2, runs[0].NumTerms)
	assert.Equal(t, "fishers_exact", runs[0].Method)
}

func TestListRuns_Empty(t *testing.T) {
	s := openInMemory(t)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSaveRun_NoResults(t *testing.T) {
	s := openInMemory(t)
	ctx := context.Background()

	run := storedRun("run-empty", "empty", time.Now().UTC())
	run.Results = []enrich.TermResult{}
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.GetRun(ctx, "run-empty")
	require.NoError(t, err)
	assert.NotNil(t, got.Results)
	assert.Empty(t, got.Results)
}
