// Package stats implements the contingency table tests that score term
// enrichment and the Benjamini-Hochberg procedure that adjusts the
// resulting p-values.
package stats

import "fmt"

// Table is the 2x2 contingency table relating a query gene set to a single
// library term within a finite background population. Rows split the
// population by term membership, columns by query membership.
type Table struct {
	Overlap   int // in term and in query
	TermOnly  int // in term only
	QueryOnly int // in query only
	Neither   int // in neither
}

// NewTable derives the table cells from the three set sizes and their
// overlap. Inputs that imply a negative cell, such as an overlap larger
// than the term or a set larger than the population, are rejected.
func NewTable(overlap, termSize, querySize, population int) (Table, error) {
	t := Table{
		Overlap:   overlap,
		TermOnly:  termSize - overlap,
		QueryOnly: querySize - overlap,
		Neither:   population - termSize - querySize + overlap,
	}
	if t.Overlap < 0 || t.TermOnly < 0 || t.QueryOnly < 0 || t.Neither < 0 {
		return Table{}, fmt.Errorf("inconsistent contingency table: overlap=%d term=%d query=%d population=%d",
			overlap, termSize, querySize, population)
	}
	return t, nil
}

func (t Table) population() int { return t.Overlap + t.TermOnly + t.QueryOnly + t.Neither }

// successes is the number of term genes in the population.
func (t Table) successes() int { return t.Overlap + t.TermOnly }

// draws is the number of query genes sampled from the population.
func (t Table) draws() int { return t.Overlap + t.QueryOnly }
