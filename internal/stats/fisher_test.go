package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Expected values below are exact rationals worked out by enumerating all
// tables with the given margins.

func TestFisherExact_EnrichedOverlap(t *testing.T) {
	// 8 of 9 query genes hit a 10-gene term in a 16-gene population.
	// C(16,9) = 11440; tables no more likely than the observed one have
	// overlaps 3, 8 and 9, with weights 120 + 270 + 10 = 400.
	tab := mustTable(t, 8, 10, 9, 16)
	assert.InEpsilon(t, 400.0/11440.0, tab.FisherExact(), 1e-9)
}

func TestFisherExact_SmallOverlap(t *testing.T) {
	// C(20,5) = 15504; qualifying overlaps 3, 4, 5 weigh 1050 + 75 + 1.
	tab := mustTable(t, 3, 5, 5, 20)
	assert.InEpsilon(t, 1126.0/15504.0, tab.FisherExact(), 1e-9)
}

func TestFisherExact_DisjointSets(t *testing.T) {
	// Zero overlap can still be unremarkable: qualifying overlaps
	// 0, 3, 4, 5 weigh 3003 + 1050 + 75 + 1 = 4129 of C(20,5).
	tab := mustTable(t, 0, 5, 5, 20)
	assert.InEpsilon(t, 4129.0/15504.0, tab.FisherExact(), 1e-9)
}

func TestFisherExact_SymmetricTable(t *testing.T) {
	// Every table with these margins is as likely as the observed one.
	tab := mustTable(t, 2, 3, 3, 6)
	assert.InEpsilon(t, 1.0, tab.FisherExact(), 1e-9)
}

func TestFisherExact_SingleAdmissibleTable(t *testing.T) {
	// Term spans the whole population, so the overlap is forced.
	tab := mustTable(t, 5, 5, 5, 5)
	assert.Equal(t, 1.0, tab.FisherExact())
}

func TestFisherExact_NeverExceedsOne(t *testing.T) {
	tables := []Table{
		mustTable(t, 0, 5, 5, 20),
		mustTable(t, 1, 2, 2, 4),
		mustTable(t, 2, 3, 3, 6),
		mustTable(t, 10, 10, 10, 20),
	}
	for _, tab := range tables {
		p := tab.FisherExact()
		assert.LessOrEqual(t, p, 1.0)
		assert.Greater(t, p, 0.0)
	}
}
