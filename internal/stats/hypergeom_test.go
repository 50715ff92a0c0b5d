package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHypergeometricTail_EnrichedOverlap(t *testing.T) {
	// P(X >= 8) with N=16, K=10, n=9: (270 + 10) / C(16,9).
	tab := mustTable(t, 8, 10, 9, 16)
	assert.InEpsilon(t, 280.0/11440.0, tab.HypergeometricTail(), 1e-9)
}

func TestHypergeometricTail_SmallOverlap(t *testing.T) {
	// P(X >= 3) with N=20, K=5, n=5: (1050 + 75 + 1) / C(20,5).
	tab := mustTable(t, 3, 5, 5, 20)
	assert.InEpsilon(t, 1126.0/15504.0, tab.HypergeometricTail(), 1e-9)
}

func TestHypergeometricTail_ZeroOverlap(t *testing.T) {
	// At the bottom of the support the tail covers everything.
	tab := mustTable(t, 0, 5, 5, 20)
	assert.Equal(t, 1.0, tab.HypergeometricTail())
}

func TestHypergeometricTail_FullOverlap(t *testing.T) {
	// P(X >= 5) is the single most extreme table: 1 / C(20,5).
	tab := mustTable(t, 5, 5, 5, 20)
	assert.InEpsilon(t, 1.0/15504.0, tab.HypergeometricTail(), 1e-9)
}

func TestLogChoose(t *testing.T) {
	assert.InDelta(t, math.Log(10), logChoose(5, 2), 1e-12)
	assert.InDelta(t, 0, logChoose(7, 0), 1e-12)
	assert.InDelta(t, 0, logChoose(7, 7), 1e-12)
	assert.True(t, math.IsInf(logChoose(3, 5), -1))
	assert.True(t, math.IsInf(logChoose(3, -1), -1))
}
