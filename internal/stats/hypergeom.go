package stats

import "math"

// logChoose returns log(n choose k), or -Inf outside the support.
func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}

// logPMF returns the log hypergeometric point probability of drawing k
// term genes under the table's margins.
func (t Table) logPMF(k int) float64 {
	return logChoose(t.successes(), k) +
		logChoose(t.population()-t.successes(), t.draws()-k) -
		logChoose(t.population(), t.draws())
}

// supportMin returns the smallest overlap the margins allow.
func (t Table) supportMin() int {
	lo := t.draws() + t.successes() - t.population()
	if lo < 0 {
		lo = 0
	}
	return lo
}

// supportMax returns the largest overlap the margins allow.
func (t Table) supportMax() int {
	hi := t.successes()
	if t.draws() < hi {
		hi = t.draws()
	}
	return hi
}

// HypergeometricTail returns P(X >= overlap), the chance of drawing at
// least the observed overlap by sampling the query from the population
// without replacement.
func (t Table) HypergeometricTail() float64 {
	lo, hi := t.supportMin(), t.supportMax()
	if t.Overlap <= lo {
		return 1.0
	}
	sum := 0.0
	for k := t.Overlap; k <= hi; k++ {
		sum += math.Exp(t.logPMF(k))
	}
	return math.Min(sum, 1.0)
}
