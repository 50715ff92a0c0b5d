package stats

import "math"

// fisherRelTol absorbs floating point noise when deciding whether another
// table is "as extreme" as the observed one. Point probabilities within
// this relative distance of the observed probability count toward the
// p-value.
const fisherRelTol = 1e-7

// FisherExact returns the two-sided Fisher exact p-value: the total
// probability of every table with the observed margins that is no more
// likely than the observed table.
func (t Table) FisherExact() float64 {
	lo, hi := t.supportMin(), t.supportMax()
	if lo == hi {
		// The margins admit a single table.
		return 1.0
	}

	cutoff := t.logPMF(t.Overlap) + math.Log1p(fisherRelTol)
	sum := 0.0
	for k := lo; k <= hi; k++ {
		if lp := t.logPMF(k); lp <= cutoff {
			sum += math.Exp(lp)
		}
	}
	return math.Min(sum, 1.0)
}
