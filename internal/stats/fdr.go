package stats

import "sort"

// BenjaminiHochberg adjusts p-values for multiple testing and returns them
// in input order. Equal p-values keep their relative input order during
// ranking, so the output is deterministic.
func BenjaminiHochberg(pvalues []float64) []float64 {
	n := len(pvalues)
	adjusted := make([]float64, n)
	if n == 0 {
		return adjusted
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return pvalues[order[i]] < pvalues[order[j]]
	})

	// Walk from the least significant p-value down, carrying the running
	// minimum so adjusted values stay monotone and capped at 1.
	minSoFar := 1.0
	for k := n - 1; k >= 0; k-- {
		v := pvalues[order[k]] * float64(n) / float64(k+1)
		if v < minSoFar {
			minSoFar = v
		}
		adjusted[order[k]] = minSoFar
	}
	return adjusted
}
