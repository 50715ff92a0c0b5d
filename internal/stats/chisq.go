package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquared returns the p-value of the chi-squared independence test on
// one degree of freedom with Yates' continuity correction. A table with an
// empty row or column carries no association signal and scores 1.0.
func (t Table) ChiSquared() float64 {
	stat, ok := t.chiSquaredStat()
	if !ok {
		return 1.0
	}
	return distuv.ChiSquared{K: 1}.Survival(stat)
}

func (t Table) chiSquaredStat() (float64, bool) {
	obs := [2][2]float64{
		{float64(t.Overlap), float64(t.TermOnly)},
		{float64(t.QueryOnly), float64(t.Neither)},
	}
	rows := [2]float64{obs[0][0] + obs[0][1], obs[1][0] + obs[1][1]}
	cols := [2]float64{obs[0][0] + obs[1][0], obs[0][1] + obs[1][1]}
	total := rows[0] + rows[1]
	if rows[0] == 0 || rows[1] == 0 || cols[0] == 0 || cols[1] == 0 {
		return 0, false
	}

	stat := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			expected := rows[i] * cols[j] / total
			d := math.Abs(obs[i][j]-expected) - 0.5
			if d < 0 {
				d = 0
			}
			stat += d * d / expected
		}
	}
	return stat, true
}
