// Package stats collects the small numeric helpers shared by the cleaner and
// the analyzer.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Median returns the median value of the slice (allocates a copy).
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	cp := sorted(x)
	mid := n >> 1
	if n&1 == 0 {
		return (cp[mid-1] + cp[mid]) * 0.5
	}
	return cp[mid]
}

// Quantile returns the q-th quantile using linear interpolation between the
// closest ranks. The input must already be sorted.
func Quantile(sortedVals []float64, q float64) float64 {
	if len(sortedVals) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sortedVals[0]
	}
	if q >= 1 {
		return sortedVals[len(sortedVals)-1]
	}
	pos := q * float64(len(sortedVals)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sortedVals[lo]
	}
	w := pos - float64(lo)
	return sortedVals[lo]*(1-w) + sortedVals[hi]*w
}

// Quartiles returns Q1 and Q3 of x.
func Quartiles(x []float64) (q1, q3 float64) {
	cp := sorted(x)
	return Quantile(cp, 0.25), Quantile(cp, 0.75)
}

// IQRBounds returns the fences [Q1 - k*IQR, Q3 + k*IQR].
func IQRBounds(x []float64, k float64) (lower, upper float64) {
	q1, q3 := Quartiles(x)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}

// Mode returns the most frequent key. Ties go to the key seen first.
func Mode(keys []string) (string, int) {
	counts := make(map[string]int, len(keys))
	best, bestN := "", 0
	for _, k := range keys {
		counts[k]++
	}
	for _, k := range keys {
		if n := counts[k]; n > bestN {
			best, bestN = k, n
		}
	}
	return best, bestN
}

// Summary holds descriptive statistics for one numeric column.
type Summary struct {
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Std    float64 `json:"std" yaml:"std"`
	Skew   float64 `json:"skewness" yaml:"skewness"`
}

// Describe computes a Summary. Std and Skew are zero when undefined.
func Describe(x []float64) Summary {
	s := Summary{Count: len(x)}
	if len(x) == 0 {
		return s
	}
	s.Min, s.Max = x[0], x[0]
	for _, v := range x[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Median = Median(x)
	s.Mean, s.Std = stat.MeanStdDev(x, nil)
	if len(x) < 2 || math.IsNaN(s.Std) {
		s.Std = 0
	}
	if len(x) > 2 && s.Std > 0 {
		s.Skew = stat.Skew(x, nil)
	}
	return s
}

// Pearson returns the correlation of x and y, or 0 when it is undefined.
func Pearson(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func sorted(x []float64) []float64 {
	cp := make([]float64, len(x))
	copy(cp, x)
	sort.Float64s(cp)
	return cp
}
