package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 4.0, Median([]float64{3, 5}))
	assert.True(t, math.IsNaN(Median(nil)))
}

func TestQuartilesMatchLinearInterpolation(t *testing.T) {
	q1, q3 := Quartiles([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 2.0, q1)
	assert.Equal(t, 4.0, q3)

	lo, hi := IQRBounds([]float64{1, 2, 3, 4, 100}, 1.5)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)
}

func TestModeFirstSeenWinsTies(t *testing.T) {
	v, n := Mode([]string{"b", "a", "a", "b", "c"})
	assert.Equal(t, "b", v)
	assert.Equal(t, 2, n)

	v, n = Mode(nil)
	assert.Equal(t, "", v)
	assert.Equal(t, 0, n)
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.Count)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.Equal(t, 5.0, s.Mean)
	assert.Equal(t, 4.5, s.Median)
	assert.InDelta(t, 2.138, s.Std, 1e-3)
	assert.Greater(t, s.Skew, 0.0)

	single := Describe([]float64{3})
	assert.Equal(t, 0.0, single.Std)
	assert.Equal(t, 0.0, single.Skew)
}

func TestPearson(t *testing.T) {
	assert.InDelta(t, 1.0, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, -1.0, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-9)
	assert.Equal(t, 0.0, Pearson([]float64{1, 1, 1}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, Pearson([]float64{1}, []float64{1}))
}
