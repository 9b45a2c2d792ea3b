package dataspec

import "math"

// Accumulator keeps running sum, sum-of-squares, count, min and max of a
// stream of float64 values using Kahan summation so that the mean and
// standard deviation it reports stay accurate across datasets with a
// large row count N.
type Accumulator struct {
	sum      float64
	sumComp  float64 // Kahan compensation term for sum
	sumSq    float64
	sumSqCmp float64 // Kahan compensation term for sumSq
	count    int64
	min, max float64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{min: math.Inf(1), max: math.Inf(-1)}
}

// Add folds one value into the accumulator.
func (a *Accumulator) Add(x float64) {
	a.sum, a.sumComp = kahanAdd(a.sum, a.sumComp, x)
	a.sumSq, a.sumSqCmp = kahanAdd(a.sumSq, a.sumSqCmp, x*x)
	a.count++
	if x < a.min {
		a.min = x
	}
	if x > a.max {
		a.max = x
	}
}

func kahanAdd(sum, comp, x float64) (float64, float64) {
	y := x - comp
	t := sum + y
	comp = (t - sum) - y
	return t, comp
}

// Count returns the number of values folded in.
func (a *Accumulator) Count() int64 { return a.count }

// Mean returns the arithmetic mean, or 0 if Count() == 0.
func (a *Accumulator) Mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// StdDev returns the population standard deviation, or 0 if Count() == 0.
func (a *Accumulator) StdDev() float64 {
	if a.count == 0 {
		return 0
	}
	n := float64(a.count)
	mean := a.sum / n
	variance := a.sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// Min returns the minimum value seen, or +Inf if Count() == 0.
func (a *Accumulator) Min() float64 { return a.min }

// Max returns the maximum value seen, or -Inf if Count() == 0.
func (a *Accumulator) Max() float64 { return a.max }
