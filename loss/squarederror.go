package loss

import (
	"math"
	"math/rand"
)

// SquaredErrorLoss implements SQUARED_ERROR for regression and ranking
// base predictions.
type SquaredErrorLoss struct{}

func (s *SquaredErrorLoss) Kind() Kind                        { return SquaredError }
func (s *SquaredErrorLoss) NumTreesPerIter(numClasses int) int { return 1 }
func (s *SquaredErrorLoss) SecondaryMetricNames() []string     { return []string{"rmse"} }

func (s *SquaredErrorLoss) InitialPredictions(labels []float64, weights []float64, _ int) []float64 {
	var sumY, sumW float64
	for i, y := range labels {
		w := weightAt(weights, i)
		sumY += w * y
		sumW += w
	}
	mean := 0.0
	if sumW > 0 {
		mean = sumY / sumW
	}
	return []float64{mean}
}

func (s *SquaredErrorLoss) Gradients(labels, predictions []float64, weights []float64, _ []RankingGroup, _, _ int, _ *rand.Rand) ([]float64, []float64) {
	n := len(labels)
	g := make([]float64, n)
	h := make([]float64, n)
	for i := range g {
		g[i] = labels[i] - predictions[i]
		h[i] = 1
	}
	return g, h
}

// LeafValue keeps the shrinkage factor integrated into the leaf value
// itself rather than normalizing it away: sum(w*(y-f)) / (sum(w) + lambda/2).
func (s *SquaredErrorLoss) LeafValue(sumG, _, sumW float64, cfg LeafConfig) float64 {
	sumG = softThreshold(sumG, cfg.L1)
	denom := math.Max(sumW, cfg.minHessian()) + cfg.L2/2
	return shrink(sumG/denom, cfg)
}

func (s *SquaredErrorLoss) Value(labels, predictions []float64, weights []float64, _ []RankingGroup, _ int) (float64, map[string]float64) {
	var sumSq, sumW float64
	for i, y := range labels {
		w := weightAt(weights, i)
		d := y - predictions[i]
		sumSq += w * d * d
		sumW += w
	}
	if sumW == 0 {
		return 0, map[string]float64{"rmse": 0}
	}
	rmse := math.Sqrt(sumSq / sumW)
	return rmse, map[string]float64{"rmse": rmse}
}
