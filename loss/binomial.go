package loss

import (
	"math"
	"math/rand"
)

// Binomial implements BINOMIAL_LOG_LIKELIHOOD for two-class
// classification.
type Binomial struct{}

func (b *Binomial) Kind() Kind                            { return BinomialLogLikelihood }
func (b *Binomial) NumTreesPerIter(numClasses int) int     { return 1 }
func (b *Binomial) SecondaryMetricNames() []string         { return []string{"accuracy"} }

// InitialPredictions returns log(p/(1-p)) for the weighted positive
// rate p. All-positive or all-negative labels yield a ±∞ sentinel.
func (b *Binomial) InitialPredictions(labels []float64, weights []float64, _ int) []float64 {
	var sumPos, sumW float64
	for i, y := range labels {
		w := weightAt(weights, i)
		sumW += w
		if y > 0.5 {
			sumPos += w
		}
	}
	p := 0.5
	if sumW > 0 {
		p = sumPos / sumW
	}
	f0 := math.Log(p / (1 - p))
	return []float64{f0}
}

// Gradients computes y - σ(f), the residual against the current
// prediction.
func (b *Binomial) Gradients(labels, predictions []float64, weights []float64, _ []RankingGroup, _, _ int, _ *rand.Rand) ([]float64, []float64) {
	n := len(labels)
	g := make([]float64, n)
	h := make([]float64, n)
	for i := range g {
		p := sigmoid(predictions[i])
		g[i] = labels[i] - p
		h[i] = math.Max(p*(1-p), 1e-3)
	}
	return g, h
}

// LeafValue computes g/(σ(f)(1-σ(f))+λ), i.e. ΣgΣ/(Σh+λ) with hessian
// floored, L1-thresholded, L2-damped, shrunk and clamped.
func (b *Binomial) LeafValue(sumG, sumH, _ float64, cfg LeafConfig) float64 {
	sumG = softThreshold(sumG, cfg.L1)
	denom := math.Max(sumH, cfg.minHessian()) + cfg.L2
	return shrink(sumG/denom, cfg)
}

func (b *Binomial) Value(labels, predictions []float64, weights []float64, _ []RankingGroup, _ int) (float64, map[string]float64) {
	var totalLoss, sumW, correct float64
	for i, y := range labels {
		w := weightAt(weights, i)
		p := sigmoid(predictions[i])
		p = math.Min(math.Max(p, 1e-12), 1-1e-12)
		totalLoss += -w * (y*math.Log(p) + (1-y)*math.Log(1-p))
		sumW += w
		predicted := 0.0
		if p > 0.5 {
			predicted = 1
		}
		if predicted == y {
			correct += w
		}
	}
	if sumW == 0 {
		return 0, map[string]float64{"accuracy": 0}
	}
	return totalLoss / sumW, map[string]float64{"accuracy": correct / sumW}
}

func weightAt(weights []float64, i int) float64 {
	if weights == nil {
		return 1
	}
	return weights[i]
}
