package loss

import (
	"math"
	"math/rand"
)

// Multinomial implements MULTINOMIAL_LOG_LIKELIHOOD for K-class
// classification (K>=3), training K-1 one-vs-rest trees per iteration
// and reserving class 0 for the OOV/never-predicted slot.
type Multinomial struct {
	NumClasses int
}

func (m *Multinomial) Kind() Kind                    { return MultinomialLogLikelihood }
func (m *Multinomial) NumTreesPerIter(numClasses int) int {
	if numClasses < 2 {
		return 1
	}
	return numClasses - 1
}
func (m *Multinomial) SecondaryMetricNames() []string { return []string{"accuracy"} }

// InitialPredictions starts every channel at 0.
func (m *Multinomial) InitialPredictions(labels []float64, _ []float64, numClasses int) []float64 {
	return make([]float64, m.NumTreesPerIter(numClasses))
}

// softmaxRestVsAll computes p_k for channel k out of predictions laid
// out as numTreesPerIter rows interleaved per example (row i's channel
// k value is predictions[i*numTreesPerIter+k]); the implicit class 0
// probability is 1 - Σp_k.
func softmaxRestVsAll(rowPredictions []float64) []float64 {
	k := len(rowPredictions)
	exp := make([]float64, k)
	var sum float64 = 1 // class 0's implicit exp(0) term
	for i, f := range rowPredictions {
		exp[i] = math.Exp(f)
		sum += exp[i]
	}
	p := make([]float64, k)
	for i := range p {
		p[i] = exp[i] / sum
	}
	return p
}

// Gradients computes 1{y=k} - p_k for the k-th rest-vs-all channel.
func (m *Multinomial) Gradients(labels, predictions []float64, weights []float64, _ []RankingGroup, k, numTreesPerIter int, _ *rand.Rand) ([]float64, []float64) {
	n := len(labels)
	g := make([]float64, n)
	h := make([]float64, n)
	for i := range g {
		row := predictions[i*numTreesPerIter : i*numTreesPerIter+numTreesPerIter]
		p := softmaxRestVsAll(row)[k]
		indicator := 0.0
		if int(labels[i]) == k+1 { // classes 1..K-1 map to channels 0..K-2; class 0 is OOV/never a label channel
			indicator = 1
		}
		g[i] = indicator - p
		h[i] = math.Max(p*(1-p), 1e-3)
	}
	return g, h
}

// LeafValue implements ((K-1)/K)*g/(|g|(1-|g|)+lambda).
func (m *Multinomial) LeafValue(sumG, sumH, _ float64, cfg LeafConfig) float64 {
	k := m.NumClasses
	if k < 2 {
		k = 2
	}
	sumG = softThreshold(sumG, cfg.L1)
	denom := math.Max(sumH, cfg.minHessian()) + cfg.L2
	scale := float64(k-1) / float64(k)
	return shrink(scale*sumG/denom, cfg)
}

func (m *Multinomial) Value(labels, predictions []float64, weights []float64, _ []RankingGroup, numTreesPerIter int) (float64, map[string]float64) {
	var totalLoss, sumW, correct float64
	for i, y := range labels {
		w := weightAt(weights, i)
		row := predictions[i*numTreesPerIter : i*numTreesPerIter+numTreesPerIter]
		p := softmaxRestVsAll(row)
		pClass0 := 1.0
		for _, pk := range p {
			pClass0 -= pk
		}
		best, bestP := 0, pClass0
		for k, pk := range p {
			if pk > bestP {
				best, bestP = k+1, pk
			}
		}
		labelClass := int(y)
		var trueP float64
		if labelClass == 0 {
			trueP = pClass0
		} else if labelClass-1 < len(p) {
			trueP = p[labelClass-1]
		}
		trueP = math.Min(math.Max(trueP, 1e-12), 1)
		totalLoss += -w * math.Log(trueP)
		sumW += w
		if best == labelClass {
			correct += w
		}
	}
	if sumW == 0 {
		return 0, map[string]float64{"accuracy": 0}
	}
	return totalLoss / sumW, map[string]float64{"accuracy": correct / sumW}
}
