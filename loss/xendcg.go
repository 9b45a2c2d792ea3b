package loss

import (
	"math"
	"math/rand"
)

// XENDCG implements XE_NDCG_MART: first- and second-order softmax
// cross-entropy gradients toward a target distribution derived from
// 2^relevance, jittered per row by an independent uniform draw so the
// target is never exactly degenerate.
type XENDCG struct{}

func (x *XENDCG) Kind() Kind                        { return XENDCGMART }
func (x *XENDCG) NumTreesPerIter(numClasses int) int { return 1 }
func (x *XENDCG) SecondaryMetricNames() []string     { return []string{"ndcg@5"} }

func (x *XENDCG) InitialPredictions(labels []float64, _ []float64, _ int) []float64 {
	return []float64{0}
}

// Gradients computes, per ranking group, a softmax over the group's
// predictions and compares it to a softmax over jittered target gains,
// yielding first-order (softmax difference) and second-order (softmax
// variance) terms. rng draws a fresh U(0,1) jitter per row on every
// call, the same way orderByPredictedScore draws a fresh shuffle for the
// other ranking losses; a nil rng recovers the noiseless target
// 2^relevance.
func (x *XENDCG) Gradients(labels, predictions []float64, weights []float64, groups []RankingGroup, _, _ int, rng *rand.Rand) ([]float64, []float64) {
	n := len(labels)
	g := make([]float64, n)
	h := make([]float64, n)
	for _, group := range groups {
		m := len(group.Indices)
		if m < 2 {
			continue
		}
		predSoftmax := softmaxOver(group.Indices, predictions)
		target := make([]float64, m)
		for i, idx := range group.Indices {
			u := 0.0
			if rng != nil {
				u = rng.Float64()
			}
			target[i] = math.Exp2(labels[idx]) - u
		}
		targetSoftmax := softmaxRaw(target)
		for i, idx := range group.Indices {
			p := predSoftmax[i]
			g[idx] = targetSoftmax[i] - p
			h[idx] = math.Max(p*(1-p), 1e-3)
		}
	}
	return g, h
}

func softmaxOver(indices []int32, values []float64) []float64 {
	raw := make([]float64, len(indices))
	for i, idx := range indices {
		raw[i] = values[idx]
	}
	return softmaxRaw(raw)
}

func softmaxRaw(values []float64) []float64 {
	max := values[0]
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	exps := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		exps[i] = math.Exp(v - max)
		sum += exps[i]
	}
	out := make([]float64, len(values))
	for i := range out {
		out[i] = exps[i] / sum
	}
	return out
}

func (x *XENDCG) LeafValue(sumG, sumH, _ float64, cfg LeafConfig) float64 {
	sumG = softThreshold(sumG, cfg.L1)
	denom := math.Max(sumH, cfg.minHessian()) + cfg.L2
	return shrink(sumG/denom, cfg)
}

func (x *XENDCG) Value(labels, predictions []float64, weights []float64, groups []RankingGroup, _ int) (float64, map[string]float64) {
	if len(groups) == 0 {
		return 0, map[string]float64{"ndcg@5": 0}
	}
	var total float64
	for _, group := range groups {
		order := orderByPredictedScore(nil, group.Indices, predictions)
		byOrder := make([]float64, len(order))
		for i, idx := range order {
			byOrder[i] = labels[idx]
		}
		total += ndcgAtK(byOrder, group.Relevances, NDCG5Truncation)
	}
	ndcg := total / float64(len(groups))
	return 1 - ndcg, map[string]float64{"ndcg@5": ndcg}
}
