package loss

import (
	"math"
	"math/rand"
)

// LambdaMART implements LAMBDA_MART_NDCG5 ranking: pairwise lambda
// forces derived from the change in NDCG@5 a pair's swap would cause.
type LambdaMART struct{}

func (l *LambdaMART) Kind() Kind                        { return LambdaMARTNDCG5 }
func (l *LambdaMART) NumTreesPerIter(numClasses int) int { return 1 }
func (l *LambdaMART) SecondaryMetricNames() []string     { return []string{"ndcg@5"} }

func (l *LambdaMART) InitialPredictions(labels []float64, _ []float64, _ int) []float64 {
	return []float64{0}
}

// Gradients computes, for every ranking group independently, pairwise
// lambda forces over all (i,j) pairs with differing relevance: a group
// of size 1 produces zero gradient for both rows.
func (l *LambdaMART) Gradients(labels, predictions []float64, weights []float64, groups []RankingGroup, _, _ int, rng *rand.Rand) ([]float64, []float64) {
	n := len(labels)
	g := make([]float64, n)
	h := make([]float64, n)
	for _, group := range groups {
		if len(group.Indices) < 2 {
			continue
		}
		order := orderByPredictedScore(rng, group.Indices, predictions)
		rank := make(map[int32]int, len(order))
		for pos, idx := range order {
			rank[idx] = pos
		}
		ideal := idealDCG(group.Relevances, NDCG5Truncation)
		for a := 0; a < len(group.Indices); a++ {
			for b := a + 1; b < len(group.Indices); b++ {
				i, j := group.Indices[a], group.Indices[b]
				ri, rj := labels[i], labels[j]
				if ri == rj {
					continue // ties contribute zero force
				}
				hi, lo := i, j
				if rj > ri {
					hi, lo = j, i
				}
				delta := deltaNDCG(rank[hi], rank[lo], labels[hi], labels[lo], ideal)
				if delta == 0 {
					continue
				}
				rho := 1 / (1 + math.Exp(predictions[hi]-predictions[lo]))
				lambda := rho * delta
				hess := rho * (1 - rho) * delta
				g[hi] += lambda
				g[lo] -= lambda
				h[hi] += hess
				h[lo] += hess
			}
		}
	}
	for i := range h {
		h[i] = math.Max(h[i], 1e-3)
	}
	return g, h
}

// deltaNDCG is |(gain(r_hi)-gain(r_lo))*(discount(rank_hi)-discount(rank_lo))| / idealDCG,
// zero once both positions fall outside the NDCG@5 truncation window.
func deltaNDCG(rankHi, rankLo int, relHi, relLo, ideal float64) float64 {
	if ideal == 0 {
		return 0
	}
	if rankHi >= NDCG5Truncation && rankLo >= NDCG5Truncation {
		return 0
	}
	d := math.Abs((gain(relHi) - gain(relLo)) * (discount(rankHi) - discount(rankLo)))
	return d / ideal
}

func (l *LambdaMART) LeafValue(sumG, sumH, _ float64, cfg LeafConfig) float64 {
	sumG = softThreshold(sumG, cfg.L1)
	denom := math.Max(sumH, cfg.minHessian()) + cfg.L2
	return shrink(sumG/denom, cfg)
}

func (l *LambdaMART) Value(labels, predictions []float64, weights []float64, groups []RankingGroup, _ int) (float64, map[string]float64) {
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
