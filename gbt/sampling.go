package gbt

import (
	"math"
	"math/rand"
	"sort"

	"github.com/branchml/forest/loss"
)

// sampleRows selects which training rows an iteration trains on: NONE
// passes every training row through; RANDOM draws each row
// independently at rate subsample;
// GOSS keeps all large-gradient rows plus a random sample of the rest,
// reweighting the sample to stay unbiased; SELGB keeps, per ranking
// group, every relevant row plus the hardest ratio fraction of its
// negatives. Non-ranking methods never apply to ranking tasks, since
// dropping rows from a group outside of SELGB's own per-group logic
// would corrupt NDCG.
//
// The returned map holds a weight multiplier for every row whose sample
// weight needs compensating for being under-represented by the
// sampling scheme; rows absent from the map keep their input weight.
func sampleRows(rng *rand.Rand, trainIdx []int32, labels, predictions []float64, numTreesPerIter int, cfg *Config, subsample float64, groups []loss.RankingGroup) ([]int32, map[int32]float64) {
	if cfg.SamplingMethod == SELGB && groups != nil {
		return selgbSubset(groups, trainIdx, labels, predictions, numTreesPerIter, cfg), nil
	}
	if groups != nil {
		return trainIdx, nil // ranking tasks otherwise always train on the full group set
	}
	switch cfg.SamplingMethod {
	case RandomSampling:
		return randomSubset(rng, trainIdx, subsample), nil
	case GOSS:
		return gossSubset(rng, trainIdx, labels, predictions, numTreesPerIter, cfg)
	default:
		return trainIdx, nil
	}
}

func randomSubset(rng *rand.Rand, indices []int32, rate float64) []int32 {
	if rate <= 0 || rate >= 1 {
		return indices
	}
	out := make([]int32, 0, int(float64(len(indices))*rate)+1)
	for _, idx := range indices {
		if rng.Float64() < rate {
			out = append(out, idx)
		}
	}
	if len(out) == 0 && len(indices) > 0 {
		out = append(out, indices[0])
	}
	return out
}

// gossSubset implements Gradient-based One-Side Sampling: the top-alpha
// fraction by |gradient| is always kept, plus a beta fraction of the
// remainder drawn uniformly at random. Those sampled remainder rows are
// reweighted by alpha/(1-alpha) so the retained low-gradient mass keeps
// standing in for the rows GOSS dropped instead of silently biasing the
// gradient/Hessian sums downward.
func gossSubset(rng *rand.Rand, indices []int32, labels, predictions []float64, numTreesPerIter int, cfg *Config) ([]int32, map[int32]float64) {
	alpha, beta := cfg.GOSSAlpha, cfg.GOSSBeta
	if alpha <= 0 {
		alpha = 0.2
	}
	if beta <= 0 {
		beta = 0.1
	}
	type scored struct {
		idx  int32
		grad float64
	}
	rows := make([]scored, len(indices))
	for i, idx := range indices {
		rows[i] = scored{idx, math.Abs(labels[idx] - predictions[int(idx)*numTreesPerIter])}
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].grad > rows[b].grad })

	topN := int(float64(len(rows)) * alpha)
	out := make([]int32, 0, topN)
	for i := 0; i < topN; i++ {
		out = append(out, rows[i].idx)
	}
	rest := rows[topN:]
	weightScale := make(map[int32]float64)
	compensation := alpha / (1 - alpha)
	for _, r := range rest {
		if rng.Float64() < beta {
			out = append(out, r.idx)
			weightScale[r.idx] = compensation
		}
	}
	return out, weightScale
}

// selgbSubset keeps, from each ranking group, every row with positive
// relevance plus the hardest ratio fraction of its zero-relevance
// negatives (by squared residual) — the "top ratio negatives per group"
// selection SELGB names for ranking tasks. trainIdx restricts the
// candidates to the training split; validation rows never enter.
func selgbSubset(groups []loss.RankingGroup, trainIdx []int32, labels, predictions []float64, numTreesPerIter int, cfg *Config) []int32 {
	ratio := cfg.SELGBRatio
	if ratio <= 0 {
		ratio = 0.5
	}
	inTrain := make(map[int32]bool, len(trainIdx))
	for _, idx := range trainIdx {
		inTrain[idx] = true
	}
	type scored struct {
		idx  int32
		loss float64
	}
	var out []int32
	for _, group := range groups {
		var negatives []scored
		for _, idx := range group.Indices {
			if !inTrain[idx] {
				continue
			}
			if labels[idx] > 0 {
				out = append(out, idx)
				continue
			}
			d := labels[idx] - predictions[int(idx)*numTreesPerIter]
			negatives = append(negatives, scored{idx, d * d})
		}
		sort.Slice(negatives, func(a, b int) bool { return negatives[a].loss > negatives[b].loss })
		n := int(float64(len(negatives)) * ratio)
		if n == 0 && len(negatives) > 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, negatives[i].idx)
		}
	}
	return out
}
