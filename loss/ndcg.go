package loss

import (
	"math"
	"math/rand"
)

// NDCG5Truncation is the position cutoff NDCG@5 evaluates to.
const NDCG5Truncation = 5

// gain is the standard 2^relevance - 1 DCG gain function.
func gain(relevance float64) float64 {
	return math.Exp2(relevance) - 1
}

func discount(rank int) float64 {
	return 1 / math.Log2(float64(rank)+2)
}

// idealDCG computes the maximum achievable DCG@k for a group's
// relevances (i.e. DCG under the ideal, already-descending order).
func idealDCG(relevancesDescending []float64, k int) float64 {
	var dcg float64
	for i, r := range relevancesDescending {
		if i >= k {
			break
		}
		dcg += gain(r) * discount(i)
	}
	return dcg
}

// ndcgAtK computes NDCG@k for a group given its items' relevances in
// the order induced by descending predicted score.
func ndcgAtK(relevancesByPredictedOrder, idealRelevances []float64, k int) float64 {
	ideal := idealDCG(idealRelevances, k)
	if ideal == 0 {
		return 0
	}
	var dcg float64
	for i, r := range relevancesByPredictedOrder {
		if i >= k {
			break
		}
		dcg += gain(r) * discount(i)
	}
	return dcg / ideal
}

// orderByPredictedScore returns the group's row indices sorted by
// decreasing prediction. When rng is non-nil the rows are shuffled
// first and the sort is stable, so tied predictions land in a random
// relative order each call instead of always favoring the same row;
// gradient computation always passes an rng for this reason. With
// rng nil, ties break by descending row index, which is what the
// deterministic NDCG@5 metric in Value wants.
func orderByPredictedScore(rng *rand.Rand, indices []int32, predictions []float64) []int32 {
	order := append([]int32{}, indices...)
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	sortBy(order, func(a, b int32) bool {
		if predictions[a] != predictions[b] {
			return predictions[a] > predictions[b]
		}
		if rng != nil {
			return false
		}
		return a > b
	})
	return order
}

func sortBy(s []int32, less func(a, b int32) bool) {
	// insertion sort is adequate: ranking groups are capped at
	// MaxItemsInRankingGroup, never large enough to need O(n log n).
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
