package gbt

import (
	"math/rand"

	"github.com/branchml/forest/dataset"
)

// dropoutTrees selects a random subset of existing tree indices to drop
// for this iteration (DART dropout): each tree is dropped independently
// with probability rate, with at least one tree kept in if rate would
// drop everything.
func dropoutTrees(rng *rand.Rand, numTrees int, rate float64) []int32 {
	if rate <= 0 || numTrees == 0 {
		return nil
	}
	var dropped []int32
	for i := 0; i < numTrees; i++ {
		if rng.Float64() < rate {
			dropped = append(dropped, int32(i))
		}
	}
	if len(dropped) == numTrees {
		dropped = dropped[:numTrees-1]
	}
	return dropped
}

// applyDropout temporarily removes each dropped tree's contribution from
// predictions, at its current scale, so the new tree this iteration
// grows is fit against the reduced ensemble as DART requires.
func applyDropout(state *trainState, ds *dataset.Dataset, numTreesPerIter int, dropped []int32) {
	for _, idx := range dropped {
		addTreeContribution(state.predictions, ds, state.trees[idx], int(idx)%numTreesPerIter, numTreesPerIter, -state.treeScale[idx])
	}
}

// undoDropout rescales every dropped tree by 1/(1+|dropped|) — the same
// normalization newly grown trees this iteration receive — and restores
// their (now smaller) contribution to predictions.
func undoDropout(state *trainState, ds *dataset.Dataset, numTreesPerIter int, dropped []int32) {
	if len(dropped) == 0 {
		return
	}
	factor := 1 / float64(1+len(dropped))
	for _, idx := range dropped {
		state.treeScale[idx] *= factor
		addTreeContribution(state.predictions, ds, state.trees[idx], int(idx)%numTreesPerIter, numTreesPerIter, state.treeScale[idx])
	}
}
