package gbt

import "github.com/branchml/forest/loss"

// gather returns the values at idx, preserving idx's order; used to
// build a row subset for a loss's InitialPredictions/Value calls, which
// index purely by position rather than by dataset row id.
func gather(values []float64, idx []int32) []float64 {
	out := make([]float64, len(idx))
	for i, row := range idx {
		out[i] = values[row]
	}
	return out
}

func gatherWeights(weights []float64, idx []int32) []float64 {
	if weights == nil {
		return nil
	}
	return gather(weights, idx)
}

// gatherChannel extracts every output channel of each row in idx from a
// flat, numTreesPerIter-wide predictions buffer, preserving the same
// row-major channel layout Loss.Value expects.
func gatherChannel(predictions []float64, idx []int32, numTreesPerIter int) []float64 {
	out := make([]float64, len(idx)*numTreesPerIter)
	for i, row := range idx {
		copy(out[i*numTreesPerIter:(i+1)*numTreesPerIter], predictions[int(row)*numTreesPerIter:(int(row)+1)*numTreesPerIter])
	}
	return out
}

// lossInputs builds the (labels, predictions, weights, groups) tuple a
// Loss's Value expects for the row subset idx. Classification and
// regression losses index purely by position, so those three slices are
// repositioned to idx's order; ranking losses index through a
// RankingGroup's Indices, which carry dataset row ids, so those get the
// untouched global arrays with only the group list filtered down.
func lossInputs(labels, predictions, weights []float64, idx []int32, groups []loss.RankingGroup, numTreesPerIter int) (lbls, preds, wts []float64, grp []loss.RankingGroup) {
	if groups != nil {
		return labels, predictions, weights, filterGroups(groups, idx)
	}
	return gather(labels, idx), gatherChannel(predictions, idx, numTreesPerIter), gatherWeights(weights, idx), nil
}

// scaledWeights applies a sampling scheme's per-row compensating
// multiplier on top of the input weights (defaulting every row to 1 when
// weights is nil), leaving every row absent from scale untouched.
func scaledWeights(weights []float64, scale map[int32]float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	if weights != nil {
		copy(out, weights)
	}
	for idx, s := range scale {
		out[idx] *= s
	}
	return out
}

// filterGroups keeps only the rows of each group that fall in idx,
// dropping any group left with fewer than 2 rows; used to restrict
// ranking-loss evaluation to the train or validation split without
// touching the global row ids a RankingGroup's Indices carry.
func filterGroups(groups []loss.RankingGroup, idx []int32) []loss.RankingGroup {
	if groups == nil {
		return nil
	}
	in := make(map[int32]bool, len(idx))
	for _, i := range idx {
		in[i] = true
	}
	out := make([]loss.RankingGroup, 0, len(groups))
	for _, g := range groups {
		var rows []int32
		var rel []float64
		for i, row := range g.Indices {
			if in[row] {
				rows = append(rows, row)
				rel = append(rel, g.Relevances[i])
			}
		}
		if len(rows) < 2 {
			continue
		}
		out = append(out, loss.RankingGroup{Indices: rows, Relevances: rel})
	}
	return out
}
