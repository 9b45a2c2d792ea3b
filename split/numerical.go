package split

import (
	"sort"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
)

// PresortIndex holds, for every numerical column, the row order sorted
// by that column's value across the whole dataset (quiet NaNs last).
// FindBestSplit reuses it at every node by filtering to the node's
// membership while walking in this fixed order, so one O(N log N) sort
// per column amortizes over the whole tree instead of repeating per
// node (the PRESORT strategy).
type PresortIndex struct {
	order map[int][]int32
}

// BuildPresortIndex sorts every numerical column of ds once.
func BuildPresortIndex(ds *dataset.Dataset) *PresortIndex {
	idx := &PresortIndex{order: map[int][]int32{}}
	for _, c := range ds.Spec.Columns {
		if c.Type != dataspec.Numerical {
			continue
		}
		v := ds.NumericalColumn(c.Index)
		order := make([]int32, len(v))
		for i := range order {
			order[i] = int32(i)
		}
		sort.SliceStable(order, func(a, b int) bool {
			va, vb := v[order[a]], v[order[b]]
			if va != va { // NaN sorts last
				return false
			}
			if vb != vb {
				return true
			}
			return va < vb
		})
		idx.order[c.Index] = order
	}
	return idx
}

func bestNumericalSplit(ds *dataset.Dataset, col int, indices []int32, target *Target, cfg *Config, presort *PresortIndex) *candidateScore {
	values := ds.NumericalColumn(col)
	membership := make(map[int32]bool, len(indices))
	for _, i := range indices {
		membership[i] = true
	}

	var ordered []int32
	if cfg.NumericalSplitStrategy == Presort && presort != nil {
		for _, i := range presort.order[col] {
			if membership[i] {
				ordered = append(ordered, i)
			}
		}
	} else {
		ordered = append(ordered, indices...)
		sort.SliceStable(ordered, func(a, b int) bool {
			va, vb := values[ordered[a]], values[ordered[b]]
			if va != va {
				return false
			}
			if vb != vb {
				return true
			}
			return va < vb
		})
	}

	// Split ordered into the present prefix and the missing (NaN) tail.
	present := ordered
	var missing []int32
	for i, idx := range ordered {
		if values[idx] != values[idx] { // NaN
			missing = ordered[i:]
			present = ordered[:i]
			break
		}
	}

	if len(present) < 2 {
		return nil
	}

	numClasses := cfg.NumClasses
	all := newSums(numClasses)
	for _, i := range indices {
		all.add(target, i)
	}

	left := newSums(numClasses)
	right := newSums(numClasses)
	for _, i := range present {
		right.add(target, i)
	}

	var best *candidateScore
	minEx := cfg.MinExamples
	if minEx <= 0 {
		minEx = 1
	}
	for i := 0; i < len(present)-1; i++ {
		idx := present[i]
		left.add(target, idx)
		right.sub(target, idx)
		if values[present[i]] == values[present[i+1]] {
			continue // threshold must land on a value change
		}
		if cfg.InSplitMinExamplesCheck && (i+1 < minEx || len(present)-(i+1) < minEx) {
			continue
		}
		threshold := (float64(values[present[i]]) + float64(values[present[i+1]])) / 2
		gain := score(all, left, right, cfg)
		if best == nil || gain > best.score {
			leftSet := append([]int32{}, present[:i+1]...)
			rightSet := append([]int32{}, present[i+1:]...)
			best = &candidateScore{
				condition: forest.NewNumericalCondition(col, threshold),
				score:     gain,
				left:      leftSet,
				right:     rightSet,
			}
		}
	}
	if best == nil {
		return nil
	}
	best.missingGoesRight = routeMissing(best, missing, target)
	if best.missingGoesRight {
		best.right = append(best.right, missing...)
	} else {
		best.left = append(best.left, missing...)
	}
	return best
}

// sub reverses an add call; used to slide the cumulative right-side sum
// down to a left-side sum as the scan advances past each row.
func (s *sums) sub(target *Target, i int32) {
	w := 1.0
	if target.Weights != nil {
		w = target.Weights[i]
	}
	s.weight -= w
	if target.ClassLabels != nil {
		s.classCounts[target.ClassLabels[i]] -= w
		return
	}
	g := target.Gradients[i]
	s.gradient -= w * g
	if target.Hessians != nil {
		s.hessian -= w * target.Hessians[i]
	} else {
		s.hessian -= w
	}
}

// routeMissing implements the default GLOBAL/LOCAL imputation policy:
// send missing rows to whichever side carries more weight among the
// present rows (the majority child).
func routeMissing(cs *candidateScore, missing []int32, target *Target) bool {
	if len(missing) == 0 {
		return false
	}
	var leftW, rightW float64
	for _, i := range cs.left {
		leftW += weightOf(target, i)
	}
	for _, i := range cs.right {
		rightW += weightOf(target, i)
	}
	return rightW >= leftW
}

func weightOf(target *Target, i int32) float64 {
	if target.Weights != nil {
		return target.Weights[i]
	}
	return 1
}
