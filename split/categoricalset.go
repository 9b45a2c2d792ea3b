package split

import (
	"sort"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
)

// bestCategoricalSetSplit implements greedy forward selection: start
// with every category in the negative set, and at each step move the
// category yielding the largest score gain above a threshold, stopping
// when no further move helps.
func bestCategoricalSetSplit(rng Rand, ds *dataset.Dataset, col *dataspec.Column, indices []int32, target *Target, cfg *Config) *candidateScore {
	sets := ds.CategoricalSetColumn(col.Index)

	rowsByCategory := map[int32][]int32{}
	var missing []int32
	for _, i := range indices {
		s := sets[i]
		if s == nil {
			missing = append(missing, i)
			continue
		}
		for _, cat := range s {
			rowsByCategory[cat] = append(rowsByCategory[cat], i)
		}
	}
	if len(rowsByCategory) == 0 {
		return nil
	}

	cats := sortedKeys(rowsByCategory)
	if cfg.CategoricalSetGreedySampling > 0 && cfg.CategoricalSetGreedySampling < 1 {
		var sampled []int32
		for _, c := range cats {
			if rng.Float64() < cfg.CategoricalSetGreedySampling {
				sampled = append(sampled, c)
			}
		}
		if len(sampled) > 0 {
			cats = sampled
		}
	}
	if cfg.CategoricalSetMaxNumItems > 0 && len(cats) > cfg.CategoricalSetMaxNumItems {
		sort.Slice(cats, func(a, b int) bool { return len(rowsByCategory[cats[a]]) > len(rowsByCategory[cats[b]]) })
		cats = cats[:cfg.CategoricalSetMaxNumItems]
	}

	all := newSums(cfg.NumClasses)
	for _, i := range indices {
		all.add(target, i)
	}

	positive := map[int32]bool{}
	negative := make(map[int32]bool, len(cats))
	for _, c := range cats {
		negative[c] = true
	}

	bestScore := negativeInfinity
	var bestPositive, bestNegative []int32
	for {
		improved := false
		var moveCat int32
		var moveGain float64 = bestScore
		for _, c := range cats {
			if !negative[c] {
				continue
			}
			left, _ := setRows(rowsByCategory, unionKeys(positive, c), target, cfg.NumClasses)
			right := subtract(all, left, cfg.NumClasses)
			if left.weight == 0 || right.weight == 0 {
				continue
			}
			gain := score(all, left, right, cfg)
			if gain > moveGain {
				moveGain = gain
				moveCat = c
				improved = true
			}
		}
		if !improved {
			break
		}
		positive[moveCat] = true
		delete(negative, moveCat)
		bestScore = moveGain
	}
	if len(positive) == 0 {
		return nil
	}

	for c := range positive {
		bestPositive = append(bestPositive, c)
	}
	for c := range negative {
		bestNegative = append(bestNegative, c)
	}

	left, leftRows := setRows(rowsByCategory, positive, target, cfg.NumClasses)
	_ = subtract(all, left, cfg.NumClasses)
	if !meetsMinExamples(len(leftRows), len(indices)-len(leftRows), cfg) {
		return nil
	}
	cs := &candidateScore{
		condition: forest.NewCategoricalSetCondition(col.Index, bestPositive, bestNegative),
		score:     bestScore,
		left:      leftRows,
		right:     complementByRows(indices, leftRows),
	}
	return finishCategorical(cs, missing, target)
}

const negativeInfinity = -1e300

func unionKeys(m map[int32]bool, extra int32) map[int32]bool {
	out := map[int32]bool{extra: true}
	for k := range m {
		out[k] = true
	}
	return out
}

func setRows(byCategory map[int32][]int32, cats map[int32]bool, target *Target, numClasses int) (sums, []int32) {
	s := newSums(numClasses)
	seen := map[int32]bool{}
	var rows []int32
	for c := range cats {
		for _, r := range byCategory[c] {
			if !seen[r] {
				seen[r] = true
				rows = append(rows, r)
				s.add(target, r)
			}
		}
	}
	return s, rows
}

func complementByRows(all, used []int32) []int32 {
	usedSet := make(map[int32]bool, len(used))
	for _, r := range used {
		usedSet[r] = true
	}
	var rest []int32
	for _, r := range all {
		if !usedSet[r] {
			rest = append(rest, r)
		}
	}
	return rest
}
