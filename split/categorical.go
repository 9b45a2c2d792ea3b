package split

import (
	"sort"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
)

// bestCategoricalSplit dispatches to CART/ONE_HOT/RANDOM per
// cfg.CategoricalSplitStrategy.
func bestCategoricalSplit(rng Rand, ds *dataset.Dataset, col *dataspec.Column, indices []int32, target *Target, cfg *Config) *candidateScore {
	values := ds.CategoricalColumn(col.Index)
	byCategory := map[int32][]int32{}
	for _, i := range indices {
		v := values[i]
		if v < 0 {
			continue // missing, excluded from category statistics
		}
		byCategory[v] = append(byCategory[v], i)
	}
	if len(byCategory) < 2 {
		return nil
	}

	var missing []int32
	for _, i := range indices {
		if values[i] < 0 {
			missing = append(missing, i)
		}
	}

	all := newSums(cfg.NumClasses)
	for _, i := range indices {
		all.add(target, i)
	}

	switch cfg.CategoricalSplitStrategy {
	case OneHot:
		return bestOneHot(byCategory, all, target, cfg, col.Index, missing)
	case Random:
		return bestRandomSubsets(rng, byCategory, all, target, cfg, col.Index, missing)
	default:
		return bestCARTOrdering(byCategory, all, target, cfg, col.Index, missing)
	}
}

// bestOneHot tries every single category in isolation against the rest.
func bestOneHot(byCategory map[int32][]int32, all sums, target *Target, cfg *Config, col int, missing []int32) *candidateScore {
	var best *candidateScore
	for cat, rows := range byCategory {
		left := newSums(cfg.NumClasses)
		for _, i := range rows {
			left.add(target, i)
		}
		right := subtract(all, left, cfg.NumClasses)
		if !meetsMinExamples(len(rows), len(allRows(byCategory))-len(rows), cfg) {
			continue
		}
		gain := score(all, left, right, cfg)
		if best == nil || gain > best.score {
			best = &candidateScore{
				condition: forest.NewCategoricalMaskCondition(col, []int32{cat}),
				score:     gain,
				left:      append([]int32{}, rows...),
				right:     complementOf(byCategory, cat),
			}
		}
	}
	return finishCategorical(best, missing, target)
}

// bestRandomSubsets samples cfg.MaxNumTrials random subsets of the
// categories present, keeping the best (a Monte-Carlo stand-in for
// exhaustive CART search).
func bestRandomSubsets(rng Rand, byCategory map[int32][]int32, all sums, target *Target, cfg *Config, col int, missing []int32) *candidateScore {
	cats := sortedKeys(byCategory)
	trials := cfg.MaxNumTrials
	if trials <= 0 {
		trials = 32
	}
	var best *candidateScore
	for t := 0; t < trials; t++ {
		var mask []int32
		for _, cat := range cats {
			if rng.Float64() < 0.5 {
				mask = append(mask, cat)
			}
		}
		if len(mask) == 0 || len(mask) == len(cats) {
			continue
		}
		left := newSums(cfg.NumClasses)
		var leftRows []int32
		for _, cat := range mask {
			for _, i := range byCategory[cat] {
				left.add(target, i)
				leftRows = append(leftRows, i)
			}
		}
		right := subtract(all, left, cfg.NumClasses)
		if !meetsMinExamples(len(leftRows), len(allRowsList(byCategory))-len(leftRows), cfg) {
			continue
		}
		gain := score(all, left, right, cfg)
		if best == nil || gain > best.score {
			best = &candidateScore{
				condition: forest.NewCategoricalMaskCondition(col, append([]int32{}, mask...)),
				score:     gain,
				left:      leftRows,
				right:     complementOfMask(byCategory, mask),
			}
		}
	}
	return finishCategorical(best, missing, target)
}

// bestCARTOrdering sorts categories by mean target (for ≤2 classes or
// regression) and scans prefix cuts; for multi-class it repeats the same
// ordering heuristic one-vs-rest per class and keeps the best overall
// cut.
func bestCARTOrdering(byCategory map[int32][]int32, all sums, target *Target, cfg *Config, col int, missing []int32) *candidateScore {
	classesToTry := []int32{-1}
	if cfg.NumClasses > 2 {
		classesToTry = make([]int32, cfg.NumClasses)
		for k := range classesToTry {
			classesToTry[k] = int32(k)
		}
	}

	var best *candidateScore
	for _, cls := range classesToTry {
		cats := sortedKeys(byCategory)
		sort.Slice(cats, func(a, b int) bool {
			return meanTargetFor(byCategory[cats[a]], target, cls) < meanTargetFor(byCategory[cats[b]], target, cls)
		})

		left := newSums(cfg.NumClasses)
		var leftRows []int32
		for i := 0; i < len(cats)-1; i++ {
			for _, row := range byCategory[cats[i]] {
				left.add(target, row)
				leftRows = append(leftRows, row)
			}
			right := subtract(all, left, cfg.NumClasses)
			rightLen := len(allRowsList(byCategory)) - len(leftRows)
			if !meetsMinExamples(len(leftRows), rightLen, cfg) {
				continue
			}
			gain := score(all, left, right, cfg)
			if best == nil || gain > best.score {
				mask := append([]int32{}, cats[:i+1]...)
				best = &candidateScore{
					condition: forest.NewCategoricalMaskCondition(col, mask),
					score:     gain,
					left:      append([]int32{}, leftRows...),
					right:     complementOfMask(byCategory, cats[:i+1]),
				}
			}
		}
	}
	return finishCategorical(best, missing, target)
}

func meanTargetFor(rows []int32, target *Target, cls int32) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum, weight float64
	for _, i := range rows {
		w := weightOf(target, i)
		weight += w
		if target.ClassLabels != nil {
			if cls < 0 {
				sum += w * float64(target.ClassLabels[i])
			} else if target.ClassLabels[i] == cls {
				sum += w
			}
		} else {
			sum += w * target.Gradients[i]
		}
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}

func meetsMinExamples(left, right int, cfg *Config) bool {
	if !cfg.InSplitMinExamplesCheck {
		return true
	}
	min := cfg.MinExamples
	if min <= 0 {
		min = 1
	}
	return left >= min && right >= min
}

func subtract(all, left sums, numClasses int) sums {
	right := newSums(numClasses)
	right.weight = all.weight - left.weight
	right.gradient = all.gradient - left.gradient
	right.hessian = all.hessian - left.hessian
	for k := range right.classCounts {
		right.classCounts[k] = all.classCounts[k] - left.classCounts[k]
	}
	return right
}

func allRows(byCategory map[int32][]int32) []int32 {
	return allRowsList(byCategory)
}

func allRowsList(byCategory map[int32][]int32) []int32 {
	var all []int32
	for _, rows := range byCategory {
		all = append(all, rows...)
	}
	return all
}

func complementOf(byCategory map[int32][]int32, exclude int32) []int32 {
	var rest []int32
	for cat, rows := range byCategory {
		if cat != exclude {
			rest = append(rest, rows...)
		}
	}
	return rest
}

func complementOfMask(byCategory map[int32][]int32, mask []int32) []int32 {
	in := make(map[int32]bool, len(mask))
	for _, c := range mask {
		in[c] = true
	}
	var rest []int32
	for cat, rows := range byCategory {
		if !in[cat] {
			rest = append(rest, rows...)
		}
	}
	return rest
}

func sortedKeys(m map[int32][]int32) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	return keys
}

// finishCategorical routes missing rows by majority weight, mirroring
// the numerical-split missing policy.
func finishCategorical(best *candidateScore, missing []int32, target *Target) *candidateScore {
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
