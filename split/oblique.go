package split

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/forest"
)

// ObliqueCandidates draws cfg-controlled random sparse projections over
// the numerical input features and returns the best-scoring one as a
// single virtual feature. Unlike the other finders it is invoked
// explicitly by the grower alongside axis-aligned candidates, rather
// than through FindBestSplit's per-column dispatch, since one
// projection mixes many columns at once.
func ObliqueCandidates(rng Rand, ds *dataset.Dataset, numericalCols []int, indices []int32, target *Target, cfg *Config) *candidateScore {
	f := len(numericalCols)
	if f == 0 {
		return nil
	}
	exponent := cfg.NumProjectionsExponent
	if exponent <= 0 {
		exponent = 0.5
	}
	numProjections := int(math.Ceil(math.Pow(float64(f), exponent)))
	if numProjections < 1 {
		numProjections = 1
	}
	density := cfg.ProjectionDensityFactor
	if density <= 0 {
		density = 2
	}

	stats := columnStats(ds, numericalCols, indices, cfg.ObliqueNormalization)

	var best *candidateScore
	for p := 0; p < numProjections; p++ {
		var weights []forest.ObliqueWeight
		for _, col := range numericalCols {
			if rng.Float64() >= density/float64(f) {
				continue
			}
			sign := 1.0
			if rng.Float64() < 0.5 {
				sign = -1.0
			}
			w := sign
			if s, ok := stats[col]; ok && s > 0 {
				w /= s
			}
			weights = append(weights, forest.ObliqueWeight{Column: col, Weight: w})
		}
		if len(weights) == 0 {
			continue
		}
		cs := scoreProjection(ds, weights, indices, target, cfg)
		if cs == nil {
			continue
		}
		if best == nil || cs.score > best.score || (cs.score == best.score && len(cs.condition.Weights) < len(best.condition.Weights)) {
			best = cs
		}
	}
	return best
}

// ObliqueSplit wraps ObliqueCandidates into a Result, the same shape
// FindBestSplit returns, so the grower can weigh it against the
// axis-aligned search on equal footing.
func ObliqueSplit(rng Rand, ds *dataset.Dataset, numericalCols []int, indices []int32, target *Target, cfg *Config) Result {
	cs := ObliqueCandidates(rng, ds, numericalCols, indices, target, cfg)
	if cs == nil || cs.score <= 0 {
		return Result{Found: false}
	}
	return Result{
		Found:            true,
		Condition:        cs.condition,
		Score:            cs.score,
		MissingGoesRight: cs.missingGoesRight,
		LeftIndices:      cs.left,
		RightIndices:     cs.right,
	}
}

func columnStats(ds *dataset.Dataset, cols []int, indices []int32, norm forest.ObliqueNormalization) map[int]float64 {
	stats := map[int]float64{}
	if norm == forest.NoNormalization {
		return stats
	}
	for _, col := range cols {
		v := ds.NumericalColumn(col)
		values := make([]float64, 0, len(indices))
		for _, i := range indices {
			x := float64(v[i])
			if x == x { // not NaN
				values = append(values, x)
			}
		}
		if len(values) == 0 {
			continue
		}
		switch norm {
		case forest.MinMaxNormalization:
			if span := floats.Max(values) - floats.Min(values); span > 0 {
				stats[col] = span
			}
		case forest.StandardDeviationNormalization:
			if len(values) > 1 {
				_, std := stat.MeanStdDev(values, nil)
				stats[col] = std
			}
		}
	}
	return stats
}

func scoreProjection(ds *dataset.Dataset, weights []forest.ObliqueWeight, indices []int32, target *Target, cfg *Config) *candidateScore {
	projected := make(map[int32]float64, len(indices))
	for _, i := range indices {
		var sum float64
		any := false
		for _, w := range weights {
			v := ds.NumericalColumn(w.Column)[i]
			if v == v { // not NaN
				sum += float64(v) * w.Weight
				any = true
			}
		}
		if any {
			projected[i] = sum
		}
	}
	ordered := make([]int32, 0, len(projected))
	for i := range projected {
		ordered = append(ordered, i)
	}
	sort.Slice(ordered, func(a, b int) bool { return projected[ordered[a]] < projected[ordered[b]] })
	if len(ordered) < 2 {
		return nil
	}

	all := newSums(cfg.NumClasses)
	for _, i := range indices {
		all.add(target, i)
	}
	left := newSums(cfg.NumClasses)
	right := newSums(cfg.NumClasses)
	for _, i := range ordered {
		right.add(target, i)
	}

	var best *candidateScore
	for i := 0; i < len(ordered)-1; i++ {
		idx := ordered[i]
		left.add(target, idx)
		right.sub(target, idx)
		if projected[ordered[i]] == projected[ordered[i+1]] {
			continue
		}
		if !meetsMinExamples(i+1, len(ordered)-(i+1), cfg) {
			continue
		}
		threshold := (projected[ordered[i]] + projected[ordered[i+1]]) / 2
		gain := score(all, left, right, cfg)
		if best == nil || gain > best.score {
			best = &candidateScore{
				condition: forest.NewObliqueCondition(weights, threshold, cfg.ObliqueNormalization),
				score:     gain,
				left:      append([]int32{}, ordered[:i+1]...),
				right:     append([]int32{}, ordered[i+1:]...),
			}
		}
	}
	var missing []int32
	for _, i := range indices {
		if _, ok := projected[i]; !ok {
			missing = append(missing, i)
		}
	}
	return finishCategorical(best, missing, target)
}
