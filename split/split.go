// Package split scores candidate conditions on one tree node's example
// subset across numerical, categorical, categorical-set, and oblique
// feature families, using index-slice partitioning over the columnar
// dataset and a variance/Gini/Newton-gain scoring family.
package split

import (
	"math"
	"sort"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
)

// NumericalStrategy selects how a node scans numerical candidate
// thresholds.
type NumericalStrategy int

const (
	InNode NumericalStrategy = iota
	Presort
)

// CategoricalStrategy selects how a node scans categorical partitions.
type CategoricalStrategy int

const (
	CART CategoricalStrategy = iota
	OneHot
	Random
)

// MissingValuePolicy selects how rows missing the split column are
// routed when the winning condition is not itself an IsMissing branch.
type MissingValuePolicy int

const (
	GlobalImputation MissingValuePolicy = iota
	LocalImputation
	RandomLocalImputation
)

// Config holds the node-growing hyper-parameters the split finder reads
// on every call; it is shared read-only across all nodes of a tree.
type Config struct {
	NumCandidateAttributes      int
	NumCandidateAttributesRatio float64
	MinExamples                 int
	InSplitMinExamplesCheck     bool
	AllowNAConditions           bool
	MissingValuePolicy          MissingValuePolicy
	NumericalSplitStrategy      NumericalStrategy
	CategoricalSplitStrategy    CategoricalStrategy
	MaxNumTrials                int
	MinFrequency                int64
	L2CategoricalRegularization float64

	// Hessian-gain scoring, used by GBT; when false, the scorer falls
	// back to variance reduction (regression) or Gini/info-gain
	// (classification).
	UseHessianGain bool
	L1             float64
	L2             float64
	Gamma          float64

	// Oblique projections. EnableObliqueSplits turns on the random
	// sparse-projection search alongside the axis-aligned one; the rest
	// only matter once it is set.
	EnableObliqueSplits     bool
	NumProjectionsExponent  float64
	ProjectionDensityFactor float64
	ObliqueNormalization    forest.ObliqueNormalization

	// CategoricalSet greedy selection.
	CategoricalSetGreedySampling float64
	CategoricalSetMaxNumItems    int

	NumClasses int // 0 for regression/ranking
}

// Target holds per-row supervision for the rows a node is scoring.
// Exactly one of (ClassLabels) or (Gradients) is populated depending on
// task; Hessians is nil for un-weighted variance/Gini scoring.
type Target struct {
	Weights     []float64
	Gradients   []float64 // regression target, or GBT pseudo-residual
	Hessians    []float64 // nil: score via variance/Gini
	ClassLabels []int32   // nil: regression/ranking task
}

// Result is the outcome of FindBestSplit: either a winning condition
// with per-side statistics, or Found == false when no viable split
// beats the no-split baseline.
type Result struct {
	Found            bool
	Condition        *forest.Condition
	Score            float64
	MissingGoesRight bool
	LeftIndices      []int32
	RightIndices     []int32
}

// candidateScore is shared by every per-feature scanner to report its
// best finding back to FindBestSplit.
type candidateScore struct {
	condition        *forest.Condition
	score            float64
	missingGoesRight bool
	left             []int32
	right            []int32
}

// FindBestSplit scans cfg.NumCandidateAttributes (or a derived default)
// features drawn from inputFeatures and returns the best condition found
// for the rows in indices, or Found == false.
func FindBestSplit(rng Rand, ds *dataset.Dataset, spec *dataspec.Dataspec, inputFeatures []int, indices []int32, target *Target, cfg *Config, presort *PresortIndex) Result {
	candidates := selectCandidateFeatures(rng, inputFeatures, len(indices), cfg)

	var best *candidateScore
	for _, col := range candidates {
		c := spec.Columns[col]
		var cs *candidateScore
		switch c.Type {
		case dataspec.Numerical:
			cs = bestNumericalSplit(ds, col, indices, target, cfg, presort)
		case dataspec.Categorical, dataspec.Boolean:
			cs = bestCategoricalSplit(rng, ds, c, indices, target, cfg)
		case dataspec.CategoricalSet:
			cs = bestCategoricalSetSplit(rng, ds, c, indices, target, cfg)
		}
		best = betterOf(best, cs, col)
	}

	if best == nil || best.score <= 0 {
		return Result{Found: false}
	}
	return Result{
		Found:            true,
		Condition:        best.condition,
		Score:            best.score,
		MissingGoesRight: best.missingGoesRight,
		LeftIndices:      best.left,
		RightIndices:     best.right,
	}
}

// betterOf applies the tie-break rule: higher score wins, ties go to
// the lower feature index (i.e. the earlier candidate, since
// FindBestSplit scans candidates in increasing column order).
func betterOf(cur, challenger *candidateScore, _ int) *candidateScore {
	if challenger == nil {
		return cur
	}
	if cur == nil || challenger.score > cur.score {
		return challenger
	}
	return cur
}

func selectCandidateFeatures(rng Rand, inputFeatures []int, _ int, cfg *Config) []int {
	f := len(inputFeatures)
	k := cfg.NumCandidateAttributes
	if k == 0 && cfg.NumCandidateAttributesRatio > 0 {
		k = int(math.Ceil(cfg.NumCandidateAttributesRatio * float64(f)))
	}
	if k == 0 {
		if cfg.NumClasses > 0 {
			k = int(math.Ceil(math.Sqrt(float64(f))))
		} else {
			k = f / 3
		}
	}
	if k <= 0 {
		k = 1
	}
	if k >= f {
		cols := make([]int, f)
		copy(cols, inputFeatures)
		sort.Ints(cols)
		return cols
	}
	perm := rng.Perm(f)
	chosen := make([]int, k)
	for i := 0; i < k; i++ {
		chosen[i] = inputFeatures[perm[i]]
	}
	sort.Ints(chosen)
	return chosen
}

// Rand is the minimal RNG surface the split finder needs; *rand.Rand
// satisfies it. It is always passed in explicitly by the grower, never
// reached for as thread-local implicit state.
type Rand interface {
	Perm(n int) []int
	Float64() float64
	Intn(n int) int
}
