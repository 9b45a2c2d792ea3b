// Package loss implements per-task loss functions supplying initial
// predictions, gradients/Hessians, Newton leaf values, the loss value
// itself, and secondary metrics.
//
// Its gradient/Hessian/leaf-value contract is expressed as a Go
// interface plus one concrete type per variant, selected by ByKind's
// switch over the closed Kind enum.
package loss

import (
	"math"
	"math/rand"
	"sort"

	"github.com/cockroachdb/errors"
)

// Kind names the closed set of supported loss variants.
type Kind int

const (
	BinomialLogLikelihood Kind = iota
	MultinomialLogLikelihood
	SquaredError
	LambdaMARTNDCG5
	XENDCGMART
)

func (k Kind) String() string {
	switch k {
	case BinomialLogLikelihood:
		return "BINOMIAL_LOG_LIKELIHOOD"
	case MultinomialLogLikelihood:
		return "MULTINOMIAL_LOG_LIKELIHOOD"
	case SquaredError:
		return "SQUARED_ERROR"
	case LambdaMARTNDCG5:
		return "LAMBDA_MART_NDCG5"
	case XENDCGMART:
		return "XE_NDCG_MART"
	default:
		return "UNKNOWN"
	}
}

// LeafConfig carries the regularization knobs applied to every Newton
// leaf value: L1 soft-thresholding, L2 damping, the learning-rate
// shrinkage multiplier, and a symmetric clamp.
type LeafConfig struct {
	L1             float64
	L2             float64
	Shrinkage      float64
	ClampLeafLogit float64 // 0 disables clamping
	MinHessian     float64 // floor applied to Σh before any leaf is computed; defaults to 1e-3
}

func (c LeafConfig) minHessian() float64 {
	if c.MinHessian > 0 {
		return c.MinHessian
	}
	return 1e-3
}

// RankingGroup is one group of rows sharing a ranking-group key, ordered
// by decreasing ground-truth relevance (ties broken by descending row
// index).
type RankingGroup struct {
	Indices    []int32
	Relevances []float64
}

// MaxItemsInRankingGroup is the hard cap on ranking-group size: a group
// with more than 2000 items is a configuration error.
const MaxItemsInRankingGroup = 2000

// ErrRankingGroupTooLarge is returned by BuildRankingGroups when a group
// key maps to more than MaxItemsInRankingGroup rows.
var ErrRankingGroupTooLarge = errors.New("loss: ranking group exceeds the maximum of 2000 items")

// BuildRankingGroups partitions rows by groupKey and sorts each group by
// decreasing relevance (ties broken by descending row index).
func BuildRankingGroups(groupKey []int32, relevance []float64) ([]RankingGroup, error) {
	byKey := map[int32][]int32{}
	for i, k := range groupKey {
		byKey[k] = append(byKey[k], int32(i))
	}
	keys := make([]int32, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	groups := make([]RankingGroup, 0, len(keys))
	for _, k := range keys {
		rows := byKey[k]
		if len(rows) > MaxItemsInRankingGroup {
			return nil, errors.Wrapf(ErrRankingGroupTooLarge, "group %d has %d items", k, len(rows))
		}
		sort.SliceStable(rows, func(a, b int) bool {
			ra, rb := relevance[rows[a]], relevance[rows[b]]
			if ra != rb {
				return ra > rb
			}
			return rows[a] > rows[b]
		})
		rel := make([]float64, len(rows))
		for i, r := range rows {
			rel[i] = relevance[r]
		}
		groups = append(groups, RankingGroup{Indices: rows, Relevances: rel})
	}
	return groups, nil
}

// Loss is the closed interface every variant in Kind implements.
type Loss interface {
	Kind() Kind
	// NumTreesPerIter returns 1 for every loss except multinomial, which
	// needs K-1 trees per boosting iteration for K classes.
	NumTreesPerIter(numClasses int) int
	// InitialPredictions returns one scalar per output channel (length
	// NumTreesPerIter) used to seed every row's prediction before the
	// first tree is grown.
	InitialPredictions(labels []float64, weights []float64, numClasses int) []float64
	// Gradients computes the per-row gradient and Hessian for the k-th
	// output channel (k is always 0 except for multinomial). rng is only
	// consulted by the ranking losses, which shuffle predicted-score ties
	// before breaking them so gradient expectations account for the
	// tie-break stochastically rather than always favoring one row.
	Gradients(labels, predictions []float64, weights []float64, groups []RankingGroup, k, numTreesPerIter int, rng *rand.Rand) (gradients, hessians []float64)
	// LeafValue computes the Newton step for one leaf from its
	// sufficient statistics.
	LeafValue(sumGradients, sumHessians, sumWeights float64, cfg LeafConfig) float64
	// Value computes the loss and named secondary metrics over a set of
	// rows.
	Value(labels, predictions []float64, weights []float64, groups []RankingGroup, numTreesPerIter int) (value float64, secondary map[string]float64)
	SecondaryMetricNames() []string
}

// ByKind returns the Loss implementation for k. numClasses is only
// consulted by MultinomialLogLikelihood, which needs it to size its
// rest-vs-all leaf scaling.
func ByKind(k Kind, numClasses int) (Loss, error) {
	switch k {
	case BinomialLogLikelihood:
		return &Binomial{}, nil
	case MultinomialLogLikelihood:
		return &Multinomial{NumClasses: numClasses}, nil
	case SquaredError:
		return &SquaredErrorLoss{}, nil
	case LambdaMARTNDCG5:
		return &LambdaMART{}, nil
	case XENDCGMART:
		return &XENDCG{}, nil
	default:
		return nil, errors.Newf("loss: unknown kind %v", k)
	}
}

func clampLeaf(v float64, cfg LeafConfig) float64 {
	if cfg.ClampLeafLogit <= 0 {
		return v
	}
	if v > cfg.ClampLeafLogit {
		return cfg.ClampLeafLogit
	}
	if v < -cfg.ClampLeafLogit {
		return -cfg.ClampLeafLogit
	}
	return v
}

func softThreshold(x, l1 float64) float64 {
	if x > l1 {
		return x - l1
	}
	if x < -l1 {
		return x + l1
	}
	return 0
}

func shrink(v float64, cfg LeafConfig) float64 {
	s := cfg.Shrinkage
	if s == 0 {
		s = 1
	}
	return clampLeaf(v*s, cfg)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
