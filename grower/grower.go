// Package grower turns one node's example-index subset into a grown
// forest.Tree by repeatedly asking split.FindBestSplit for the best
// condition and delegating leaf-value assignment to a LeafSetter
// supplied by the loss. The local strategy grows depth-first; the
// best-first strategy prioritizes leaves globally through an in-memory
// container/heap-based queue.
package grower

import (
	"container/heap"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/split"
)

// Strategy selects how the grower expands candidate leaves into splits.
type Strategy int

const (
	Local Strategy = iota
	BestFirst
)

// Config holds the tree-growing hyper-parameters, plus the embedded
// split.Config every node's split search reads.
type Config struct {
	MaxDepth    int
	MaxNumNodes int // 0 means unbounded
	Strategy    Strategy
	Split       *split.Config
}

// LeafSetter assigns a leaf's payload from the rows routed to it; it is
// supplied by the loss in use (GBT's Newton step, RF's weighted mean or
// class distribution).
type LeafSetter func(indices []int32) *forest.Leaf

// Grow builds one tree over the rows in rootIndices.
func Grow(rng split.Rand, ds *dataset.Dataset, spec *dataspec.Dataspec, inputFeatures []int, rootIndices []int32, target *split.Target, cfg *Config, presort *split.PresortIndex, setLeaf LeafSetter) *forest.Tree {
	tree := forest.NewTree()
	var obliqueCols []int
	if cfg.Split.EnableObliqueSplits {
		obliqueCols = numericalInputFeatures(spec, inputFeatures)
	}
	switch cfg.Strategy {
	case BestFirst:
		growBestFirst(rng, ds, spec, inputFeatures, obliqueCols, rootIndices, target, cfg, presort, setLeaf, tree)
	default:
		growLocal(rng, ds, spec, inputFeatures, obliqueCols, rootIndices, target, cfg, presort, setLeaf, tree, tree.Root, 0)
	}
	return tree
}

// numericalInputFeatures filters inputFeatures down to the numerical
// columns, the only ones a sparse projection can mix.
func numericalInputFeatures(spec *dataspec.Dataspec, inputFeatures []int) []int {
	var cols []int
	for _, col := range inputFeatures {
		if spec.Columns[col].Type == dataspec.Numerical {
			cols = append(cols, col)
		}
	}
	return cols
}

// bestSplit runs the axis-aligned search and, when oblique splits are
// enabled and there are at least two numerical candidate columns, the
// sparse-projection search, keeping whichever scores higher.
func bestSplit(rng split.Rand, ds *dataset.Dataset, spec *dataspec.Dataspec, inputFeatures []int, obliqueCols []int, indices []int32, target *split.Target, cfg *Config, presort *split.PresortIndex) split.Result {
	result := split.FindBestSplit(rng, ds, spec, inputFeatures, indices, target, cfg.Split, presort)
	if len(obliqueCols) < 2 {
		return result
	}
	oblique := split.ObliqueSplit(rng, ds, obliqueCols, indices, target, cfg.Split)
	if !oblique.Found {
		return result
	}
	if !result.Found || oblique.Score > result.Score {
		return oblique
	}
	return result
}

func growLocal(rng split.Rand, ds *dataset.Dataset, spec *dataspec.Dataspec, inputFeatures []int, obliqueCols []int, indices []int32, target *split.Target, cfg *Config, presort *split.PresortIndex, setLeaf LeafSetter, tree *forest.Tree, nodeIdx int32, depth int) {
	if cfg.MaxDepth > 0 && depth >= cfg.MaxDepth || len(indices) < minExamples(cfg.Split) {
		tree.SetLeaf(nodeIdx, setLeaf(indices))
		return
	}
	result := bestSplit(rng, ds, spec, inputFeatures, obliqueCols, indices, target, cfg, presort)
	if !result.Found {
		tree.SetLeaf(nodeIdx, setLeaf(indices))
		return
	}
	left, right := tree.Split(nodeIdx, result.Condition, result.MissingGoesRight, result.Score)
	growLocal(rng, ds, spec, inputFeatures, obliqueCols, result.LeftIndices, target, cfg, presort, setLeaf, tree, left, depth+1)
	growLocal(rng, ds, spec, inputFeatures, obliqueCols, result.RightIndices, target, cfg, presort, setLeaf, tree, right, depth+1)
}

func minExamples(cfg *split.Config) int {
	if cfg.MinExamples <= 0 {
		return 1
	}
	return cfg.MinExamples
}

// pendingLeaf is one entry of the best-first priority queue: a leaf node
// not yet finalized, annotated with the best split score achievable on
// its rows (computed eagerly so the queue can always pop the globally
// best candidate).
type pendingLeaf struct {
	nodeIdx      int32
	depth        int
	indices      []int32
	result       split.Result
	insertOrder  int
}

// leafQueue is a max-heap on split score, ties broken by earlier
// insertion order.
type leafQueue []*pendingLeaf

func (q leafQueue) Len() int { return len(q) }
func (q leafQueue) Less(i, j int) bool {
	if q[i].result.Score != q[j].result.Score {
		return q[i].result.Score > q[j].result.Score
	}
	return q[i].insertOrder < q[j].insertOrder
}
func (q leafQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *leafQueue) Push(x interface{}) { *q = append(*q, x.(*pendingLeaf)) }
func (q *leafQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func growBestFirst(rng split.Rand, ds *dataset.Dataset, spec *dataspec.Dataspec, inputFeatures []int, obliqueCols []int, rootIndices []int32, target *split.Target, cfg *Config, presort *split.PresortIndex, setLeaf LeafSetter, tree *forest.Tree) {
	q := &leafQueue{}
	numNodes := 1
	nextOrder := 0

	enqueueOrLeaf := func(nodeIdx int32, depth int, indices []int32) {
		if cfg.MaxDepth > 0 && depth >= cfg.MaxDepth || len(indices) < minExamples(cfg.Split) {
			tree.SetLeaf(nodeIdx, setLeaf(indices))
			return
		}
		result := bestSplit(rng, ds, spec, inputFeatures, obliqueCols, indices, target, cfg, presort)
		if !result.Found {
			tree.SetLeaf(nodeIdx, setLeaf(indices))
			return
		}
		heap.Push(q, &pendingLeaf{nodeIdx: nodeIdx, depth: depth, indices: indices, result: result, insertOrder: nextOrder})
		nextOrder++
	}

	enqueueOrLeaf(tree.Root, 0, rootIndices)

	for q.Len() > 0 {
		if cfg.MaxNumNodes > 0 && numNodes >= cfg.MaxNumNodes {
			break
		}
		item := heap.Pop(q).(*pendingLeaf)
		left, right := tree.Split(item.nodeIdx, item.result.Condition, item.result.MissingGoesRight, item.result.Score)
		numNodes += 2
		enqueueOrLeaf(left, item.depth+1, item.result.LeftIndices)
		enqueueOrLeaf(right, item.depth+1, item.result.RightIndices)
	}

	// Anything left in the queue when max_num_nodes is hit mid-expansion
	// is finalized as a leaf rather than discarded.
	for q.Len() > 0 {
		item := heap.Pop(q).(*pendingLeaf)
		tree.SetLeaf(item.nodeIdx, setLeaf(item.indices))
	}
}
