package grower

import "github.com/branchml/forest/forest"

// Pruner decides whether collapsing the subtree rooted at a node into a
// single leaf should be kept, given the validation loss before and
// after the collapse: an interface wrapping one decision method, with
// named constructors for the common policies.
type Pruner interface {
	Prune(before, after float64) bool
}

// PrunerFunc adapts a plain function to Pruner.
type PrunerFunc func(before, after float64) bool

func (f PrunerFunc) Prune(before, after float64) bool { return f(before, after) }

// NoPruner never collapses a node: growing already decided the tree's
// shape and pruning is skipped entirely.
func NoPruner() Pruner {
	return PrunerFunc(func(before, after float64) bool { return false })
}

// CostComplexityPruner collapses a node whenever doing so does not
// increase validation loss by more than tolerance: the reduced-error
// form of CART cost-complexity pruning, applied after growing using the
// held-out validation loss.
func CostComplexityPruner(tolerance float64) Pruner {
	return PrunerFunc(func(before, after float64) bool { return after <= before+tolerance })
}

// PruneTree walks tree bottom-up and, for every internal node, asks
// pruner whether collapsing its subtree into one averaged leaf should be
// kept, using evaluate to score the whole tree before and after each
// tentative collapse. evaluate is expected to be cheap relative to
// growing (typically one Tree.Leaf lookup per held-out row), since it
// runs once per internal node.
func PruneTree(tree *forest.Tree, pruner Pruner, evaluate func(*forest.Tree) float64) {
	var walk func(idx int32)
	walk = func(idx int32) {
		n := &tree.Nodes[idx]
		if n.IsLeaf {
			return
		}
		walk(n.LeftIdx)
		walk(n.RightIdx)

		before := evaluate(tree)
		original := *n
		collapsed := collapsedLeaf(tree, idx)
		tree.Nodes[idx] = forest.Node{IsLeaf: true, Leaf: collapsed}
		after := evaluate(tree)
		if !pruner.Prune(before, after) {
			tree.Nodes[idx] = original
		}
	}
	walk(tree.Root)
	Compact(tree)
}

// collapsedLeaf recursively folds a subtree into one leaf, combining
// sufficient statistics additively and top_value as the statistics-
// weighted mean of its children (falling back to an unweighted mean
// when neither child carries weight information).
func collapsedLeaf(tree *forest.Tree, idx int32) *forest.Leaf {
	n := &tree.Nodes[idx]
	if n.IsLeaf {
		return n.Leaf
	}
	l := collapsedLeaf(tree, n.LeftIdx)
	r := collapsedLeaf(tree, n.RightIdx)
	wl, wr := l.SumWeights, r.SumWeights
	if wl == 0 && wr == 0 {
		wl, wr = 1, 1
	}
	return &forest.Leaf{
		TopValue:     (l.TopValue*wl + r.TopValue*wr) / (wl + wr),
		SumGradients: l.SumGradients + r.SumGradients,
		SumHessians:  l.SumHessians + r.SumHessians,
		SumWeights:   l.SumWeights + r.SumWeights,
	}
}

// Compact rewrites tree.Nodes to contain only nodes reachable from the
// root, remapping child indices accordingly. Pruning (and any other
// mutation that repoints a node to bypass its former children) leaves
// orphaned entries in the arena; Tree.Validate requires every arena slot
// to be reachable, so every structural mutation ends with a Compact
// call.
func Compact(tree *forest.Tree) {
	if len(tree.Nodes) == 0 {
		return
	}
	var newNodes []forest.Node
	remap := make(map[int32]int32)
	var walk func(old int32) int32
	walk = func(old int32) int32 {
		if idx, ok := remap[old]; ok {
			return idx
		}
		n := tree.Nodes[old]
		newIdx := int32(len(newNodes))
		newNodes = append(newNodes, n)
		remap[old] = newIdx
		if !n.IsLeaf {
			left := walk(n.LeftIdx)
			right := walk(n.RightIdx)
			newNodes[newIdx].LeftIdx = left
			newNodes[newIdx].RightIdx = right
		}
		return newIdx
	}
	newRoot := walk(tree.Root)
	tree.Nodes = newNodes
	tree.Root = newRoot
}
