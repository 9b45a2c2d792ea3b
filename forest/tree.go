package forest

import (
	"math"

	"github.com/cockroachdb/errors"
)

// ErrNoRoot is returned by Leaf and Validate when the tree has no nodes
// at all.
var ErrNoRoot = errors.New("forest: tree has no root node")

// Tree is a rooted binary tree stored as a flat arena of Node, indexed by
// int32 rather than linked by pointer: this preserves cache locality
// during inference and simplifies serialization. A Tree is immutable
// once grown: the grower appends nodes while building it and never
// mutates a node again once the caller stops calling SetLeaf/Split
// on it.
type Tree struct {
	Nodes []Node
	Root  int32
}

// NewTree returns an empty tree with a single leaf as its root.
func NewTree() *Tree {
	t := &Tree{}
	t.Root = t.addNode(Node{IsLeaf: true, Leaf: &Leaf{}})
	return t
}

func (t *Tree) addNode(n Node) int32 {
	t.Nodes = append(t.Nodes, n)
	return int32(len(t.Nodes) - 1)
}

// SetLeaf overwrites the node at idx with a leaf holding the given
// payload.
func (t *Tree) SetLeaf(idx int32, leaf *Leaf) {
	t.Nodes[idx] = Node{IsLeaf: true, Leaf: leaf}
}

// Split turns the leaf at idx into an internal node with the given
// condition and missing-value direction, creating two new leaf children
// and returning their indices.
func (t *Tree) Split(idx int32, cond *Condition, missingGoesRight bool, score float64) (left, right int32) {
	left = t.addNode(Node{IsLeaf: true, Leaf: &Leaf{}})
	right = t.addNode(Node{IsLeaf: true, Leaf: &Leaf{}})
	t.Nodes[idx] = Node{
		IsLeaf:           false,
		LeftIdx:          left,
		RightIdx:         right,
		Condition:        cond,
		MissingGoesRight: missingGoesRight,
		SplitScore:       score,
	}
	return left, right
}

// Leaf descends the tree for ex, following each node's condition (or its
// stored missing-value direction when the relevant column is missing for
// ex), and returns the leaf reached.
func (t *Tree) Leaf(ex Example) (*Leaf, error) {
	if len(t.Nodes) == 0 {
		return nil, ErrNoRoot
	}
	idx := t.Root
	for {
		n := &t.Nodes[idx]
		if n.IsLeaf {
			return n.Leaf, nil
		}
		satisfied, missing := n.Condition.Evaluate(ex)
		var goRight bool
		if missing {
			goRight = n.MissingGoesRight
		} else {
			goRight = satisfied
		}
		if goRight {
			idx = n.RightIdx
		} else {
			idx = n.LeftIdx
		}
	}
}

// NumLeaves returns the number of leaf nodes in the tree.
func (t *Tree) NumLeaves() int {
	n := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf {
			n++
		}
	}
	return n
}

// Validate checks the structural invariants a well-formed tree must
// satisfy: every leaf reachable from the root, every internal node has
// exactly two children, every numerical leaf value finite.
func (t *Tree) Validate() error {
	if len(t.Nodes) == 0 {
		return ErrNoRoot
	}
	visited := make([]bool, len(t.Nodes))
	var walk func(idx int32) error
	walk = func(idx int32) error {
		if idx < 0 || int(idx) >= len(t.Nodes) {
			return errors.Newf("forest: node index %d out of range", idx)
		}
		visited[idx] = true
		n := &t.Nodes[idx]
		if n.IsLeaf {
			if n.Leaf == nil {
				return errors.Newf("forest: leaf node %d missing payload", idx)
			}
			if isNonFinite(n.Leaf.TopValue) {
				return errors.Newf("forest: leaf node %d has non-finite value", idx)
			}
			return nil
		}
		if n.Condition == nil {
			return errors.Newf("forest: internal node %d missing condition", idx)
		}
		if err := walk(n.LeftIdx); err != nil {
			return err
		}
		return walk(n.RightIdx)
	}
	if err := walk(t.Root); err != nil {
		return err
	}
	for i, v := range visited {
		if !v {
			return errors.Newf("forest: node %d is not reachable from the root", i)
		}
	}
	return nil
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
