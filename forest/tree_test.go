package forest_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/forest"
)

func TestTreeSplitAndPredict(t *testing.T) {
	tr := forest.NewTree()
	left, right := tr.Split(tr.Root, forest.NewNumericalCondition(0, 1.5), false, 0.5)
	tr.SetLeaf(left, &forest.Leaf{TopValue: -1})
	tr.SetLeaf(right, &forest.Leaf{TopValue: 1})

	require.NoError(t, tr.Validate())

	below := forest.NewMapExample()
	below.Numerical[0] = 0.5
	leaf, err := tr.Leaf(below)
	require.NoError(t, err)
	assert.Equal(t, -1.0, leaf.TopValue)

	above := forest.NewMapExample()
	above.Numerical[0] = 2.5
	leaf, err = tr.Leaf(above)
	require.NoError(t, err)
	assert.Equal(t, 1.0, leaf.TopValue)
}

func TestTreeMissingFollowsDirection(t *testing.T) {
	tr := forest.NewTree()
	tr.Nodes[tr.Root].MissingGoesRight = true
	left, right := tr.Split(tr.Root, forest.NewNumericalCondition(0, 1.5), true, 0.5)
	tr.SetLeaf(left, &forest.Leaf{TopValue: -1})
	tr.SetLeaf(right, &forest.Leaf{TopValue: 1})

	missing := forest.NewMapExample()
	leaf, err := tr.Leaf(missing)
	require.NoError(t, err)
	assert.Equal(t, 1.0, leaf.TopValue)
}

func TestTreeValidateRejectsNonFiniteLeaf(t *testing.T) {
	tr := forest.NewTree()
	tr.SetLeaf(tr.Root, &forest.Leaf{TopValue: math.NaN()})
	err := tr.Validate()
	assert.Error(t, err)
}

func TestCategoricalSetCondition(t *testing.T) {
	cond := forest.NewCategoricalSetCondition(0, []int32{2, 3}, []int32{5})
	ex := forest.NewMapExample()
	ex.CategoricalSet[0] = []int32{3, 7}
	ok, missing := cond.Evaluate(ex)
	assert.False(t, missing)
	assert.True(t, ok)

	ex.CategoricalSet[0] = []int32{3, 5}
	ok, _ = cond.Evaluate(ex)
	assert.False(t, ok) // negative set wins
}
