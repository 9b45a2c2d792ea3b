package serialize

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
)

func buildModel() *forest.Model {
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "x", Type: dataspec.Numerical, Numerical: &dataspec.NumericalSpec{Mean: 1, StdDev: 2}})
	cat := dataspec.NewDictionary()
	cat.Add("a")
	cat.Add("b")
	spec.AddColumn(&dataspec.Column{Name: "c", Type: dataspec.Categorical, Categorical: &dataspec.CategoricalSpec{Dictionary: cat}})
	spec.Freeze()

	tree := forest.NewTree()
	cond := forest.NewNumericalCondition(0, 1.5)
	l, r := tree.Split(tree.Root, cond, false, 0.3)
	tree.SetLeaf(l, &forest.Leaf{TopValue: -1})
	tree.SetLeaf(r, &forest.Leaf{TopValue: 1})

	return &forest.Model{
		Dataspec: spec,
		Header:   forest.Header{Name: "m", Task: forest.Regression, InputFeatures: []int{0, 1}, GroupColumn: -1},
		Trees:    []*forest.Tree{tree},
		GBT: &forest.GBTHeader{
			Loss:               forest.SquaredError,
			NumTreesPerIter:    1,
			InitialPredictions: []float64{0},
		},
	}
}

func TestSaveThenLoadRoundTripsModel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "model")
	model := buildModel()

	assert.False(t, ModelExist(dir))
	require.NoError(t, Save(dir, model))
	assert.True(t, ModelExist(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, model.Header.Name, loaded.Header.Name)
	assert.Equal(t, model.Header.Task, loaded.Header.Task)
	require.Len(t, loaded.Trees, 1)
	assert.Equal(t, model.Trees[0].Nodes, loaded.Trees[0].Nodes)
	require.Len(t, loaded.Dataspec.Columns, 2)
	assert.Equal(t, "b", loaded.Dataspec.Columns[1].Categorical.Dictionary.Item(2))
	require.NotNil(t, loaded.GBT)
	assert.Equal(t, forest.SquaredError, loaded.GBT.Loss)
}

func TestLoadRejectsIncompleteDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	assert.Error(t, err)
}
