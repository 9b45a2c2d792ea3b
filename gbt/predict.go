package gbt

import (
	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/forest"
)

// addTreeContribution adds tree's leaf value, scaled, into channel k of
// every row's prediction vector. predictions is laid out row-major with
// numTreesPerIter channels per row, matching forest.GBTHeader's tree
// ordering (trees 0..numTreesPerIter-1 belong to iteration 0, and so on).
func addTreeContribution(predictions []float64, ds *dataset.Dataset, tree *forest.Tree, k, numTreesPerIter int, scale float64) {
	if scale == 0 {
		return
	}
	for i := 0; i < ds.N; i++ {
		leaf, err := tree.Leaf(ds.Row(i))
		if err != nil {
			continue
		}
		predictions[i*numTreesPerIter+k] += scale * leaf.TopValue
	}
}
