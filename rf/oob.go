package rf

import (
	"math"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/forest"
)

// oobMembership inverts oobSets into a per-row list of voting trees in
// one pass, avoiding a rescan of every tree's OOB set for each row.
func oobMembership(n int, oobSets [][]int32) [][]int {
	byRow := make([][]int, n)
	for t, oob := range oobSets {
		for _, r := range oob {
			byRow[r] = append(byRow[r], t)
		}
	}
	return byRow
}

func oobAccuracy(ds *dataset.Dataset, trees []*forest.Tree, oobSets [][]int32, classLabels []int32, numClasses int) float64 {
	byRow := oobMembership(ds.N, oobSets)
	var correct, evaluated float64
	for row := 0; row < ds.N; row++ {
		voters := byRow[row]
		if len(voters) == 0 {
			continue
		}
		dist := make([]float64, numClasses)
		for _, t := range voters {
			leaf, err := trees[t].Leaf(ds.Row(row))
			if err != nil || leaf.ClassDistribution == nil {
				continue
			}
			for k, p := range leaf.ClassDistribution {
				dist[k] += p
			}
		}
		predicted := argmax(dist)
		evaluated++
		if int32(predicted) == classLabels[row] {
			correct++
		}
	}
	if evaluated == 0 {
		return 0
	}
	return correct / evaluated
}

func oobRMSE(ds *dataset.Dataset, trees []*forest.Tree, oobSets [][]int32, labels []float64) float64 {
	byRow := oobMembership(ds.N, oobSets)
	var sumSq, evaluated float64
	for row := 0; row < ds.N; row++ {
		voters := byRow[row]
		if len(voters) == 0 {
			continue
		}
		var sum float64
		for _, t := range voters {
			leaf, err := trees[t].Leaf(ds.Row(row))
			if err != nil {
				continue
			}
			sum += leaf.TopValue
		}
		pred := sum / float64(len(voters))
		d := pred - labels[row]
		sumSq += d * d
		evaluated++
	}
	if evaluated == 0 {
		return 0
	}
	return math.Sqrt(sumSq / evaluated)
}

func argmax(v []float64) int {
	best, bestV := 0, v[0]
	for i, x := range v {
		if x > bestV {
			best, bestV = i, x
		}
	}
	return best
}
