package rf

import (
	"math"
	"math/rand"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/forest"
)

// shuffledExample wraps a dataset row, substituting one column's value
// with the value from a different, randomly chosen row — the standard
// permutation-importance probe: if a feature matters, scrambling it
// among the OOB rows should hurt OOB accuracy/RMSE.
type shuffledExample struct {
	base      forest.Example
	swap      forest.Example
	swapCol   int
}

func (s shuffledExample) NumericalValue(col int) (float32, bool) {
	if col == s.swapCol {
		return s.swap.NumericalValue(col)
	}
	return s.base.NumericalValue(col)
}

func (s shuffledExample) CategoricalValue(col int) (int32, bool) {
	if col == s.swapCol {
		return s.swap.CategoricalValue(col)
	}
	return s.base.CategoricalValue(col)
}

func (s shuffledExample) CategoricalSetValue(col int) ([]int32, bool) {
	if col == s.swapCol {
		return s.swap.CategoricalSetValue(col)
	}
	return s.base.CategoricalSetValue(col)
}

// permutationImportanceClassification scores every input feature by the
// OOB accuracy drop a random within-OOB permutation of that column
// causes.
func permutationImportanceClassification(ds *dataset.Dataset, trees []*forest.Tree, oobSets [][]int32, classLabels []int32, numClasses int, inputFeatures []int) map[string]float64 {
	baseline := oobAccuracy(ds, trees, oobSets, classLabels, numClasses)
	byRow := oobMembership(ds.N, oobSets)
	rng := rand.New(rand.NewSource(1))

	out := map[string]float64{}
	for _, col := range inputFeatures {
		perm := rng.Perm(ds.N)
		var correct, evaluated float64
		for row := 0; row < ds.N; row++ {
			voters := byRow[row]
			if len(voters) == 0 {
				continue
			}
			swapped := shuffledExample{base: ds.Row(row), swap: ds.Row(perm[row]), swapCol: col}
			dist := make([]float64, numClasses)
			for _, t := range voters {
				leaf, err := trees[t].Leaf(swapped)
				if err != nil || leaf.ClassDistribution == nil {
					continue
				}
				for k, p := range leaf.ClassDistribution {
					dist[k] += p
				}
			}
			evaluated++
			if int32(argmax(dist)) == classLabels[row] {
				correct++
			}
		}
		permuted := 0.0
		if evaluated > 0 {
			permuted = correct / evaluated
		}
		out[columnName(ds, col)] = math.Max(baseline-permuted, 0)
	}
	return out
}

// permutationImportanceRegression scores every input feature by the OOB
// RMSE increase a random within-OOB permutation of that column causes.
func permutationImportanceRegression(ds *dataset.Dataset, trees []*forest.Tree, oobSets [][]int32, labels []float64, inputFeatures []int) map[string]float64 {
	baseline := oobRMSE(ds, trees, oobSets, labels)
	byRow := oobMembership(ds.N, oobSets)
	rng := rand.New(rand.NewSource(1))

	out := map[string]float64{}
	for _, col := range inputFeatures {
		perm := rng.Perm(ds.N)
		var sumSq, evaluated float64
		for row := 0; row < ds.N; row++ {
			voters := byRow[row]
			if len(voters) == 0 {
				continue
			}
			swapped := shuffledExample{base: ds.Row(row), swap: ds.Row(perm[row]), swapCol: col}
			var sum float64
			for _, t := range voters {
				leaf, err := trees[t].Leaf(swapped)
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
		permuted := 0.0
		if evaluated > 0 {
			permuted = math.Sqrt(sumSq / evaluated)
		}
		out[columnName(ds, col)] = math.Max(permuted-baseline, 0)
	}
	return out
}

func columnName(ds *dataset.Dataset, col int) string {
	for _, c := range ds.Spec.Columns {
		if c.Index == col {
			return c.Name
		}
	}
	return ""
}
