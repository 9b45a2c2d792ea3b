package rf

import (
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/grower"
)

// classificationLeafSetter records the class distribution at a leaf and,
// when winnerTakeAll is set, collapses TopValue to the majority class
// index; otherwise TopValue still carries the majority class (useful as
// a quick point estimate) while ClassDistribution carries the full
// per-class probability vector engine.Predict averages across trees.
func classificationLeafSetter(classLabels []int32, numClasses int, winnerTakeAll bool) grower.LeafSetter {
	return func(indices []int32) *forest.Leaf {
		counts := make([]float64, numClasses)
		var total float64
		for _, row := range indices {
			counts[classLabels[row]]++
			total++
		}
		dist := make([]float64, numClasses)
		best, bestCount := 0, -1.0
		for k, c := range counts {
			if total > 0 {
				dist[k] = c / total
			}
			if c > bestCount {
				best, bestCount = k, c
			}
		}
		// Both modes store the full distribution; winnerTakeAll only
		// affects how engine.Predict reads it back at inference time.
		return &forest.Leaf{TopValue: float64(best), SumWeights: total, ClassDistribution: dist}
	}
}

// regressionLeafSetter records the weighted mean label at a leaf.
func regressionLeafSetter(labels, weights []float64) grower.LeafSetter {
	return func(indices []int32) *forest.Leaf {
		var sumY, sumW float64
		for _, row := range indices {
			w := 1.0
			if weights != nil {
				w = weights[row]
			}
			sumY += w * labels[row]
			sumW += w
		}
		mean := 0.0
		if sumW > 0 {
			mean = sumY / sumW
		}
		return &forest.Leaf{TopValue: mean, SumGradients: sumY, SumWeights: sumW}
	}
}
