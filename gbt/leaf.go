package gbt

import (
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/grower"
	"github.com/branchml/forest/loss"
	"github.com/branchml/forest/split"
)

// newtonLeafSetter adapts a loss's LeafValue to grower.LeafSetter,
// accumulating each leaf's sufficient statistics from target (which is
// already restricted to the rows this tree trains on) before asking the
// loss for the regularized Newton step.
func newtonLeafSetter(l loss.Loss, target *split.Target, cfg loss.LeafConfig) grower.LeafSetter {
	return func(indices []int32) *forest.Leaf {
		var sumG, sumH, sumW float64
		for _, row := range indices {
			sumG += target.Gradients[row]
			if target.Hessians != nil {
				sumH += target.Hessians[row]
			} else {
				sumH += 1
			}
			w := 1.0
			if target.Weights != nil {
				w = target.Weights[row]
			}
			sumW += w
		}
		value := l.LeafValue(sumG, sumH, sumW, cfg)
		return &forest.Leaf{TopValue: value, SumGradients: sumG, SumHessians: sumH, SumWeights: sumW}
	}
}
