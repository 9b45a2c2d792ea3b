package split

import "math"

// sums accumulates the statistics a split needs on one side of a
// candidate partition.
type sums struct {
	weight   float64
	gradient float64
	hessian  float64
	// classCounts[k] is the weighted count of class k, used by the
	// Gini/info-gain scorer; nil for regression targets.
	classCounts []float64
}

func newSums(numClasses int) sums {
	if numClasses > 0 {
		return sums{classCounts: make([]float64, numClasses)}
	}
	return sums{}
}

func (s *sums) add(target *Target, i int32) {
	w := 1.0
	if target.Weights != nil {
		w = target.Weights[i]
	}
	s.weight += w
	if target.ClassLabels != nil {
		s.classCounts[target.ClassLabels[i]] += w
		return
	}
	g := target.Gradients[i]
	s.gradient += w * g
	if target.Hessians != nil {
		s.hessian += w * target.Hessians[i]
	} else {
		s.hessian += w
	}
}

// score returns the split gain for partitioning a node with total `all`
// statistics into `left` and `right`, using Newton hessian-gain if
// cfg.UseHessianGain, else variance reduction (regression) or Gini/info
// gain (classification).
func score(all, left, right sums, cfg *Config) float64 {
	if cfg.UseHessianGain {
		return newtonGain(left.gradient, left.hessian, right.gradient, right.hessian, all.gradient, all.hessian, cfg.L1, cfg.L2, cfg.Gamma)
	}
	if all.classCounts != nil {
		if len(all.classCounts) <= 2 {
			return giniGain(all.classCounts, left.classCounts, right.classCounts)
		}
		return infoGain(all.classCounts, left.classCounts, right.classCounts)
	}
	return varianceGain(all.gradient, all.weight, left.gradient, left.weight, right.gradient, right.weight)
}

// newtonGain implements the Newton split gain:
// 1/2[(Sg_L)^2/(Sh_L+lambda) + (Sg_R)^2/(Sh_R+lambda) - (Sg)^2/(Sh+lambda)] - gamma,
// with L1 soft-thresholding on each Sg before squaring.
func newtonGain(gL, hL, gR, hR, g, h, l1, l2, gamma float64) float64 {
	term := func(sumG, sumH float64) float64 {
		sumG = softThreshold(sumG, l1)
		denom := sumH + l2
		if denom <= 1e-3 {
			denom = 1e-3
		}
		return (sumG * sumG) / denom
	}
	return 0.5*(term(gL, hL)+term(gR, hR)-term(g, h)) - gamma
}

func softThreshold(x, l1 float64) float64 {
	if x > l1 {
		return x - l1
	}
	if x < -l1 {
		return x + l1
	}
	return 0
}

// varianceGain is the reduction-in-sum-of-squared-errors formula: the
// bracketed terms of newtonGain with hessian fixed to the row weight and
// no regularization, without newtonGain's factor of 1/2.
func varianceGain(g, w, gL, wL, gR, wR float64) float64 {
	term := func(sumG, sumW float64) float64 {
		if sumW <= 0 {
			return 0
		}
		return (sumG * sumG) / sumW
	}
	return term(gL, wL) + term(gR, wR) - term(g, w)
}

func giniGain(all, left, right []float64) float64 {
	return gini(all) - weightedSubScore(left, right, gini)
}

func infoGain(all, left, right []float64) float64 {
	return entropy(all) - weightedSubScore(left, right, entropy)
}

func weightedSubScore(left, right []float64, f func([]float64) float64) float64 {
	totalLeft, totalRight := sumOf(left), sumOf(right)
	total := totalLeft + totalRight
	if total <= 0 {
		return 0
	}
	return (totalLeft/total)*f(left) + (totalRight/total)*f(right)
}

func sumOf(counts []float64) float64 {
	var s float64
	for _, c := range counts {
		s += c
	}
	return s
}

func gini(counts []float64) float64 {
	total := sumOf(counts)
	if total <= 0 {
		return 0
	}
	var impurity float64 = 1
	for _, c := range counts {
		p := c / total
		impurity -= p * p
	}
	return impurity
}

func entropy(counts []float64) float64 {
	total := sumOf(counts)
	if total <= 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := c / total
		h -= p * math.Log2(p)
	}
	return h
}
