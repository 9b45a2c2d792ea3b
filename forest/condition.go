package forest

import "sort"

// ConditionType discriminates the closed set of condition shapes a node
// may hold.
type ConditionType int

const (
	NumericalHigherThanThreshold ConditionType = iota
	CategoricalInMask
	CategoricalSetContains
	ObliqueSparse
	IsMissing
)

func (t ConditionType) String() string {
	switch t {
	case NumericalHigherThanThreshold:
		return "NumericalHigherThanThreshold"
	case CategoricalInMask:
		return "CategoricalInMask"
	case CategoricalSetContains:
		return "CategoricalSetContains"
	case ObliqueSparse:
		return "ObliqueSparse"
	case IsMissing:
		return "IsMissing"
	default:
		return "Unknown"
	}
}

// ObliqueNormalization selects how each coordinate of an oblique
// projection is rescaled before being weighted.
type ObliqueNormalization int

const (
	NoNormalization ObliqueNormalization = iota
	StandardDeviationNormalization
	MinMaxNormalization
)

// ObliqueWeight is one (column, weight) term of a sparse oblique
// projection.
type ObliqueWeight struct {
	Column int
	Weight float64
}

// Condition is a sum type over the five condition shapes decision nodes
// may hold. Exactly one group of fields is meaningful, selected by Type.
type Condition struct {
	Type ConditionType `json:"type"`

	// NumericalHigherThanThreshold / ObliqueSparse
	Column    int     `json:"column,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`

	// CategoricalInMask: Column above selects the feature; Mask is the
	// sorted set of dictionary indices routed to the positive branch.
	Mask []int32 `json:"mask,omitempty"`

	// CategoricalSetContains
	PositiveSet []int32 `json:"positive_set,omitempty"`
	NegativeSet []int32 `json:"negative_set,omitempty"`

	// ObliqueSparse
	Weights       []ObliqueWeight      `json:"weights,omitempty"`
	Normalization ObliqueNormalization `json:"normalization,omitempty"`
}

// Evaluate reports whether ex satisfies c, and whether the relevant
// column was missing for ex (in which case the boolean result is
// meaningless and the caller must apply the node's missing-value
// direction instead).
func (c *Condition) Evaluate(ex Example) (satisfied bool, missing bool) {
	switch c.Type {
	case NumericalHigherThanThreshold:
		v, ok := ex.NumericalValue(c.Column)
		if !ok {
			return false, true
		}
		return float64(v) >= c.Threshold, false
	case CategoricalInMask:
		v, ok := ex.CategoricalValue(c.Column)
		if !ok {
			return false, true
		}
		return int32InSorted(c.Mask, v), false
	case CategoricalSetContains:
		vs, ok := ex.CategoricalSetValue(c.Column)
		if !ok {
			return false, true
		}
		return setSatisfies(vs, c.PositiveSet, c.NegativeSet), false
	case ObliqueSparse:
		var sum float64
		anyPresent := false
		for _, w := range c.Weights {
			v, ok := ex.NumericalValue(w.Column)
			if ok {
				sum += float64(v) * w.Weight
				anyPresent = true
			}
		}
		if !anyPresent {
			return false, true
		}
		return sum >= c.Threshold, false
	case IsMissing:
		_, hasNum := ex.NumericalValue(c.Column)
		_, hasCat := ex.CategoricalValue(c.Column)
		_, hasSet := ex.CategoricalSetValue(c.Column)
		return !hasNum && !hasCat && !hasSet, false
	default:
		return false, false
	}
}

func int32InSorted(sorted []int32, v int32) bool {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= v })
	return i < len(sorted) && sorted[i] == v
}

// setSatisfies implements the greedy categorical-set membership test: the
// condition is satisfied when the example's set contains at least one
// member of positive and none of negative.
func setSatisfies(values, positive, negative []int32) bool {
	for _, v := range values {
		if int32InSorted(negative, v) {
			return false
		}
	}
	for _, v := range values {
		if int32InSorted(positive, v) {
			return true
		}
	}
	return false
}

// NewNumericalCondition returns a NumericalHigherThanThreshold condition.
func NewNumericalCondition(col int, threshold float64) *Condition {
	return &Condition{Type: NumericalHigherThanThreshold, Column: col, Threshold: threshold}
}

// NewCategoricalMaskCondition returns a CategoricalInMask condition. mask
// is sorted in place.
func NewCategoricalMaskCondition(col int, mask []int32) *Condition {
	sort.Slice(mask, func(i, j int) bool { return mask[i] < mask[j] })
	return &Condition{Type: CategoricalInMask, Column: col, Mask: mask}
}

// NewCategoricalSetCondition returns a CategoricalSetContains condition.
// positive and negative are sorted in place.
func NewCategoricalSetCondition(col int, positive, negative []int32) *Condition {
	sort.Slice(positive, func(i, j int) bool { return positive[i] < positive[j] })
	sort.Slice(negative, func(i, j int) bool { return negative[i] < negative[j] })
	return &Condition{Type: CategoricalSetContains, Column: col, PositiveSet: positive, NegativeSet: negative}
}

// NewObliqueCondition returns an ObliqueSparse condition.
func NewObliqueCondition(weights []ObliqueWeight, threshold float64, norm ObliqueNormalization) *Condition {
	return &Condition{Type: ObliqueSparse, Weights: weights, Threshold: threshold, Normalization: norm}
}

// NewIsMissingCondition returns an IsMissing condition on col.
func NewIsMissingCondition(col int) *Condition {
	return &Condition{Type: IsMissing, Column: col}
}
