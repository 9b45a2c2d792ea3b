package forest

// Leaf is the payload of a leaf node. All forests here store the
// regression-style fields; class distributions are an additional,
// optional payload for RF classification with winner_take_all=false.
type Leaf struct {
	TopValue          float64
	SumGradients      float64
	SumHessians       float64
	SumWeights        float64
	ClassDistribution []float64 `json:"class_distribution,omitempty"`
}

// Node is one entry of a tree's flat arena. A node is either a leaf
// (IsLeaf true, Leaf populated, LeftIdx/RightIdx unused) or internal
// (two children, a Condition). LeftIdx/RightIdx are indices into the
// owning Tree.Nodes slice.
type Node struct {
	IsLeaf   bool
	LeftIdx  int32
	RightIdx int32

	Condition        *Condition
	MissingGoesRight bool

	SplitScore        float64
	LabelDistribution []float64 `json:"label_distribution,omitempty"`

	Leaf *Leaf
}
