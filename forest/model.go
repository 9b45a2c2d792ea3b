package forest

import (
	"github.com/cockroachdb/errors"

	"github.com/branchml/forest/dataspec"
)

// Task is the kind of prediction target a model was trained for.
type Task int

const (
	Classification Task = iota
	Regression
	Ranking
)

func (t Task) String() string {
	switch t {
	case Classification:
		return "CLASSIFICATION"
	case Regression:
		return "REGRESSION"
	case Ranking:
		return "RANKING"
	default:
		return "UNKNOWN"
	}
}

// Loss is the closed set of loss functions a GBT model may have been
// trained with.
type Loss int

const (
	BinomialLogLikelihood Loss = iota
	MultinomialLogLikelihood
	SquaredError
	LambdaMARTNDCG5
	XENDCGMART
)

func (l Loss) String() string {
	switch l {
	case BinomialLogLikelihood:
		return "BINOMIAL_LOG_LIKELIHOOD"
	case MultinomialLogLikelihood:
		return "MULTINOMIAL_LOG_LIKELIHOOD"
	case SquaredError:
		return "SQUARED_ERROR"
	case LambdaMARTNDCG5:
		return "LAMBDA_MART_NDCG5"
	case XENDCGMART:
		return "XE_NDCG_MART"
	default:
		return "UNKNOWN"
	}
}

// WeightsDefinition optionally names the column used as a per-example
// training weight.
type WeightsDefinition struct {
	Column int
}

// TrainingLogEntry records one iteration's training/validation loss and
// secondary metrics, appended to a GBT model's header as it trains.
type TrainingLogEntry struct {
	Iteration       int
	NumTrees        int
	TrainingLoss    float64
	ValidationLoss  float64
	SecondaryTrain  []float64
	SecondaryValid  []float64
}

// Header carries the model-agnostic fields common to every model kind.
type Header struct {
	Name               string
	Task               Task
	LabelColumn        int
	GroupColumn        int // -1 if the task is not RANKING
	InputFeatures      []int
	Weights            *WeightsDefinition
	VariableImportance map[string][]float64
}

// GBTHeader carries the fields specific to a gradient-boosted-trees
// model.
type GBTHeader struct {
	Loss               Loss
	NumTreesPerIter    int
	InitialPredictions []float64
	ValidationLoss     float64
	TrainingLogs       []TrainingLogEntry
}

// RFHeader carries the fields specific to a random-forest model.
type RFHeader struct {
	WinnerTakeAll    bool
	OOBAccuracy      float64
	OOBRMSE          float64
	NumClasses       int
	VariableImportance map[string]float64
}

// Model is the ordered list of trees plus the model-kind-specific
// header. Exactly one of GBT/RF is non-nil, selected by Header.Name
// matching the registered model key.
type Model struct {
	Dataspec *dataspec.Dataspec
	Header   Header
	Trees    []*Tree

	GBT *GBTHeader
	RF  *RFHeader
}

// Validate checks the invariants a well-formed model must satisfy: GBT
// tree count divisible by NumTreesPerIter, InitialPredictions sized to
// match, and every tree individually valid.
func (m *Model) Validate() error {
	if m.GBT != nil {
		if m.GBT.NumTreesPerIter <= 0 {
			return errors.New("forest: GBT model has non-positive NumTreesPerIter")
		}
		if len(m.Trees)%m.GBT.NumTreesPerIter != 0 {
			return errors.Newf("forest: GBT model has %d trees, not a multiple of %d trees per iteration", len(m.Trees), m.GBT.NumTreesPerIter)
		}
		if len(m.GBT.InitialPredictions) != m.GBT.NumTreesPerIter {
			return errors.Newf("forest: GBT model has %d initial predictions, want %d", len(m.GBT.InitialPredictions), m.GBT.NumTreesPerIter)
		}
	}
	for i, t := range m.Trees {
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "forest: tree %d invalid", i)
		}
	}
	return nil
}

// NumTreesPerIter returns 1 for RF and non-GBT models, or the GBT
// header's value otherwise.
func (m *Model) NumTreesPerIter() int {
	if m.GBT != nil {
		return m.GBT.NumTreesPerIter
	}
	return 1
}
