// Package registry implements a process-wide mapping from
// learner/model/dataset-format names to constructors: a
// sync.RWMutex-guarded map rather than any inheritance-based
// polymorphism.
package registry

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/branchml/forest/dataset"
)

// ErrNotFound is the sentinel wrapped into every registry miss; callers
// can match it with errors.Is to implement the NotFound error kind.
var ErrNotFound = errors.New("registry: not found")

// LearnerFactory builds a Learner; it takes no arguments. The
// concrete Learner/Config types are defined by the gbt and rf packages;
// this package only needs to shuttle opaque values between CLI and
// learner.
type LearnerFactory func() Learner

// Learner is the minimal surface the CLI needs to run any registered
// learner, implemented by *gbt.Learner and *rf.Learner.
type Learner interface {
	Name() string
}

// ModelFactory builds a Model value naming a supported model kind,
// implemented by gbt.ModelKind and rf.ModelKind. serialize.Load does
// not go through the registry.
type ModelFactory func() Model

// Model is the minimal surface the CLI needs to run any registered
// model kind.
type Model interface {
	Name() string
}

// DatasetFormatOpener opens one concrete path (a file path, or a DSN for
// non-file formats) as a dataset.Shard.
type DatasetFormatOpener func(path string) (dataset.Shard, error)

type registry struct {
	mu             sync.RWMutex
	learners       map[string]LearnerFactory
	models         map[string]ModelFactory
	datasetFormats map[string]DatasetFormatOpener
}

var global = &registry{
	learners:       map[string]LearnerFactory{},
	models:         map[string]ModelFactory{},
	datasetFormats: map[string]DatasetFormatOpener{},
}

// RegisterLearner adds name to the learner registry. It is meant to be
// called once from the binary's wiring step, injecting whichever
// learners that binary wants to support.
func RegisterLearner(name string, f LearnerFactory) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.learners[name] = f
}

// LookupLearner looks up a learner factory by name.
func LookupLearner(name string) (LearnerFactory, error) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	f, ok := global.learners[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "learner %q (registered: %v)", name, sortedKeys(global.learners))
	}
	return f, nil
}

// RegisterModel adds name to the model registry.
func RegisterModel(name string, f ModelFactory) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.models[name] = f
}

// LookupModel looks up a model factory by name.
func LookupModel(name string) (ModelFactory, error) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	f, ok := global.models[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "model %q (registered: %v)", name, sortedKeys(global.models))
	}
	return f, nil
}

// RegisterDatasetFormat adds a typed-path format (e.g. "csv", "sqlite",
// "postgres", "mongo") to the registry.
func RegisterDatasetFormat(format string, opener DatasetFormatOpener) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.datasetFormats[format] = opener
}

// DatasetFormat looks up a dataset format opener by name.
func DatasetFormat(format string) (DatasetFormatOpener, error) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	f, ok := global.datasetFormats[format]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "dataset format %q (registered: %v)", format, sortedKeys(global.datasetFormats))
	}
	return f, nil
}

// RegisteredLearners returns the sorted list of registered learner
// names.
func RegisteredLearners() []string {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return sortedKeys(global.learners)
}

// RegisteredModels returns the sorted list of registered model names.
func RegisteredModels() []string {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return sortedKeys(global.models)
}

// Reset clears every registration. It exists for tests: the registry is
// the only process-wide state in this package, and it would otherwise
// leak between them.
func Reset() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.learners = map[string]LearnerFactory{}
	global.models = map[string]ModelFactory{}
	global.datasetFormats = map[string]DatasetFormatOpener{}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
