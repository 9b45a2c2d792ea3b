package main

import (
	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataset/io/csv"
	"github.com/branchml/forest/dataset/io/mongo"
	"github.com/branchml/forest/dataset/io/sql"
	"github.com/branchml/forest/gbt"
	"github.com/branchml/forest/registry"
	"github.com/branchml/forest/rf"
)

// registerDatasetFormats wires every dataset/io/* package into the
// registry under the typed-path prefix its format uses on the command
// line. This lives in the binary rather than in each format package's
// own init(), matching the grounding note in dataset/io/sql's doc
// comment: the sqlite/postgres names are "registered... by the
// cmd/forest binary's init wiring", not by sql.init itself.
func registerDatasetFormats() {
	registry.RegisterDatasetFormat("csv", func(path string) (dataset.Shard, error) {
		return csv.NewShard(path), nil
	})
	sqliteOpen := sql.Open("sqlite3")
	registry.RegisterDatasetFormat("sqlite", func(path string) (dataset.Shard, error) {
		shard, err := sqliteOpen(path)
		if err != nil {
			return nil, err
		}
		return shard, nil
	})
	postgresOpen := sql.Open("postgres")
	registry.RegisterDatasetFormat("postgres", func(path string) (dataset.Shard, error) {
		shard, err := postgresOpen(path)
		if err != nil {
			return nil, err
		}
		return shard, nil
	})
	registry.RegisterDatasetFormat("mongo", func(path string) (dataset.Shard, error) {
		shard, err := mongo.Open(path)
		if err != nil {
			return nil, err
		}
		return shard, nil
	})
}

// registerLearnersAndModels makes every built-in learner/model kind
// discoverable by name, independently of whether the caller ever trains
// one (show_model and predict only need the Model side).
func registerLearnersAndModels() {
	registry.RegisterLearner("GRADIENT_BOOSTED_TREES", func() registry.Learner { return &gbt.Learner{} })
	registry.RegisterLearner("RANDOM_FOREST", func() registry.Learner { return &rf.Learner{} })
	registry.RegisterModel("GRADIENT_BOOSTED_TREES", func() registry.Model { return gbt.ModelKind{} })
	registry.RegisterModel("RANDOM_FOREST", func() registry.Model { return rf.ModelKind{} })
}
