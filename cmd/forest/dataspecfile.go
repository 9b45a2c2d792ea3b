package main

import (
	"encoding/json"
	"os"

	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/engine"
)

// writeDataspecFile writes spec as the standalone JSON file the
// infer_dataspec/train/convert_dataset subcommands pass each other out
// of band from a model directory (which keeps its own embedded copy via
// the serialize package).
func writeDataspecFile(path string, spec *dataspec.Dataspec) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	return nil
}

// readDataspecFile reads back a dataspec written by writeDataspecFile
// and freezes it, matching the "immutable once training starts"
// discipline every consumer of a loaded dataspec relies on.
func readDataspecFile(path string) (*dataspec.Dataspec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engine.Wrap(engine.NotFound, err)
	}
	spec := &dataspec.Dataspec{}
	if err := json.Unmarshal(data, spec); err != nil {
		return nil, engine.Wrap(engine.InvalidArgument, err)
	}
	spec.Freeze()
	return spec, nil
}
