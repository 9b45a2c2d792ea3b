// Package serialize implements the C7 on-disk model format: an atomic
// directory writer/reader grounded on the original source's
// SaveModel/LoadModel/ModelExist contract (model_library.cc) and the
// teacher's tree/json convention of JSON-encoding structural data while
// keeping bulk payloads in a denser format.
//
// A model directory holds:
//
//	header.json       - forest.Header, model-agnostic
//	data_spec.json    - the dataspec.Dataspec
//	gbt_header.json   - forest.GBTHeader, only when the model is GBT
//	rf_header.json    - forest.RFHeader, only when the model is RF
//	nodes.gob         - every tree's node arena, gob-encoded
//	done              - empty sentinel; its presence is the only thing
//	                    ModelExist/Load trust
package serialize

import (
	"encoding/gob"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/engine"
)

const (
	headerFile    = "header.json"
	dataspecFile  = "data_spec.json"
	gbtHeaderFile = "gbt_header.json"
	rfHeaderFile  = "rf_header.json"
	nodesFile     = "nodes.gob"
	doneFile      = "done"
)

// ModelExist reports whether dir holds a complete model directory: the
// done sentinel's presence is the sole source of truth, per the original
// source's ModelExist, which checks nothing else.
func ModelExist(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, doneFile))
	return err == nil
}

// Save writes model to dir atomically: it builds the directory contents
// under a sibling temporary directory, then os.Rename's it into place,
// then creates the done sentinel — so a reader either sees no directory
// at all, or a complete one; it can never observe a partially written
// model, mirroring the original source's SaveModel ordering (validate,
// write header, write dataspec, write model-specific data, write done).
func Save(dir string, model *forest.Model) error {
	if err := model.Validate(); err != nil {
		return engine.Wrap(engine.InvalidArgument, err)
	}

	tmp, err := os.MkdirTemp(filepath.Dir(dir), ".forest-model-*")
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	defer os.RemoveAll(tmp) // no-op once the rename below succeeds

	if err := writeJSON(filepath.Join(tmp, headerFile), model.Header); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(tmp, dataspecFile), model.Dataspec); err != nil {
		return err
	}
	if model.GBT != nil {
		if err := writeJSON(filepath.Join(tmp, gbtHeaderFile), model.GBT); err != nil {
			return err
		}
	}
	if model.RF != nil {
		if err := writeJSON(filepath.Join(tmp, rfHeaderFile), model.RF); err != nil {
			return err
		}
	}
	if err := writeNodes(filepath.Join(tmp, nodesFile), model.Trees); err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	if err := os.Rename(tmp, dir); err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	done, err := os.Create(filepath.Join(dir, doneFile))
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	return done.Close()
}

// Load reads a model directory written by Save. It refuses to load a
// directory missing the done sentinel: per the original source, absence
// of done means the write never completed and the contents cannot be
// trusted.
func Load(dir string) (*forest.Model, error) {
	if !ModelExist(dir) {
		return nil, engine.Newf(engine.FailedPrecondition, "serialize: %s is not a complete model directory (missing %s)", dir, doneFile)
	}

	model := &forest.Model{Dataspec: dataspec.New()}
	if err := readJSON(filepath.Join(dir, headerFile), &model.Header); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, dataspecFile), model.Dataspec); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(dir, gbtHeaderFile)); err == nil {
		model.GBT = &forest.GBTHeader{}
		if err := readJSON(filepath.Join(dir, gbtHeaderFile), model.GBT); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(filepath.Join(dir, rfHeaderFile)); err == nil {
		model.RF = &forest.RFHeader{}
		if err := readJSON(filepath.Join(dir, rfHeaderFile), model.RF); err != nil {
			return nil, err
		}
	}
	trees, err := readNodes(filepath.Join(dir, nodesFile))
	if err != nil {
		return nil, err
	}
	model.Trees = trees

	if err := model.Validate(); err != nil {
		return nil, engine.Wrap(engine.Internal, err)
	}
	return model, nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	return nil
}

func writeNodes(path string, trees []*forest.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(trees); err != nil {
		return engine.Wrap(engine.Internal, err)
	}
	return nil
}

func readNodes(path string) ([]*forest.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, engine.Wrap(engine.Internal, err)
	}
	defer f.Close()
	var trees []*forest.Tree
	if err := gob.NewDecoder(f).Decode(&trees); err != nil {
		return nil, engine.Wrap(engine.Internal, err)
	}
	return trees, nil
}
