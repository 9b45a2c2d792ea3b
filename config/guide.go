package config

import (
	"fmt"
	"os"
	"regexp"

	yaml "gopkg.in/yaml.v2"

	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/engine"
)

// guideEntryYAML is the textual shape of one dataspec.Guide rule: a
// regex pattern, a type name, and optional vocabulary overrides.
type guideEntryYAML struct {
	Pattern       string `yaml:"pattern"`
	Type          string `yaml:"type"`
	MaxVocabCount int    `yaml:"max_vocab_count"`
	MinFrequency  int64  `yaml:"min_frequency"`
}

type guideYAML struct {
	MaxVocabCount int               `yaml:"max_vocab_count"`
	MinFrequency  int64             `yaml:"min_frequency"`
	Entries       []guideEntryYAML  `yaml:"entries"`
}

// LoadGuide reads and decodes a dataspec guide YAML file: an ordered
// list of regex-to-type rules consulted before automatic inference.
func LoadGuide(path string) (*dataspec.Guide, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engine.Wrap(engine.NotFound, err)
	}
	raw := &guideYAML{}
	if err := yaml.Unmarshal(data, raw); err != nil {
		return nil, engine.Wrap(engine.InvalidArgument, fmt.Errorf("parsing guide %s: %w", path, err))
	}

	guide := dataspec.NewGuide()
	if raw.MaxVocabCount > 0 {
		guide.MaxVocabCount = raw.MaxVocabCount
	}
	if raw.MinFrequency > 0 {
		guide.MinFrequency = raw.MinFrequency
	}
	for _, e := range raw.Entries {
		pattern, err := regexp.Compile(e.Pattern)
		if err != nil {
			return nil, engine.Wrap(engine.InvalidArgument, fmt.Errorf("guide %s: bad pattern %q: %w", path, e.Pattern, err))
		}
		columnType, err := columnTypeByName(e.Type)
		if err != nil {
			return nil, err
		}
		guide.Entries = append(guide.Entries, dataspec.GuideEntry{
			Pattern: pattern,
			Type:    columnType,
			Overrides: dataspec.ColumnOverrides{
				MaxVocabCount: e.MaxVocabCount,
				MinFrequency:  e.MinFrequency,
			},
		})
	}
	return guide, nil
}

func columnTypeByName(name string) (dataspec.ColumnType, error) {
	switch name {
	case "NUMERICAL":
		return dataspec.Numerical, nil
	case "CATEGORICAL":
		return dataspec.Categorical, nil
	case "CATEGORICAL_SET":
		return dataspec.CategoricalSet, nil
	case "HASH":
		return dataspec.Hash, nil
	case "BOOLEAN":
		return dataspec.Boolean, nil
	default:
		return dataspec.Unknown, engine.Newf(engine.InvalidArgument, "config: unknown column type %q", name)
	}
}
