package dataspec

import "regexp"

// ColumnOverrides carries the type-inference knobs a guide entry may pin
// for the columns it matches.
type ColumnOverrides struct {
	MaxVocabCount int
	MinFrequency  int64
}

// GuideEntry is one (regex, type, overrides) rule of a Guide. The first
// entry whose Pattern matches a column's name wins.
type GuideEntry struct {
	Pattern   *regexp.Regexp
	Type      ColumnType
	Overrides ColumnOverrides
}

// Guide is the ordered list of GuideEntry rules consulted during
// inference before falling back to automatic type detection.
type Guide struct {
	Entries       []GuideEntry
	MaxVocabCount int   // default applied when no entry overrides it
	MinFrequency  int64 // default applied when no entry overrides it
}

// NewGuide returns a Guide with the conventional defaults
// (MaxVocabCount=10000, MinFrequency=5) used throughout the rest of this
// package when a caller does not supply their own.
func NewGuide() *Guide {
	return &Guide{MaxVocabCount: 10000, MinFrequency: 5}
}

// Match returns the first entry whose pattern matches name, or nil if
// none match.
func (g *Guide) Match(name string) *GuideEntry {
	for i := range g.Entries {
		if g.Entries[i].Pattern.MatchString(name) {
			return &g.Entries[i]
		}
	}
	return nil
}

// vocabLimitsFor resolves the effective MaxVocabCount/MinFrequency for a
// column, preferring a matching guide entry's overrides over the Guide's
// defaults.
func (g *Guide) vocabLimitsFor(name string) (maxVocab int, minFreq int64) {
	maxVocab, minFreq = g.MaxVocabCount, g.MinFrequency
	if e := g.Match(name); e != nil {
		if e.Overrides.MaxVocabCount > 0 {
			maxVocab = e.Overrides.MaxVocabCount
		}
		if e.Overrides.MinFrequency > 0 {
			minFreq = e.Overrides.MinFrequency
		}
	}
	return
}
