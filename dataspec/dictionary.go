package dataspec

import (
	"encoding/json"
	"sort"
)

// OOVIndex is the reserved dictionary index for out-of-vocabulary or
// pruned tokens. It is always present and always has index 0.
const OOVIndex int32 = 0

// oovToken is the string recorded for the OOV slot; it is never looked up
// by value, only ever referenced by index.
const oovToken = "<OOV>"

// Dictionary maps between string tokens and a dense int32 index space with
// a reserved OOV slot at index 0. Once a Dictionary is attached to a
// Column of a frozen Dataspec it must not be mutated.
type Dictionary struct {
	itemToIndex map[string]int32
	indexToItem []string
	frequency   []int64
}

// NewDictionary returns a dictionary containing only the reserved OOV
// entry at index 0 with frequency 0.
func NewDictionary() *Dictionary {
	return &Dictionary{
		itemToIndex: map[string]int32{},
		indexToItem: []string{oovToken},
		frequency:   []int64{0},
	}
}

// Size returns the number of entries in the dictionary, including OOV.
// The invariant number_of_unique_values >= 1 holds by construction: the
// OOV slot always exists.
func (d *Dictionary) Size() int {
	return len(d.indexToItem)
}

// Add records one occurrence of token, creating a new dictionary entry
// for it if this is the first occurrence, and returns its index.
func (d *Dictionary) Add(token string) int32 {
	if idx, ok := d.itemToIndex[token]; ok {
		d.frequency[idx]++
		return idx
	}
	idx := int32(len(d.indexToItem))
	d.itemToIndex[token] = idx
	d.indexToItem = append(d.indexToItem, token)
	d.frequency = append(d.frequency, 1)
	return idx
}

// Index looks up token without recording an occurrence. It returns
// (OOVIndex, false) when the token is not in the dictionary.
func (d *Dictionary) Index(token string) (int32, bool) {
	if idx, ok := d.itemToIndex[token]; ok {
		return idx, true
	}
	return OOVIndex, false
}

// Item returns the token stored at idx, or the empty string for the OOV
// slot or an out-of-range index.
func (d *Dictionary) Item(idx int32) string {
	if idx <= 0 || int(idx) >= len(d.indexToItem) {
		return ""
	}
	return d.indexToItem[idx]
}

// Frequency returns the number of occurrences recorded for idx.
func (d *Dictionary) Frequency(idx int32) int64 {
	if idx < 0 || int(idx) >= len(d.frequency) {
		return 0
	}
	return d.frequency[idx]
}

// Prune collapses entries with frequency below minFrequency, and all but
// the maxVocabCount most frequent remaining entries, into the OOV slot.
// maxVocabCount <= 0 disables the vocabulary-size cap.
func (d *Dictionary) Prune(minFrequency int64, maxVocabCount int) {
	type entry struct {
		token string
		freq  int64
	}
	entries := make([]entry, 0, len(d.indexToItem)-1)
	for idx := 1; idx < len(d.indexToItem); idx++ {
		entries = append(entries, entry{d.indexToItem[idx], d.frequency[idx]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].freq > entries[j].freq
	})
	kept := entries
	if minFrequency > 1 {
		cut := len(kept)
		for i, e := range kept {
			if e.freq < minFrequency {
				cut = i
				break
			}
		}
		kept = kept[:cut]
	}
	if maxVocabCount > 0 && len(kept) > maxVocabCount {
		kept = kept[:maxVocabCount]
	}
	rebuilt := NewDictionary()
	var oovFreq int64
	keptSet := make(map[string]bool, len(kept))
	for _, e := range kept {
		keptSet[e.token] = true
	}
	for idx := 1; idx < len(d.indexToItem); idx++ {
		tok := d.indexToItem[idx]
		freq := d.frequency[idx]
		if keptSet[tok] {
			newIdx := rebuilt.Add(tok)
			rebuilt.frequency[newIdx] = freq
		} else {
			oovFreq += freq
		}
	}
	rebuilt.frequency[OOVIndex] = oovFreq
	*d = *rebuilt
}

// dictionaryDTO is the on-disk JSON shape for a Dictionary: its unexported
// fields are rebuilt from this on decode.
type dictionaryDTO struct {
	Items     []string `json:"items"`
	Frequency []int64  `json:"frequency"`
}

// MarshalJSON implements json.Marshaler so header.json can embed
// dictionaries directly, per the header/data_spec.json layout serialize
// writes.
func (d *Dictionary) MarshalJSON() ([]byte, error) {
	return json.Marshal(dictionaryDTO{Items: d.indexToItem, Frequency: d.frequency})
}

// UnmarshalJSON implements json.Unmarshaler, rebuilding the itemToIndex
// lookup map from the decoded token list.
func (d *Dictionary) UnmarshalJSON(data []byte) error {
	var dto dictionaryDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	d.indexToItem = dto.Items
	d.frequency = dto.Frequency
	d.itemToIndex = make(map[string]int32, len(dto.Items))
	for i, tok := range dto.Items {
		if i == 0 {
			continue // the OOV slot is never looked up by value
		}
		d.itemToIndex[tok] = int32(i)
	}
	return nil
}
