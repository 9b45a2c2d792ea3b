package engine

import (
	"encoding/gob"
	"bytes"
	"strconv"
	"strings"

	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/internal/cache"
)

// CachedPredictor wraps Predict with a byte cache keyed by the example's
// input-feature values, useful for predict/benchmark_inference workloads
// over datasets with many repeated rows (common for categorical-heavy
// feature tables).
type CachedPredictor struct {
	model         *forest.Model
	cache         cache.Cache
	inputFeatures []int
}

// NewCachedPredictor returns a CachedPredictor for model, caching on c.
func NewCachedPredictor(model *forest.Model, c cache.Cache) *CachedPredictor {
	return &CachedPredictor{model: model, cache: c, inputFeatures: model.Header.InputFeatures}
}

// Predict returns model's prediction for ex, consulting the cache first.
func (p *CachedPredictor) Predict(ex forest.Example) (*Prediction, error) {
	key := p.keyFor(ex)
	if raw, ok := p.cache.Get(key); ok {
		var pred Prediction
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&pred); err == nil {
			return &pred, nil
		}
	}
	pred, err := Predict(p.model, ex)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if gob.NewEncoder(&buf).Encode(pred) == nil {
		p.cache.Set(key, buf.Bytes())
	}
	return pred, nil
}

// keyFor builds a cache key from every input feature's raw value, so two
// rows that agree on every feature the model consults always collide.
func (p *CachedPredictor) keyFor(ex forest.Example) string {
	var b strings.Builder
	for _, col := range p.inputFeatures {
		if v, ok := ex.NumericalValue(col); ok {
			b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		} else if v, ok := ex.CategoricalValue(col); ok {
			b.WriteString(strconv.Itoa(int(v)))
		} else if vs, ok := ex.CategoricalSetValue(col); ok {
			for _, v := range vs {
				b.WriteString(strconv.Itoa(int(v)))
				b.WriteByte(',')
			}
		} else {
			b.WriteString("?")
		}
		b.WriteByte('|')
	}
	return b.String()
}
