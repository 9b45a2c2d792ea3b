package dataspec

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"
)

// Source is the minimal surface dataspec inference needs from a raw
// tabular source: its column names, and a way to stream rows of strings
// more than once (inference makes a type pass and a statistics pass).
type Source interface {
	ColumnNames() []string
	Rows(ctx context.Context) (RowIterator, error)
}

// RowIterator yields successive rows of a Source. Next returns io.EOF
// once exhausted.
type RowIterator interface {
	Next(ctx context.Context) ([]string, error)
	Close() error
}

// CategoricalSetSeparator is the token used to split a single field into
// multiple categorical-set values.
const CategoricalSetSeparator = ";"

// Infer streams src once to determine each column's semantic type
// (consulting guide first), then streams it again to fill in
// dictionaries and numerical statistics. It returns ErrEmptyDataset if
// src has zero rows.
func Infer(ctx context.Context, src Source, guide *Guide) (*Dataspec, error) {
	if guide == nil {
		guide = NewGuide()
	}
	names := src.ColumnNames()
	spec := New()
	cols := make([]*Column, len(names))
	for i, name := range names {
		c := &Column{Name: name}
		cols[i] = c
		spec.AddColumn(c)
	}

	typeVotes := make([]typeVote, len(names))
	rowCount := 0
	if err := streamRows(ctx, src, func(row []string) error {
		rowCount++
		for i, raw := range row {
			if i >= len(cols) {
				continue
			}
			typeVotes[i].observe(raw)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if rowCount == 0 {
		return nil, ErrEmptyDataset
	}

	for i, c := range cols {
		if e := guide.Match(c.Name); e != nil {
			c.Type = e.Type
			c.IsManualType = true
			continue
		}
		c.Type = typeVotes[i].resolve()
	}

	accum := make([]*Accumulator, len(cols))
	dicts := make([]*Dictionary, len(cols))
	for i, c := range cols {
		switch c.Type {
		case Numerical:
			accum[i] = NewAccumulator()
		case Categorical, CategoricalSet:
			dicts[i] = NewDictionary()
		}
	}

	if err := streamRows(ctx, src, func(row []string) error {
		for i, c := range cols {
			if i >= len(row) {
				c.NumMissing++
				continue
			}
			raw := strings.TrimSpace(row[i])
			if raw == "" {
				c.NumMissing++
				continue
			}
			switch c.Type {
			case Numerical, Boolean:
				v, err := parseNumeric(raw)
				if err != nil {
					c.NumMissing++
					continue
				}
				if c.Type == Numerical {
					accum[i].Add(v)
				}
			case Categorical:
				dicts[i].Add(raw)
			case CategoricalSet:
				for _, tok := range strings.Split(raw, CategoricalSetSeparator) {
					tok = strings.TrimSpace(tok)
					if tok != "" {
						dicts[i].Add(tok)
					}
				}
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	for i, c := range cols {
		maxVocab, minFreq := guide.vocabLimitsFor(c.Name)
		switch c.Type {
		case Numerical:
			a := accum[i]
			c.Numerical = &NumericalSpec{Mean: a.Mean(), StdDev: a.StdDev(), Min: a.Min(), Max: a.Max()}
		case Categorical, CategoricalSet:
			d := dicts[i]
			d.Prune(minFreq, maxVocab)
			c.Categorical = &CategoricalSpec{Dictionary: d}
		}
	}

	spec.Freeze()
	return spec, nil
}

func streamRows(ctx context.Context, src Source, f func(row []string) error) error {
	it, err := src.Rows(ctx)
	if err != nil {
		return err
	}
	defer it.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		row, err := it.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := f(row); err != nil {
			return err
		}
	}
}

func parseNumeric(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

// typeVote accumulates evidence about a single column's candidate type
// across the first inference pass.
type typeVote struct {
	total       int
	numeric     int
	boolean     int
	tokenized   int
	distinct    map[string]bool
	distinctSet map[string]bool
}

func (v *typeVote) observe(raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	v.total++
	if v.distinct == nil {
		v.distinct = map[string]bool{}
		v.distinctSet = map[string]bool{}
	}
	v.distinct[raw] = true
	if f, err := parseNumeric(raw); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		v.numeric++
	}
	switch strings.ToLower(raw) {
	case "0", "1", "true", "false":
		v.boolean++
	}
	if strings.Contains(raw, CategoricalSetSeparator) {
		v.tokenized++
		for _, tok := range strings.Split(raw, CategoricalSetSeparator) {
			tok = strings.TrimSpace(tok)
			if tok != "" {
				v.distinctSet[tok] = true
			}
		}
	}
}

// resolve picks a semantic type from the votes gathered for one column:
// BOOLEAN wins over NUMERICAL when every non-missing value is in
// {0,1,true,false}; NUMERICAL requires every value to parse as a finite
// real; CATEGORICAL_SET requires every value to be multi-token;
// otherwise CATEGORICAL.
func (v *typeVote) resolve() ColumnType {
	if v.total == 0 {
		return Categorical
	}
	if v.boolean == v.total {
		return Boolean
	}
	if v.numeric == v.total {
		return Numerical
	}
	if v.tokenized == v.total && v.tokenized > 0 {
		return CategoricalSet
	}
	return Categorical
}
