package dataset

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/branchml/forest/dataspec"
)

// Shard is one independently-readable slice of a dataset's rows, e.g.
// one CSV file among several comma-separated or glob-expanded paths in a
// typed path.
type Shard interface {
	ColumnNames() []string
	Rows(ctx context.Context) (dataspec.RowIterator, error)
}

// ErrMissingColumn is returned when a shard's header does not name
// every column of the dataspec. A row with fewer fields than the header
// is not an error: its absent fields load as missing values.
var ErrMissingColumn = errors.New("dataset: row is missing a required column")

// Load reads every shard fully, decodes each row against spec, and
// merges the decoded blocks into one Dataset in submission order (shard
// index, then row index within the shard) rather than completion order,
// so that loading is deterministic regardless of how the goroutines
// below are scheduled.
func Load(ctx context.Context, spec *dataspec.Dataspec, shards []Shard, numWorkers int) (*Dataset, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	blocks := make([]*block, len(shards))
	errs := make([]error, len(shards))

	sem := make(chan struct{}, numWorkers)
	var wg sync.WaitGroup
	for i, shard := range shards {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, shard Shard) {
			defer wg.Done()
			defer func() { <-sem }()
			b, err := decodeShard(ctx, spec, shard)
			blocks[i] = b
			errs[i] = err
		}(i, shard)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	total := 0
	for _, b := range blocks {
		total += b.n
	}
	ds := New(spec, total)
	row := 0
	for _, b := range blocks {
		for r := 0; r < b.n; r++ {
			for _, c := range spec.Columns {
				switch c.Type {
				case dataspec.Numerical:
					ds.SetNumerical(c.Index, row, b.numerical[c.Index][r])
				case dataspec.Categorical, dataspec.Boolean:
					ds.SetCategorical(c.Index, row, b.categorical[c.Index][r])
				case dataspec.CategoricalSet:
					ds.SetCategoricalSet(c.Index, row, b.categoricalSet[c.Index][r])
				}
			}
			row++
		}
	}
	return ds, nil
}

// block is one shard's decoded rows, held in a per-shard arena before
// being merged into the final columnar arrays.
type block struct {
	n              int
	numerical      map[int][]float32
	categorical    map[int][]int32
	categoricalSet map[int][][]int32
}

func decodeShard(ctx context.Context, spec *dataspec.Dataspec, shard Shard) (*block, error) {
	names := shard.ColumnNames()
	colForName := make(map[string]*dataspec.Column, len(names))
	for _, c := range spec.Columns {
		colForName[c.Name] = c
	}
	positions := make([]*dataspec.Column, len(names))
	for i, name := range names {
		positions[i] = colForName[name]
	}
	present := make(map[int]bool, len(names))
	for _, c := range positions {
		if c != nil {
			present[c.Index] = true
		}
	}
	for _, c := range spec.Columns {
		if !present[c.Index] {
			return nil, errors.Wrapf(ErrMissingColumn, "column %q", c.Name)
		}
	}

	b := &block{
		numerical:      map[int][]float32{},
		categorical:    map[int][]int32{},
		categoricalSet: map[int][][]int32{},
	}
	it, err := shard.Rows(ctx)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for _, c := range spec.Columns {
			switch c.Type {
			case dataspec.Numerical:
				b.numerical[c.Index] = append(b.numerical[c.Index], float32(math.NaN()))
			case dataspec.Categorical, dataspec.Boolean:
				b.categorical[c.Index] = append(b.categorical[c.Index], MissingCategorical)
			case dataspec.CategoricalSet:
				b.categoricalSet[c.Index] = append(b.categoricalSet[c.Index], nil)
			}
		}
		for i, c := range positions {
			if c == nil {
				continue
			}
			if i >= len(raw) {
				continue
			}
			val := strings.TrimSpace(raw[i])
			if val == "" {
				continue
			}
			switch c.Type {
			case dataspec.Numerical:
				f, perr := strconv.ParseFloat(val, 32)
				if perr != nil {
					return nil, errors.Wrapf(perr, "dataset: parsing numerical column %s", c.Name)
				}
				b.numerical[c.Index][b.n] = float32(f)
			case dataspec.Categorical, dataspec.Boolean:
				idx, _ := c.Categorical.Dictionary.Index(val)
				b.categorical[c.Index][b.n] = idx
			case dataspec.CategoricalSet:
				toks := strings.Split(val, dataspec.CategoricalSetSeparator)
				idxs := make([]int32, 0, len(toks))
				for _, tok := range toks {
					tok = strings.TrimSpace(tok)
					if tok == "" {
						continue
					}
					idx, _ := c.Categorical.Dictionary.Index(tok)
					idxs = append(idxs, idx)
				}
				b.categoricalSet[c.Index][b.n] = idxs
			}
		}
		b.n++
	}
	return b, nil
}
