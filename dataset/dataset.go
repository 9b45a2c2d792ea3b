// Package dataset materializes a dataspec.Dataspec into fixed-length
// columnar arrays and implements forest.Example row views over them.
package dataset

import (
	"math"

	"github.com/cockroachdb/errors"

	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/forest"
)

// MissingCategorical is the sentinel stored in a categorical column's
// int32 vector for a missing value: a negative index can never collide
// with a real dictionary index (dictionary indices start at the OOV
// index, 0).
const MissingCategorical int32 = -1

// Dataset is the fixed-length columnar store holding a loaded dataset.
// Every column vector has the same length N; a row identifier is a
// uint64 index into all of them.
type Dataset struct {
	Spec *dataspec.Dataspec
	N    int

	numerical      map[int][]float32
	categorical    map[int][]int32
	categoricalSet map[int][][]int32
}

// New allocates a Dataset of N rows for every column in spec.
func New(spec *dataspec.Dataspec, n int) *Dataset {
	d := &Dataset{
		Spec:           spec,
		N:              n,
		numerical:      map[int][]float32{},
		categorical:    map[int][]int32{},
		categoricalSet: map[int][][]int32{},
	}
	for _, c := range spec.Columns {
		switch c.Type {
		case dataspec.Numerical:
			v := make([]float32, n)
			for i := range v {
				v[i] = float32(math.NaN())
			}
			d.numerical[c.Index] = v
		case dataspec.Categorical, dataspec.Boolean:
			v := make([]int32, n)
			for i := range v {
				v[i] = MissingCategorical
			}
			d.categorical[c.Index] = v
		case dataspec.CategoricalSet:
			d.categoricalSet[c.Index] = make([][]int32, n)
		}
	}
	return d
}

// SetNumerical writes v into column col at row, following the
// quiet-NaN-for-missing encoding every numerical column uses.
func (d *Dataset) SetNumerical(col, row int, v float32) {
	d.numerical[col][row] = v
}

// SetCategorical writes idx into column col at row.
func (d *Dataset) SetCategorical(col, row int, idx int32) {
	d.categorical[col][row] = idx
}

// SetCategoricalSet writes a sorted index list into column col at row.
func (d *Dataset) SetCategoricalSet(col, row int, idxs []int32) {
	d.categoricalSet[col][row] = idxs
}

// NumericalColumn returns the raw vector backing a NUMERICAL column.
func (d *Dataset) NumericalColumn(col int) []float32 { return d.numerical[col] }

// CategoricalColumn returns the raw vector backing a CATEGORICAL/BOOLEAN
// column.
func (d *Dataset) CategoricalColumn(col int) []int32 { return d.categorical[col] }

// CategoricalSetColumn returns the raw vector backing a CATEGORICAL_SET
// column.
func (d *Dataset) CategoricalSetColumn(col int) [][]int32 { return d.categoricalSet[col] }

// Row returns a forest.Example view over row i of the dataset.
func (d *Dataset) Row(i int) forest.Example {
	return row{d: d, i: i}
}

// row implements forest.Example by indexing directly into the owning
// Dataset's column vectors; it is a value type so iterating all rows of
// a dataset allocates nothing beyond the slice lookups.
type row struct {
	d *Dataset
	i int
}

func (r row) NumericalValue(col int) (float32, bool) {
	v, ok := r.d.numerical[col]
	if !ok || r.i >= len(v) {
		return 0, false
	}
	x := v[r.i]
	if math.IsNaN(float64(x)) {
		return 0, false
	}
	return x, true
}

func (r row) CategoricalValue(col int) (int32, bool) {
	v, ok := r.d.categorical[col]
	if !ok || r.i >= len(v) {
		return 0, false
	}
	x := v[r.i]
	if x < 0 {
		return 0, false
	}
	return x, true
}

func (r row) CategoricalSetValue(col int) ([]int32, bool) {
	v, ok := r.d.categoricalSet[col]
	if !ok || r.i >= len(v) {
		return nil, false
	}
	if v[r.i] == nil {
		return nil, false
	}
	return v[r.i], true
}

// ErrRowCountMismatch is returned when shards loaded for one dataset
// disagree on column lengths.
var ErrRowCountMismatch = errors.New("dataset: shard row counts are inconsistent")
