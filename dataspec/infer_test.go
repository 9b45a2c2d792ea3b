package dataspec_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/dataspec"
)

type sliceSource struct {
	names []string
	rows  [][]string
}

type sliceIterator struct {
	rows [][]string
	pos  int
}

func (s *sliceSource) ColumnNames() []string { return s.names }

func (s *sliceSource) Rows(ctx context.Context) (dataspec.RowIterator, error) {
	return &sliceIterator{rows: s.rows}, nil
}

func (it *sliceIterator) Next(ctx context.Context) ([]string, error) {
	if it.pos >= len(it.rows) {
		return nil, io.EOF
	}
	row := it.rows[it.pos]
	it.pos++
	return row, nil
}

func (it *sliceIterator) Close() error { return nil }

func TestInferNumericalAndCategorical(t *testing.T) {
	src := &sliceSource{
		names: []string{"x", "y"},
		rows: [][]string{
			{"0.0", "a"},
			{"1.0", "a"},
			{"2.0", "b"},
			{"3.0", "b"},
		},
	}
	spec, err := dataspec.Infer(context.Background(), src, nil)
	require.NoError(t, err)
	require.Len(t, spec.Columns, 2)

	x := spec.ColumnByName("x")
	require.NotNil(t, x)
	assert.Equal(t, dataspec.Numerical, x.Type)
	assert.InDelta(t, 1.5, x.Numerical.Mean, 1e-9)
	assert.InDelta(t, 0.0, x.Numerical.Min, 1e-9)
	assert.InDelta(t, 3.0, x.Numerical.Max, 1e-9)

	y := spec.ColumnByName("y")
	require.NotNil(t, y)
	assert.Equal(t, dataspec.Categorical, y.Type)
	assert.Equal(t, 3, y.NumUniqueValues()) // OOV + a + b

	assert.True(t, spec.Frozen())
}

func TestInferEmptyDatasetErrors(t *testing.T) {
	src := &sliceSource{names: []string{"x"}, rows: nil}
	_, err := dataspec.Infer(context.Background(), src, nil)
	assert.ErrorIs(t, err, dataspec.ErrEmptyDataset)
}

func TestDictionaryPruneKeepsOOV(t *testing.T) {
	d := dataspec.NewDictionary()
	for i := 0; i < 10; i++ {
		d.Add("common")
	}
	d.Add("rare")
	d.Prune(2, 0)
	assert.Equal(t, 2, d.Size()) // OOV + "common"
	idx, ok := d.Index("rare")
	assert.False(t, ok)
	assert.Equal(t, dataspec.OOVIndex, idx)
	assert.EqualValues(t, 1, d.Frequency(dataspec.OOVIndex))
}
