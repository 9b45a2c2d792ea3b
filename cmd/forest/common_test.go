package main

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
)

type fakeShard struct {
	cols []string
	rows []string
}

func (f *fakeShard) ColumnNames() []string { return f.cols }

func (f *fakeShard) Rows(ctx context.Context) (dataspec.RowIterator, error) {
	return &fakeRowIterator{rows: f.rows}, nil
}

type fakeRowIterator struct {
	rows []string
	i    int
}

func (it *fakeRowIterator) Next(ctx context.Context) ([]string, error) {
	if it.i >= len(it.rows) {
		return nil, io.EOF
	}
	row := []string{it.rows[it.i]}
	it.i++
	return row, nil
}

func (it *fakeRowIterator) Close() error { return nil }

func TestMultiSourceConcatenatesShardsInOrder(t *testing.T) {
	m := &multiSource{shards: []dataset.Shard{
		&fakeShard{cols: []string{"x"}, rows: []string{"1", "2"}},
		&fakeShard{cols: []string{"x"}, rows: []string{"3"}},
	}}
	it, err := m.Rows(context.Background())
	require.NoError(t, err)

	var got []string
	for {
		row, err := it.Next(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, row[0])
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestColumnIndexByNameResolvesOrErrors(t *testing.T) {
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "x", Type: dataspec.Numerical})
	spec.AddColumn(&dataspec.Column{Name: "y", Type: dataspec.Categorical})

	idx, err := columnIndexByName(spec, "y")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = columnIndexByName(spec, "")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	_, err = columnIndexByName(spec, "missing")
	assert.Error(t, err)
}

func TestInputFeatureColumnsExcludesNamedColumns(t *testing.T) {
	spec := dataspec.New()
	spec.AddColumn(&dataspec.Column{Name: "label"})
	spec.AddColumn(&dataspec.Column{Name: "x1"})
	spec.AddColumn(&dataspec.Column{Name: "x2"})
	spec.AddColumn(&dataspec.Column{Name: "weight"})

	cols := inputFeatureColumns(spec, 0, -1, 3)
	assert.Equal(t, []int{1, 2}, cols)
}
