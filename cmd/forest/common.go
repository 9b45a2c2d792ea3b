package main

import (
	"context"
	"io"

	"github.com/branchml/forest/dataset"
	"github.com/branchml/forest/dataspec"
	"github.com/branchml/forest/engine"
	"github.com/branchml/forest/forest"
	"github.com/branchml/forest/registry"
)

// openTypedPath resolves a "<format>:<path>[,<format>:<path>...]"
// expression into the concrete shards it names, dispatching each format
// prefix through the registry rather than switching on a hardcoded list
// of formats here.
func openTypedPath(expr string) ([]dataset.Shard, error) {
	typedPaths, err := dataset.ParseTypedPath(expr)
	if err != nil {
		return nil, engine.Wrap(engine.InvalidArgument, err)
	}
	var shards []dataset.Shard
	for _, tp := range typedPaths {
		opener, err := registry.DatasetFormat(tp.Format)
		if err != nil {
			return nil, engine.Wrap(engine.InvalidArgument, err)
		}
		for _, p := range tp.Paths {
			shard, err := opener(p)
			if err != nil {
				return nil, engine.Wrap(engine.Internal, err)
			}
			shards = append(shards, shard)
		}
	}
	return shards, nil
}

// multiSource adapts several dataset.Shard instances sharing the same
// columns into a single dataspec.Source, for dataspec inference over a
// typed path with more than one matched file.
type multiSource struct {
	shards []dataset.Shard
}

func (m *multiSource) ColumnNames() []string {
	if len(m.shards) == 0 {
		return nil
	}
	return m.shards[0].ColumnNames()
}

func (m *multiSource) Rows(ctx context.Context) (dataspec.RowIterator, error) {
	return &multiRowIterator{ctx: ctx, shards: m.shards}, nil
}

type multiRowIterator struct {
	ctx     context.Context
	shards  []dataset.Shard
	shardAt int
	cur     dataspec.RowIterator
}

func (m *multiRowIterator) Next(ctx context.Context) ([]string, error) {
	for {
		if m.cur == nil {
			if m.shardAt >= len(m.shards) {
				return nil, io.EOF
			}
			it, err := m.shards[m.shardAt].Rows(ctx)
			if err != nil {
				return nil, err
			}
			m.cur = it
		}
		row, err := m.cur.Next(ctx)
		if err == nil {
			return row, nil
		}
		m.cur.Close()
		m.cur = nil
		m.shardAt++
		if err != io.EOF {
			return nil, err
		}
	}
}

func (m *multiRowIterator) Close() error {
	if m.cur != nil {
		return m.cur.Close()
	}
	return nil
}

// columnIndexByName looks up a column's stable index by name, used to
// resolve the label/group/weights column names a training or deployment
// config names symbolically. An empty name resolves to -1 (no such
// column configured).
func columnIndexByName(spec *dataspec.Dataspec, name string) (int, error) {
	if name == "" {
		return -1, nil
	}
	c := spec.ColumnByName(name)
	if c == nil {
		return 0, engine.Newf(engine.InvalidArgument, "column %q not found in dataspec", name)
	}
	return c.Index, nil
}

// inputFeatureColumns returns every column index except the ones the
// model consumes as supervision (label, group, weights), in dataspec
// order: every other column is a candidate feature.
func inputFeatureColumns(spec *dataspec.Dataspec, exclude ...int) []int {
	excluded := map[int]bool{}
	for _, e := range exclude {
		if e >= 0 {
			excluded[e] = true
		}
	}
	var cols []int
	for _, c := range spec.Columns {
		if !excluded[c.Index] {
			cols = append(cols, c.Index)
		}
	}
	return cols
}

// rowsAndExamples materializes every row of ds as a forest.Example,
// for the evaluate subcommand, which runs inference over a whole loaded
// dataset rather than one ad-hoc sample.
func rowsAndExamples(ds *dataset.Dataset) []forest.Example {
	rows := make([]forest.Example, ds.N)
	for i := 0; i < ds.N; i++ {
		rows[i] = ds.Row(i)
	}
	return rows
}
