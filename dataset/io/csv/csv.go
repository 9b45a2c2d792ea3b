// Package csv implements the "csv" dataset format handler, read via
// dataspec.Source/dataset.Shard so it can both drive dataspec inference
// and fill a columnar dataset. It streams encoding/csv rows keyed by a
// header row of feature names.
package csv

import (
	"context"
	"encoding/csv"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/branchml/forest/dataspec"
)

// Shard is a single CSV file, read lazily, exposed as both a
// dataspec.Source (for inference) and a dataset.Shard (for loading).
type Shard struct {
	path string
}

// NewShard returns a Shard backed by the file at path.
func NewShard(path string) *Shard {
	return &Shard{path: path}
}

// ColumnNames opens the file just far enough to read its header row.
func (s *Shard) ColumnNames() []string {
	f, err := os.Open(s.path)
	if err != nil {
		return nil
	}
	defer f.Close()
	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil
	}
	return header
}

// Rows opens the file and returns an iterator over its body rows (the
// header is consumed and not replayed).
func (s *Shard) Rows(ctx context.Context) (dataspec.RowIterator, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrapf(err, "csv: opening %s", s.path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "csv: reading header of %s", s.path)
	}
	return &rowIterator{f: f, r: r}, nil
}

type rowIterator struct {
	f *os.File
	r *csv.Reader
}

func (it *rowIterator) Next(ctx context.Context) ([]string, error) {
	row, err := it.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errors.Wrap(err, "csv: reading row")
	}
	return row, nil
}

func (it *rowIterator) Close() error {
	return it.f.Close()
}

// WriteRows writes a header row of colNames followed by each row of
// rows, used by the predict/convert_dataset CLI entry points to emit
// CSV output.
func WriteRows(w io.Writer, colNames []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(colNames); err != nil {
		return errors.Wrap(err, "csv: writing header")
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "csv: writing row")
		}
	}
	cw.Flush()
	return cw.Error()
}
