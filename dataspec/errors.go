package dataspec

import "github.com/cockroachdb/errors"

// ErrUnknownColumn is returned when a guide or a caller refers to a column
// name that does not exist in the dataspec.
var ErrUnknownColumn = errors.New("dataspec: unknown column")

// ErrEmptyDataset is returned when inference is attempted over a source with
// zero rows: there is nothing from which to infer a type.
var ErrEmptyDataset = errors.New("dataspec: cannot infer types from an empty dataset")
