// Package engine implements generic inference over a trained
// *forest.Model (per-loss post-processing and the handful of evaluation
// metrics a loss needs internally), plus the error-kind taxonomy every
// other package in this module wraps its failures into.
package engine

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Kind is the closed set of error categories every package-boundary
// failure in this module is classified into, so a CLI entry point can
// pick an exit code and a one-line message without string-matching.
type Kind int

const (
	Unknown Kind = iota
	InvalidArgument
	NotFound
	FailedPrecondition
	ResourceExhausted
	Internal
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case FailedPrecondition:
		return "failed_precondition"
	case ResourceExhausted:
		return "resource_exhausted"
	case Internal:
		return "internal"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }
func (e *kindError) Cause() error  { return e.err } // cockroachdb/errors convention

// Wrap attaches kind to err; a nil err stays nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// Newf builds a new error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, err: errors.Newf(format, args...)}
}

// KindOf returns Cancelled when err's chain contains context.Canceled or
// context.DeadlineExceeded; otherwise it walks err's Unwrap chain for
// the first attached Kind, defaulting to Internal for an unclassified
// non-nil error and Unknown for nil.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Cancelled
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		if ke, ok := e.(*kindError); ok {
			return ke.kind
		}
	}
	return Internal
}
