// Package mongo implements the "mongo" dataset format handler on top of
// gopkg.in/mgo.v2: it opens a session against a "samples" collection and
// streams its documents, projecting each document into the generic
// string-field row shape every other format produces rather than
// keeping a live *mgo.Session-backed dataset.Dataset.
package mongo

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/branchml/forest/dataspec"
)

const defaultCollection = "samples"

// Shard streams one MongoDB collection's documents.
type Shard struct {
	dialURL    string
	collection string
	columns    []string
}

// NewShard returns a Shard that reads collection from the database
// addressed by dialURL, projecting only the given columns (in order)
// into each row. If columns is empty, ColumnNames returns nil and the
// caller (typically dataspec.Infer) must supply column names itself.
func NewShard(dialURL, collection string, columns []string) *Shard {
	if collection == "" {
		collection = defaultCollection
	}
	return &Shard{dialURL: dialURL, collection: collection, columns: columns}
}

// Open parses a typed-path path component of the form
// "<dialURL>@collection=<name>&columns=<c1,c2,...>" into a Shard.
func Open(path string) (*Shard, error) {
	dialURL, rest, ok := strings.Cut(path, "@collection=")
	if !ok {
		return nil, errors.Newf("mongo: path %q is missing the required \"@collection=<name>\" suffix", path)
	}
	collection := rest
	var columns []string
	if name, colsExpr, ok := strings.Cut(rest, "&columns="); ok {
		collection = name
		columns = strings.Split(colsExpr, ",")
	}
	return NewShard(dialURL, collection, columns), nil
}

func (s *Shard) dial() (*mgo.Session, error) {
	session, err := mgo.Dial(s.dialURL)
	if err != nil {
		return nil, errors.Wrapf(err, "mongo: dialing %s", s.dialURL)
	}
	return session, nil
}

// ColumnNames returns the columns this Shard was configured with. Unlike
// the file-based formats it cannot discover a header row, since
// documents in a collection need not share a uniform key set; dataspec
// inference over a mongo source therefore requires an explicit column
// list (typically taken from an existing dataspec or guide).
func (s *Shard) ColumnNames() []string {
	return s.columns
}

func (s *Shard) Rows(ctx context.Context) (dataspec.RowIterator, error) {
	if len(s.columns) == 0 {
		return nil, errors.New("mongo: shard has no configured columns to project")
	}
	session, err := s.dial()
	if err != nil {
		return nil, err
	}
	coll := session.DB("").C(s.collection)
	iter := coll.Find(nil).Iter()
	return &rowIterator{session: session, iter: iter, columns: s.columns}, nil
}

type rowIterator struct {
	session *mgo.Session
	iter    *mgo.Iter
	columns []string
}

func (it *rowIterator) Next(ctx context.Context) ([]string, error) {
	var doc bson.M
	if !it.iter.Next(&doc) {
		if err := it.iter.Err(); err != nil {
			return nil, errors.Wrap(err, "mongo: iterating collection")
		}
		return nil, io.EOF
	}
	row := make([]string, len(it.columns))
	for i, col := range it.columns {
		if v, ok := doc[col]; ok && v != nil {
			row[i] = fmt.Sprintf("%v", v)
		}
	}
	return row, nil
}

func (it *rowIterator) Close() error {
	err := it.iter.Close()
	it.session.Close()
	return err
}
