package dataset

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// TypedPath is a parsed "<format>:<path>" reference, supporting an "@N"
// sharding suffix, "*" globs, and comma-separated concatenation of
// several such references.
type TypedPath struct {
	Format string
	Paths  []string // fully expanded, concrete file paths (or DSNs for non-file formats)
	Shards int       // 0 means "no explicit @N suffix"
}

// ParseTypedPath parses one comma-separated typed path expression into
// one TypedPath per comma-separated part, so a single path with no
// comma returns a slice of length 1.
func ParseTypedPath(expr string) ([]*TypedPath, error) {
	var result []*TypedPath
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tp, err := parseOneTypedPath(part)
		if err != nil {
			return nil, err
		}
		result = append(result, tp)
	}
	if len(result) == 0 {
		return nil, errors.New("dataset: empty typed path expression")
	}
	return result, nil
}

func parseOneTypedPath(part string) (*TypedPath, error) {
	idx := strings.Index(part, ":")
	if idx < 0 {
		return nil, errors.Newf("dataset: %q is not a typed path (missing '<format>:' prefix)", part)
	}
	format := part[:idx]
	path := part[idx+1:]
	shards := 0
	if at := strings.LastIndex(path, "@"); at >= 0 {
		if n, err := strconv.Atoi(path[at+1:]); err == nil {
			shards = n
			path = path[:at]
		}
	}
	tp := &TypedPath{Format: format, Shards: shards}
	if isGlobLike(path) && isFileFormat(format) {
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, errors.Wrapf(err, "dataset: expanding glob %q", path)
		}
		tp.Paths = matches
	} else {
		tp.Paths = []string{path}
	}
	return tp, nil
}

func isGlobLike(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// isFileFormat reports whether a format's path should be treated as a
// filesystem glob rather than an opaque connection string (a postgres or
// mongo DSN, for instance, is never glob-expanded).
func isFileFormat(format string) bool {
	switch format {
	case "csv":
		return true
	default:
		return false
	}
}
