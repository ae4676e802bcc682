package binlogreader

import (
	"path/filepath"
	"regexp"
	"sort"

	"github.com/pkg/errors"
)

// multiFileWalker resolves the next file to open after a ROTATE_EVENT: the
// file the event names, looked up in the directory of the first file. It
// does not list the directory for this, and a file that ends without a
// ROTATE_EVENT ends the stream. listSeries separately returns the
// numerically-suffixed files of the series.
//
// Grounded on the teacher's dir_reader.go numeric-suffix convention; this
// module does not read a binlog.index file.
type multiFileWalker struct {
	dir    string
	prefix string
}

var binlogSuffix = regexp.MustCompile(`^(.+)\.(\d{6,})$`)

func newMultiFileWalker(firstFile string) (*multiFileWalker, error) {
	dir := filepath.Dir(firstFile)
	base := filepath.Base(firstFile)
	m := binlogSuffix.FindStringSubmatch(base)
	if m == nil {
		return nil, errors.Errorf("binlogreader: %q does not look like a numbered binlog file", base)
	}
	return &multiFileWalker{dir: dir, prefix: m[1]}, nil
}

// next resolves the file a ROTATE_EVENT's NextLogName names, joined
// against the directory the walker was opened in (the server always writes
// a bare filename, never a path, into ROTATE_EVENT).
func (w *multiFileWalker) next(nextLogName string) string {
	return filepath.Join(w.dir, filepath.Base(nextLogName))
}

// listSeries returns every file in the directory matching this walker's
// numeric-suffix series, in ascending order, for callers that want to walk
// a whole directory without relying on ROTATE_EVENT payloads at all (e.g.
// recovering from a truncated final file).
func (w *multiFileWalker) listSeries(glob func(pattern string) ([]string, error)) ([]string, error) {
	matches, err := glob(filepath.Join(w.dir, w.prefix+".*"))
	if err != nil {
		return nil, errors.Wrap(err, "binlogreader: listing binlog series")
	}
	var series []string
	for _, m := range matches {
		if binlogSuffix.MatchString(filepath.Base(m)) {
			series = append(series, m)
		}
	}
	sort.Strings(series)
	return series, nil
}
