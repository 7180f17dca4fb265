package dataio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

// timeLayouts are tried in order when parsing timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// timestamp is a time column. It accepts the layouts Django dumps
// produce and is written as RFC 3339 in UTC. Empty cells are the zero time.
type timestamp time.Time

func (t *timestamp) UnmarshalCSV(s string) error {
	if s == "" {
		*t = timestamp{}
		return nil
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			*t = timestamp(ts.UTC())
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t timestamp) MarshalCSV() (string, error) {
	ts := time.Time(t)
	if ts.IsZero() {
		return "", nil
	}
	return ts.UTC().Format(time.RFC3339Nano), nil
}

// writeRows writes rows with a header taken from the csv struct tags.
func writeRows[R any](w io.Writer, rows []R) error {
	return gocsv.Marshal(rows, w)
}

// readRows decodes r into row structs. Rows whose cells fail to convert are
// reported in bad, keyed by row index, and must not be used.
func readRows[R any](r io.Reader) (rows []R, bad map[int]error, err error) {
	bad = map[int]error{}
	onError := func(perr *csv.ParseError) bool {
		i := perr.Line - 2
		if _, seen := bad[i]; !seen {
			bad[i] = fmt.Errorf("column %d: %w", perr.Column, perr.Err)
		}
		return true
	}
	err = gocsv.UnmarshalWithErrorHandler(skipBOM(r), onError, &rows)
	if errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return nil, bad, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, bad, nil
}

// skipBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// put in front of the header.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(3); err == nil && bytes.Equal(head, []byte("\xef\xbb\xbf")) {
		_, _ = br.Discard(3)
	}
	return br
}
