// Package delimited reads multi-character-delimited text rows, such as the
// "||"-joined record lines produced by the file writer.
//
// Rows are pulled one at a time so memory stays bounded by the batch the
// caller asks for. Blank lines are skipped. Unlike the CSV readers elsewhere,
// a malformed row is fatal: the first bad row stops the read.
package delimited

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"recordpipe/internal/record"
)

// ErrInvalidUTF8 is wrapped by ParseError for rows that are not UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// ParseError reports the 1-based physical line number of a bad row.
type ParseError struct {
	Line int64
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// Reader splits lines on Delimiter and checks the field count.
type Reader struct {
	br     *bufio.Reader
	delim  string
	fields int
	line   int64
}

// NewReader returns a Reader expecting fields columns per row. A single
// trailing empty field is tolerated and dropped.
func NewReader(r io.Reader, delim string, fields int) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 1<<20), delim: delim, fields: fields}
}

// Line returns the number of physical lines consumed so far.
func (r *Reader) Line() int64 { return r.line }

// Read returns the next non-blank row, or io.EOF when the input is drained.
func (r *Reader) Read() ([]string, error) {
	for {
		raw, err := r.br.ReadString('\n')
		if len(raw) == 0 && err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("delimited: read: %w", err)
		}
		r.line++
		line := trimEOL(raw)
		if line == "" {
			if err == io.EOF {
				return nil, io.EOF
			}
			continue
		}
		if !utf8.ValidString(line) {
			return nil, &ParseError{Line: r.line, Err: ErrInvalidUTF8}
		}
		fields, ferr := record.SplitFields(line, r.delim, r.fields)
		if ferr != nil {
			return nil, &ParseError{Line: r.line, Err: ferr}
		}
		return fields, nil
	}
}

// ReadBatch appends up to n rows to dst[:0] as []any values, the shape bulk
// loaders take. It returns the batch and io.EOF once the input is drained;
// the final batch may be non-empty alongside io.EOF.
func (r *Reader) ReadBatch(dst [][]any, n int) ([][]any, error) {
	dst = dst[:0]
	for len(dst) < n {
		fields, err := r.Read()
		if err != nil {
			return dst, err
		}
		row := make([]any, len(fields))
		for i, f := range fields {
			row[i] = f
		}
		dst = append(dst, row)
	}
	return dst, nil
}

func trimEOL(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
