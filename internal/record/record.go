// Package record defines the synthetic five-field record used throughout the
// pipeline, its line serialization, and a random generator for it.
//
// A serialized record looks like:
//
//	2023-04-17||qWeRtYuIoP||АбВгДеЖзИй||48213077||13.1234567||
//
// The five fields are joined by Delimiter and the line ends with one more
// Delimiter (a trailing empty field).
package record

import (
	"fmt"
	"strings"
)

// Delimiter is the field separator used in generated files and the merged
// artifact.
const Delimiter = "||"

// NumFields is the number of semantic fields in a Record.
const NumFields = 5

// Columns lists the destination table columns in field order.
var Columns = []string{"date", "lat_let", "rus_let", "int_n", "float_n"}

// Record is one synthetic data unit. All fields are kept as strings at rest.
type Record struct {
	Date     string // YYYY-MM-DD
	Latin    string // 10 chars from a-zA-Z
	Cyrillic string // 10 chars from U+0410..U+044F
	Int      string // decimal integer in [1, 100000000]
	Float    string // decimal in [1.0, 20.0], at most 10 chars
}

// Fields returns the record fields in column order.
func (r Record) Fields() []string {
	return []string{r.Date, r.Latin, r.Cyrillic, r.Int, r.Float}
}

// AppendTo appends the serialized record (without a newline) to b. Every field,
// including the last one, is followed by delim.
func (r Record) AppendTo(b []byte, delim string) []byte {
	for _, f := range r.Fields() {
		b = append(b, f...)
		b = append(b, delim...)
	}
	return b
}

// String returns the record serialized with Delimiter, without a newline.
func (r Record) String() string {
	return string(r.AppendTo(make([]byte, 0, 80), Delimiter))
}

// FieldCountError reports a line that does not split into NumFields fields.
type FieldCountError struct {
	Got  int
	Want int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("incorrect number of fields: expected %d, got %d", e.Want, e.Got)
}

// SplitFields drops one trailing delim, the empty field serialized records
// carry, and splits the rest on delim. want is the required field count; a
// mismatch yields a *FieldCountError. Line terminators must already be
// removed.
func SplitFields(line, delim string, want int) ([]string, error) {
	parts := strings.Split(strings.TrimSuffix(line, delim), delim)
	if len(parts) != want {
		return nil, &FieldCountError{Got: len(parts), Want: want}
	}
	return parts, nil
}

// Parse decodes one serialized line (newline optional) into a Record.
func Parse(line, delim string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	f, err := SplitFields(line, delim, NumFields)
	if err != nil {
		return Record{}, err
	}
	return Record{Date: f[0], Latin: f[1], Cyrillic: f[2], Int: f[3], Float: f[4]}, nil
}
