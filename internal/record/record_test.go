package record

import (
	"errors"
	"strings"
	"testing"
)

func TestRecord_StringEndsWithDelimiter(t *testing.T) {
	t.Parallel()

	r := Record{Date: "2024-01-02", Latin: "abcdefghij", Cyrillic: "АБВГДЕЖЗИЙ", Int: "42", Float: "1.5"}
	got := r.String()
	want := "2024-01-02||abcdefghij||АБВГДЕЖЗИЙ||42||1.5||"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if n := len(strings.Split(got, Delimiter)); n != NumFields+1 {
		t.Fatalf("split count = %d, want %d", n, NumFields+1)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		line    string
		want    Record
		wantErr bool
	}{
		{
			name: "trailing_delimiter_and_newline",
			line: "2024-01-02||abc||где||7||2.25||\n",
			want: Record{Date: "2024-01-02", Latin: "abc", Cyrillic: "где", Int: "7", Float: "2.25"},
		},
		{
			name: "crlf_without_trailing_field",
			line: "2024-01-02||abc||где||7||2.25\r\n",
			want: Record{Date: "2024-01-02", Latin: "abc", Cyrillic: "где", Int: "7", Float: "2.25"},
		},
		{
			name: "empty_last_field_with_trailing_delimiter",
			line: "2024-01-02||abc||где||7||||\n",
			want: Record{Date: "2024-01-02", Latin: "abc", Cyrillic: "где", Int: "7"},
		},
		{name: "too_few_fields", line: "a||b||c||", wantErr: true},
		{name: "four_fields_with_trailing_delimiter", line: "2024-01-01||abc||АБВ||42||", wantErr: true},
		{name: "too_many_fields", line: "a||b||c||d||e||f||g", wantErr: true},
		{name: "empty", line: "", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Parse(c.line, Delimiter)
			if c.wantErr {
				var fce *FieldCountError
				if !errors.As(err, &fce) {
					t.Fatalf("Parse(%q) err = %v, want *FieldCountError", c.line, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", c.line, err)
			}
			if got != c.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", c.line, got, c.want)
			}
		})
	}
}

func TestParse_RoundTripsGenerated(t *testing.T) {
	t.Parallel()

	g := NewGenerator(WithSeed(7))
	for i := 0; i < 200; i++ {
		r := g.Generate()
		got, err := Parse(r.String()+"\n", Delimiter)
		if err != nil {
			t.Fatalf("Parse(%q): %v", r.String(), err)
		}
		if got != r {
			t.Fatalf("round trip = %+v, want %+v", got, r)
		}
	}
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		1.5:            "1.5",
		20:             "20.0",
		1:              "1.0",
		13.123456789:   "13.1234567", // 13.12345679 cut to 10 chars
		2.000000004:    "2.0",
		9.87654321:     "9.87654321",
		19.99999999999: "20.0",
	}
	for in, want := range cases {
		if got := formatFloat(in); got != want {
			t.Errorf("formatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
