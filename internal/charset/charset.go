// Package charset resolves text encoding names used by the file writer and
// the merge engine. Names follow the WHATWG encoding labels
// ("utf-8", "windows-1251", "koi8-r", ...). An empty name means UTF-8.
package charset

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Lookup returns the encoding for name. A nil encoding with a nil error means
// UTF-8 and callers can skip transcoding.
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("charset: unknown encoding %q: %w", name, err)
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}

// Valid reports whether name resolves to a known encoding.
func Valid(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// NewWriter wraps w so that UTF-8 text written to it is encoded with enc.
// A nil enc returns w unchanged.
func NewWriter(w io.Writer, enc encoding.Encoding) io.Writer {
	if enc == nil {
		return w
	}
	return transform.NewWriter(w, enc.NewEncoder())
}

// ToUTF8 returns b as UTF-8. Valid UTF-8 input is returned as-is; otherwise b
// is decoded with fallback. ok is false when b is not UTF-8 and no fallback
// is configured, in which case b is returned unchanged.
func ToUTF8(b []byte, fallback encoding.Encoding) (out []byte, ok bool, err error) {
	if utf8.Valid(b) {
		return b, true, nil
	}
	if fallback == nil {
		return b, false, nil
	}
	out, err = fallback.NewDecoder().Bytes(b)
	if err != nil {
		return nil, false, fmt.Errorf("charset: decode: %w", err)
	}
	return out, true, nil
}
