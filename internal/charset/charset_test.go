package charset

import (
	"bytes"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		wantNil  bool
		wantErr  bool
		wantName string
	}{
		{name: "", wantNil: true},
		{name: "utf-8", wantNil: true},
		{name: "UTF8", wantNil: true},
		{name: "windows-1251"},
		{name: "cp1251"},
		{name: "koi8-r"},
		{name: "no-such-charset", wantErr: true},
	}
	for _, c := range cases {
		enc, err := Lookup(c.name)
		if c.wantErr {
			if err == nil {
				t.Errorf("Lookup(%q) err = nil, want error", c.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("Lookup(%q): %v", c.name, err)
			continue
		}
		if c.wantNil != (enc == nil) {
			t.Errorf("Lookup(%q) = %v, wantNil=%v", c.name, enc, c.wantNil)
		}
	}
}

func TestNewWriter_EncodesCyrillic(t *testing.T) {
	t.Parallel()

	enc, err := Lookup("windows-1251")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := NewWriter(&buf, enc)
	if _, err := w.Write([]byte("Привет")); err != nil {
		t.Fatal(err)
	}
	if c, ok := w.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			t.Fatal(err)
		}
	}
	want, _ := charmap.Windows1251.NewEncoder().Bytes([]byte("Привет"))
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("encoded = % x, want % x", buf.Bytes(), want)
	}
}

func TestToUTF8(t *testing.T) {
	t.Parallel()

	raw, _ := charmap.Windows1251.NewEncoder().Bytes([]byte("ЖЗИЙ||"))

	if out, ok, err := ToUTF8([]byte("plain"), nil); err != nil || !ok || string(out) != "plain" {
		t.Fatalf("utf-8 passthrough = %q %v %v", out, ok, err)
	}
	if out, ok, _ := ToUTF8(raw, nil); ok || !bytes.Equal(out, raw) {
		t.Fatalf("no fallback should return raw bytes, ok=false; got %q ok=%v", out, ok)
	}
	out, ok, err := ToUTF8(raw, charmap.Windows1251)
	if err != nil || !ok || string(out) != "ЖЗИЙ||" {
		t.Fatalf("fallback decode = %q %v %v", out, ok, err)
	}
}
