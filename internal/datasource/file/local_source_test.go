package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocal_Open(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		prepare         func(t *testing.T) string
		makeCtx         func() context.Context
		wantErrIs       error
		wantErrContains string
		wantContent     string
	}{
		{
			name: "success",
			prepare: func(t *testing.T) string {
				p := filepath.Join(t.TempDir(), "0.txt")
				if err := os.WriteFile(p, []byte("a||b||\n"), 0o644); err != nil {
					t.Fatal(err)
				}
				return p
			},
			makeCtx:     context.Background,
			wantContent: "a||b||\n",
		},
		{
			name: "missing_file",
			prepare: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.txt")
			},
			makeCtx:         context.Background,
			wantErrIs:       os.ErrNotExist,
			wantErrContains: "open ",
		},
		{
			name: "canceled_context",
			prepare: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "unused.txt")
			},
			makeCtx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErrIs: context.Canceled,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			src := NewLocal(tc.prepare(t))
			rc, err := src.Open(tc.makeCtx())
			if tc.wantErrIs != nil {
				if !errors.Is(err, tc.wantErrIs) {
					t.Fatalf("Open err = %v, want errors.Is %v", err, tc.wantErrIs)
				}
				if tc.wantErrContains != "" && !strings.Contains(err.Error(), tc.wantErrContains) {
					t.Fatalf("Open err = %q, want substring %q", err, tc.wantErrContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if string(b) != tc.wantContent {
				t.Fatalf("content = %q, want %q", b, tc.wantContent)
			}
		})
	}
}

func TestReplaceFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "merged.txt")
	if err := os.WriteFile(p, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ReplaceFile(p, []byte("new\n"), 0o644); err != nil {
		t.Fatalf("ReplaceFile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "new\n" {
		t.Fatalf("content = %q, want %q", b, "new\n")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestAtomicWriter_AbortKeepsOriginal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "0.txt")
	if err := os.WriteFile(p, []byte("keep\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewAtomicWriter(p, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("discard\n")); err != nil {
		t.Fatal(err)
	}
	w.Abort()

	b, _ := os.ReadFile(p)
	if string(b) != "keep\n" {
		t.Fatalf("content = %q after abort", b)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp file left behind: %v", entries)
	}
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    int64
	}{
		{"empty", "", 0},
		{"terminated", "a\nb\nc\n", 3},
		{"no_final_newline", "a\nb", 2},
		{"blank_lines_skipped", "a\n\n\r\nb\n\n", 2},
		{"long_line", strings.Repeat("x", 3<<20) + "\nshort\n", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := filepath.Join(t.TempDir(), "in.txt")
			if err := os.WriteFile(p, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := CountLines(context.Background(), NewLocal(p))
			if err != nil {
				t.Fatalf("CountLines: %v", err)
			}
			if got != tc.want {
				t.Fatalf("CountLines = %d, want %d", got, tc.want)
			}
		})
	}
}
