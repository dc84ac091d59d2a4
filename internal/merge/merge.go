// Package merge consolidates a directory of record files into one artifact
// while dropping lines that contain an exclusion substring. Each source file
// is rewritten in place with the lines it keeps.
package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding"

	"recordpipe/internal/datasource/file"
)

// Flush selects when the artifact is written.
type Flush int

const (
	// FlushPerFile leaves the artifact holding the cumulative kept lines
	// through the last processed file after every file.
	FlushPerFile Flush = iota
	// FlushAtEnd builds the artifact in a temp file and renames it into place
	// once all files are processed.
	FlushAtEnd
)

// ParseFlush maps "file" and "end" to a Flush value.
func ParseFlush(s string) (Flush, error) {
	switch s {
	case "", "file":
		return FlushPerFile, nil
	case "end":
		return FlushAtEnd, nil
	}
	return 0, fmt.Errorf("merge: unknown flush policy %q (want file or end)", s)
}

func (f Flush) String() string {
	if f == FlushAtEnd {
		return "end"
	}
	return "file"
}

// Options configures FilterAndMerge.
type Options struct {
	Dir      string
	Artifact string
	// Exclude drops every line containing it. Empty keeps all lines.
	Exclude string
	// Fallback decodes files that are not valid UTF-8. Nil leaves their bytes
	// as they are.
	Fallback encoding.Encoding
	Flush    Flush

	// OnFile is called after each file is processed.
	OnFile func(FileOutcome)
}

// artifactSink receives kept lines and hashes everything it writes.
type artifactSink interface {
	io.Writer
	// endFile marks a file boundary.
	endFile() error
	commit() error
	abort()
}

// FilterAndMerge processes every file in opts.Dir in name order.
//
// A missing or empty directory yields StatusNoFiles with a nil error. A file
// that vanishes between listing and reading is recorded in Result.Files with
// an error wrapping ErrFileNotFound. Every other I/O failure is returned.
func FilterAndMerge(ctx context.Context, opts Options) (Result, error) {
	paths, err := file.ListDir(opts.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return Result{Status: StatusNoFiles}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("merge: list %s: %w", opts.Dir, err)
	}
	if len(paths) == 0 {
		return Result{Status: StatusNoFiles}, nil
	}

	h := xxh3.New()
	sink, err := openSink(opts.Artifact, opts.Flush, h)
	if err != nil {
		return Result{}, err
	}

	res := Result{Status: StatusOK, Files: make([]FileOutcome, 0, len(paths))}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			sink.abort()
			return res, err
		}
		out, err := filterFile(ctx, p, opts, sink)
		if err != nil {
			sink.abort()
			return res, err
		}
		if err := sink.endFile(); err != nil {
			sink.abort()
			return res, err
		}
		res.Files = append(res.Files, out)
		res.Kept += out.Kept
		res.Removed += out.Removed
		if opts.OnFile != nil {
			opts.OnFile(out)
		}
	}
	if err := sink.commit(); err != nil {
		return res, err
	}
	res.Checksum = h.Sum64()
	return res, nil
}

// filterFile rewrites one source file and feeds its kept lines to sink.
func filterFile(ctx context.Context, path string, opts Options, sink io.Writer) (FileOutcome, error) {
	out := FileOutcome{Path: path}

	raw, perm, err := readFile(ctx, path)
	if errors.Is(err, os.ErrNotExist) {
		out.Err = fmt.Errorf("%w: %s", ErrFileNotFound, path)
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("merge: read %s: %w", path, err)
	}

	var dec *encoding.Decoder
	if opts.Fallback != nil && !utf8.Valid(raw) {
		dec = opts.Fallback.NewDecoder()
		out.Decoded = true
	}
	exclude := []byte(opts.Exclude)

	kept := make([]byte, 0, len(raw))
	rest := raw
	for len(rest) > 0 {
		var line []byte
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i+1], rest[i+1:]
		} else {
			line, rest = rest, nil
		}

		text := line
		if dec != nil {
			if text, err = dec.Bytes(line); err != nil {
				return out, fmt.Errorf("merge: decode %s: %w", path, err)
			}
		}
		if len(exclude) > 0 && bytes.Contains(text, exclude) {
			out.Removed++
			continue
		}
		out.Kept++
		kept = append(kept, line...)

		if _, err := sink.Write(text); err != nil {
			return out, fmt.Errorf("merge: write artifact: %w", err)
		}
		if len(text) == 0 || text[len(text)-1] != '\n' {
			if _, err := sink.Write([]byte{'\n'}); err != nil {
				return out, fmt.Errorf("merge: write artifact: %w", err)
			}
		}
	}

	if err := file.ReplaceFile(path, kept, perm); err != nil {
		return out, fmt.Errorf("merge: rewrite %s: %w", path, err)
	}
	return out, nil
}

func readFile(ctx context.Context, path string) ([]byte, os.FileMode, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	perm := os.FileMode(0o644)
	if f, ok := rc.(*os.File); ok {
		if st, err := f.Stat(); err == nil {
			perm = st.Mode().Perm()
		}
	}
	b, err := io.ReadAll(rc)
	return b, perm, err
}

func openSink(path string, policy Flush, h *xxh3.Hasher) (artifactSink, error) {
	if policy == FlushAtEnd {
		w, err := file.NewAtomicWriter(path, 0o644)
		if err != nil {
			return nil, fmt.Errorf("merge: artifact: %w", err)
		}
		return &atEndSink{w: w, h: h}, nil
	}
	return &perFileSink{path: path, h: h}, nil
}

// perFileSink flushes the artifact at every file boundary. The artifact is
// truncated at the first boundary, so a failure in the first file leaves the
// previous artifact intact.
type perFileSink struct {
	path    string
	f       *os.File
	pending bytes.Buffer
	h       *xxh3.Hasher
}

func (s *perFileSink) Write(p []byte) (int, error) {
	_, _ = s.h.Write(p)
	return s.pending.Write(p)
}

func (s *perFileSink) endFile() error {
	if s.f == nil {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("merge: artifact: %w", err)
		}
		s.f = f
	}
	if _, err := s.pending.WriteTo(s.f); err != nil {
		return fmt.Errorf("merge: flush artifact: %w", err)
	}
	return nil
}

func (s *perFileSink) commit() error {
	if s.f == nil {
		if err := s.endFile(); err != nil {
			return err
		}
	}
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("merge: close artifact: %w", err)
	}
	return nil
}

// abort keeps whatever was flushed so far, matching the per-file contract.
func (s *perFileSink) abort() {
	if s.f != nil {
		_ = s.f.Close()
	}
}

type atEndSink struct {
	w *file.AtomicWriter
	h *xxh3.Hasher
}

func (s *atEndSink) Write(p []byte) (int, error) {
	_, _ = s.h.Write(p)
	return s.w.Write(p)
}

func (s *atEndSink) endFile() error { return nil }

func (s *atEndSink) commit() error {
	if err := s.w.Commit(); err != nil {
		return fmt.Errorf("merge: artifact: %w", err)
	}
	return nil
}

func (s *atEndSink) abort() { s.w.Abort() }
