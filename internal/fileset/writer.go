// Package fileset creates directories of synthetic record files named
// 0.txt, 1.txt, ... with one serialized record per line.
package fileset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/encoding"

	"recordpipe/internal/charset"
	"recordpipe/internal/record"
)

// DefaultExt is the file extension used when Writer.Ext is empty.
const DefaultExt = ".txt"

// Writer writes generated records into numbered files under Dir.
type Writer struct {
	Dir       string
	Ext       string            // defaults to DefaultExt
	Delimiter string            // defaults to record.Delimiter
	Encoding  encoding.Encoding // nil writes UTF-8
	Generator *record.Generator // defaults to an unseeded generator

	// OnFile is called after each file is fully written and closed.
	OnFile func(index int, path string)
}

// Result summarizes a CreateFiles call.
type Result struct {
	Files        int
	LinesPerFile int
	Dir          string
}

// CreateFiles ensures Dir exists and writes fileCount files holding
// linesPerFile records each. Existing files with the same names are
// truncated. Any error aborts the run; files already written stay on disk.
func (w *Writer) CreateFiles(ctx context.Context, fileCount, linesPerFile int) (Result, error) {
	if fileCount < 0 || linesPerFile < 0 {
		return Result{}, fmt.Errorf("fileset: counts must be non-negative (files=%d lines=%d)", fileCount, linesPerFile)
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("fileset: create dir %s: %w", w.Dir, err)
	}

	gen := w.Generator
	if gen == nil {
		gen = record.NewGenerator()
	}
	res := Result{LinesPerFile: linesPerFile, Dir: w.Dir}

	for i := range fileCount {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path := w.Path(i)
		if err := w.writeFile(path, gen, linesPerFile); err != nil {
			return res, err
		}
		res.Files++
		if w.OnFile != nil {
			w.OnFile(i, path)
		}
	}
	return res, nil
}

// Path returns the path of the file with the given zero-based index.
func (w *Writer) Path(index int) string {
	ext := w.Ext
	if ext == "" {
		ext = DefaultExt
	}
	return filepath.Join(w.Dir, strconv.Itoa(index)+ext)
}

func (w *Writer) writeFile(path string, gen *record.Generator, lines int) error {
	delim := w.Delimiter
	if delim == "" {
		delim = record.Delimiter
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fileset: create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriterSize(f, 256<<10)
	out := charset.NewWriter(bw, w.Encoding)

	buf := make([]byte, 0, 128)
	for range lines {
		buf = gen.Generate().AppendTo(buf[:0], delim)
		buf = append(buf, '\n')
		if _, err := out.Write(buf); err != nil {
			return fmt.Errorf("fileset: write %s: %w", path, err)
		}
	}
	if c, ok := out.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("fileset: encode %s: %w", path, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("fileset: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("fileset: close %s: %w", path, err)
	}
	return nil
}
