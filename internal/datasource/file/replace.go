package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// TempPrefix marks in-progress files written by ReplaceFile and
// AtomicWriter. Directory scanners skip names with this prefix.
const TempPrefix = ".tmp-"

// ReplaceFile writes data to a temp file in dest's directory and renames it
// over dest. Readers see either the old or the new content, never a partial
// write.
func ReplaceFile(dest string, data []byte, perm os.FileMode) error {
	w, err := NewAtomicWriter(dest, perm)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Abort()
		return err
	}
	return w.Commit()
}

// AtomicWriter buffers writes into a same-directory temp file that replaces
// dest on Commit. Abort discards it. Exactly one of Commit or Abort must be
// called.
type AtomicWriter struct {
	dest string
	tmp  *os.File
	bw   *bufio.Writer
}

// NewAtomicWriter creates the temp file next to dest.
func NewAtomicWriter(dest string, perm os.FileMode) (*AtomicWriter, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), TempPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create temp for %s: %w", dest, err)
	}
	_ = os.Chmod(tmp.Name(), perm)
	return &AtomicWriter{dest: dest, tmp: tmp, bw: bufio.NewWriterSize(tmp, 256<<10)}, nil
}

func (w *AtomicWriter) Write(p []byte) (int, error) { return w.bw.Write(p) }

// Commit flushes, syncs and renames the temp file over dest.
func (w *AtomicWriter) Commit() error {
	tmpPath := w.tmp.Name()
	if err := w.bw.Flush(); err != nil {
		w.Abort()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := w.tmp.Sync(); err != nil {
		w.Abort()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, w.dest); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", w.dest, err)
	}
	return nil
}

// Abort closes and removes the temp file.
func (w *AtomicWriter) Abort() {
	_ = w.tmp.Close()
	_ = os.Remove(w.tmp.Name())
}
