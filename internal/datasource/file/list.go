package file

import (
	"os"
	"path/filepath"
	"strings"
)

// ListDir returns the paths of regular files in dir, sorted by name. Hidden
// files and in-progress temp files (TempPrefix) are skipped. A missing dir is
// reported as an error matching os.ErrNotExist.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, TempPrefix) {
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}
