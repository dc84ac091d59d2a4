package merge

import "errors"

// Status tags the overall outcome of FilterAndMerge.
type Status string

const (
	// StatusOK means at least one file was listed and processed.
	StatusOK Status = "ok"
	// StatusNoFiles means the directory is missing or holds no files. The
	// artifact is left untouched.
	StatusNoFiles Status = "no_files"
)

// ErrFileNotFound marks a file that was listed but vanished before it could
// be read. It is reported per file and does not abort the merge.
var ErrFileNotFound = errors.New("merge: file not found")

// FileOutcome describes what happened to one source file.
type FileOutcome struct {
	Path    string
	Kept    int
	Removed int
	// Decoded is set when the file was not UTF-8 and was decoded with the
	// fallback encoding.
	Decoded bool
	// Err is non-nil only for per-file recoverable conditions and then wraps
	// ErrFileNotFound.
	Err error
}

// Result summarizes a FilterAndMerge call.
type Result struct {
	Status   Status
	Removed  int
	Kept     int
	Files    []FileOutcome
	Checksum uint64 // xxh3 of the artifact bytes
}

// Missing returns the outcomes whose files disappeared during the merge.
func (r Result) Missing() []FileOutcome {
	var out []FileOutcome
	for _, f := range r.Files {
		if errors.Is(f.Err, ErrFileNotFound) {
			out = append(out, f)
		}
	}
	return out
}
