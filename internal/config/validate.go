package config

import (
	"fmt"
	"slices"
	"strings"

	"recordpipe/internal/charset"
	"recordpipe/internal/merge"
	"recordpipe/internal/storage"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single validation finding. Path is the flag name the finding is
// about ("chunk", "db_driver").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// builtinDrivers is used when no storage backend has registered itself.
var builtinDrivers = []string{"mssql", "mysql", "postgres", "sqlite"}

var (
	knownProgress = map[string]struct{}{"bar": {}, "lines": {}, "none": {}}
	knownBackends = map[string]struct{}{"none": {}, "": {}, "pushgateway": {}, "datadog": {}}
)

// Validate performs static checks over c. It does not mutate c. Checks for a
// stage only run when that stage is selected, except for enum values which
// are always checked.
func Validate(c Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if !c.AnyStage() {
		add(SeverityWarning, "stages", "no stage selected; pass -create, -merge, -delete or -sql")
	}

	// Generation
	if c.Files < 0 {
		add(SeverityError, "files", "must be >= 0, got %d", c.Files)
	}
	if c.Strings < 0 {
		add(SeverityError, "strings", "must be >= 0, got %d", c.Strings)
	}
	if c.Create && (c.Files == 0 || c.Strings == 0) {
		add(SeverityWarning, "files", "create with files=%d strings=%d writes no records", c.Files, c.Strings)
	}
	if !charset.Valid(c.Encoding) {
		add(SeverityError, "encoding", "unknown encoding %q", c.Encoding)
	}

	// Files and merge
	if (c.Create || c.RunMerge()) && strings.TrimSpace(c.Dir) == "" {
		add(SeverityError, "dir", "files directory must not be empty")
	}
	if (c.RunMerge() || c.SQL) && strings.TrimSpace(c.Artifact) == "" {
		add(SeverityError, "artifact", "artifact path must not be empty")
	}
	if !charset.Valid(c.FallbackEncoding) {
		add(SeverityError, "fallback-encoding", "unknown encoding %q", c.FallbackEncoding)
	}
	if _, err := merge.ParseFlush(c.MergeFlush); err != nil {
		add(SeverityError, "merge-flush", "%v", err)
	}
	if strings.ContainsAny(c.Remove, "\r\n") {
		add(SeverityError, "delete", "substring must not contain line breaks")
	}
	if c.Delete && c.Remove == "" {
		add(SeverityWarning, "delete", "empty substring drops nothing; the merge still runs")
	}

	// Destination
	drivers := storage.ListKinds()
	if len(drivers) == 0 {
		drivers = builtinDrivers
	}
	if !slices.Contains(drivers, c.DBDriver) {
		add(SeverityError, "db_driver", "unknown driver %q (want one of %s)", c.DBDriver, strings.Join(drivers, ", "))
	}
	if c.SQL && strings.TrimSpace(c.DSN) == "" {
		add(SeverityError, "dsn", "DSN must not be empty")
	}
	if c.SQL && strings.TrimSpace(c.Table) == "" {
		add(SeverityError, "table", "table must not be empty")
	}
	if c.Chunk <= 0 {
		add(SeverityError, "chunk", "must be > 0, got %d", c.Chunk)
	}
	if _, err := storage.ParseMode(c.LoadMode); err != nil {
		add(SeverityError, "load-mode", "%v", err)
	}

	// Output and metrics
	if _, ok := knownProgress[c.Progress]; !ok {
		add(SeverityError, "progress", "unknown progress mode %q (want bar, lines or none)", c.Progress)
	}
	if _, ok := knownBackends[c.MetricsBackend]; !ok {
		add(SeverityError, "metrics-backend", "unknown metrics backend %q", c.MetricsBackend)
	}
	if c.MetricsBackend == "pushgateway" && strings.TrimSpace(c.PushgatewayURL) == "" {
		add(SeverityError, "pushgateway-url", "required when metrics-backend=pushgateway")
	}
	if c.MetricsBackend == "datadog" && strings.TrimSpace(c.DogStatsDAddr) == "" {
		add(SeverityError, "dogstatsd-addr", "required when metrics-backend=datadog")
	}

	return issues
}
