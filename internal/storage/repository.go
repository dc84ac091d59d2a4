// Package storage contains storage-agnostic contracts for the record sink:
// the Repository interface, a registry of backend factories, load modes, and
// table bootstrapping.
//
// Backends register themselves from init functions; import
// recordpipe/internal/storage/all to enable every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Mode selects how the destination table is prepared before the first batch.
type Mode string

const (
	// ModeReplace drops the table (if present) and recreates it.
	ModeReplace Mode = "replace"
	// ModeAppend creates the table only when missing.
	ModeAppend Mode = "append"
)

// ParseMode maps a user string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeReplace, "":
		return ModeReplace, nil
	case ModeAppend:
		return ModeAppend, nil
	}
	return "", fmt.Errorf("storage: unknown load mode %q (want replace or append)", s)
}

// Config carries everything a backend factory needs.
type Config struct {
	Kind    string   // "postgres", "sqlite", "mysql", "mssql"
	DSN     string   // backend connection string
	Table   string   // destination table, optionally schema-qualified
	Columns []string // ordered destination columns
}

// Repository is the sink capability the loader needs.
type Repository interface {
	// CopyFrom bulk-inserts rows aligned to columns and returns the number of
	// rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// CountRows returns the current row count of the configured table.
	CountRows(ctx context.Context) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
