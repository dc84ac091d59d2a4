package storage

import (
	"context"
	"fmt"
	"sync"

	"recordpipe/internal/ddl"
)

// DDLBootstrapper prepares cfg.Table on repo for a load in the given mode.
// Backends register one per kind so callers never branch on dialect.
type DDLBootstrapper func(ctx context.Context, repo Repository, cfg Config, mode Mode) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) the bootstrapper for kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// PrepareTable runs the bootstrapper registered for cfg.Kind.
func PrepareTable(ctx context.Context, repo Repository, cfg Config, mode Mode) error {
	ddlMu.RLock()
	fn, ok := ddlFns[cfg.Kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", cfg.Kind)
	}
	return fn(ctx, repo, cfg, mode)
}

// ExecAll runs stmts in order and stops at the first failure.
func ExecAll(ctx context.Context, repo Repository, stmts ...string) error {
	for _, s := range stmts {
		if err := repo.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// TextTableStatements renders the statements that prepare cfg.Table as an
// all-text table in dialect d: DROP then CREATE for ModeReplace, CREATE only
// for ModeAppend. d must support IF [NOT] EXISTS.
func TextTableStatements(d ddl.Dialect, cfg Config, sqlType string, mode Mode) ([]string, error) {
	create, err := ddl.BuildCreateTableSQL(d, ddl.TextTable(cfg.Table, cfg.Columns, sqlType))
	if err != nil {
		return nil, err
	}
	if mode != ModeReplace {
		return []string{create}, nil
	}
	drop, err := ddl.BuildDropTableSQL(d, cfg.Table)
	if err != nil {
		return nil, err
	}
	return []string{drop, create}, nil
}
