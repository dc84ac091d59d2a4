package mysql

import (
	"context"

	"recordpipe/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

// init registers the "mysql" backend with the factory.
func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{
			DSN:     cfg.DSN,
			Table:   cfg.Table,
			Columns: cfg.Columns,
		})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	// MySQL TEXT cannot carry a DEFAULT and tops out at 64KB, which is far
	// above any record field.
	storage.RegisterDDL("mysql",
		func(ctx context.Context, repo storage.Repository, cfg storage.Config, mode storage.Mode) error {
			stmts, err := storage.TextTableStatements(Dialect, cfg, "TEXT", mode)
			if err != nil {
				return err
			}
			return storage.ExecAll(ctx, repo, stmts...)
		})
}

// wrappedRepo adapts *mysql.Repository to storage.Repository and provides Close.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close closes the underlying connection pool.
func (w *wrappedRepo) Close() { w.closeFn() }
