package mssql

import (
	"context"

	"recordpipe/internal/storage"
)

// newRepository is swapped by tests that must not dial a server.
var newRepository = NewRepository

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
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

	storage.RegisterDDL("mssql",
		func(ctx context.Context, repo storage.Repository, cfg storage.Config, mode storage.Mode) error {
			stmts, err := tableStatements(cfg, mode)
			if err != nil {
				return err
			}
			return storage.ExecAll(ctx, repo, stmts...)
		})
}

// wrappedRepo gives *Repository the storage.Repository Close method.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() { w.closeFn() }
