// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. Each batch is bulk-copied directly into the
// destination table inside one transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"recordpipe/internal/ddl"
	"recordpipe/internal/storage"
)

// Dialect is SQL Server bracket quoting. SQL Server has no CREATE TABLE IF
// NOT EXISTS, so guards are rendered with OBJECT_ID instead.
var Dialect = ddl.Dialect{Name: "mssql", Quote: ddl.Bracket}

// Config holds MSSQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository parses cfg.DSN, opens a pool and pings the server.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql: parse dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, func() { _ = db.Close() }, nil
}

// CopyFrom bulk-copies rows into the configured table. The batch commits as
// a whole or not at all.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (n int64, err error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	n, err = bulkCopy(ctx, tx, r.cfg.Table, columns, rows)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// bulkCopy streams rows through a CopyIn statement on tx.
func bulkCopy(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	opts := mssql.BulkOptions{Tablock: true, RowsPerBatch: len(rows)}
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, opts, columns...))
	if err != nil {
		return 0, fmt.Errorf("mssql: prepare bulk %s: %w", table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("mssql: bulk flush: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mssql: rows affected: %w", err)
	}
	return n, nil
}

// CountRows returns the number of rows in the configured table.
func (r *Repository) CountRows(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT_BIG(*) FROM "+Dialect.FQN(r.cfg.Table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("mssql: count: %w", err)
	}
	return n, nil
}

// Exec runs sqlText; blank text is a no-op.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// tableStatements renders OBJECT_ID-guarded DDL for cfg.Table.
func tableStatements(cfg storage.Config, mode storage.Mode) ([]string, error) {
	create, err := ddl.BuildCreateTableSQL(Dialect, ddl.TextTable(cfg.Table, cfg.Columns, "NVARCHAR(MAX)"))
	if err != nil {
		return nil, err
	}
	obj := "N'" + strings.ReplaceAll(Dialect.FQN(cfg.Table), "'", "''") + "'"
	stmts := make([]string, 0, 2)
	if mode == storage.ModeReplace {
		stmts = append(stmts, fmt.Sprintf("IF OBJECT_ID(%s, N'U') IS NOT NULL DROP TABLE %s;", obj, Dialect.FQN(cfg.Table)))
	}
	stmts = append(stmts, fmt.Sprintf("IF OBJECT_ID(%s, N'U') IS NULL %s", obj, create))
	return stmts, nil
}
