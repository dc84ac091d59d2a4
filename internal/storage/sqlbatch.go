package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Statement is one rendered SQL statement with its bind arguments.
type Statement struct {
	SQL  string
	Args []any
}

// BuildInserts renders multi-row INSERT statements for rows, packing as many
// rows per statement as fit under maxParams bind parameters. table and
// columns are emitted verbatim, so callers pass them already quoted.
func BuildInserts(table string, columns []string, rows [][]any, maxParams int, ph sq.PlaceholderFormat) ([]Statement, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("storage: insert: columns must not be empty")
	}
	perStmt := maxParams / len(columns)
	if perStmt < 1 {
		perStmt = 1
	}

	var out []Statement
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))
		b := sq.Insert(table).Columns(columns...).PlaceholderFormat(ph)
		for i, row := range rows[start:end] {
			if len(row) != len(columns) {
				return nil, fmt.Errorf("storage: insert: row %d length %d != columns length %d", start+i, len(row), len(columns))
			}
			b = b.Values(row...)
		}
		q, args, err := b.ToSql()
		if err != nil {
			return nil, fmt.Errorf("storage: insert: build: %w", err)
		}
		out = append(out, Statement{SQL: q, Args: args})
	}
	return out, nil
}

// InsertTx executes stmts inside one transaction on db and returns the
// number of affected rows. Any failure rolls the whole batch back.
func InsertTx(ctx context.Context, db *sql.DB, stmts []Statement) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	var n int64
	for _, s := range stmts {
		res, err := tx.ExecContext(ctx, s.SQL, s.Args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert: %w", err)
		}
		if k, err := res.RowsAffected(); err == nil {
			n += k
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}
