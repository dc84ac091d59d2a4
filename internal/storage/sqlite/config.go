package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:records.db?_pragma=journal_mode(WAL)"
	//   "records.db"
	DSN string

	// Table is the target table name. SQLite has no schemas in the Postgres
	// sense; "main.all_data" is accepted and passed through.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
