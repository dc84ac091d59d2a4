package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, NVARCHAR(MAX))
//   - Nullable: whether NULL is allowed
//   - Default: raw default expression
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
	Default  string
}

// TableDef holds the table name in dotted form ("schema.table" or "table")
// and an ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TextTable returns a definition where every column is nullable and typed
// sqlType. Record tables are loaded as text and never coerced.
func TextTable(fqn string, columns []string, sqlType string) TableDef {
	cols := make([]ColumnDef, len(columns))
	for i, c := range columns {
		cols[i] = ColumnDef{Name: c, SQLType: sqlType, Nullable: true}
	}
	return TableDef{FQN: fqn, Columns: cols}
}
