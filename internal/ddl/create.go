// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE/DROP statements from it.
//
// Backends pass a Dialect that supplies identifier quoting and whether
// IF [NOT] EXISTS is supported. Defaults are emitted as raw SQL.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures the few syntax differences the renderers care about.
type Dialect struct {
	Name string
	// Quote quotes a single identifier segment. Nil emits names verbatim.
	Quote func(string) string
	// IfExists enables CREATE TABLE IF NOT EXISTS and DROP TABLE IF EXISTS.
	IfExists bool
}

// Generic emits names as-is with no IF [NOT] EXISTS clauses.
var Generic = Dialect{Name: "generic"}

// DoubleQuote quotes an identifier ANSI style: "a""b".
func DoubleQuote(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// Backtick quotes an identifier MySQL style: `a``b`.
func Backtick(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// Bracket quotes an identifier SQL Server style: [a]]b].
func Bracket(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

// Ident quotes one identifier segment.
func (d Dialect) Ident(id string) string {
	if d.Quote == nil {
		return id
	}
	return d.Quote(id)
}

// FQN quotes each dot-separated segment of name.
func (d Dialect) FQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = d.Ident(p)
	}
	return strings.Join(parts, ".")
}

// Idents quotes every name in cols.
func (d Dialect) Idents(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = d.Ident(c)
	}
	return out
}

// BuildCreateTableSQL renders a deterministic CREATE TABLE statement.
//
// Rules:
//   - t.FQN must be non-empty.
//   - Each column must have a non-empty Name and SQLType.
//   - A column renders as <Name> <SQLType> [NOT NULL] [DEFAULT <Default>].
func BuildCreateTableSQL(d Dialect, t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(d.Ident(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())
	}

	create := "CREATE TABLE "
	if d.IfExists {
		create += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (\n  %s\n);", create, d.FQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// BuildDropTableSQL renders DROP TABLE for fqn.
func BuildDropTableSQL(d Dialect, fqn string) (string, error) {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if d.IfExists {
		return "DROP TABLE IF EXISTS " + d.FQN(fqn) + ";", nil
	}
	return "DROP TABLE " + d.FQN(fqn) + ";", nil
}
