package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/dbdeck/dbdeck/internal/core"
)

// quoteIdent backtick-quotes a schema object name. This is the single
// identifier-quoting point for every DDL builder; identifiers cannot be
// parameterized, so untrusted input here remains a documented residual
// risk.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// quoteIdents quotes a list of identifiers and joins them with commas.
func quoteIdents(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

// quoteString renders a value as a SQL string literal. Backslashes are
// doubled as well as quotes; under the server's default SQL mode a
// trailing backslash would otherwise swallow the closing quote.
func quoteString(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// formatCreateDefault renders a default value for CREATE TABLE. The
// literal tokens NULL and CURRENT_TIMESTAMP stay unquoted; every other
// value becomes a string literal.
func formatCreateDefault(v string) string {
	switch strings.ToUpper(v) {
	case "NULL", "CURRENT_TIMESTAMP":
		return strings.ToUpper(v)
	}
	return quoteString(v)
}

// formatAlterDefault renders a default value for the single-column ALTER
// operations, auto-detecting value classes: temporal keyword prefixes and
// numeric literals stay unquoted, the empty string becomes '', everything
// else is quoted.
func formatAlterDefault(v string) string {
	if v == "" {
		return "''"
	}
	upper := strings.ToUpper(v)
	for _, prefix := range []string{"CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME", "NOW("} {
		if strings.HasPrefix(upper, prefix) {
			return v
		}
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return v
	}
	return quoteString(v)
}

// columnType renders the type clause of a column definition, folding in
// the optional length and signedness.
func columnType(def core.ColumnDefinition) string {
	t := def.Type
	if def.Length != "" {
		t = fmt.Sprintf("%s(%s)", t, def.Length)
	}
	if def.Unsigned {
		t += " UNSIGNED"
	}
	return t
}

// columnDDL renders one column clause. The descriptor is trusted as
// given; the caller's form logic enforces the primary-key and
// auto-increment policies before it reaches this layer.
func columnDDL(def core.ColumnDefinition, formatDefault func(string) string) string {
	var b strings.Builder
	b.WriteString(quoteIdent(def.Name))
	b.WriteString(" ")
	b.WriteString(columnType(def))

	if def.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	if def.HasDefault {
		b.WriteString(" DEFAULT ")
		b.WriteString(formatDefault(def.Default))
	}
	if def.AutoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}
	if def.Unique {
		b.WriteString(" UNIQUE")
	}
	if def.Comment != "" {
		b.WriteString(" COMMENT ")
		b.WriteString(quoteString(def.Comment))
	}
	return b.String()
}

// buildCreateTable assembles the full CREATE TABLE statement from column
// and index definitions.
func buildCreateTable(table string, columns []core.ColumnDefinition, indexes []core.IndexDefinition) string {
	clauses := make([]string, 0, len(columns)+len(indexes)+1)

	var primary []string
	for _, col := range columns {
		clauses = append(clauses, columnDDL(col, formatCreateDefault))
		if col.PrimaryKey {
			primary = append(primary, col.Name)
		}
	}
	if len(primary) > 0 {
		clauses = append(clauses, "PRIMARY KEY ("+quoteIdents(primary)+")")
	}
	for _, idx := range indexes {
		clauses = append(clauses, indexDDL(idx))
	}

	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(clauses, ", "))
}

// indexDDL renders one index clause for CREATE TABLE or ALTER TABLE ADD.
func indexDDL(def core.IndexDefinition) string {
	kind := "INDEX"
	switch strings.ToUpper(def.Type) {
	case "UNIQUE":
		kind = "UNIQUE INDEX"
	case "FULLTEXT":
		kind = "FULLTEXT INDEX"
	}
	return fmt.Sprintf("%s %s (%s)", kind, quoteIdent(def.Name), quoteIdents(def.Columns))
}

// CreateTable builds and executes a single DDL statement from the given
// column and index definitions.
func (r *Registry) CreateTable(ctx context.Context, sessionID, database, table string, columns []core.ColumnDefinition, indexes []core.IndexDefinition) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	return execStatement(ctx, session.db, buildCreateTable(table, columns, indexes))
}

// DropTable removes the table. Irreversible; confirmation is a
// presentation concern.
func (r *Registry) DropTable(ctx context.Context, sessionID, database, table string) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	return execStatement(ctx, session.db, "DROP TABLE "+quoteIdent(table))
}

// TruncateTable removes every row from the table. Irreversible.
func (r *Registry) TruncateTable(ctx context.Context, sessionID, database, table string) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	return execStatement(ctx, session.db, "TRUNCATE TABLE "+quoteIdent(table))
}

// AddColumn appends a column to the table.
func (r *Registry) AddColumn(ctx context.Context, sessionID, database, table string, column core.ColumnDefinition) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s",
		quoteIdent(table), columnDDL(column, formatAlterDefault))
	return execStatement(ctx, session.db, stmt)
}

// ModifyColumn redefines a column identified by its old name; the new
// descriptor may rename it.
func (r *Registry) ModifyColumn(ctx context.Context, sessionID, database, table, oldName string, column core.ColumnDefinition) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s CHANGE COLUMN %s %s",
		quoteIdent(table), quoteIdent(oldName), columnDDL(column, formatAlterDefault))
	return execStatement(ctx, session.db, stmt)
}

// DropColumn removes a column from the table.
func (r *Registry) DropColumn(ctx context.Context, sessionID, database, table, column string) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s",
		quoteIdent(table), quoteIdent(column))
	return execStatement(ctx, session.db, stmt)
}

// AddIndex adds an index of the given kind to the table.
func (r *Registry) AddIndex(ctx context.Context, sessionID, database, table string, index core.IndexDefinition) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD %s", quoteIdent(table), indexDDL(index))
	return execStatement(ctx, session.db, stmt)
}

// DropIndex removes an index by name.
func (r *Registry) DropIndex(ctx context.Context, sessionID, database, table, index string) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s DROP INDEX %s",
		quoteIdent(table), quoteIdent(index))
	return execStatement(ctx, session.db, stmt)
}

// AddForeignKey adds a referential constraint to the table.
func (r *Registry) AddForeignKey(ctx context.Context, sessionID, database, table string, fk core.ForeignKey) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		quoteIdent(table), quoteIdent(fk.Name), quoteIdent(fk.Column),
		quoteIdent(fk.ReferencedTable), quoteIdent(fk.ReferencedColumn))
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE " + fk.OnUpdate)
	}
	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE " + fk.OnDelete)
	}
	return execStatement(ctx, session.db, b.String())
}

// DropForeignKey removes a referential constraint by name.
func (r *Registry) DropForeignKey(ctx context.Context, sessionID, database, table, name string) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s",
		quoteIdent(table), quoteIdent(name))
	return execStatement(ctx, session.db, stmt)
}

// ModifyPrimaryKey replaces the table's primary key. The drop step is
// best-effort: its failure (typically "no primary key exists") is
// absorbed and the add step still runs. An empty column list leaves the
// table with no primary key.
func (r *Registry) ModifyPrimaryKey(ctx context.Context, sessionID, database, table string, columns []string) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}

	if _, err := session.db.ExecContext(ctx,
		"ALTER TABLE "+quoteIdent(table)+" DROP PRIMARY KEY"); err != nil {
		log.Printf("[MYSQL] Ignoring primary key drop failure on %s: %v", table, err)
	}

	if len(columns) == 0 {
		return &core.QueryResult{}, nil
	}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s)",
		quoteIdent(table), quoteIdents(columns))
	return execStatement(ctx, session.db, stmt)
}
