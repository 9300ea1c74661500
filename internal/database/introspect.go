package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbdeck/dbdeck/internal/core"
)

// Databases lists the catalog names visible to the connection.
func (r *Registry) Databases(ctx context.Context, sessionID string) ([]string, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return nil, err
	}
	return collectStrings(ctx, session.db, "SHOW DATABASES")
}

// Tables selects the database context, then lists table names.
func (r *Registry) Tables(ctx context.Context, sessionID, database string) ([]string, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	return collectStrings(ctx, session.db, "SHOW TABLES")
}

// TableStructure returns the table's column layout as a raw row set, the
// shape the presentation layer renders directly.
func (r *Registry) TableStructure(ctx context.Context, sessionID, database, table string) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	return queryRows(ctx, session.db, "SHOW FULL COLUMNS FROM "+quoteIdent(table))
}

// TableColumns returns parsed column descriptors for the table, in
// ordinal position order. Descriptors are recomputed on every call.
func (r *Registry) TableColumns(ctx context.Context, sessionID, database, table string) ([]core.Column, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT,
		       COLUMN_KEY, EXTRA, COLUMN_COMMENT, CHARACTER_SET_NAME
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`
	rows, err := session.db.QueryContext(ctx, query, database, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var columns []core.Column
	for rows.Next() {
		var col core.Column
		var nullable string
		var def, charset sql.NullString
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &def,
			&col.Key, &col.Extra, &col.Comment, &charset); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Nullable = nullable == "YES"
		if def.Valid {
			v := def.String
			col.Default = &v
		}
		col.CharacterSet = charset.String
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

// TableIndexes returns the table's indexes with their ordered column
// lists.
func (r *Registry) TableIndexes(ctx context.Context, sessionID, database, table string) ([]core.Index, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}

	rows, err := session.db.QueryContext(ctx,
		"SHOW INDEX FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("failed to query indexes: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read index columns: %w", err)
	}

	// SHOW INDEX returns one row per column per index; fold them back
	// into one descriptor per index preserving column order.
	var order []string
	byName := make(map[string]*core.Index)

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	field := func(name string) string {
		for i, c := range cols {
			if c == name {
				if b, ok := values[i].([]byte); ok {
					return string(b)
				}
				return fmt.Sprint(values[i])
			}
		}
		return ""
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		name := field("Key_name")
		idx, ok := byName[name]
		if !ok {
			idx = &core.Index{Name: name, Type: indexKind(name, field("Non_unique"), field("Index_type"))}
			byName[name] = idx
			order = append(order, name)
		}
		idx.Columns = append(idx.Columns, field("Column_name"))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating indexes: %w", err)
	}

	indexes := make([]core.Index, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *byName[name])
	}
	return indexes, nil
}

// indexKind classifies an index row into the descriptor's Type tag.
func indexKind(name, nonUnique, indexType string) string {
	switch {
	case name == "PRIMARY":
		return "PRIMARY"
	case indexType == "FULLTEXT":
		return "FULLTEXT"
	case nonUnique == "0":
		return "UNIQUE"
	default:
		return "INDEX"
	}
}

// TableForeignKeys returns the table's referential constraints.
func (r *Registry) TableForeignKeys(ctx context.Context, sessionID, database, table string) ([]core.ForeignKey, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}

	const query = `
		SELECT k.CONSTRAINT_NAME, k.COLUMN_NAME,
		       k.REFERENCED_TABLE_NAME, k.REFERENCED_COLUMN_NAME,
		       rc.UPDATE_RULE, rc.DELETE_RULE
		FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
		JOIN INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
		  ON rc.CONSTRAINT_SCHEMA = k.CONSTRAINT_SCHEMA
		 AND rc.CONSTRAINT_NAME = k.CONSTRAINT_NAME
		WHERE k.TABLE_SCHEMA = ? AND k.TABLE_NAME = ?
		  AND k.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY k.CONSTRAINT_NAME
	`
	rows, err := session.db.QueryContext(ctx, query, database, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer rows.Close()

	var keys []core.ForeignKey
	for rows.Next() {
		var fk core.ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.ReferencedTable,
			&fk.ReferencedColumn, &fk.OnUpdate, &fk.OnDelete); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		keys = append(keys, fk)
	}
	return keys, rows.Err()
}

// collectStrings runs a single-column query and gathers the values.
func collectStrings(ctx context.Context, db *sql.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan value: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
