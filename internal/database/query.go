package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dbdeck/dbdeck/internal/core"
)

// readVerbs are the statement verbs routed through the row-returning
// path. Everything else goes through Exec and reports affected rows.
var readVerbs = map[string]bool{
	"SELECT":   true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"EXPLAIN":  true,
	"WITH":     true,
}

// isReadStatement reports whether the statement should return a row set.
func isReadStatement(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	return readVerbs[strings.ToUpper(fields[0])]
}

// ExecuteQuery runs an arbitrary statement string verbatim after selecting
// the database context. The caller is trusted; no validation or
// sanitization is applied. Read statements return columns, rows and the
// wall-clock execution time; write statements return the affected-row
// shape.
func (r *Registry) ExecuteQuery(ctx context.Context, sessionID, database, query string) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}

	log.Printf("[MYSQL] Executing query on session %s: %s", sessionID, query)
	if isReadStatement(query) {
		return queryRows(ctx, session.db, query)
	}
	return execStatement(ctx, session.db, query)
}

// TableData materializes the entire table into the result. Pagination is
// a presentation-layer concern applied after the fact.
func (r *Registry) TableData(ctx context.Context, sessionID, database, table string) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	return queryRows(ctx, session.db, "SELECT * FROM "+quoteIdent(table))
}

// queryRows runs a row-returning statement and collects the full result
// set into the envelope shape.
func queryRows(ctx context.Context, db *sql.DB, query string, args ...any) (*core.QueryResult, error) {
	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		return nil, err
	}
	result.ExecutionTime = elapsed
	return result, nil
}

// execStatement runs a non-query statement and returns the affected-row
// shape.
func execStatement(ctx context.Context, db *sql.DB, query string, args ...any) (*core.QueryResult, error) {
	start := time.Now()
	res, err := db.ExecContext(ctx, query, args...)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}

	affected, _ := res.RowsAffected()
	lastID, _ := res.LastInsertId()
	return &core.QueryResult{
		RowsAffected:  affected,
		LastInsertID:  lastID,
		ExecutionTime: elapsed,
	}, nil
}

// collectRows drains a row set into ordered column names and one
// field->value mapping per row. Byte slices are converted to strings so
// text columns survive JSON encoding intact.
func collectRows(rows *sql.Rows) (*core.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	out := make([]map[string]any, 0)
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record := make(map[string]any, len(columns))
		for i, name := range columns {
			switch v := values[i].(type) {
			case []byte:
				record[name] = string(v)
			default:
				record[name] = v
			}
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return &core.QueryResult{Columns: columns, Rows: out}, nil
}
