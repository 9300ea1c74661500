package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbdeck/dbdeck/internal/core"
)

// InsertRow inserts one row from a field->value mapping using a
// parameterized statement. Column order follows mapping iteration order.
func (r *Registry) InsertRow(ctx context.Context, sessionID, database, table string, data map[string]any) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no fields to insert")
	}

	columns := make([]string, 0, len(data))
	placeholders := make([]string, 0, len(data))
	args := make([]any, 0, len(data))
	for column, value := range data {
		columns = append(columns, quoteIdent(column))
		placeholders = append(placeholders, "?")
		args = append(args, value)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	return execStatement(ctx, session.db, stmt, args...)
}

// UpdateRow updates one row identified by a single-column equality
// predicate.
func (r *Registry) UpdateRow(ctx context.Context, sessionID, database, table string, primaryKey core.PrimaryKeyRef, updates map[string]any) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	assignments := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates)+1)
	for column, value := range updates {
		assignments = append(assignments, quoteIdent(column)+" = ?")
		args = append(args, value)
	}
	args = append(args, primaryKey.Value)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		quoteIdent(table), strings.Join(assignments, ", "), quoteIdent(primaryKey.Column))
	return execStatement(ctx, session.db, stmt, args...)
}

// DeleteRow deletes one row identified by a single-column equality
// predicate.
func (r *Registry) DeleteRow(ctx context.Context, sessionID, database, table string, primaryKey core.PrimaryKeyRef) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
		quoteIdent(table), quoteIdent(primaryKey.Column))
	return execStatement(ctx, session.db, stmt, primaryKey.Value)
}

// DeleteRows bulk-deletes rows whose key column matches any of the given
// values. The result reports the count of rows actually removed.
func (r *Registry) DeleteRows(ctx context.Context, sessionID, database, table string, primaryKey core.PrimaryKeyRef) (*core.QueryResult, error) {
	session, err := r.scoped(ctx, sessionID, database)
	if err != nil {
		return nil, err
	}
	if len(primaryKey.Values) == 0 {
		return nil, fmt.Errorf("no key values to delete")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(primaryKey.Values)), ", ")
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		quoteIdent(table), quoteIdent(primaryKey.Column), placeholders)
	return execStatement(ctx, session.db, stmt, primaryKey.Values...)
}
