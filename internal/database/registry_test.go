package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisconnectAbsentSessionIsNoOp(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Disconnect("never-connected"))
	require.NoError(t, r.Disconnect("never-connected"))
	assert.Equal(t, 0, r.Count())
}

func TestScopedOperationsFailWithSessionNotFound(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"getDatabases", func() error { _, err := r.Databases(ctx, "missing"); return err }},
		{"getTables", func() error { _, err := r.Tables(ctx, "missing", "test"); return err }},
		{"getTableData", func() error { _, err := r.TableData(ctx, "missing", "test", "users"); return err }},
		{"executeQuery", func() error { _, err := r.ExecuteQuery(ctx, "missing", "test", "SELECT 1"); return err }},
		{"dropTable", func() error { _, err := r.DropTable(ctx, "missing", "test", "users"); return err }},
		{"insertRow", func() error {
			_, err := r.InsertRow(ctx, "missing", "test", "users", map[string]any{"a": 1})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestIsReadStatement(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "select", query: "SELECT * FROM users", want: true},
		{name: "select lowercase", query: "select 1", want: true},
		{name: "leading whitespace", query: "   SELECT 1", want: true},
		{name: "show", query: "SHOW TABLES", want: true},
		{name: "describe", query: "DESCRIBE users", want: true},
		{name: "desc", query: "desc users", want: true},
		{name: "explain", query: "EXPLAIN SELECT 1", want: true},
		{name: "cte", query: "WITH t AS (SELECT 1) SELECT * FROM t", want: true},
		{name: "insert", query: "INSERT INTO users VALUES (1)", want: false},
		{name: "update", query: "UPDATE users SET a = 1", want: false},
		{name: "ddl", query: "CREATE TABLE t (a INT)", want: false},
		{name: "empty", query: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isReadStatement(tt.query))
		})
	}
}
