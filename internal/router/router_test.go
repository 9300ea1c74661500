package router

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbdeck/dbdeck/internal/database"
	"github.com/dbdeck/dbdeck/internal/kvstore"
)

func newTestRouter() *Router {
	return New(database.NewRegistry(), kvstore.NewRegistry())
}

func TestDispatchUnknownOperation(t *testing.T) {
	rt := newTestRouter()
	ctx := context.Background()

	tests := []struct {
		name string
		op   string
	}{
		{name: "no namespace", op: "connect"},
		{name: "unknown namespace", op: "mongo:connect"},
		{name: "unknown relational op", op: "db:vacuum"},
		{name: "unknown key-value op", op: "redis:flushall"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := rt.Dispatch(ctx, tt.op, nil)
			assert.False(t, env.Success)
			assert.Contains(t, env.Error, "unknown operation")
			assert.Nil(t, env.Data)
		})
	}
}

func TestDispatchSessionNotFoundIsWrapped(t *testing.T) {
	rt := newTestRouter()
	ctx := context.Background()

	tests := []struct {
		name string
		op   string
		args []any
	}{
		{name: "relational scoped", op: "db:getTables", args: []any{"missing", "test"}},
		{name: "relational table data", op: "db:getTableData", args: []any{"missing", "test", "users"}},
		{name: "key-value keys", op: "redis:getKeys", args: []any{"missing", "*"}},
		{name: "key-value info", op: "redis:getInfo", args: []any{"missing"}},
		{name: "key-value value", op: "redis:getValue", args: []any{"missing", "k"}},
		{name: "key-value type", op: "redis:getKeyType", args: []any{"missing", "k"}},
		{name: "key-value ttl", op: "redis:getTTL", args: []any{"missing", "k"}},
		{name: "key-value delete", op: "redis:deleteKey", args: []any{"missing", "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := rt.Dispatch(ctx, tt.op, tt.args)
			assert.False(t, env.Success)
			assert.Contains(t, env.Error, "session not found")
		})
	}
}

func TestDispatchMissingArguments(t *testing.T) {
	rt := newTestRouter()
	ctx := context.Background()

	env := rt.Dispatch(ctx, "db:getTables", []any{"only-session-id"})
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "missing argument")

	// Key-scoped operations report the missing key the same way.
	env = rt.Dispatch(ctx, "redis:getValue", []any{"only-session-id"})
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "missing argument")
}

func TestDispatchMistypedArguments(t *testing.T) {
	rt := newTestRouter()
	ctx := context.Background()

	tests := []struct {
		name string
		op   string
		args []any
	}{
		{name: "numeric session id", op: "db:disconnect", args: []any{42.0}},
		{name: "string database index", op: "redis:selectDatabase", args: []any{"sid", "zero"}},
		{name: "fractional database index", op: "redis:selectDatabase", args: []any{"sid", 1.5}},
		{name: "scalar column list", op: "db:createTable", args: []any{"sid", "test", "t", "not-a-list"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := rt.Dispatch(ctx, tt.op, tt.args)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestDispatchDisconnectIsIdempotent(t *testing.T) {
	rt := newTestRouter()
	ctx := context.Background()

	// Disconnecting a session that never existed succeeds on both sides.
	env := rt.Dispatch(ctx, "db:disconnect", []any{"missing"})
	assert.True(t, env.Success)

	env = rt.Dispatch(ctx, "redis:disconnect", []any{"missing"})
	assert.True(t, env.Success)
}

func TestEnvelopeShape(t *testing.T) {
	rt := newTestRouter()
	env := rt.Dispatch(context.Background(), "db:getDatabases", []any{"missing"})

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotEmpty(t, decoded["error"])
	// Exactly one of the payload and the error is populated.
	_, hasData := decoded["data"]
	assert.False(t, hasData)
}

func TestArgHelpers(t *testing.T) {
	args := []any{"sid", 3.0, map[string]any{"a": 1.0}}

	s, err := argString(args, 0)
	require.NoError(t, err)
	assert.Equal(t, "sid", s)

	n, err := argInt(args, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Fractional numbers are rejected rather than truncated.
	_, err = argInt([]any{1.5}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected integer")

	m, err := argMap(args, 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0}, m)

	_, err = argString(args, 5)
	assert.Error(t, err)
	_, err = argString(args, 1)
	assert.Error(t, err)
	_, err = argInt(args, 0)
	assert.Error(t, err)
	_, err = argMap(args, 0)
	assert.Error(t, err)
}

func TestDecodeArg(t *testing.T) {
	args := []any{map[string]any{
		"name": "id", "type": "INT", "primaryKey": true, "autoIncrement": true,
	}}

	var def struct {
		Name          string `json:"name"`
		Type          string `json:"type"`
		PrimaryKey    bool   `json:"primaryKey"`
		AutoIncrement bool   `json:"autoIncrement"`
	}
	require.NoError(t, decodeArg(args, 0, &def))
	assert.Equal(t, "id", def.Name)
	assert.Equal(t, "INT", def.Type)
	assert.True(t, def.PrimaryKey)
	assert.True(t, def.AutoIncrement)
}
