package kvstore

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbdeck/dbdeck/internal/core"
)

// registered inserts a session without a live backend; useful for
// exercising paths that never reach the client.
func registered(r *Registry, id string, db int) {
	r.mu.Lock()
	r.sessions[id] = &Session{ID: id, Database: db}
	r.mu.Unlock()
}

func TestDisconnectAbsentSessionIsNoOp(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Disconnect("never-connected"))
	require.NoError(t, r.Disconnect("never-connected"))
	assert.Equal(t, 0, r.Count())
}

func TestOperationsFailWithSessionNotFound(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"getDatabases", func() error { _, err := r.Databases("missing"); return err }},
		{"getKeys", func() error { _, err := r.Keys(ctx, "missing", "*"); return err }},
		{"getKeyType", func() error { _, err := r.KeyType(ctx, "missing", "k"); return err }},
		{"getValue", func() error { _, err := r.GetValue(ctx, "missing", "k"); return err }},
		{"setValue", func() error { return r.SetValue(ctx, "missing", "k", "v", core.TypeString) }},
		{"deleteKey", func() error { _, err := r.DeleteKey(ctx, "missing", "k"); return err }},
		{"getTTL", func() error { _, err := r.TTL(ctx, "missing", "k"); return err }},
		{"executeCommand", func() error { _, err := r.ExecuteCommand(ctx, "missing", "ping"); return err }},
		{"getInfo", func() error { _, err := r.Info(ctx, "missing"); return err }},
		{"getDbSize", func() error { _, err := r.DBSize(ctx, "missing"); return err }},
		{"selectDatabase", func() error { return r.SelectDatabase(ctx, "missing", 1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestDatabasesReturnsFixedEnumeration(t *testing.T) {
	r := NewRegistry()
	registered(r, "s1", 0)

	dbs, err := r.Databases("s1")
	require.NoError(t, err)
	require.Len(t, dbs, 16)
	for i, db := range dbs {
		assert.Equal(t, i, db.Index)
		assert.Equal(t, fmt.Sprintf("db%d", i), db.Name)
	}
}

func TestSelectDatabaseSameIndexKeepsSession(t *testing.T) {
	r := NewRegistry()
	registered(r, "s1", 3)

	// No rebind happens when the index is already active.
	require.NoError(t, r.SelectDatabase(context.Background(), "s1", 3))
	assert.Equal(t, 1, r.Count())
}

func TestSelectDatabaseDialDoesNotBlockRegistry(t *testing.T) {
	// A listener that accepts and then stays silent, so the rebind dial
	// hangs until the context is cancelled.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	r := NewRegistry()
	r.mu.Lock()
	r.sessions["s1"] = &Session{ID: "s1", Config: core.KVConfig{Host: host, Port: port}, Database: 0}
	r.sessions["s2"] = &Session{ID: "s2"}
	r.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dialing := make(chan struct{})
	go func() {
		close(dialing)
		r.SelectDatabase(ctx, "s1", 5)
	}()
	<-dialing
	time.Sleep(50 * time.Millisecond)

	// Unrelated registry operations must not wait on the hung dial.
	done := make(chan int, 1)
	go func() { done <- r.Count() }()
	select {
	case n := <-done:
		assert.Equal(t, 2, n)
	case <-time.After(time.Second):
		t.Fatal("registry blocked while a database switch was dialing")
	}
}

func TestSelectDatabaseRejectsOutOfRangeIndex(t *testing.T) {
	r := NewRegistry()
	registered(r, "s1", 0)

	err := r.SelectDatabase(context.Background(), "s1", 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 15")
}

func TestSetValueRejectsUnknownType(t *testing.T) {
	r := NewRegistry()
	registered(r, "s1", 0)

	err := r.SetValue(context.Background(), "s1", "k", "v", core.KeyType("bitmap"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value type")
}

func TestSetValueRejectsNonMappingHash(t *testing.T) {
	r := NewRegistry()
	registered(r, "s1", 0)

	err := r.SetValue(context.Background(), "s1", "k", "not-a-map", core.TypeHash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field mapping")
}

func TestMembers(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []any
	}{
		{name: "scalar", in: "a", want: []any{"a"}},
		{name: "number", in: 42, want: []any{"42"}},
		{name: "sequence", in: []any{"a", "b"}, want: []any{"a", "b"}},
		{name: "mixed sequence", in: []any{"a", 1.0}, want: []any{"a", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, members(tt.in))
		})
	}
}

func TestScoredMembers(t *testing.T) {
	entries, err := scoredMembers([]any{
		map[string]any{"member": "a", "score": 1.5},
		map[string]any{"member": "b", "score": 2.0},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Member)
	assert.Equal(t, 1.5, entries[0].Score)

	plain, err := scoredMembers([]any{"x"})
	require.NoError(t, err)
	require.Len(t, plain, 1)
	assert.Equal(t, "x", plain[0].Member)
	assert.Equal(t, 0.0, plain[0].Score)

	_, err = scoredMembers([]any{map[string]any{"member": "a"}})
	require.Error(t, err)
}

func TestExecuteCommandRejectsEmptyLine(t *testing.T) {
	r := NewRegistry()
	registered(r, "s1", 0)

	_, err := r.ExecuteCommand(context.Background(), "s1", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty command")
}
