// Package router is the single entry point of the command-dispatch layer.
// It receives named operations with positional arguments from the
// presentation layer, forwards them to the relational or key-value
// registry based on the operation's namespace prefix, and wraps every
// outcome in the uniform result envelope. It performs no business logic
// of its own and never lets a failure cross the boundary unwrapped.
package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dbdeck/dbdeck/internal/core"
	"github.com/dbdeck/dbdeck/internal/database"
	"github.com/dbdeck/dbdeck/internal/kvstore"
)

// ErrUnknownOperation is returned for operation names outside the
// catalog.
var ErrUnknownOperation = errors.New("unknown operation")

// Namespace prefixes distinguishing the two registries.
const (
	prefixRelational = "db:"
	prefixKeyValue   = "redis:"
)

// Router dispatches boundary operations to the two session registries.
type Router struct {
	db *database.Registry
	kv *kvstore.Registry
}

// New creates a router over the given registries. The registries are
// constructed once at process start and injected here; the router holds
// no state of its own.
func New(db *database.Registry, kv *kvstore.Registry) *Router {
	return &Router{db: db, kv: kv}
}

// Dispatch routes one operation and wraps its outcome in the envelope.
// Panics inside a handler are recovered into failure envelopes; nothing
// escapes this method unwrapped.
func (r *Router) Dispatch(ctx context.Context, op string, args []any) (env core.Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ROUTER] Recovered panic in %s: %v", op, rec)
			env = core.Fail(fmt.Errorf("internal error: %v", rec))
		}
	}()

	switch {
	case strings.HasPrefix(op, prefixRelational):
		return r.dispatchRelational(ctx, op, args)
	case strings.HasPrefix(op, prefixKeyValue):
		return r.dispatchKeyValue(ctx, op, args)
	}
	return core.Fail(fmt.Errorf("%w: %s", ErrUnknownOperation, op))
}

func (r *Router) dispatchRelational(ctx context.Context, op string, args []any) core.Envelope {
	switch op {
	case "db:testConnection":
		var cfg core.DatabaseConfig
		if err := decodeArg(args, 0, &cfg); err != nil {
			return core.Fail(err)
		}
		return resultOf(true, r.db.TestConnection(ctx, cfg))

	case "db:connect":
		var cfg core.DatabaseConfig
		if err := decodeArg(args, 0, &cfg); err != nil {
			return core.Fail(err)
		}
		id, err := r.db.Connect(ctx, cfg)
		if err != nil {
			return core.Fail(err)
		}
		return core.Connected(id)

	case "db:disconnect":
		id, err := argString(args, 0)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(true, r.db.Disconnect(id))

	case "db:getDatabases":
		id, err := argString(args, 0)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.Databases(ctx, id))

	case "db:getTables":
		id, db, err := sessionScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.Tables(ctx, id, db))

	case "db:getTableStructure":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.TableStructure(ctx, id, db, table))

	case "db:getTableColumns":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.TableColumns(ctx, id, db, table))

	case "db:getTableIndexes":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.TableIndexes(ctx, id, db, table))

	case "db:getTableForeignKeys":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.TableForeignKeys(ctx, id, db, table))

	case "db:executeQuery":
		id, db, err := sessionScope(args)
		if err != nil {
			return core.Fail(err)
		}
		query, err := argString(args, 2)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.ExecuteQuery(ctx, id, db, query))

	case "db:getTableData":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.TableData(ctx, id, db, table))

	case "db:createTable":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		var columns []core.ColumnDefinition
		if err := decodeArg(args, 3, &columns); err != nil {
			return core.Fail(err)
		}
		var indexes []core.IndexDefinition
		if len(args) > 4 && args[4] != nil {
			if err := decodeArg(args, 4, &indexes); err != nil {
				return core.Fail(err)
			}
		}
		return resultOf(r.db.CreateTable(ctx, id, db, table, columns, indexes))

	case "db:dropTable":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.DropTable(ctx, id, db, table))

	case "db:truncateTable":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.TruncateTable(ctx, id, db, table))

	case "db:addColumn":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		var column core.ColumnDefinition
		if err := decodeArg(args, 3, &column); err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.AddColumn(ctx, id, db, table, column))

	case "db:modifyColumn":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		oldName, err := argString(args, 3)
		if err != nil {
			return core.Fail(err)
		}
		var column core.ColumnDefinition
		if err := decodeArg(args, 4, &column); err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.ModifyColumn(ctx, id, db, table, oldName, column))

	case "db:dropColumn":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		column, err := argString(args, 3)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.DropColumn(ctx, id, db, table, column))

	case "db:insertRow":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		data, err := argMap(args, 3)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.InsertRow(ctx, id, db, table, data))

	case "db:updateRow":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		var pk core.PrimaryKeyRef
		if err := decodeArg(args, 3, &pk); err != nil {
			return core.Fail(err)
		}
		updates, err := argMap(args, 4)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.UpdateRow(ctx, id, db, table, pk, updates))

	case "db:deleteRow":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		var pk core.PrimaryKeyRef
		if err := decodeArg(args, 3, &pk); err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.DeleteRow(ctx, id, db, table, pk))

	case "db:deleteRows":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		var pk core.PrimaryKeyRef
		if err := decodeArg(args, 3, &pk); err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.DeleteRows(ctx, id, db, table, pk))

	case "db:addIndex":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		var index core.IndexDefinition
		if err := decodeArg(args, 3, &index); err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.AddIndex(ctx, id, db, table, index))

	case "db:dropIndex":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		index, err := argString(args, 3)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.DropIndex(ctx, id, db, table, index))

	case "db:addForeignKey":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		var fk core.ForeignKey
		if err := decodeArg(args, 3, &fk); err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.AddForeignKey(ctx, id, db, table, fk))

	case "db:dropForeignKey":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		name, err := argString(args, 3)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.DropForeignKey(ctx, id, db, table, name))

	case "db:modifyPrimaryKey":
		id, db, table, err := tableScope(args)
		if err != nil {
			return core.Fail(err)
		}
		var columns []string
		if err := decodeArg(args, 3, &columns); err != nil {
			return core.Fail(err)
		}
		return resultOf(r.db.ModifyPrimaryKey(ctx, id, db, table, columns))
	}

	return core.Fail(fmt.Errorf("%w: %s", ErrUnknownOperation, op))
}

func (r *Router) dispatchKeyValue(ctx context.Context, op string, args []any) core.Envelope {
	switch op {
	case "redis:testConnection":
		var cfg core.KVConfig
		if err := decodeArg(args, 0, &cfg); err != nil {
			return core.Fail(err)
		}
		return resultOf(true, r.kv.TestConnection(ctx, cfg))

	case "redis:connect":
		var cfg core.KVConfig
		if err := decodeArg(args, 0, &cfg); err != nil {
			return core.Fail(err)
		}
		id, err := r.kv.Connect(ctx, cfg)
		if err != nil {
			return core.Fail(err)
		}
		return core.Connected(id)

	case "redis:disconnect":
		id, err := argString(args, 0)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(true, r.kv.Disconnect(id))

	case "redis:getDatabases":
		id, err := argString(args, 0)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.kv.Databases(id))

	case "redis:selectDatabase":
		id, err := argString(args, 0)
		if err != nil {
			return core.Fail(err)
		}
		index, err := argInt(args, 1)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(index, r.kv.SelectDatabase(ctx, id, index))

	case "redis:getKeys":
		id, err := argString(args, 0)
		if err != nil {
			return core.Fail(err)
		}
		pattern := ""
		if len(args) > 1 && args[1] != nil {
			if pattern, err = argString(args, 1); err != nil {
				return core.Fail(err)
			}
		}
		return resultOf(r.kv.Keys(ctx, id, pattern))

	case "redis:getKeyType":
		id, key, err := keyScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.kv.KeyType(ctx, id, key))

	case "redis:getValue":
		id, key, err := keyScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.kv.GetValue(ctx, id, key))

	case "redis:setValue":
		id, key, err := keyScope(args)
		if err != nil {
			return core.Fail(err)
		}
		keyType, err := argString(args, 3)
		if err != nil {
			return core.Fail(err)
		}
		var value any
		if len(args) > 2 {
			value = args[2]
		}
		return resultOf(true, r.kv.SetValue(ctx, id, key, value, core.KeyType(keyType)))

	case "redis:deleteKey":
		id, key, err := keyScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.kv.DeleteKey(ctx, id, key))

	case "redis:getTTL":
		id, key, err := keyScope(args)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.kv.TTL(ctx, id, key))

	case "redis:executeCommand":
		id, err := argString(args, 0)
		if err != nil {
			return core.Fail(err)
		}
		command, err := argString(args, 1)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.kv.ExecuteCommand(ctx, id, command))

	case "redis:getInfo":
		id, err := argString(args, 0)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.kv.Info(ctx, id))

	case "redis:getDbSize":
		id, err := argString(args, 0)
		if err != nil {
			return core.Fail(err)
		}
		return resultOf(r.kv.DBSize(ctx, id))
	}

	return core.Fail(fmt.Errorf("%w: %s", ErrUnknownOperation, op))
}

// resultOf folds a (payload, error) pair into the envelope.
func resultOf[T any](payload T, err error) core.Envelope {
	if err != nil {
		return core.Fail(err)
	}
	return core.OK(payload)
}

// sessionScope extracts the (sessionId, database) prefix shared by the
// database-scoped relational operations.
func sessionScope(args []any) (string, string, error) {
	id, err := argString(args, 0)
	if err != nil {
		return "", "", err
	}
	db, err := argString(args, 1)
	if err != nil {
		return "", "", err
	}
	return id, db, nil
}

// tableScope extracts the (sessionId, database, table) prefix shared by
// the table-scoped relational operations.
func tableScope(args []any) (string, string, string, error) {
	id, db, err := sessionScope(args)
	if err != nil {
		return "", "", "", err
	}
	table, err := argString(args, 2)
	if err != nil {
		return "", "", "", err
	}
	return id, db, table, nil
}

// keyScope extracts the (sessionId, key) prefix shared by the key-scoped
// key-value operations.
func keyScope(args []any) (string, string, error) {
	id, err := argString(args, 0)
	if err != nil {
		return "", "", err
	}
	key, err := argString(args, 1)
	if err != nil {
		return "", "", err
	}
	return id, key, nil
}
