package kvstore

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/dbdeck/dbdeck/internal/core"
)

// Keys enumerates keys matching a glob-style pattern, sorted
// lexicographically for stable display. An empty pattern matches
// everything. Full key-space scans can be expensive on large datasets;
// that is a known limit of this operation.
func (r *Registry) Keys(ctx context.Context, sessionID, pattern string) ([]string, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		pattern = "*"
	}

	keys, err := session.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// KeyType returns the structural type tag of a key. Absent keys report
// "none".
func (r *Registry) KeyType(ctx context.Context, sessionID, key string) (core.KeyType, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return "", err
	}

	t, err := session.client.Type(ctx, key).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read type of key %s: %w", key, err)
	}
	return core.KeyType(t), nil
}

// GetValue reads a key, dispatching on its structural type, and returns
// the type-tagged payload. Absent or unrecognized keys yield a null
// payload rather than an error.
func (r *Registry) GetValue(ctx context.Context, sessionID, key string) (core.TypedValue, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return core.TypedValue{}, err
	}

	keyType, err := r.KeyType(ctx, sessionID, key)
	if err != nil {
		return core.TypedValue{}, err
	}

	client := session.client
	switch keyType {
	case core.TypeString:
		v, err := client.Get(ctx, key).Result()
		if err == redis.Nil {
			return core.TypedValue{Type: core.TypeNone}, nil
		}
		if err != nil {
			return core.TypedValue{}, fmt.Errorf("failed to get key %s: %w", key, err)
		}
		return core.TypedValue{Type: keyType, Value: core.StringValue(v)}, nil

	case core.TypeList:
		items, err := client.LRange(ctx, key, 0, -1).Result()
		if err != nil {
			return core.TypedValue{}, fmt.Errorf("failed to read list %s: %w", key, err)
		}
		return core.TypedValue{Type: keyType, Value: core.ListValue(items)}, nil

	case core.TypeSet:
		members, err := client.SMembers(ctx, key).Result()
		if err != nil {
			return core.TypedValue{}, fmt.Errorf("failed to read set %s: %w", key, err)
		}
		return core.TypedValue{Type: keyType, Value: core.SetValue(members)}, nil

	case core.TypeZSet:
		entries, err := client.ZRangeWithScores(ctx, key, 0, -1).Result()
		if err != nil {
			return core.TypedValue{}, fmt.Errorf("failed to read sorted set %s: %w", key, err)
		}
		pairs := make(core.ZSetValue, len(entries))
		for i, z := range entries {
			pairs[i] = core.MemberScore{Member: fmt.Sprint(z.Member), Score: z.Score}
		}
		return core.TypedValue{Type: keyType, Value: pairs}, nil

	case core.TypeHash:
		fields, err := client.HGetAll(ctx, key).Result()
		if err != nil {
			return core.TypedValue{}, fmt.Errorf("failed to read hash %s: %w", key, err)
		}
		return core.TypedValue{Type: keyType, Value: core.HashValue(fields)}, nil
	}

	return core.TypedValue{Type: core.TypeNone}, nil
}

// SetValue writes a key of the given structural type. Scalars overwrite;
// list and set writes append members; sorted-set writes expect
// member/score pairs; hash writes expect a field->value mapping.
func (r *Registry) SetValue(ctx context.Context, sessionID, key string, value any, keyType core.KeyType) error {
	session, err := r.get(sessionID)
	if err != nil {
		return err
	}
	client := session.client

	log.Printf("[REDIS] SET %s key %s on session %s", keyType, key, sessionID)
	switch keyType {
	case core.TypeString:
		if err := client.Set(ctx, key, fmt.Sprint(value), 0).Err(); err != nil {
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}
		return nil

	case core.TypeList:
		if err := client.RPush(ctx, key, members(value)...).Err(); err != nil {
			return fmt.Errorf("failed to push to list %s: %w", key, err)
		}
		return nil

	case core.TypeSet:
		if err := client.SAdd(ctx, key, members(value)...).Err(); err != nil {
			return fmt.Errorf("failed to add to set %s: %w", key, err)
		}
		return nil

	case core.TypeZSet:
		entries, err := scoredMembers(value)
		if err != nil {
			return err
		}
		if err := client.ZAdd(ctx, key, entries...).Err(); err != nil {
			return fmt.Errorf("failed to add to sorted set %s: %w", key, err)
		}
		return nil

	case core.TypeHash:
		fields, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("hash value must be a field mapping, got %T", value)
		}
		flat := make([]any, 0, len(fields)*2)
		for f, v := range fields {
			flat = append(flat, f, fmt.Sprint(v))
		}
		if err := client.HSet(ctx, key, flat...).Err(); err != nil {
			return fmt.Errorf("failed to set hash %s: %w", key, err)
		}
		return nil
	}

	return fmt.Errorf("unsupported value type: %s", keyType)
}

// members coerces a scalar or sequence argument into the variadic member
// form the client expects.
func members(value any) []any {
	if items, ok := value.([]any); ok {
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = fmt.Sprint(item)
		}
		return out
	}
	return []any{fmt.Sprint(value)}
}

// scoredMembers coerces the sorted-set write argument: either a sequence
// of {member, score} mappings or plain members scored 0.
func scoredMembers(value any) ([]redis.Z, error) {
	items, ok := value.([]any)
	if !ok {
		items = []any{value}
	}

	entries := make([]redis.Z, 0, len(items))
	for _, item := range items {
		if pair, ok := item.(map[string]any); ok {
			score, ok := pair["score"].(float64)
			if !ok {
				return nil, fmt.Errorf("sorted set entry is missing a numeric score")
			}
			entries = append(entries, redis.Z{Member: fmt.Sprint(pair["member"]), Score: score})
			continue
		}
		entries = append(entries, redis.Z{Member: fmt.Sprint(item)})
	}
	return entries, nil
}

// DeleteKey removes a key, returning the count of keys removed (0 or 1).
func (r *Registry) DeleteKey(ctx context.Context, sessionID, key string) (int64, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return 0, err
	}

	count, err := session.client.Del(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return count, nil
}

// TTL returns the remaining time-to-live of a key in seconds, passing the
// backend's own sentinels through: -1 means no expiry, -2 means the key
// is absent or expired.
func (r *Registry) TTL(ctx context.Context, sessionID, key string) (int64, error) {
	session, err := r.get(sessionID)
	if err != nil {
		return 0, err
	}

	seconds, err := session.client.Do(ctx, "ttl", key).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to read TTL of key %s: %w", key, err)
	}
	return seconds, nil
}
