package router

import (
	"encoding/json"
	"fmt"
	"math"
)

// Positional arguments cross the boundary as JSON-shaped values. The
// helpers below coerce them into the types the registry methods take;
// any mismatch becomes an envelope error, never a panic.

// argString returns the argument at position i as a string.
func argString(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing argument %d", i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d: expected string, got %T", i, args[i])
	}
	return s, nil
}

// argInt returns the argument at position i as an int. JSON numbers
// arrive as float64.
func argInt(args []any, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i)
	}
	switch v := args[i].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("argument %d: expected integer, got %v", i, v)
		}
		return int(v), nil
	case int:
		return v, nil
	}
	return 0, fmt.Errorf("argument %d: expected number, got %T", i, args[i])
}

// argMap returns the argument at position i as a field->value mapping.
func argMap(args []any, i int) (map[string]any, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	m, ok := args[i].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument %d: expected object, got %T", i, args[i])
	}
	return m, nil
}

// decodeArg unmarshals the argument at position i into a typed
// destination through a JSON round trip.
func decodeArg(args []any, i int, dst any) error {
	if i >= len(args) {
		return fmt.Errorf("missing argument %d", i)
	}
	raw, err := json.Marshal(args[i])
	if err != nil {
		return fmt.Errorf("argument %d: %w", i, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("argument %d: %w", i, err)
	}
	return nil
}
