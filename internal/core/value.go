package core

import "encoding/json"

// KeyType is the key-value backend's classification of a key's value
// shape, as reported by the TYPE command.
type KeyType string

const (
	TypeString KeyType = "string"
	TypeList   KeyType = "list"
	TypeSet    KeyType = "set"
	TypeZSet   KeyType = "zset"
	TypeHash   KeyType = "hash"

	// TypeNone is reported for absent or expired keys.
	TypeNone KeyType = "none"
)

// Value is the tagged union returned by a typed key read. Each structural
// type has its own concrete payload so call sites can switch exhaustively
// on Kind.
type Value interface {
	Kind() KeyType
}

// StringValue is the payload for a scalar key.
type StringValue string

func (StringValue) Kind() KeyType { return TypeString }

// ListValue is the payload for a list key, in list order.
type ListValue []string

func (ListValue) Kind() KeyType { return TypeList }

// SetValue is the payload for a set key. Member order is unspecified.
type SetValue []string

func (SetValue) Kind() KeyType { return TypeSet }

// MemberScore is one entry of a sorted-collection payload.
type MemberScore struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// ZSetValue is the payload for a sorted-set key, ordered by score.
type ZSetValue []MemberScore

func (ZSetValue) Kind() KeyType { return TypeZSet }

// HashValue is the payload for a hash key.
type HashValue map[string]string

func (HashValue) Kind() KeyType { return TypeHash }

// TypedValue is the envelope-facing form of a typed read: the structural
// type tag plus the shape-specific payload. A nil Value marshals as a
// null payload, the documented result for absent or unrecognized keys.
type TypedValue struct {
	Type  KeyType `json:"type"`
	Value Value   `json:"value"`
}

// MarshalJSON flattens the union payload into the "value" field.
func (tv TypedValue) MarshalJSON() ([]byte, error) {
	var payload any
	if tv.Value != nil {
		payload = tv.Value
	}
	return json.Marshal(struct {
		Type  KeyType `json:"type"`
		Value any     `json:"value"`
	}{Type: tv.Type, Value: payload})
}
