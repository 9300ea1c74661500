package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueKinds(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  KeyType
	}{
		{name: "string", value: StringValue("v"), want: TypeString},
		{name: "list", value: ListValue{"a", "b"}, want: TypeList},
		{name: "set", value: SetValue{"a"}, want: TypeSet},
		{name: "zset", value: ZSetValue{{Member: "a", Score: 1}}, want: TypeZSet},
		{name: "hash", value: HashValue{"f": "v"}, want: TypeHash},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Kind())
		})
	}
}

func TestTypedValueMarshal(t *testing.T) {
	tests := []struct {
		name string
		tv   TypedValue
		want string
	}{
		{
			name: "scalar",
			tv:   TypedValue{Type: TypeString, Value: StringValue("v")},
			want: `{"type":"string","value":"v"}`,
		},
		{
			name: "list",
			tv:   TypedValue{Type: TypeList, Value: ListValue{"a", "b"}},
			want: `{"type":"list","value":["a","b"]}`,
		},
		{
			name: "hash",
			tv:   TypedValue{Type: TypeHash, Value: HashValue{"f": "v"}},
			want: `{"type":"hash","value":{"f":"v"}}`,
		},
		{
			name: "sorted set",
			tv:   TypedValue{Type: TypeZSet, Value: ZSetValue{{Member: "a", Score: 1.5}}},
			want: `{"type":"zset","value":[{"member":"a","score":1.5}]}`,
		},
		{
			name: "absent key has null payload",
			tv:   TypedValue{Type: TypeNone},
			want: `{"type":"none","value":null}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.tv)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestEnvelopeExactlyOneSide(t *testing.T) {
	ok := OK([]string{"a"})
	assert.True(t, ok.Success)
	assert.NotNil(t, ok.Data)
	assert.Empty(t, ok.Error)

	fail := Fail(assert.AnError)
	assert.False(t, fail.Success)
	assert.Nil(t, fail.Data)
	assert.NotEmpty(t, fail.Error)

	connected := Connected("abc")
	assert.True(t, connected.Success)
	assert.Equal(t, "abc", connected.ConnectionID)
}

func TestConfigDefaults(t *testing.T) {
	_, port := DatabaseConfig{Host: "localhost"}.Addr()
	assert.Equal(t, 3306, port)

	_, port = DatabaseConfig{Host: "localhost", Port: 3307}.Addr()
	assert.Equal(t, 3307, port)

	_, port = KVConfig{Host: "localhost"}.Addr()
	assert.Equal(t, 6379, port)

	_, port = KVConfig{Host: "localhost", Port: 6380}.Addr()
	assert.Equal(t, 6380, port)
}
