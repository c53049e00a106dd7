package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	b := decodeBody([]byte(`{"deleted_count": 3, "state": {"is_active": true, "scenario": "x"}, "items": [1, 2]}`))

	n, ok := b.Int("deleted_count")
	require.True(t, ok)
	require.Equal(t, 3, n)

	active, ok := b.Bool("state", "is_active")
	require.True(t, ok)
	require.True(t, active)

	require.Equal(t, "x", b.String("state", "scenario"))
	require.Len(t, b.Items("items"), 2)
	require.True(t, b.Has("state"))
	require.False(t, b.Has("missing"))

	_, ok = b.Get("state", "missing")
	require.False(t, ok)
}

func TestDecodeBodyNonJSON(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("Internal Server Error"), []byte("null")} {
		b := decodeBody(raw)
		require.NotNil(t, b.Map())
		require.Empty(t, b.Map())
		require.Nil(t, b.Items())
	}
}

func TestDecodeInto(t *testing.T) {
	var v struct {
		ID string `json:"id"`
	}
	require.NoError(t, decodeBody([]byte(`{"id":"abc"}`)).Decode(&v))
	require.Equal(t, "abc", v.ID)
	require.Error(t, decodeBody(nil).Decode(&v))
}

func TestScalarHelpers(t *testing.T) {
	require.Equal(t, "12", AsString(float64(12)))
	require.Equal(t, "true", AsString(true))
	require.Equal(t, "", AsString(nil))

	n, ok := AsInt("7")
	require.True(t, ok)
	require.Equal(t, 7, n)
	_, ok = AsInt([]any{})
	require.False(t, ok)

	require.Empty(t, Object("nope"))
}
