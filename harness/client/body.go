package client

import (
	"encoding/json"
	"strconv"

	"github.com/Laisky/errors/v2"
)

// Body is a decoded response. Non-JSON responses decode to an empty object.
type Body struct {
	raw   []byte
	value any
}

func decodeBody(raw []byte) Body {
	b := Body{raw: raw}
	if len(raw) == 0 {
		b.value = map[string]any{}
		return b
	}
	if err := json.Unmarshal(raw, &b.value); err != nil || b.value == nil {
		b.value = map[string]any{}
	}
	return b
}

// Bytes returns the undecoded response payload.
func (b Body) Bytes() []byte {
	return b.raw
}

// Raw returns the decoded JSON value.
func (b Body) Raw() any {
	if b.value == nil {
		return map[string]any{}
	}
	return b.value
}

// Map returns the top-level object, or an empty map when the body is not an object.
func (b Body) Map() map[string]any {
	if m, ok := b.value.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Has reports whether key is present at the top level.
func (b Body) Has(key string) bool {
	_, ok := b.Map()[key]
	return ok
}

// Items returns the body as a list. A bare array is returned as-is; otherwise the first
// wrapper key holding an array is used.
func (b Body) Items(wrapperKeys ...string) []any {
	if list, ok := b.value.([]any); ok {
		return list
	}
	m := b.Map()
	for _, k := range wrapperKeys {
		if list, ok := m[k].([]any); ok {
			return list
		}
	}
	return nil
}

// IsList reports whether the body (or one of the wrapper keys) is an array.
func (b Body) IsList(wrapperKeys ...string) bool {
	if _, ok := b.value.([]any); ok {
		return true
	}
	m := b.Map()
	for _, k := range wrapperKeys {
		if _, ok := m[k].([]any); ok {
			return true
		}
	}
	return false
}

// Get walks nested objects by key. Numeric segments index into arrays.
func (b Body) Get(path ...string) (any, bool) {
	return lookup(b.value, path...)
}

// String returns the string at path, or "" when absent or not a string.
func (b Body) String(path ...string) string {
	v, _ := b.Get(path...)
	return AsString(v)
}

// Int returns the number at path as an int.
func (b Body) Int(path ...string) (int, bool) {
	v, ok := b.Get(path...)
	if !ok {
		return 0, false
	}
	return AsInt(v)
}

// Bool returns the boolean at path.
func (b Body) Bool(path ...string) (bool, bool) {
	v, ok := b.Get(path...)
	if !ok {
		return false, false
	}
	flag, ok := v.(bool)
	return flag, ok
}

// Decode unmarshals the raw payload into v.
func (b Body) Decode(v any) error {
	if len(b.raw) == 0 {
		return errors.New("empty response body")
	}
	if err := json.Unmarshal(b.raw, v); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

func lookup(v any, path ...string) (any, bool) {
	cur := v
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// AsString converts a decoded JSON scalar to a string. Numbers render without exponent.
func AsString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// AsInt converts a decoded JSON number to an int.
func AsInt(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		return int(val), true
	case int:
		return val, true
	case string:
		n, err := strconv.Atoi(val)
		return n, err == nil
	default:
		return 0, false
	}
}

// Object returns the element as an object, or an empty map.
func Object(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
