package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// mapTag is the single key of the JSON object that carries a Map. Plain
// JSON objects cannot be used because they do not keep member order.
const mapTag = "map"

// ToNative converts v into values encoding/json renders without losing kind
// or member order. Lists become []any, maps become {"map": [[key, value],
// ...]}, numbers become json.Number in their notation form.
func ToNative(v Value) any {
	switch tv := v.(type) {
	case String:
		return string(tv)
	case Int:
		return json.Number(strconv.FormatInt(int64(tv), 10))
	case Float:
		s, err := formatFloat(float64(tv))
		if err != nil {
			return nil
		}
		return json.Number(s)
	case List:
		out := make([]any, 0, len(tv))
		for _, item := range tv {
			out = append(out, ToNative(item))
		}
		return out
	case Map:
		pairs := make([]any, 0, len(tv))
		for _, p := range tv {
			pairs = append(pairs, []any{string(p.Key), ToNative(p.Value)})
		}
		return map[string]any{mapTag: pairs}
	default:
		return nil
	}
}

// FromNative converts a decoded JSON tree (decoded with UseNumber) or plain
// Go values into a Value. It accepts the shapes ToNative produces.
func FromNative(x any) (Value, error) {
	switch tx := x.(type) {
	case string:
		return String(tx), nil
	case json.Number:
		s := tx.String()
		if strings.ContainsAny(s, ".eE") {
			f, err := tx.Float64()
			if err != nil {
				return nil, fmt.Errorf("%w: number %s: %v", ErrType, s, err)
			}
			return Float(f), nil
		}
		n, err := tx.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: number %s: %v", ErrType, s, err)
		}
		return Int(n), nil
	case int:
		return Int(tx), nil
	case int64:
		return Int(tx), nil
	case float64:
		return Float(tx), nil
	case []any:
		out := make(List, 0, len(tx))
		for i, item := range tx {
			v, err := FromNative(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	case map[string]any:
		raw, ok := tx[mapTag]
		if !ok || len(tx) != 1 {
			return nil, fmt.Errorf("%w: object must be {%q: [[key, value], ...]}", ErrType, mapTag)
		}
		pairs, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %q must hold a list of pairs", ErrType, mapTag)
		}
		out := make(Map, 0, len(pairs))
		seen := make(map[string]struct{}, len(pairs))
		for i, rawPair := range pairs {
			pair, ok := rawPair.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("%w: map member %d must be [key, value]", ErrType, i)
			}
			key, ok := pair[0].(string)
			if !ok {
				return nil, fmt.Errorf("%w: map member %d key must be a string", ErrType, i)
			}
			if _, dup := seen[key]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, key)
			}
			seen[key] = struct{}{}
			v, err := FromNative(pair[1])
			if err != nil {
				return nil, fmt.Errorf("map member %q: %w", key, err)
			}
			out = append(out, Pair{Key: String(key), Value: v})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported value %T", ErrType, x)
	}
}

// DecodeJSON reads a JSON document into a Value, keeping integer and float
// literals apart.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("protocol: decode json: %w", err)
	}
	return FromNative(raw)
}
