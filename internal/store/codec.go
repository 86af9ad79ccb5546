package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Wire markers for values JSON cannot carry natively.
const (
	timeMarker            = "$time"
	serverTimestampMarker = "$serverTimestamp"
)

// Encode converts a document value to its JSON-safe wire form. time.Time becomes
// {"$time": RFC3339Nano} and ServerTimestamp becomes {"$serverTimestamp": true}.
func Encode(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, string:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64, float64:
		return x, nil
	case float32:
		return float64(x), nil
	case json.Number:
		if n, ok := toInt(x); ok {
			return n, nil
		}
		f, _ := toFloat(x)
		return f, nil
	case time.Time:
		return map[string]any{timeMarker: x.UTC().Format(time.RFC3339Nano)}, nil
	case serverTimestamp:
		return map[string]any{serverTimestampMarker: true}, nil
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			enc, err := Encode(e)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out, nil
	case map[string]any:
		return EncodeData(x)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func EncodeData(data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for k, v := range data {
		enc, err := Encode(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		out[k] = enc
	}
	return out, nil
}

// Decode reverses Encode. Integral JSON numbers come back as int64.
func Decode(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, ok := toInt(x); ok {
			return n
		}
		f, _ := toFloat(x)
		return f
	case float64:
		if n, ok := toInt(x); ok {
			return n
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Decode(e)
		}
		return out
	case map[string]any:
		if len(x) == 1 {
			if s, ok := x[timeMarker].(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
					return t
				}
			}
			if b, ok := x[serverTimestampMarker].(bool); ok && b {
				return ServerTimestamp
			}
		}
		return DecodeData(x)
	}
	return v
}

func DecodeData(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = Decode(v)
	}
	return out
}

func Marshal(data map[string]any) ([]byte, error) {
	enc, err := EncodeData(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(enc)
}

func Unmarshal(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return DecodeData(raw), nil
}

// resolveTimestamps replaces every ServerTimestamp sentinel with now.
func resolveTimestamps(data map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch x := v.(type) {
		case serverTimestamp:
			out[k] = now
		case map[string]any:
			out[k] = resolveTimestamps(x, now)
		default:
			out[k] = v
		}
	}
	return out
}

// mergeData merges src into dst recursively: nested maps are merged field by field,
// every other value (lists included) replaces the old one.
func mergeData(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := out[k].(map[string]any); ok {
				out[k] = mergeData(dm, sm)
				continue
			}
		}
		out[k] = v
	}
	return out
}
