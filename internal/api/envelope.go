package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeList decodes a list payload tolerating the envelope shapes the
// backend has shipped over time. The precedence is fixed:
//
//  1. bare JSON array
//  2. {"results": [...]}
//  3. {"data": [...]}
//  4. a resource-named key ("users", "interviews", ...)
//
// A payload that parses but matches none of these degrades to an empty
// list rather than failing the caller. Unparseable JSON is an error.
func decodeList[T any](data []byte, altKeys ...string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("malformed list payload: %w", err)
		}
		return out, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}

	keys := append([]string{"results", "data"}, altKeys...)
	for _, key := range keys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		inner := bytes.TrimSpace(raw)
		if len(inner) == 0 || inner[0] != '[' {
			// Key present but not a list; fall through to the next shape.
			continue
		}
		var out []T
		if err := json.Unmarshal(inner, &out); err != nil {
			return nil, fmt.Errorf("malformed %q payload: %w", key, err)
		}
		return out, nil
	}

	return []T{}, nil
}
