package main

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeJSON parses data with json.Number enabled so integers survive as
// int64 rather than collapsing to float64, and converts the result into
// the plain Go shapes encoder.Encode accepts (map[string]any, []any,
// string, bool, int64, float64, nil).
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("fleece: parsing JSON: %w", err)
	}

	return fleeceValue(v), nil
}

func fleeceValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}

		f, _ := x.Float64()

		return f
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, child := range x {
			out[k] = fleeceValue(child)
		}

		return out
	case []any:
		out := make([]any, len(x))
		for i, child := range x {
			out[i] = fleeceValue(child)
		}

		return out
	default:
		return v
	}
}

// parseScalar interprets a command-line value for the delta subcommand:
// valid JSON (a number, bool, null, quoted string, array, or object)
// decodes as such; anything else is taken as a literal string.
func parseScalar(raw string) any {
	if !json.Valid([]byte(raw)) {
		return raw
	}

	if v, err := decodeJSON([]byte(raw)); err == nil {
		return v
	}

	return raw
}
