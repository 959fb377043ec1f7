package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Arguments holds tool call arguments as raw JSON. Providers hand them over
// either as a structured value (a JSON object) or as a JSON string whose
// contents are the textual encoding of that object.
type Arguments json.RawMessage

// TextArguments wraps a textual JSON encoding, as most chat APIs return it.
func TextArguments(s string) Arguments {
	b, _ := json.Marshal(s)
	return Arguments(b)
}

// ObjectArguments wraps an already structured value.
func ObjectArguments(v any) (Arguments, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolArgument, err)
	}
	return Arguments(b), nil
}

// MarshalJSON keeps the raw bytes, so a textual encoding stays a JSON string.
func (a Arguments) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return a, nil
}

func (a *Arguments) UnmarshalJSON(b []byte) error {
	*a = append((*a)[:0], b...)
	return nil
}

// Text returns the textual JSON encoding of the arguments.
func (a Arguments) Text() string {
	raw := bytes.TrimSpace(a)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// DecodeArguments turns either argument shape into an argument object.
// Missing or null arguments decode to an empty object.
func DecodeArguments(a Arguments) (map[string]any, error) {
	raw := bytes.TrimSpace(a)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrToolArgument, err)
		}
		raw = bytes.TrimSpace([]byte(s))
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolArgument, err)
	}
	switch obj := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return obj, nil
	default:
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrToolArgument, v)
	}
}
