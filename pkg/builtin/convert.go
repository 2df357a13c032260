package builtin

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// BytesToString decodes a []byte value into a string. It also accepts a
// string directly, so it can sit at the front of a chain whose upstream
// edge already produced text.
func BytesToString(value any) (any, error) {
	switch v := value.(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	default:
		return nil, fmt.Errorf("builtin: bytes_to_string: unsupported input %T", value)
	}
}

// StringToBytes is BytesToString's inverse.
func StringToBytes(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("builtin: string_to_bytes: unsupported input %T", value)
	}
	return []byte(s), nil
}

// StringToJSON parses a JSON-encoded string (or byte slice) into a generic
// map or slice.
func StringToJSON(value any) (any, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return nil, fmt.Errorf("builtin: string_to_json: unsupported input %T", value)
	}

	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("builtin: string_to_json: %w", err)
	}
	return out, nil
}

// JSONToString serializes any JSON-marshalable value back to its compact
// string form.
func JSONToString(value any) (any, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("builtin: json_to_string: %w", err)
	}
	return string(b), nil
}

// Base64Decode decodes a base64-encoded string into raw bytes.
func Base64Decode(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("builtin: base64_decode: unsupported input %T", value)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("builtin: base64_decode: %w", err)
	}
	return data, nil
}

// Base64Encode is Base64Decode's inverse, over []byte or string input.
func Base64Encode(value any) (any, error) {
	switch v := value.(type) {
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case string:
		return base64.StdEncoding.EncodeToString([]byte(v)), nil
	default:
		return nil, fmt.Errorf("builtin: base64_encode: unsupported input %T", value)
	}
}
