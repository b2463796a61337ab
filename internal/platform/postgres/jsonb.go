package postgres

import (
	"encoding/json"
	"fmt"
)

// jsonbArg encodes v for a nullable JSONB column. A nil pointer is SQL NULL.
func jsonbArg[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return string(b), nil
}

// jsonbValue decodes a nullable JSONB column. NULL decodes to nil.
func jsonbValue[T any](raw []byte) (*T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return v, nil
}
