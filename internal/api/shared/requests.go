package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// ErrInvalidBody is returned by DecodeJSON for malformed bodies.
var ErrInvalidBody = errors.New("invalid request body")

// Validate is the shared validator instance.
var Validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON decodes a single JSON value from the request body into v.
// Unknown fields and trailing data are rejected.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrInvalidBody)
	}
	return nil
}

// DecodeAndValidate decodes the body into v and validates its struct tags.
func DecodeAndValidate(r *http.Request, v any) error {
	if err := DecodeJSON(r, v); err != nil {
		return err
	}
	return Validate.Struct(v)
}
