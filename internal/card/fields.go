package card

import (
	"strings"

	"cardbook/internal/common/errors"
)

// Shape constrains the shape of a raw field value.
type Shape int

const (
	// Scalar accepts a single string only.
	Scalar Shape = iota
	// List accepts a list of strings; a single string is wrapped.
	List
	// ScalarOrList accepts either form.
	ScalarOrList
)

// Normalize converts raw user input into clean values ready to be stored in
// a vCard field. The input is either a single string or a flat list of
// strings; anything else is rejected. The result is always returned as a
// slice: a scalar input becomes a one-element slice. List elements are
// trimmed and empty elements are dropped.
//
// Normalize is pure; every field setter on Card routes its input through it
// before touching the underlying vCard.
func Normalize(field string, value interface{}, shape Shape) ([]string, error) {
	switch v := value.(type) {
	case nil:
		if shape == Scalar {
			return []string{""}, nil
		}
		return nil, nil
	case string:
		return []string{strings.TrimSpace(v)}, nil
	case []string:
		if shape == Scalar {
			return nil, errors.ValidationError(field, "must contain a string")
		}
		return cleanList(field, toAnyList(v))
	case []interface{}:
		if shape == Scalar {
			return nil, errors.ValidationError(field, "must contain a string")
		}
		return cleanList(field, v)
	default:
		switch shape {
		case Scalar:
			return nil, errors.ValidationError(field, "must be a string")
		case List:
			return nil, errors.ValidationError(field, "must be a list with strings")
		default:
			return nil, errors.ValidationError(field,
				"must be a string or a list with strings")
		}
	}
}

// NormalizeScalar is a convenience wrapper for fields with Scalar shape.
func NormalizeScalar(field string, value interface{}) (string, error) {
	norm, err := Normalize(field, value, Scalar)
	if err != nil {
		return "", err
	}
	return norm[0], nil
}

func cleanList(field string, values []interface{}) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, entry := range values {
		s, ok := entry.(string)
		if !ok {
			return nil, errors.ValidationError(field, "must not contain a nested list")
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func toAnyList(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
