package models

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON field from an explicit null.
// Set is true when the key was present; Null is true when its value was null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a set, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns a set Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns nil for null or unset, else a pointer to a copy of the value.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}

// IsZero reports an unset value, so `omitzero` drops absent fields on encode.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}
