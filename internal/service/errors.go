package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// NotFoundError names the missing resource. It matches ErrNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return strings.ToLower(e.Resource) + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Message is the client-facing text, e.g. "Category not found".
func (e *NotFoundError) Message() string {
	return e.Resource + " not found"
}

// ValidationError collects messages per input field, keyed by JSON name.
type ValidationError struct {
	Fields map[string][]string
	order  []string
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Message is the first field message, followed by a count of the rest.
func (e *ValidationError) Message() string {
	if e.Empty() {
		return "The given data was invalid."
	}
	first := e.Fields[e.order[0]][0]
	rest := -1
	for _, msgs := range e.Fields {
		rest += len(msgs)
	}
	switch rest {
	case 0:
		return first
	case 1:
		return first + " (and 1 more error)"
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.order, ", ")
}

// errOrNil returns e as an error only when it holds messages.
func (e *ValidationError) errOrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}
