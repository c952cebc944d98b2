package query

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is matched by every error raised while compiling a
// request. None of them ever reach the database.
var ErrInvalidRequest = errors.New("invalid request")

// MalformedReferenceError reports a reference filter that does not match
// its path shape.
type MalformedReferenceError struct {
	Field   string
	Pattern string
	Value   string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("%s reference %q is malformed: expected %s", e.Field, e.Value, e.Pattern)
}

func (e *MalformedReferenceError) Unwrap() error { return ErrInvalidRequest }

// MalformedFilterError reports a spatial filter that is not a GeoJSON geometry.
type MalformedFilterError struct {
	Field  string
	Reason string
}

func (e *MalformedFilterError) Error() string {
	return fmt.Sprintf("%s filter is malformed: %s", e.Field, e.Reason)
}

func (e *MalformedFilterError) Unwrap() error { return ErrInvalidRequest }

// InvalidGroupError reports a group selector outside the known levels.
type InvalidGroupError struct {
	Value string
}

func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("group %q is invalid: expected one of state, county, assembly, senate, congressional, ward", e.Value)
}

func (e *InvalidGroupError) Unwrap() error { return ErrInvalidRequest }

// MissingKeyError reports an empty required path key.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("path key %s is required", e.Key)
}

func (e *MissingKeyError) Unwrap() error { return ErrInvalidRequest }
