// Package runtime executes codec plans directly: a token-level decode state
// machine and encode loop with the same visible semantics as the rendered
// codecs. The generated source is the fast path; this executor is the
// reference path and what the test suite exercises.
package runtime

import (
	"errors"
	"fmt"
)

// ErrNullRoot is returned when a nil value is handed to Encode. Callers that
// want to serialize null must opt in by wrapping, never by passing nil.
var ErrNullRoot = errors.New("cannot encode a null root value; wrap the codec for null-safety")

// DataErrorKind classifies decode-time data errors.
type DataErrorKind int

const (
	// RequiredMissing means a non-nullable, non-defaulted property had no
	// value once the enclosing object was fully read.
	RequiredMissing DataErrorKind = iota

	// UnexpectedNull means an explicit JSON null arrived for a
	// non-nullable property.
	UnexpectedNull

	// DuplicateKey means the same recognized wire name appeared twice in
	// one object.
	DuplicateKey
)

func (k DataErrorKind) String() string {
	switch k {
	case RequiredMissing:
		return "required value missing"
	case UnexpectedNull:
		return "unexpected null"
	default:
		return "duplicate key"
	}
}

// DataError is a decode-time failure surfaced to the immediate caller. The
// declared property name and wire name are both carried so messages stay
// actionable when the two differ.
type DataError struct {
	Kind     DataErrorKind
	Property string
	WireName string
}

func (e *DataError) Error() string {
	if e.Property != "" && e.Property != e.WireName {
		return fmt.Sprintf("%s for property %q (wire name %q)", e.Kind, e.Property, e.WireName)
	}
	return fmt.Sprintf("%s for %q", e.Kind, e.WireName)
}

// IsDataError reports whether err is a DataError of the given kind.
func IsDataError(err error, kind DataErrorKind) bool {
	var de *DataError
	return errors.As(err, &de) && de.Kind == kind
}
