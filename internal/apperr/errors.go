// Package apperr defines the closed set of failure kinds reported by the
// tracker services. Mutations convert every failure into one of these kinds
// so callers get a uniform, structured outcome instead of a raised fault.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	// Unexpected wraps any fault that does not fit another kind,
	// including recovered panics.
	Unexpected Kind = iota
	// NotFound reports a lookup miss along the organization chain.
	NotFound
	// InvalidField reports a rejected input value.
	InvalidField
	// PersistenceFault reports a failing store operation.
	PersistenceFault
	// Forbidden reports a caller that may not perform the operation at all.
	Forbidden
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NOT_FOUND"
	case InvalidField:
		return "INVALID_FIELD"
	case PersistenceFault:
		return "PERSISTENCE_FAULT"
	case Forbidden:
		return "FORBIDDEN"
	default:
		return "UNEXPECTED"
	}
}

// Error is a classified failure. Message is the client-facing text.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err,
// &Error{Kind: NotFound}) works without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// NotFoundf returns a NotFound failure with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Invalid returns an InvalidField failure for field.
func Invalid(field, message string) *Error {
	return &Error{Kind: InvalidField, Field: field, Message: message}
}

// Forbiddenf returns a Forbidden failure with a formatted message.
func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: Forbidden, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a store fault. The message is the fault description.
func Persistence(err error) *Error {
	return &Error{Kind: PersistenceFault, Message: err.Error(), Err: err}
}

// Unexpectedf wraps an uncategorized fault.
func Unexpectedf(cause error, format string, args ...any) *Error {
	return &Error{Kind: Unexpected, Message: fmt.Sprintf(format, args...), Err: cause}
}

// As returns err as an *Error when it is one, or wraps it as Unexpected.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Unexpected, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err, or Unexpected for unclassified errors.
func KindOf(err error) Kind {
	return As(err).Kind
}

// List carries several failures reported together, such as one per
// rejected input field.
type List []*Error

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Flatten returns the failures err carries: the members of a List, or
// err itself classified with As.
func Flatten(err error) []*Error {
	if err == nil {
		return nil
	}
	var l List
	if errors.As(err, &l) {
		return l
	}
	return []*Error{As(err)}
}
