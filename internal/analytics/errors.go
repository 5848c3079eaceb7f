package analytics

import (
	"errors"
	"fmt"
)

// Kind is the stable error category surfaced to callers.
type Kind string

const (
	KindInvalidDateFormat  Kind = "InvalidDateFormat"
	KindMissingParameter   Kind = "MissingParameter"
	KindInvalidParameter   Kind = "InvalidParameter"
	KindAllocation         Kind = "AllocationError"
	KindNotFound           Kind = "NotFound"
	KindAggregationFailure Kind = "AggregationFailure"
)

// Error carries a Kind, the offending field when there is one, and the
// underlying cause.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

// Sentinels for errors.Is; matching is by Kind only.
var (
	ErrInvalidDateFormat  = &Error{Kind: KindInvalidDateFormat}
	ErrMissingParameter   = &Error{Kind: KindMissingParameter}
	ErrInvalidParameter   = &Error{Kind: KindInvalidParameter}
	ErrAllocation         = &Error{Kind: KindAllocation}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrAggregationFailure = &Error{Kind: KindAggregationFailure}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("analytics: %s: %v", msg, e.Err)
	}
	return "analytics: " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf reports the Kind of err, defaulting to AggregationFailure.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindAggregationFailure
}

func invalidDate(field, raw string) error {
	return &Error{Kind: KindInvalidDateFormat, Field: field, Message: fmt.Sprintf("invalid date %q", raw)}
}

func missingParam(field string) error {
	return &Error{Kind: KindMissingParameter, Field: field, Message: "parameter is required"}
}

func invalidParam(field, raw string) error {
	return &Error{Kind: KindInvalidParameter, Field: field, Message: fmt.Sprintf("unsupported value %q", raw)}
}

func allocationError(msg string) error {
	return &Error{Kind: KindAllocation, Message: msg}
}

// aggregationFailure wraps store or computation errors, leaving typed errors
// untouched.
func aggregationFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindAggregationFailure, Message: op, Err: err}
}

// InvalidParameter reports a request value that could not be interpreted.
func InvalidParameter(field, raw string) error {
	return invalidParam(field, raw)
}
