// Package apperr defines the error taxonomy shared by the lead, quote and catalog
// packages and by the REST collaborator client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for callers that need to decide how to surface it.
type Kind string

const (
	KindUnknown             Kind = ""
	KindValidation          Kind = "validation"
	KindNotFound            Kind = "not_found"
	KindInvalidStatus       Kind = "invalid_status"
	KindInvalidDate         Kind = "invalid_date"
	KindMissingPrerequisite Kind = "missing_prerequisite"
	KindConflict            Kind = "conflict"
	KindNetwork             Kind = "network"
	KindConsistency         Kind = "consistency"
)

// Error is the concrete error carried across package boundaries.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Field != "" && e.Msg != "":
		fmt.Fprintf(&b, "%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Field != "":
		fmt.Fprintf(&b, "invalid %s", e.Field)
	default:
		b.WriteString(string(e.Kind))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind and message so wrapped copies of a sentinel
// still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Msg == "" && t.Field == "" {
		return true
	}
	return t.Msg == e.Msg && t.Field == e.Field
}

// New builds an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Validation reports a malformed or missing field.
func Validation(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

// NotFound reports a missing resource.
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Msg: resource + " not found"}
}

// InvalidStatus reports a status value or transition that is not allowed.
func InvalidStatus(msg string) *Error {
	return &Error{Kind: KindInvalidStatus, Msg: msg}
}

// InvalidDate reports a date that breaks a business rule.
func InvalidDate(field, msg string) *Error {
	return &Error{Kind: KindInvalidDate, Field: field, Msg: msg}
}

// MissingPrerequisite reports an entity missing a reference needed by the operation.
func MissingPrerequisite(msg string) *Error {
	return &Error{Kind: KindMissingPrerequisite, Msg: msg}
}

// Conflict reports a uniqueness or capacity rule violation.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// Network wraps a transport failure or unexpected collaborator response.
func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Msg: "collaborator request failed", Err: err}
}

// Consistency reports a data-integrity violation that needs manual reconciliation.
func Consistency(msg string) *Error {
	return &Error{Kind: KindConsistency, Msg: msg}
}

// Wrap annotates err with op while keeping its kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: e.Kind, Op: op, Field: e.Field, Msg: e.Msg, Err: e.Err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool          { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool            { return KindOf(err) == KindNotFound }
func IsInvalidStatus(err error) bool       { return KindOf(err) == KindInvalidStatus }
func IsInvalidDate(err error) bool         { return KindOf(err) == KindInvalidDate }
func IsMissingPrerequisite(err error) bool { return KindOf(err) == KindMissingPrerequisite }
func IsConflict(err error) bool            { return KindOf(err) == KindConflict }
func IsNetwork(err error) bool             { return KindOf(err) == KindNetwork }
func IsConsistency(err error) bool         { return KindOf(err) == KindConsistency }

// HTTPStatus maps an error onto the status code an HTTP surface should return.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidStatus, KindInvalidDate, KindMissingPrerequisite:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
