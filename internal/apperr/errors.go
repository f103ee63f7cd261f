// Package apperr defines the error kinds surfaced by the CMS and the public API.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindInvalidCredentials
	KindInvalidToken
	KindInactive
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstreamFetch
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindInvalidToken:
		return "invalid_token"
	case KindInactive:
		return "inactive"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstreamFetch:
		return "upstream_fetch"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error carries a kind, a message that is safe to show to clients and the
// underlying cause, which is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func Validation(msg string) *Error {
	return newError(KindValidation, msg, nil)
}

// ValidationFields reports per-field validation failures (field -> failed tag).
func ValidationFields(fields map[string]string) *Error {
	e := newError(KindValidation, "Validation failed", nil)
	e.Fields = fields
	return e
}

// InvalidCredentials is returned for every failed login, whatever the reason.
func InvalidCredentials() *Error {
	return newError(KindInvalidCredentials, "Invalid email or password", nil)
}

func InvalidToken(cause error) *Error {
	return newError(KindInvalidToken, "Invalid or expired token", cause)
}

func Inactive() *Error {
	return newError(KindInactive, "Account is inactive", nil)
}

func Forbidden() *Error {
	return newError(KindForbidden, "You do not have permission to perform this action", nil)
}

func NotFound(what string) *Error {
	return newError(KindNotFound, what+" not found", nil)
}

func Conflict(msg string) *Error {
	return newError(KindConflict, msg, nil)
}

func UpstreamFetch(msg string, cause error) *Error {
	return newError(KindUpstreamFetch, msg, cause)
}

func Persistence(cause error) *Error {
	return newError(KindPersistence, "Internal server error", cause)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
