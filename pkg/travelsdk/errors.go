package travelsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is a coarse, client-visible failure class. The string values double
// as the "error" field of the backend's JSON error body.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindDuplicateEmail     Kind = "duplicate_email"
	KindDuplicateInvite    Kind = "duplicate_invite"
	KindTokenInvalid       Kind = "token_invalid"
	KindTokenExpired       Kind = "token_expired"
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindRequestFailed      Kind = "request_failed"
)

var knownKinds = map[Kind]bool{
	KindValidation: true, KindInvalidCredentials: true, KindDuplicateEmail: true,
	KindDuplicateInvite: true, KindTokenInvalid: true, KindTokenExpired: true,
	KindUnauthenticated: true, KindForbidden: true, KindNotFound: true,
	KindRequestFailed: true,
}

// Error is the normalised failure of an API call.
type Error struct {
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	Kind    Kind
	Message string

	// Fields holds per-field messages for KindValidation.
	Fields map[string]string

	cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same Kind, so the sentinels below work with
// errors.Is regardless of status code or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Transient reports whether repeating the same call later could succeed.
func (e *Error) Transient() bool {
	if e.Kind != KindRequestFailed {
		return false
	}
	return e.StatusCode == 0 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Sentinels for errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail}
	ErrDuplicateInvite    = &Error{Kind: KindDuplicateInvite}
	ErrTokenInvalid       = &Error{Kind: KindTokenInvalid}
	ErrTokenExpired       = &Error{Kind: KindTokenExpired}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrRequestFailed      = &Error{Kind: KindRequestFailed}
)

// NewValidationError builds a validation failure detected before any call
// was made.
func NewValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: fields}
}

// AsError extracts the *Error from err, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// parseErrorResponse turns a non-success response into a *Error. The body's
// "error" field wins when it names a known kind; otherwise the status code
// decides.
func parseErrorResponse(status int, body []byte) *Error {
	var er ErrorResponse
	_ = json.Unmarshal(body, &er)

	kind := Kind(er.Error)
	if kind == "invalid_request" {
		kind = KindValidation
	}
	if !knownKinds[kind] {
		kind = kindForStatus(status)
	}

	msg := er.ErrorDescription
	if msg == "" {
		msg = http.StatusText(status)
	}

	return &Error{
		StatusCode: status,
		Kind:       kind,
		Message:    msg,
		Fields:     er.Fields,
	}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	}
	return KindRequestFailed
}
