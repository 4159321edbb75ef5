package onboarding

import (
	"errors"

	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// Class tells a page how to present an error.
type Class uint8

const (
	// Succeeded means there was no error.
	Succeeded Class = iota
	// Correctable errors point at form fields or a conflicting record;
	// the user edits and resubmits.
	Correctable
	// Blocking errors end this attempt: the token cannot become valid
	// again without a new invitation.
	Blocking
	// Retryable errors are transient; offer a manual retry.
	Retryable
	// Denied means the session is missing or lacks the privilege.
	Denied
)

func (c Class) String() string {
	switch c {
	case Succeeded:
		return "succeeded"
	case Correctable:
		return "correctable"
	case Blocking:
		return "blocking"
	case Retryable:
		return "retryable"
	case Denied:
		return "denied"
	}
	return "unknown"
}

// Outcome classifies err.
func Outcome(err error) Class {
	switch {
	case err == nil:
		return Succeeded
	case errors.Is(err, travelsdk.ErrTokenInvalid), errors.Is(err, travelsdk.ErrTokenExpired):
		return Blocking
	case errors.Is(err, travelsdk.ErrValidation),
		errors.Is(err, travelsdk.ErrDuplicateInvite),
		errors.Is(err, travelsdk.ErrDuplicateEmail),
		errors.Is(err, travelsdk.ErrInvalidCredentials),
		errors.Is(err, travelsdk.ErrNotFound):
		return Correctable
	case errors.Is(err, travelsdk.ErrUnauthenticated), errors.Is(err, travelsdk.ErrForbidden):
		return Denied
	}
	// Transport failures, 5xx and cancelled calls.
	return Retryable
}
