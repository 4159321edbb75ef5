package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/tripnest/tripnest/internal/web/guard"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

const msgUnavailable = "We could not reach TripNest just now. Please try again in a moment."

// formError fills p with what the user should see for err and returns the
// status to render it with. Token errors are handled by the onboarding
// pages and never reach here.
func formError(p *Page, err error) int {
	e, _ := travelsdk.AsError(err)

	switch {
	case errors.Is(err, travelsdk.ErrValidation):
		if e != nil {
			for k, v := range e.Fields {
				p.Errors[k] = v
			}
		}
		if len(p.Errors) == 0 {
			p.Error = "Please check the form and try again."
		}
		return http.StatusUnprocessableEntity
	case errors.Is(err, travelsdk.ErrInvalidCredentials):
		p.Error = "The email or password is incorrect."
		return http.StatusUnauthorized
	case errors.Is(err, travelsdk.ErrDuplicateEmail):
		p.Errors["email"] = "is already registered"
		return http.StatusConflict
	case errors.Is(err, travelsdk.ErrDuplicateInvite):
		p.Errors["email"] = "already has a pending invitation"
		return http.StatusConflict
	case errors.Is(err, travelsdk.ErrNotFound):
		p.Error = "That record no longer exists."
		return http.StatusNotFound
	case errors.Is(err, travelsdk.ErrForbidden):
		p.Error = "You are not allowed to do that."
		return http.StatusForbidden
	case errors.Is(err, travelsdk.ErrUnauthenticated):
		p.Error = "Your session has ended. Please sign in again."
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		p.Error = msgUnavailable
		return http.StatusGatewayTimeout
	}
	p.Error = msgUnavailable
	return http.StatusServiceUnavailable
}

// noticeText is the one-line version of formError for flash notices.
func noticeText(err error) string {
	p := Page{Errors: map[string]string{}}
	formError(&p, err)
	if p.Error != "" {
		return p.Error
	}
	for k, v := range p.Errors {
		return k + " " + v
	}
	return msgUnavailable
}

// signInAgain sends an expired session back to the login page.
func signInAgain(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, guard.LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
}
