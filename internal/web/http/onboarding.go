package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tripnest/tripnest/internal/web/flash"
	"github.com/tripnest/tripnest/internal/web/onboarding"
	"github.com/tripnest/tripnest/internal/web/session"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// OnboardingHandler serves the invitee side of an invitation: the token
// link from the email, and the form that activates the account.
type OnboardingHandler struct {
	Workflow  *onboarding.Workflow
	Registry  *session.Registry
	Pages     *Renderer
	CookieTTL time.Duration
}

// Start verifies the token in the link. The form is only shown for a
// pending, unexpired invitation.
func (h *OnboardingHandler) Start(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))

	d, err := h.Workflow.VerifyInviteToken(r.Context(), token)
	if err != nil {
		h.fail(w, r, token, err)
		return
	}

	h.Pages.Render(w, r, http.StatusOK, "onboarding.html", Page{
		Title: "Complete your registration",
		Form: map[string]string{
			"token":             token,
			"invite_email":      d.Email,
			"invite_role_label": d.Role.Label(),
		},
	})
}

// Complete activates the account and signs the new user in.
func (h *OnboardingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	in := onboarding.CompleteInput{
		Token:           strings.TrimSpace(r.PostFormValue("token")),
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Phone:           strings.TrimSpace(r.PostFormValue("phone")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}

	s := h.Registry.NewStore()
	res, err := h.Workflow.CompleteOnboarding(r.Context(), s, in)
	if err != nil {
		if onboarding.Outcome(err) != onboarding.Correctable {
			h.fail(w, r, in.Token, err)
			return
		}
		p := Page{
			Title: "Complete your registration",
			Form: map[string]string{
				"token":             in.Token,
				"invite_email":      r.PostFormValue("invite_email"),
				"invite_role_label": r.PostFormValue("invite_role_label"),
				"name":              in.Name,
				"phone":             in.Phone,
			},
			Errors: map[string]string{},
		}
		h.Pages.Render(w, r, formError(&p, err), "onboarding.html", p)
		return
	}

	h.Registry.Replace(r.Context(), session.FromContext(r.Context()), s)
	session.WriteCookie(w, r, s.Snapshot().Token, h.CookieTTL)
	flash.Write(w, r, flash.Notice{Kind: flash.Success, Message: "Your account is active. Welcome, " + res.User.Name + "."})
	http.Redirect(w, r, res.Landing, http.StatusSeeOther)
}

// fail renders the terminal pages. Invalid and expired tokens get
// different copy; transient failures offer a retry of the token link.
func (h *OnboardingHandler) fail(w http.ResponseWriter, r *http.Request, token string, err error) {
	switch onboarding.Outcome(err) {
	case onboarding.Blocking:
		p := Page{Title: "Invitation not valid", Error: "This invitation link is not valid. It may have been used already or withdrawn."}
		if errors.Is(err, travelsdk.ErrTokenExpired) {
			p = Page{Title: "Invitation expired", Error: "This invitation has expired."}
		}
		h.Pages.Render(w, r, http.StatusGone, "blocked.html", p)
	default:
		p := Page{Title: "Something went wrong", Errors: map[string]string{}}
		status := formError(&p, err)
		if token != "" {
			p.Retry = "/onboarding?" + url.Values{"token": {token}}.Encode()
		}
		h.Pages.Render(w, r, status, "unavailable.html", p)
	}
}
