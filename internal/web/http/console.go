package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/internal/web/flash"
	"github.com/tripnest/tripnest/internal/web/onboarding"
	"github.com/tripnest/tripnest/internal/web/session"
	"github.com/tripnest/tripnest/pkg/slogx"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// ConsoleHandler serves one back-office console and its invitation
// screens. Base is "/admin" or "/agency".
type ConsoleHandler struct {
	Base     string
	Title    string
	Workflow *onboarding.Workflow
	Pages    *Renderer
}

type consoleData struct {
	Base      string
	CanInvite bool
}

type invitesData struct {
	Base         string
	Roles        []identity.Role
	ChooseAgency bool
	Invitations  []identity.Invitation
}

func (h *ConsoleHandler) Home(w http.ResponseWriter, r *http.Request) {
	st := session.StateFromRequest(r)
	h.Pages.Render(w, r, http.StatusOK, "console.html", Page{
		Title: h.Title,
		Data: consoleData{
			Base:      h.Base,
			CanInvite: identity.CanAccess(st.Role(), h.Base+"/invites"),
		},
	})
}

// Invites lists invitations, filtered by ?status=.
func (h *ConsoleHandler) Invites(w http.ResponseWriter, r *http.Request) {
	p := Page{Title: "Invitations", Form: map[string]string{}, Errors: map[string]string{}}
	h.renderInvites(w, r, http.StatusOK, p)
}

// Send issues a new invitation. Agency consoles always invite into the
// inviter's own agency.
func (h *ConsoleHandler) Send(w http.ResponseWriter, r *http.Request) {
	st := session.StateFromRequest(r)
	if !st.IsAuthenticated() {
		signInAgain(w, r)
		return
	}

	in := onboarding.SendInviteInput{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Role:     strings.TrimSpace(r.PostFormValue("role")),
		AgencyID: strings.TrimSpace(r.PostFormValue("agency_id")),
	}
	if !h.chooseAgency() {
		in.AgencyID = st.User.AgencyID
	}
	if role, err := identity.ParseRole(in.Role); err == nil && !role.IsAgencyScoped() {
		in.AgencyID = ""
	}

	issued, err := h.Workflow.SendInvite(r.Context(), *st.User, inviterAPI(r), in)
	if err != nil {
		if errors.Is(err, travelsdk.ErrUnauthenticated) {
			signInAgain(w, r)
			return
		}
		p := Page{
			Title:  "Invitations",
			Form:   map[string]string{"email": in.Email, "role": in.Role, "agency_id": in.AgencyID},
			Errors: map[string]string{},
		}
		status := formError(&p, err)
		h.renderInvites(w, r, status, p)
		return
	}

	slogx.FromContext(r.Context()).Info("invitation sent",
		"invitation_id", issued.Invitation.ID, "role", issued.Invitation.Role.String())
	flash.Write(w, r, flash.Notice{Kind: flash.Success, Message: "Invitation sent to " + issued.Invitation.Email + "."})
	http.Redirect(w, r, h.Base+"/invites", http.StatusSeeOther)
}

func (h *ConsoleHandler) Resend(w http.ResponseWriter, r *http.Request) {
	issued, err := h.Workflow.ResendInvite(r.Context(), inviterAPI(r), chi.URLParam(r, "id"))
	h.afterMutation(w, r, err, func() string {
		return "A new invitation was sent to " + issued.Invitation.Email + "."
	})
}

func (h *ConsoleHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	err := h.Workflow.RevokeInvite(r.Context(), inviterAPI(r), chi.URLParam(r, "id"))
	h.afterMutation(w, r, err, func() string { return "Invitation revoked." })
}

func (h *ConsoleHandler) afterMutation(w http.ResponseWriter, r *http.Request, err error, ok func() string) {
	switch {
	case err == nil:
		flash.Write(w, r, flash.Notice{Kind: flash.Success, Message: ok()})
	case errors.Is(err, travelsdk.ErrUnauthenticated):
		signInAgain(w, r)
		return
	default:
		flash.Write(w, r, flash.Notice{Kind: flash.Error, Message: noticeText(err)})
	}
	http.Redirect(w, r, h.Base+"/invites", http.StatusSeeOther)
}

func (h *ConsoleHandler) renderInvites(w http.ResponseWriter, r *http.Request, status int, p Page) {
	st := session.StateFromRequest(r)
	if !st.IsAuthenticated() {
		signInAgain(w, r)
		return
	}

	list, err := h.Workflow.ListInvites(r.Context(), inviterAPI(r), r.URL.Query().Get("status"))
	switch {
	case errors.Is(err, travelsdk.ErrUnauthenticated):
		signInAgain(w, r)
		return
	case err != nil && p.Error == "":
		lp := Page{Errors: map[string]string{}}
		if s := formError(&lp, err); status == http.StatusOK {
			status = s
		}
		p.Error = lp.Error
		if p.Error == "" {
			p.Error = noticeText(err)
		}
	}

	p.Data = invitesData{
		Base:         h.Base,
		Roles:        identity.InvitableRoles(*st.User),
		ChooseAgency: h.chooseAgency(),
		Invitations:  list,
	}
	h.Pages.Render(w, r, status, "invites.html", p)
}

// chooseAgency reports whether the console lets the inviter pick the
// agency of an agency-scoped invitation.
func (h *ConsoleHandler) chooseAgency() bool {
	return h.Base == "/admin"
}

// inviterAPI returns the request's authenticated API session, or nil.
func inviterAPI(r *http.Request) onboarding.Inviter {
	s := session.FromContext(r.Context())
	if s == nil {
		return nil
	}
	api := s.API()
	if api == nil {
		return nil
	}
	return api
}
