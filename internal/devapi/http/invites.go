package http

import (
	"errors"
	"net/http"

	"github.com/tripnest/tripnest/internal/devapi/service"
	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

type InviteHandler struct {
	InviteService *service.InviteService
	AuthService   *service.AuthService
}

// actor loads the caller's current account. It answers 401 itself when the
// account is gone.
func (h *InviteHandler) actor(w http.ResponseWriter, r *http.Request) (identity.User, bool) {
	u, err := h.AuthService.Me(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrUnknownUser) {
			httpx.WriteError(w, http.StatusUnauthorized, string(travelsdk.KindUnauthenticated),
				"The session user no longer exists", nil)
		} else {
			writeServerError(w, r, "Failed to load user", err)
		}
		return identity.User{}, false
	}
	return u, true
}

// HandleSend godoc
//
//	@Summary		Send an invitation
//	@Description	Platform admins may invite any role; agency admins may invite agency roles into their own agency.
//	@Description	The raw token is returned once and also delivered to the invitee.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		travelsdk.SendInviteRequest	true	"Invitation"
//	@Success		201		{object}	travelsdk.InviteIssued
//	@Failure		403		{object}	travelsdk.ErrorResponse	"forbidden"
//	@Failure		409		{object}	travelsdk.ErrorResponse	"duplicate_email or duplicate_invite"
//	@Failure		422		{object}	travelsdk.ErrorResponse	"validation_error with fields"
//	@Security		BearerAuth
//	@Router			/v1/invites [post]
func (h *InviteHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req travelsdk.SendInviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	inviter, ok := h.actor(w, r)
	if !ok {
		return
	}

	issued, err := h.InviteService.Send(r.Context(), inviter, service.SendInput{
		Email:    req.Email,
		Role:     req.Role,
		AgencyID: req.AgencyID,
	})
	if err != nil {
		switch {
		case writeFieldErrors(w, err):
		case errors.Is(err, service.ErrForbidden):
			httpx.WriteError(w, http.StatusForbidden, string(travelsdk.KindForbidden),
				"You cannot invite this role into this agency", nil)
		case errors.Is(err, service.ErrDuplicateEmail):
			httpx.WriteError(w, http.StatusConflict, string(travelsdk.KindDuplicateEmail),
				"An account with this email already exists", map[string]string{"email": "is already registered"})
		case errors.Is(err, service.ErrDuplicateInvite):
			httpx.WriteError(w, http.StatusConflict, string(travelsdk.KindDuplicateInvite),
				"This email already has a pending invitation", map[string]string{"email": "already has a pending invitation"})
		default:
			writeServerError(w, r, "Failed to send invitation", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toWireIssued(issued))
}

// HandleList godoc
//
//	@Summary		List invitations
//	@Description	Platform roles see every invitation, agency roles only their agency's.
//	@Tags			Invitations
//	@Produce		json
//	@Param			status	query		string	false	"PENDING, COMPLETED or REVOKED"
//	@Success		200		{object}	travelsdk.ListInvitesResponse
//	@Failure		403		{object}	travelsdk.ErrorResponse
//	@Failure		422		{object}	travelsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invites [get]
func (h *InviteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.actor(w, r)
	if !ok {
		return
	}

	list, err := h.InviteService.List(r.Context(), viewer, r.URL.Query().Get("status"))
	if err != nil {
		switch {
		case writeFieldErrors(w, err):
		case errors.Is(err, service.ErrForbidden):
			httpx.WriteError(w, http.StatusForbidden, string(travelsdk.KindForbidden), "Not permitted", nil)
		default:
			writeServerError(w, r, "Failed to list invitations", err)
		}
		return
	}

	out := travelsdk.ListInvitesResponse{Invitations: make([]travelsdk.Invitation, 0, len(list))}
	for _, inv := range list {
		out.Invitations = append(out.Invitations, toWireInvitation(inv))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleVerify godoc
//
//	@Summary		Inspect an invitation token
//	@Description	Tells an invitee what they were invited as, without consuming the token.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	query		string	true	"Invitation token"
//	@Success		200		{object}	travelsdk.InviteDetails
//	@Failure		404		{object}	travelsdk.ErrorResponse	"token_invalid"
//	@Failure		410		{object}	travelsdk.ErrorResponse	"token_expired"
//	@Router			/v1/invites/verify [get]
func (h *InviteHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	inv, err := h.InviteService.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeTokenError(w, r, err, "Failed to verify invitation")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, travelsdk.InviteDetails{
		Email:     inv.Email,
		Role:      inv.Role.String(),
		AgencyID:  inv.AgencyID,
		Status:    string(inv.Status),
		ExpiresAt: inv.ExpiresAt,
	})
}

// HandleComplete godoc
//
//	@Summary		Complete onboarding
//	@Description	Redeems an invitation token once, creating the invited account and starting a session.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		travelsdk.CompleteOnboardingRequest	true	"Profile and password"
//	@Success		200		{object}	travelsdk.AuthResponse
//	@Failure		404		{object}	travelsdk.ErrorResponse	"token_invalid"
//	@Failure		409		{object}	travelsdk.ErrorResponse	"duplicate_email"
//	@Failure		410		{object}	travelsdk.ErrorResponse	"token_expired"
//	@Failure		422		{object}	travelsdk.ErrorResponse	"validation_error with fields"
//	@Router			/v1/invites/complete [post]
func (h *InviteHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req travelsdk.CompleteOnboardingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.InviteService.Complete(r.Context(), service.CompleteInput{
		Token:    req.Token,
		Name:     req.Name,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case writeFieldErrors(w, err):
		case errors.Is(err, service.ErrDuplicateEmail):
			httpx.WriteError(w, http.StatusConflict, string(travelsdk.KindDuplicateEmail),
				"An account with this email already exists", nil)
		default:
			writeTokenError(w, r, err, "Failed to complete onboarding")
		}
		return
	}

	sess, err := h.AuthService.Issue(user)
	if err != nil {
		writeServerError(w, r, "Failed to start session", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toWireAuth(sess))
}

// HandleResend godoc
//
//	@Summary		Resend an invitation
//	@Description	Rotates the token of a pending invitation and restarts its expiry. The previous link stops working.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string	true	"Invitation ID"
//	@Success		200	{object}	travelsdk.InviteIssued
//	@Failure		403	{object}	travelsdk.ErrorResponse
//	@Failure		404	{object}	travelsdk.ErrorResponse
//	@Failure		409	{object}	travelsdk.ErrorResponse	"invitation no longer pending"
//	@Security		BearerAuth
//	@Router			/v1/invites/{id}/resend [post]
func (h *InviteHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	issued, err := h.InviteService.Resend(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeManageError(w, r, err, "Failed to resend invitation")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toWireIssued(issued))
}

// HandleRevoke godoc
//
//	@Summary		Revoke an invitation
//	@Description	Withdraws a pending invitation for good.
//	@Tags			Invitations
//	@Param			id	path	string	true	"Invitation ID"
//	@Success		204
//	@Failure		403	{object}	travelsdk.ErrorResponse
//	@Failure		404	{object}	travelsdk.ErrorResponse
//	@Failure		409	{object}	travelsdk.ErrorResponse	"invitation no longer pending"
//	@Security		BearerAuth
//	@Router			/v1/invites/{id}/revoke [post]
func (h *InviteHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.InviteService.Revoke(r.Context(), actor, r.PathValue("id")); err != nil {
		writeManageError(w, r, err, "Failed to revoke invitation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeTokenError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrTokenInvalid):
		httpx.WriteError(w, http.StatusNotFound, string(travelsdk.KindTokenInvalid),
			"This invitation link is not valid", nil)
	case errors.Is(err, service.ErrTokenExpired):
		httpx.WriteError(w, http.StatusGone, string(travelsdk.KindTokenExpired),
			"This invitation has expired", nil)
	default:
		writeServerError(w, r, msg, err)
	}
}

func writeManageError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, string(travelsdk.KindNotFound), "Invitation not found", nil)
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, string(travelsdk.KindForbidden),
			"You cannot manage this invitation", nil)
	case errors.Is(err, service.ErrNotPending):
		httpx.WriteError(w, http.StatusConflict, string(travelsdk.KindValidation),
			"The invitation is no longer pending", nil)
	default:
		writeServerError(w, r, msg, err)
	}
}
