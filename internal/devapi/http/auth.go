package http

import (
	"errors"
	"net/http"

	"github.com/tripnest/tripnest/internal/devapi/service"
	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/slogx"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Sign in
//	@Description	Exchange email and password for a session token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		travelsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	travelsdk.AuthResponse
//	@Failure		401		{object}	travelsdk.ErrorResponse	"invalid_credentials"
//	@Failure		403		{object}	travelsdk.ErrorResponse	"forbidden: account not active"
//	@Failure		429		{object}	travelsdk.ErrorResponse
//	@Router			/v1/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req travelsdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusUnprocessableEntity, string(travelsdk.KindValidation),
			"email and password are required", map[string]string{"email": "is required", "password": "is required"})
		return
	}

	sess, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, string(travelsdk.KindInvalidCredentials),
				"The email or password is incorrect", nil)
		case errors.Is(err, service.ErrAccountDisabled):
			httpx.WriteError(w, http.StatusForbidden, string(travelsdk.KindForbidden),
				"This account is not active", nil)
		default:
			writeServerError(w, r, "Failed to sign in", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toWireAuth(sess))
}

// HandleRegister godoc
//
//	@Summary		Create a customer account
//	@Description	Self-service sign-up. Only the CUSTOMER role can be chosen; other roles join by invitation.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		travelsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	travelsdk.AuthResponse
//	@Failure		409		{object}	travelsdk.ErrorResponse	"duplicate_email"
//	@Failure		422		{object}	travelsdk.ErrorResponse	"validation_error with fields"
//	@Router			/v1/auth/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req travelsdk.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		switch {
		case writeFieldErrors(w, err):
		case errors.Is(err, service.ErrDuplicateEmail):
			httpx.WriteError(w, http.StatusConflict, string(travelsdk.KindDuplicateEmail),
				"An account with this email already exists", map[string]string{"email": "is already registered"})
		default:
			writeServerError(w, r, "Failed to register", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toWireAuth(sess))
}

// HandleLogout godoc
//
//	@Summary		Sign out
//	@Description	Revokes the presented session token.
//	@Tags			Auth
//	@Success		204
//	@Failure		401	{object}	travelsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/auth/logout [post]
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, string(travelsdk.KindUnauthenticated), "Authentication required", nil)
		return
	}

	if err := h.AuthService.Logout(r.Context(), claims); err != nil {
		writeServerError(w, r, "Failed to sign out", err)
		return
	}

	slogx.FromContext(r.Context()).Info("session revoked")
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the account behind the session token.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	travelsdk.User
//	@Failure		401	{object}	travelsdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/me [get]
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.AuthService.Me(r.Context(), httpx.UserID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			httpx.WriteError(w, http.StatusUnauthorized, string(travelsdk.KindUnauthenticated),
				"The session user no longer exists", nil)
		default:
			writeServerError(w, r, "Failed to load user", err)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toWireUser(u))
}
