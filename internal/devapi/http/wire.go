package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tripnest/tripnest/internal/devapi/service"
	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/slogx"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

const maxBodyBytes = 64 << 10

// decodeJSON reads a size-limited JSON body into v, answering 400 itself
// when the body is unusable.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, string(travelsdk.KindValidation), "Invalid JSON body", nil)
		return false
	}
	return true
}

// writeFieldErrors answers 422 when err carries field messages.
func writeFieldErrors(w http.ResponseWriter, err error) bool {
	var fe identity.FieldErrors
	if !errors.As(err, &fe) {
		return false
	}
	httpx.WriteError(w, http.StatusUnprocessableEntity, string(travelsdk.KindValidation),
		"Some fields need attention", fe)
	return true
}

func writeServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slogx.FromContext(r.Context()).Error(msg, "err", err)
	httpx.WriteError(w, http.StatusInternalServerError, string(travelsdk.KindRequestFailed), msg, nil)
}

func toWireUser(u identity.User) travelsdk.User {
	return travelsdk.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role.String(),
		Status:    string(u.Status),
		AgencyID:  u.AgencyID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toWireAuth(s service.Session) travelsdk.AuthResponse {
	return travelsdk.AuthResponse{
		Token:     s.Token,
		TokenType: "Bearer",
		ExpiresIn: int(s.ExpiresIn.Seconds()),
		User:      toWireUser(s.User),
	}
}

func toWireInvitation(inv identity.Invitation) travelsdk.Invitation {
	return travelsdk.Invitation{
		ID:          inv.ID,
		Email:       inv.Email,
		Role:        inv.Role.String(),
		AgencyID:    inv.AgencyID,
		Status:      string(inv.Status),
		InvitedBy:   inv.InvitedBy,
		InvitedAt:   inv.InvitedAt,
		ExpiresAt:   inv.ExpiresAt,
		CompletedAt: inv.CompletedAt,
		RevokedAt:   inv.RevokedAt,
		ResendCount: inv.ResendCount,
	}
}

func toWireIssued(is service.Issued) travelsdk.InviteIssued {
	return travelsdk.InviteIssued{Invitation: toWireInvitation(is.Invitation), Token: is.Token}
}
