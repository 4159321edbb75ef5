package travelsdk

import (
	"context"
	"net/http"
	"net/url"
)

// SendInvite issues an invitation. Fails with ErrDuplicateInvite when a
// pending invitation for the same email exists.
func (s *Session) SendInvite(ctx context.Context, req SendInviteRequest) (*InviteIssued, error) {
	var out InviteIssued
	if err := s.client.call(ctx, "send_invite", http.MethodPost, "/v1/invites", s.token, req, &out, http.StatusCreated); err != nil {
		return nil, s.check(err)
	}
	return &out, nil
}

// ListInvites lists invitations visible to the caller, optionally filtered
// by status.
func (s *Session) ListInvites(ctx context.Context, status string) ([]Invitation, error) {
	path := "/v1/invites"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}

	var out ListInvitesResponse
	if err := s.client.call(ctx, "list_invites", http.MethodGet, path, s.token, nil, &out, http.StatusOK); err != nil {
		return nil, s.check(err)
	}
	return out.Invitations, nil
}

// ResendInvite rotates the token of a pending invitation and re-delivers it.
// The previous token stops working.
func (s *Session) ResendInvite(ctx context.Context, id string) (*InviteIssued, error) {
	var out InviteIssued
	path := "/v1/invites/" + url.PathEscape(id) + "/resend"
	if err := s.client.call(ctx, "resend_invite", http.MethodPost, path, s.token, nil, &out, http.StatusOK); err != nil {
		return nil, s.check(err)
	}
	return &out, nil
}

// RevokeInvite withdraws a pending invitation.
func (s *Session) RevokeInvite(ctx context.Context, id string) error {
	path := "/v1/invites/" + url.PathEscape(id) + "/revoke"
	return s.check(s.client.call(ctx, "revoke_invite", http.MethodPost, path, s.token, nil, nil, http.StatusNoContent))
}
