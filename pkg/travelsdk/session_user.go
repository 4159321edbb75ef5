package travelsdk

import (
	"context"
	"net/http"
)

// Me returns the user the session token belongs to.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var out User
	if err := s.client.call(ctx, "me", http.MethodGet, "/v1/me", s.token, nil, &out, http.StatusOK); err != nil {
		return nil, s.check(err)
	}
	return &out, nil
}

// Logout revokes the session token server-side.
func (s *Session) Logout(ctx context.Context) error {
	return s.client.call(ctx, "logout", http.MethodPost, "/v1/auth/logout", s.token, nil, nil, http.StatusNoContent)
}
