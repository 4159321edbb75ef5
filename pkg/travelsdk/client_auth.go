package travelsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Login exchanges credentials for a session token. A rejected password is
// ErrInvalidCredentials; an account that exists but may not sign in is
// ErrForbidden.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, "login", http.MethodPost, "/v1/auth/login", "",
		LoginRequest{Email: email, Password: password}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a self-service account and signs it in. Fails with
// ErrValidation (field-level) or ErrDuplicateEmail.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, "register", http.MethodPost, "/v1/auth/register", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyInvite looks up a pending invitation by its token. It never changes
// server state. Fails with ErrTokenInvalid or ErrTokenExpired.
func (c *SDKClient) VerifyInvite(ctx context.Context, token string) (*InviteDetails, error) {
	var out InviteDetails
	path := "/v1/invites/verify?" + url.Values{"token": {token}}.Encode()
	if err := c.call(ctx, "verify_invite", http.MethodGet, path, "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteOnboarding redeems an invitation, creating the user and signing
// it in. The backend enforces single use: a second call with the same token
// fails with ErrTokenInvalid.
func (c *SDKClient) CompleteOnboarding(ctx context.Context, req CompleteOnboardingRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.call(ctx, "complete_onboarding", http.MethodPost, "/v1/invites/complete", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks whether the backend can serve requests.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, "readyz", http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
