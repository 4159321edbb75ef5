package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tripnest/tripnest/internal/devapi/domain"
	"github.com/tripnest/tripnest/internal/devapi/store"
	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/cryptox"
	"github.com/tripnest/tripnest/pkg/idx"
	"github.com/tripnest/tripnest/pkg/jwtx"
	"github.com/tripnest/tripnest/pkg/slogx"
)

// Session is a freshly issued bearer token and the user it belongs to.
type Session struct {
	Token     string
	ExpiresIn time.Duration
	User      identity.User
}

type RegisterInput struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Phone    string `json:"phone"    validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,password"`
	Role     string `json:"role"     validate:"omitempty,role"`
}

// AuthService signs users in and out and issues session tokens.
type AuthService struct {
	Store      store.Store
	KeyManager *jwtx.KeyManager
	TTL        time.Duration

	// Now is overridable for tests.
	Now func() time.Time

	// decoy is verified against when the email is unknown so that both
	// failure paths cost one Argon2id run.
	decoyOnce sync.Once
	decoy     string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Login checks email and password and starts a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	l := slogx.FromContext(ctx)

	acct, err := s.Store.Users().GetUserByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return Session{}, err
		}
		_ = cryptox.VerifyPassword(password, s.decoyHash())
		l.Info("login for unknown email")
		return Session{}, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, acct.PasswordHash); err != nil {
		l.Info("login password mismatch", slog.String("user_id", acct.ID))
		return Session{}, ErrInvalidCredentials
	}
	if acct.Status != identity.StatusActive {
		l.Warn("login for inactive account", slog.String("user_id", acct.ID), slog.String("status", string(acct.Status)))
		return Session{}, ErrAccountDisabled
	}

	return s.Issue(acct.User)
}

// Register creates a self-service account and starts a session. Only
// self-registrable roles are accepted; an empty role means CUSTOMER.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	l := slogx.FromContext(ctx)

	if fe := identity.Validate(in); fe != nil {
		return Session{}, fe
	}

	role := identity.RoleCustomer
	if in.Role != "" {
		role = identity.MustParseRole(in.Role)
	}
	if !role.SelfRegistrable() {
		return Session{}, identity.FieldErrors{"role": role.Label() + " accounts are created by invitation"}
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		l.Error("failed to hash password", slog.Any("error", err))
		return Session{}, err
	}

	now := s.now()
	acct := domain.Account{
		User: identity.User{
			ID:        idx.NewWithPrefix(idx.PrefixUser).String(),
			Name:      in.Name,
			Email:     identity.NormalizeEmail(in.Email),
			Phone:     in.Phone,
			Role:      role,
			Status:    identity.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, acct); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return Session{}, ErrDuplicateEmail
		}
		l.Error("failed to create user", slog.Any("error", err))
		return Session{}, err
	}

	l.Info("user registered", slog.String("user_id", acct.ID), slog.String("role", role.String()))
	return s.Issue(acct.User)
}

// Issue signs a session token for u.
func (s *AuthService) Issue(u identity.User) (Session, error) {
	claims := jwtx.NewUserClaims(u.ID, jwtx.Identity{
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role.String(),
		AgencyID: u.AgencyID,
	}, s.ttl(), s.KeyManager.Issuer, s.now())

	token, err := s.KeyManager.Signer.Sign(claims)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresIn: s.ttl(), User: u}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, c jwtx.Claims) error {
	if c.ID == "" {
		return nil
	}
	exp := s.now().Add(s.ttl())
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Time
	}
	return s.Store.Revocations().RevokeToken(ctx, c.ID, exp)
}

// Me loads the current state of the session's user.
func (s *AuthService) Me(ctx context.Context, userID string) (identity.User, error) {
	acct, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return identity.User{}, ErrUnknownUser
		}
		return identity.User{}, err
	}
	return acct.User, nil
}

// IsRevoked adapts the revocation table for jwtx.WithRevocation.
func (s *AuthService) IsRevoked(jti string) (bool, error) {
	return s.Store.Revocations().IsRevoked(context.Background(), jti)
}

func (s *AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return jwtx.DefaultSessionTTL
}

func (s *AuthService) decoyHash() string {
	s.decoyOnce.Do(func() {
		s.decoy, _ = cryptox.HashPassword(cryptox.MustGenerateToken(cryptox.TokenSize128))
	})
	return s.decoy
}
