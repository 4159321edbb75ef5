package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/cryptox"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// Backend is the part of the REST client a session needs.
// *travelsdk.SDKClient implements it.
type Backend interface {
	Login(ctx context.Context, email, password string) (*travelsdk.AuthResponse, error)
	Register(ctx context.Context, req travelsdk.RegisterRequest) (*travelsdk.AuthResponse, error)
	CompleteOnboarding(ctx context.Context, req travelsdk.CompleteOnboardingRequest) (*travelsdk.AuthResponse, error)
	NewSession(token string) *travelsdk.Session
}

// Config tunes stores and the registry.
type Config struct {
	// ResolveBudget is how long a request waits for a persisted token to
	// resolve before the page renders as loading.
	ResolveBudget time.Duration
	// ResolveTimeout bounds the background GET /v1/me.
	ResolveTimeout time.Duration
	// LogoutTimeout bounds the fire-and-forget backend logout.
	LogoutTimeout time.Duration
	// CacheTTL caps how long a resolved identity is cached.
	CacheTTL time.Duration
	// IdleTTL is how long an unused store is kept in the registry.
	IdleTTL time.Duration
	// SweepInterval is how often idle stores are dropped.
	SweepInterval time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ResolveBudget:  300 * time.Millisecond,
		ResolveTimeout: 10 * time.Second,
		LogoutTimeout:  3 * time.Second,
		CacheTTL:       5 * time.Minute,
		IdleTTL:        30 * time.Minute,
		SweepInterval:  time.Minute,
	}
}

// Store holds one browser session. It is safe for concurrent use.
type Store struct {
	backend Backend
	cache   IdentityCache
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     State
	api       *travelsdk.Session
	resolving chan struct{}
	lastSeen  time.Time

	bg sync.WaitGroup
}

func newStore(backend Backend, cache IdentityCache, cfg Config, logger *slog.Logger, initial State) *Store {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		backend: backend,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		state:   initial,
	}
	s.lastSeen = s.now()
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// API returns the authenticated backend session, or nil when signed out.
// A 401 from any call made through it signs this store out.
func (s *Store) API() *travelsdk.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsAuthenticated() {
		return nil
	}
	return s.api
}

func (s *Store) touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

func (s *Store) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// dispatchLocked applies a and keeps the backend session in step with the
// state's token.
func (s *Store) dispatchLocked(a Action) {
	s.state = Reduce(s.state, a)

	if !s.state.IsAuthenticated() {
		s.api = nil
		return
	}
	if s.api == nil || s.api.Token() != s.state.Token {
		s.api = s.newAPI(s.state.Token)
	}
}

func (s *Store) newAPI(token string) *travelsdk.Session {
	api := s.backend.NewSession(token)
	api.OnUnauthorized(func() { s.expire(token) })
	return api
}

// expire signs the store out if token is still the current one.
func (s *Store) expire(token string) {
	s.mu.Lock()
	if s.state.Token != token {
		s.mu.Unlock()
		return
	}
	s.dispatchLocked(SignedOut{})
	s.mu.Unlock()

	s.logger.Info("session expired")
	s.forgetIdentity(token)
}

// Resolve validates the persisted token if that has not happened yet and
// waits for the outcome until ctx is done. A previous transient failure is
// retried. The returned state may still be loading.
func (s *Store) Resolve(ctx context.Context) State {
	s.mu.Lock()
	s.lastSeen = s.now()
	if s.state.Phase == PhaseAnonymous && s.state.Token != "" && s.state.Err != nil {
		s.dispatchLocked(ResolveStarted{})
	}
	if s.state.Phase != PhaseResolving {
		st := s.state
		s.mu.Unlock()
		return st
	}
	if s.resolving == nil {
		s.resolving = make(chan struct{})
		s.bg.Add(1)
		go s.resolve(s.state.Token, s.resolving)
	}
	done := s.resolving
	s.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
	}
	return s.Snapshot()
}

// resolve runs detached from any request so a slow backend finishes for
// the next page load rather than being cancelled by this one.
func (s *Store) resolve(token string, done chan struct{}) {
	defer s.bg.Done()
	defer close(done)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ResolveTimeout)
	defer cancel()

	act := s.lookup(ctx, token)

	s.mu.Lock()
	if s.state.Token == token {
		s.dispatchLocked(act)
	}
	s.resolving = nil
	s.mu.Unlock()
}

func (s *Store) lookup(ctx context.Context, token string) Action {
	key := cryptox.FingerprintToken(token)

	u, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("identity cache read failed", "error", err)
	}
	if ok {
		return Resolved{User: u}
	}

	wire, err := s.backend.NewSession(token).Me(ctx)
	if err != nil {
		if errors.Is(err, travelsdk.ErrUnauthenticated) {
			s.logger.Debug("persisted token rejected")
		} else {
			s.logger.Error("session resolution failed", "error", err)
		}
		return ResolveFailed{Err: err}
	}

	user, err := UserFromWire(*wire)
	if err != nil {
		s.logger.Error("session resolution returned a malformed user", "error", err)
		return ResolveFailed{Err: fmt.Errorf("%w: %v", travelsdk.ErrRequestFailed, err)}
	}
	s.remember(ctx, token, user, s.cfg.CacheTTL)
	return Resolved{User: user}
}

// Login signs in with email and password. Fails with
// travelsdk.ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, email, password string) (identity.User, error) {
	resp, err := s.backend.Login(ctx, identity.NormalizeEmail(email), password)
	if err != nil {
		return identity.User{}, err
	}
	return s.signIn(ctx, resp)
}

// RegisterInput is the self-registration form.
type RegisterInput struct {
	Name            string `form:"name" validate:"required,max=120"`
	Email           string `form:"email" validate:"required,email"`
	Phone           string `form:"phone" validate:"omitempty,phone"`
	Password        string `form:"password" validate:"required,password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// Register creates a customer account and signs it in. Form problems fail
// with travelsdk.ErrValidation before any backend call; a taken email fails
// with travelsdk.ErrDuplicateEmail.
func (s *Store) Register(ctx context.Context, in RegisterInput) (identity.User, error) {
	if fe := identity.Validate(in); len(fe) > 0 {
		return identity.User{}, travelsdk.NewValidationError(fe)
	}

	resp, err := s.backend.Register(ctx, travelsdk.RegisterRequest{
		Name:     in.Name,
		Email:    identity.NormalizeEmail(in.Email),
		Phone:    in.Phone,
		Password: in.Password,
		Role:     identity.RoleCustomer.String(),
	})
	if err != nil {
		return identity.User{}, err
	}
	return s.signIn(ctx, resp)
}

// CompleteOnboarding redeems an invitation and signs the new user in.
// Input checks belong to the caller.
func (s *Store) CompleteOnboarding(ctx context.Context, req travelsdk.CompleteOnboardingRequest) (identity.User, error) {
	resp, err := s.backend.CompleteOnboarding(ctx, req)
	if err != nil {
		return identity.User{}, err
	}
	return s.signIn(ctx, resp)
}

func (s *Store) signIn(ctx context.Context, resp *travelsdk.AuthResponse) (identity.User, error) {
	// The caller went away: leave the session as it was.
	if err := ctx.Err(); err != nil {
		return identity.User{}, err
	}

	user, err := UserFromWire(resp.User)
	if err != nil {
		s.logger.Error("sign-in returned a malformed user", "error", err)
		return identity.User{}, fmt.Errorf("%w: %v", travelsdk.ErrRequestFailed, err)
	}
	if resp.Token == "" {
		return identity.User{}, fmt.Errorf("%w: empty session token", travelsdk.ErrRequestFailed)
	}

	s.mu.Lock()
	s.dispatchLocked(SignedIn{Token: resp.Token, User: user})
	s.lastSeen = s.now()
	s.mu.Unlock()

	ttl := s.cfg.CacheTTL
	if exp := time.Duration(resp.ExpiresIn) * time.Second; exp > 0 && exp < ttl {
		ttl = exp
	}
	s.remember(ctx, resp.Token, user, ttl)
	return user, nil
}

// Logout clears the session immediately. The backend is told in the
// background and its failure is only logged.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.state.Token
	s.dispatchLocked(SignedOut{})
	s.mu.Unlock()

	if token == "" {
		return
	}

	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.LogoutTimeout)
		defer cancel()

		s.forgetIdentityCtx(ctx, token)
		if err := s.backend.NewSession(token).Logout(ctx); err != nil {
			s.logger.Warn("backend logout failed", "error", err)
		}
	}()
}

// Wait blocks until background resolution and logout calls have finished.
func (s *Store) Wait() { s.bg.Wait() }

func (s *Store) remember(ctx context.Context, token string, u identity.User, ttl time.Duration) {
	if err := s.cache.Set(ctx, cryptox.FingerprintToken(token), u, ttl); err != nil {
		s.logger.Warn("identity cache write failed", "error", err)
	}
}

func (s *Store) forgetIdentity(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.LogoutTimeout)
	defer cancel()
	s.forgetIdentityCtx(ctx, token)
}

func (s *Store) forgetIdentityCtx(ctx context.Context, token string) {
	if err := s.cache.Delete(ctx, cryptox.FingerprintToken(token)); err != nil {
		s.logger.Warn("identity cache delete failed", "error", err)
	}
}
