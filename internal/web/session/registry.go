package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tripnest/tripnest/pkg/cryptox"
)

// Registry maps persisted tokens to their Store, so concurrent requests
// from one browser share a single resolution. Tokens are held by
// fingerprint.
type Registry struct {
	backend Backend
	cache   IdentityCache
	cfg     Config
	logger  *slog.Logger

	mu     sync.Mutex
	stores map[string]*Store

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRegistry creates a registry. A nil cache means a process-local one.
func NewRegistry(backend Backend, cache IdentityCache, cfg Config, logger *slog.Logger) *Registry {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = def.ResolveTimeout
	}
	if cfg.LogoutTimeout <= 0 {
		cfg.LogoutTimeout = def.LogoutTimeout
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = def.IdleTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = def.SweepInterval
	}
	if cfg.ResolveBudget < 0 {
		cfg.ResolveBudget = 0
	}

	return &Registry{
		backend: backend,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		stores:  make(map[string]*Store),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Cache returns the identity cache shared by the registry's stores.
func (r *Registry) Cache() IdentityCache { return r.cache }

// NewStore returns an anonymous store that is not yet registered. Adopt it
// once it has signed in.
func (r *Registry) NewStore() *Store {
	return newStore(r.backend, r.cache, r.cfg, r.logger, State{})
}

// ForToken returns the store for a persisted token, creating it and
// starting resolution on first sight. It waits for resolution at most
// ResolveBudget; after that the store is still loading. An empty token
// yields a fresh anonymous store.
func (r *Registry) ForToken(ctx context.Context, token string) *Store {
	if token == "" {
		return r.NewStore()
	}

	key := cryptox.FingerprintToken(token)
	r.mu.Lock()
	s, ok := r.stores[key]
	if !ok {
		s = newStore(r.backend, r.cache, r.cfg, r.logger, Initial(token))
		r.stores[key] = s
	}
	r.mu.Unlock()

	bctx, cancel := context.WithTimeout(ctx, r.cfg.ResolveBudget)
	defer cancel()
	s.Resolve(bctx)
	return s
}

// Adopt registers s under its current token.
func (r *Registry) Adopt(s *Store) {
	token := s.Snapshot().Token
	if token == "" {
		return
	}
	s.touch()

	r.mu.Lock()
	r.stores[cryptox.FingerprintToken(token)] = s
	r.mu.Unlock()
}

// Replace adopts next in place of old, the store a request arrived with.
// The old token is revoked at the backend when it differs from next's, so
// signing in again does not leave it usable. old may be nil.
func (r *Registry) Replace(ctx context.Context, old, next *Store) {
	if old != nil && old != next {
		if token := old.Snapshot().Token; token != "" {
			if token != next.Snapshot().Token {
				old.Logout(ctx)
			}
			r.Forget(token)
		}
	}
	r.Adopt(next)
}

// Forget drops the store registered for token.
func (r *Registry) Forget(token string) {
	if token == "" {
		return
	}
	r.mu.Lock()
	delete(r.stores, cryptox.FingerprintToken(token))
	r.mu.Unlock()
}

// Len reports how many stores are registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep drops stores idle since before now-IdleTTL, and stores that have
// been signed out. It returns how many were dropped.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	for key, s := range r.stores {
		st := s.Snapshot()
		if s.idleSince().Before(cutoff) || (st.Phase == PhaseAnonymous && st.Token == "") {
			delete(r.stores, key)
			n++
		}
	}
	return n
}

// Start runs Sweep every SweepInterval until Stop.
func (r *Registry) Start() {
	go r.run()
	r.logger.Info("session sweeper started", "interval", r.cfg.SweepInterval, "idle_ttl", r.cfg.IdleTTL)
}

// Stop ends the sweeper and waits for it to exit.
func (r *Registry) Stop() {
	close(r.stopCh)
	<-r.doneCh
	r.logger.Info("session sweeper stopped")
}

func (r *Registry) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.logger.Debug("swept idle sessions", "count", n)
			}
		case <-r.stopCh:
			return
		}
	}
}
