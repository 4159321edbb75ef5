package travelsdk

import (
	"errors"
	"sync"
)

// Session performs calls on behalf of one bearer token. The token is fixed
// for the Session's lifetime; a new login produces a new Session.
type Session struct {
	client *SDKClient
	token  string

	mu             sync.Mutex
	onUnauthorized func()
}

// Token returns the bearer token.
func (s *Session) Token() string { return s.token }

// OnUnauthorized registers fn to run whenever the backend answers 401 to a
// call made with this session. It replaces any earlier hook.
func (s *Session) OnUnauthorized(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnauthorized = fn
}

// check fires the 401 hook and passes err through.
func (s *Session) check(err error) error {
	if !errors.Is(err, ErrUnauthenticated) {
		return err
	}
	s.mu.Lock()
	fn := s.onUnauthorized
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return err
}
