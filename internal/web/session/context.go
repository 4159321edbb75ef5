package session

import (
	"context"
	"net/http"

	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/slogx"
)

type ctxKey struct{}

// WithStore returns ctx carrying s.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's store, or nil outside Middleware.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(ctxKey{}).(*Store)
	return s
}

// StateFromRequest returns the request's session state. Requests that did
// not pass through Middleware are anonymous.
func StateFromRequest(r *http.Request) State {
	if s := FromContext(r.Context()); s != nil {
		return s.Snapshot()
	}
	return State{}
}

// Middleware attaches the browser's Store to every request. A cookie whose
// token the backend rejected is cleared.
func Middleware(reg *Registry) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _ := ReadCookie(r)
			s := reg.ForToken(r.Context(), token)

			st := s.Snapshot()
			if token != "" && st.Token == "" {
				ClearCookie(w, r)
			}

			ctx := WithStore(r.Context(), s)
			if st.IsAuthenticated() {
				ctx = httpx.WithSubject(ctx, st.User.ID, st.User.Role.String())
				ctx = slogx.With(ctx, "user_id", st.User.ID, "role", st.User.Role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
