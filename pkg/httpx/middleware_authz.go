package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyRole the caller's role claim must be one of the provided roles.
// Must run after AuthnMiddleware.
func RequireAnyRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := Role(r.Context())
			if role == "" {
				writeBearerError(w, "missing identity")
				return
			}
			if _, ok := want[role]; !ok {
				WriteError(w, http.StatusForbidden, "forbidden",
					"requires one of: "+strings.Join(roles, ", "), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
