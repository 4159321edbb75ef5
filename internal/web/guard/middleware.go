package guard

import (
	"net/http"
	"strconv"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/internal/web/session"
	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/slogx"
)

// Guard renders guard outcomes. The zero value is usable.
type Guard struct {
	// Placeholder renders the neutral loading page. nil writes a minimal
	// built-in one.
	Placeholder http.Handler
	// Denied renders the response when redirecting would loop. nil writes
	// the bare status.
	Denied func(w http.ResponseWriter, r *http.Request, status int)
	// Unavailable renders the page shown when the session could not be
	// checked. retry is the current path. nil writes a bare 503.
	Unavailable func(w http.ResponseWriter, r *http.Request, retry string)
	// RefreshSeconds is the loading page's re-check delay; 1 when zero.
	RefreshSeconds int

	Metrics *Metrics

	// State reads the session of a request; session.StateFromRequest when
	// nil.
	State func(*http.Request) session.State
}

func (g *Guard) inputs(r *http.Request) Inputs {
	read := g.State
	if read == nil {
		read = session.StateFromRequest
	}
	st := read(r)
	return Inputs{
		Loading:       st.IsLoading(),
		Failed:        st.IsUnavailable(),
		Authenticated: st.IsAuthenticated(),
		Role:          st.Role(),
		Path:          r.URL.RequestURI(),
	}
}

// Require guards next with req.
func (g *Guard) Require(req Requirement) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in := g.inputs(r)
			d := Decide(in, req)

			prefix, _ := identity.GuardedPrefix(r.URL.Path)
			if prefix == "" {
				prefix = "none"
			}
			g.Metrics.observe(prefix, d.Outcome)

			switch d.Outcome {
			case Authorized:
				next.ServeHTTP(w, r)
				return
			case Resolving:
				g.loading(w, r)
				return
			case Unavailable:
				g.unavailable(w, r, in.Path)
				return
			}

			// Guarded pages depend on who is asking.
			httpx.NoCache(w)
			if d.Outcome == Forbidden {
				slogx.FromContext(r.Context()).Info("guard denied",
					"role", in.Role.String(), "required", req.Roles.String())
			}
			if d.Redirect != "" {
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
			g.deny(w, r, d.Outcome)
		})
	}
}

// Capabilities guards each request by the capability table entry of its
// path. Paths outside every guarded prefix pass through.
func (g *Guard) Capabilities() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := identity.GuardedPrefix(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			g.Require(ForPrefix(p))(next).ServeHTTP(w, r)
		})
	}
}

func (g *Guard) loading(w http.ResponseWriter, r *http.Request) {
	secs := g.RefreshSeconds
	if secs <= 0 {
		secs = 1
	}
	httpx.NoCache(w)
	w.Header().Set("Refresh", strconv.Itoa(secs))
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		http.Error(w, "session is still loading, try again", http.StatusServiceUnavailable)
		return
	}
	if g.Placeholder != nil {
		g.Placeholder.ServeHTTP(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(loadingPage))
}

func (g *Guard) unavailable(w http.ResponseWriter, r *http.Request, retry string) {
	httpx.NoCache(w)
	w.Header().Set("Retry-After", "5")
	if g.Unavailable != nil {
		g.Unavailable(w, r, retry)
		return
	}
	http.Error(w, "session could not be checked, try again", http.StatusServiceUnavailable)
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, o Outcome) {
	status := http.StatusForbidden
	if o == Unauthenticated {
		status = http.StatusUnauthorized
	}
	if g.Denied != nil {
		g.Denied(w, r, status)
		return
	}
	w.WriteHeader(status)
}

const loadingPage = `<!doctype html><html><head><meta charset="utf-8"><title>Loading</title></head>` +
	`<body><p>Loading your session…</p></body></html>`
