// Package http is the browser-facing web tier: HTML pages rendered on the
// server, the session cookie, and the guarded back-office consoles.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripnest/tripnest/internal/web/guard"
	"github.com/tripnest/tripnest/internal/web/onboarding"
	"github.com/tripnest/tripnest/internal/web/session"
	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/slogx"
)

const tracerName = "github.com/tripnest/tripnest/internal/web/http"

// RouterConfig holds the web tier's dependencies.
type RouterConfig struct {
	Registry *session.Registry
	Backend  ReadinessChecker
	Workflow *onboarding.Workflow
	Pages    *Renderer
	Logger   *slog.Logger

	// Gatherer serves /metrics; Registerer receives the web tier's own
	// collectors. Both default to the prometheus default registry.
	Gatherer   prometheus.Gatherer
	Registerer prometheus.Registerer

	Version   string
	CookieTTL time.Duration
	// RefreshSeconds is how soon a loading page re-checks the session.
	RefreshSeconds int
}

// Router serves every page of the web tier.
type Router struct {
	chi.Router

	cfg       RouterConfig
	guard     *guard.Guard
	startTime time.Time
}

func NewRouter(cfg RouterConfig) *Router {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.CookieTTL <= 0 {
		cfg.CookieTTL = 12 * time.Hour
	}

	rt := &Router{
		Router:    chi.NewRouter(),
		cfg:       cfg,
		startTime: time.Now(),
	}
	rt.guard = &guard.Guard{
		Placeholder:    cfg.Pages.Handler("loading.html", "Loading"),
		Denied:         rt.denied,
		Unavailable:    rt.unavailable,
		RefreshSeconds: cfg.RefreshSeconds,
		Metrics:        guard.NewMetrics(cfg.Registerer),
	}

	rt.Use(slogx.HTTPMiddleware(cfg.Logger))
	rt.Use(httpx.TraceMiddleware(tracerName))
	rt.Use(NewHTTPMetrics(cfg.Registerer).Middleware)

	rt.registerSystem()
	rt.Group(func(r chi.Router) {
		r.Use(session.Middleware(cfg.Registry))
		r.Use(httpx.RequireSameOrigin())

		rt.registerPublic(r)
		rt.registerAuth(r)
		rt.registerOnboarding(r)
		rt.registerAccount(r)
		rt.registerConsole(r, "/admin", "Platform console")
		rt.registerConsole(r, "/agency", "Agency console")
	})
	rt.NotFound(func(w http.ResponseWriter, r *http.Request) {
		cfg.Pages.Render(w, r, http.StatusNotFound, "denied.html", Page{
			Title: "Page not found",
			Error: "There is nothing at this address.",
		})
	})

	return rt
}

func (rt *Router) registerSystem() {
	rt.Get("/livez", LivezHandler(rt.startTime, rt.cfg.Version))
	rt.Get("/readyz", ReadyzHandler(rt.startTime, rt.cfg.Version, rt.cfg.Backend, rt.cfg.Registry.Cache()))
	rt.Handle("/metrics", promhttp.HandlerFor(rt.cfg.Gatherer, promhttp.HandlerOpts{}))
}

func (rt *Router) registerPublic(r chi.Router) {
	pages := rt.cfg.Pages
	r.Get("/", pages.Handler("home.html", "Holidays made easy"))
	r.Get("/packages", pages.Handler("packages.html", "Packages"))
}

func (rt *Router) registerAuth(r chi.Router) {
	h := &AuthHandler{Registry: rt.cfg.Registry, Pages: rt.cfg.Pages, CookieTTL: rt.cfg.CookieTTL}

	r.Get(guard.LoginPath, h.LoginPage)
	// Rate limited by IP + email to slow down credential stuffing.
	r.With(httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "email")).Post(guard.LoginPath, h.Login)

	r.Get("/register", h.RegisterPage)
	r.With(httpx.RateLimitByIP(httpx.StrictLimit)).Post("/register", h.Register)

	r.Post("/logout", h.Logout)
}

func (rt *Router) registerOnboarding(r chi.Router) {
	h := &OnboardingHandler{
		Workflow:  rt.cfg.Workflow,
		Registry:  rt.cfg.Registry,
		Pages:     rt.cfg.Pages,
		CookieTTL: rt.cfg.CookieTTL,
	}

	r.With(httpx.RateLimitByIP(httpx.LenientLimit)).Get("/onboarding", h.Start)
	r.With(httpx.RateLimitByIP(httpx.ModerateLimit)).Post("/onboarding", h.Complete)
}

func (rt *Router) registerAccount(r chi.Router) {
	r.With(rt.guard.Capabilities()).Get("/account", rt.cfg.Pages.Handler("account.html", "Your account"))
}

// registerConsole mounts a console under base. Every route is guarded by
// the capability table entry of its own path, so the invitation screens can
// be narrower than the console home.
func (rt *Router) registerConsole(r chi.Router, base, title string) {
	h := &ConsoleHandler{Base: base, Title: title, Workflow: rt.cfg.Workflow, Pages: rt.cfg.Pages}

	r.Route(base, func(r chi.Router) {
		r.Use(rt.guard.Capabilities())
		r.Get("/", h.Home)
		r.Route("/invites", func(r chi.Router) {
			r.Use(httpx.RateLimitByUser(httpx.ModerateLimit))
			r.Get("/", h.Invites)
			r.Post("/", h.Send)
			r.Post("/{id}/resend", h.Resend)
			r.Post("/{id}/revoke", h.Revoke)
		})
	})
}

// denied renders the page shown when the guard cannot redirect.
func (rt *Router) unavailable(w http.ResponseWriter, r *http.Request, retry string) {
	rt.cfg.Pages.Render(w, r, http.StatusServiceUnavailable, "unavailable.html", Page{
		Title: "Service unavailable",
		Error: "We could not check your session right now. Please try again in a moment.",
		Retry: guard.SafeNext(retry),
	})
}

func (rt *Router) denied(w http.ResponseWriter, r *http.Request, status int) {
	p := Page{Title: "Access denied", Error: "Your account does not have access to this page."}
	if status == http.StatusUnauthorized {
		p = Page{Title: "Sign in required", Error: "Please sign in to continue."}
	} else if st := session.StateFromRequest(r); st.IsAuthenticated() {
		p.Error += " You are signed in as " + st.User.Role.Label() + "."
	}
	rt.cfg.Pages.Render(w, r, status, "denied.html", p)
}
