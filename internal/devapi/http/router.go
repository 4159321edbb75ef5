// Package http exposes the development backend over the REST contract the
// web tier's SDK speaks.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/tripnest/tripnest/api/devapi" // Swagger docs
	"github.com/tripnest/tripnest/internal/devapi/service"
	"github.com/tripnest/tripnest/internal/devapi/store"
	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/jwtx"
	"github.com/tripnest/tripnest/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService   *service.AuthService
	InviteService *service.InviteService
}

// CORSConfig lists the browser origins allowed to call the API directly.
type CORSConfig struct {
	AllowedOrigins []string
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	corsCfg CORSConfig,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.TraceMiddleware("tripnest/devapi"),
	}
	if len(corsCfg.AllowedOrigins) > 0 {
		r.middlewares = append(r.middlewares, cors.Handler(cors.Options{
			AllowedOrigins:   corsCfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerInvites()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TripNest Platform API (development backend)
//	@version		0.1.0
//	@description	Accounts, sessions and invitations for the TripNest web tier.
//	@description
//	@description				Session tokens are EdDSA-signed JWTs; verify them with the JWKS endpoint.
//
//	@host						localhost:8081
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

var (
	inviterRoles = []string{
		identity.RolePlatformAdmin.String(),
		identity.RoleAgencyAdmin.String(),
	}
	backOfficeRoles = []string{
		identity.RolePlatformAdmin.String(),
		identity.RolePlatformStaff.String(),
		identity.RoleAgencyAdmin.String(),
		identity.RoleAgencyStaff.String(),
	}
)

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential submission: strict per IP
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InviteHandler{
		InviteService: r.InviteService,
		AuthService:   r.AuthService,
	}

	r.Mux.Handle("POST /v1/invites",
		httpx.Chain(http.HandlerFunc(h.HandleSend),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(inviterRoles...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/invites",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(backOfficeRoles...),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/invites/{id}/resend",
		httpx.Chain(http.HandlerFunc(h.HandleResend),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(inviterRoles...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/invites/{id}/revoke",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(inviterRoles...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Invitee endpoints carry the invitation token instead of a session
	r.Mux.Handle("GET /v1/invites/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/invites/complete",
		httpx.Chain(http.HandlerFunc(h.HandleComplete),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
