package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tripnest/tripnest/pkg/travelsdk"
)

const testPassword = "Sunny2026"

// fakePlatform is an in-memory backend speaking the REST contract.
type fakePlatform struct {
	srv *httptest.Server

	mu       sync.Mutex
	accounts map[string]travelsdk.User // by email
	tokens   map[string]travelsdk.User
	invites  []travelsdk.Invitation
	used     map[string]bool
	meHold   chan struct{}
	seq      int

	loginCalls atomic.Int32
	sendCalls  atomic.Int32
	meDown     atomic.Bool
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	f := &fakePlatform{
		accounts: map[string]travelsdk.User{
			"admin@tripnest.test": {ID: "usr_admin", Name: "Pat Admin", Email: "admin@tripnest.test", Role: "PLATFORM_ADMIN", Status: "ACTIVE", CreatedAt: created},
			"ana@sunny.travel":    {ID: "usr_ana", Name: "Ana Owner", Email: "ana@sunny.travel", Role: "AGENCY_ADMIN", Status: "ACTIVE", AgencyID: "agc_sunny", CreatedAt: created},
			"cara@example.com":    {ID: "usr_cara", Name: "Cara Client", Email: "cara@example.com", Role: "CUSTOMER", Status: "ACTIVE", CreatedAt: created},
		},
		tokens: map[string]travelsdk.User{},
		used:   map[string]bool{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakePlatform) client() *travelsdk.SDKClient { return travelsdk.NewSDKClient(f.srv.URL) }

func (f *fakePlatform) hold() func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.meHold = ch
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.meHold = nil
		f.mu.Unlock()
		close(ch)
	}
}

func (f *fakePlatform) signIn(u travelsdk.User) travelsdk.AuthResponse {
	f.seq++
	token := fmt.Sprintf("tok-%s-%d", u.ID, f.seq)
	f.tokens[token] = u
	return travelsdk.AuthResponse{Token: token, TokenType: "Bearer", ExpiresIn: 3600, User: u}
}

// live reports whether token is still accepted.
func (f *fakePlatform) live(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok
}

func (f *fakePlatform) caller(r *http.Request) (travelsdk.User, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.tokens[token]
	return u, ok
}

func send(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func fail(w http.ResponseWriter, code int, kind string) {
	send(w, code, travelsdk.ErrorResponse{Error: kind})
}

func (f *fakePlatform) serve(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	switch {
	case route == "GET /readyz":
		send(w, http.StatusOK, travelsdk.HealthResponse{Status: "ok"})

	case route == "POST /v1/auth/login":
		f.loginCalls.Add(1)
		var req travelsdk.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		u, ok := f.accounts[req.Email]
		if !ok || req.Password != testPassword {
			fail(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		send(w, http.StatusOK, f.signIn(u))

	case route == "POST /v1/auth/register":
		var req travelsdk.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, taken := f.accounts[req.Email]; taken {
			fail(w, http.StatusConflict, "duplicate_email")
			return
		}
		u := travelsdk.User{ID: "usr_new", Name: req.Name, Email: req.Email, Role: req.Role, Status: "ACTIVE"}
		f.accounts[req.Email] = u
		send(w, http.StatusCreated, f.signIn(u))

	case route == "POST /v1/auth/logout":
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		delete(f.tokens, token)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	case route == "GET /v1/me":
		f.mu.Lock()
		hold := f.meHold
		f.mu.Unlock()
		if hold != nil {
			<-hold
		}
		if f.meDown.Load() {
			fail(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		u, ok := f.caller(r)
		if !ok {
			fail(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		send(w, http.StatusOK, u)

	case route == "GET /v1/invites/verify":
		f.verify(w, r.URL.Query().Get("token"))

	case route == "POST /v1/invites/complete":
		var req travelsdk.CompleteOnboardingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if req.Token != "inv-valid" || f.used[req.Token] {
			fail(w, http.StatusNotFound, "token_invalid")
			return
		}
		f.used[req.Token] = true
		u := travelsdk.User{ID: "usr_invitee", Name: req.Name, Email: "new.agent@sunny.travel", Phone: req.Phone,
			Role: "AGENCY_STAFF", Status: "ACTIVE", AgencyID: "agc_sunny"}
		f.accounts[u.Email] = u
		send(w, http.StatusOK, f.signIn(u))

	case route == "POST /v1/invites":
		f.sendCalls.Add(1)
		u, ok := f.caller(r)
		if !ok {
			fail(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		var req travelsdk.SendInviteRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, inv := range f.invites {
			if inv.Email == req.Email && inv.Status == "PENDING" {
				fail(w, http.StatusConflict, "duplicate_invite")
				return
			}
		}
		now := time.Now().UTC()
		inv := travelsdk.Invitation{
			ID: fmt.Sprintf("inv_%d", len(f.invites)+1), Email: req.Email, Role: req.Role, AgencyID: req.AgencyID,
			Status: "PENDING", InvitedBy: u.ID, InvitedAt: now, ExpiresAt: now.Add(72 * time.Hour),
		}
		f.invites = append(f.invites, inv)
		send(w, http.StatusCreated, travelsdk.InviteIssued{Invitation: inv, Token: "secret-" + inv.ID})

	case route == "GET /v1/invites":
		if _, ok := f.caller(r); !ok {
			fail(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		send(w, http.StatusOK, travelsdk.ListInvitesResponse{Invitations: f.invites})

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/revoke"):
		if _, ok := f.caller(r); !ok {
			fail(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/invites/"), "/revoke")
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.invites {
			if f.invites[i].ID == id && f.invites[i].Status == "PENDING" {
				f.invites[i].Status = "REVOKED"
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		fail(w, http.StatusNotFound, "not_found")

	default:
		http.NotFound(w, r)
	}
}

func (f *fakePlatform) verify(w http.ResponseWriter, token string) {
	f.mu.Lock()
	used := f.used[token]
	f.mu.Unlock()

	switch {
	case token == "inv-valid" && !used:
		send(w, http.StatusOK, travelsdk.InviteDetails{
			Email: "new.agent@sunny.travel", Role: "AGENCY_STAFF", AgencyID: "agc_sunny",
			Status: "PENDING", ExpiresAt: time.Now().Add(24 * time.Hour),
		})
	case token == "inv-expired":
		fail(w, http.StatusGone, "token_expired")
	case token == "inv-down":
		fail(w, http.StatusBadGateway, "request_failed")
	default:
		fail(w, http.StatusNotFound, "token_invalid")
	}
}
