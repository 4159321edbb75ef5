package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// fakeAPI is a minimal backend speaking the REST contract.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu      sync.Mutex
	tokens  map[string]travelsdk.User
	meHold  chan struct{}
	meFail  int // status to answer /v1/me with, 0 for normal

	meCalls       atomic.Int32
	registerCalls atomic.Int32
	logoutCalls   atomic.Int32
	logoutStatus  int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, tokens: map[string]travelsdk.User{}, logoutStatus: http.StatusNoContent}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) client() *travelsdk.SDKClient { return travelsdk.NewSDKClient(f.srv.URL) }

func (f *fakeAPI) issue(token string, u travelsdk.User) {
	f.mu.Lock()
	f.tokens[token] = u
	f.mu.Unlock()
}

func (f *fakeAPI) revoke(token string) {
	f.mu.Lock()
	delete(f.tokens, token)
	f.mu.Unlock()
}

func (f *fakeAPI) user(r *http.Request) (travelsdk.User, bool) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.tokens[token]
	return u, ok
}

func agent(email string) travelsdk.User {
	return travelsdk.User{
		ID:        "usr_agent",
		Name:      "Ana Agent",
		Email:     email,
		Role:      "AGENCY_STAFF",
		Status:    "ACTIVE",
		AgencyID:  "agc_sunny",
		CreatedAt: time.Unix(1700000000, 0).UTC(),
		UpdatedAt: time.Unix(1700000000, 0).UTC(),
	}
}

func reply(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/v1/me":
		f.meCalls.Add(1)
		f.mu.Lock()
		hold, fail := f.meHold, f.meFail
		f.mu.Unlock()
		if hold != nil {
			<-hold
		}
		if fail != 0 {
			reply(w, fail, travelsdk.ErrorResponse{Error: "request_failed"})
			return
		}
		u, ok := f.user(r)
		if !ok {
			reply(w, http.StatusUnauthorized, travelsdk.ErrorResponse{Error: "unauthenticated"})
			return
		}
		reply(w, http.StatusOK, u)

	case "/v1/auth/login":
		var req travelsdk.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "ana@sunny.travel" || req.Password != "Sunny2026" {
			reply(w, http.StatusUnauthorized, travelsdk.ErrorResponse{Error: "invalid_credentials"})
			return
		}
		u := agent(req.Email)
		f.issue("tok-login", u)
		reply(w, http.StatusOK, travelsdk.AuthResponse{Token: "tok-login", TokenType: "Bearer", ExpiresIn: 3600, User: u})

	case "/v1/auth/register":
		f.registerCalls.Add(1)
		var req travelsdk.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email == "taken@example.com" {
			reply(w, http.StatusConflict, travelsdk.ErrorResponse{Error: "duplicate_email"})
			return
		}
		u := travelsdk.User{ID: "usr_new", Name: req.Name, Email: req.Email, Role: req.Role, Status: "ACTIVE"}
		f.issue("tok-register", u)
		reply(w, http.StatusCreated, travelsdk.AuthResponse{Token: "tok-register", ExpiresIn: 3600, User: u})

	case "/v1/auth/logout":
		f.logoutCalls.Add(1)
		reply(w, f.logoutStatus, nil)

	case "/v1/invites":
		if _, ok := f.user(r); !ok {
			reply(w, http.StatusUnauthorized, travelsdk.ErrorResponse{Error: "unauthenticated"})
			return
		}
		reply(w, http.StatusOK, travelsdk.ListInvitesResponse{})

	default:
		http.NotFound(w, r)
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ResolveBudget = 2 * time.Second
	cfg.ResolveTimeout = 5 * time.Second
	cfg.LogoutTimeout = time.Second
	return cfg
}
