package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/internal/web/session"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

func stateOf(st session.State) func(*http.Request) session.State {
	return func(*http.Request) session.State { return st }
}

func signedIn(role identity.Role) session.State {
	u := identity.User{ID: "usr_1", Role: role, Status: identity.StatusActive}
	if role.IsAgencyScoped() {
		u.AgencyID = "agc_1"
	}
	return session.Reduce(session.State{}, session.SignedIn{Token: "tok", User: u})
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("console"))
})

func TestRequire(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	cases := []struct {
		name     string
		state    session.State
		method   string
		status   int
		location string
		body     string
	}{
		{"loading", session.Initial("tok"), http.MethodGet, http.StatusOK, "", "Loading"},
		{"loading post", session.Initial("tok"), http.MethodPost, http.StatusServiceUnavailable, "", ""},
		{"anonymous", session.State{}, http.MethodGet, http.StatusSeeOther, "/login?next=%2Fagency%2Finvites", ""},
		{"wrong role", signedIn(identity.RoleCustomer), http.MethodGet, http.StatusSeeOther, "/", ""},
		{"agency staff", signedIn(identity.RoleAgencyStaff), http.MethodGet, http.StatusOK, "", "console"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := &Guard{Metrics: metrics, State: stateOf(tc.state)}
			h := g.Require(Require(identity.RoleAgencyAdmin, identity.RoleAgencyStaff))(ok)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tc.method, "/agency/invites", nil))

			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, tc.location, rec.Header().Get("Location"))
			require.Contains(t, rec.Body.String(), tc.body)
			if tc.status != http.StatusOK || tc.body == "Loading" {
				require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			}
		})
	}

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("/agency/invites", "resolving")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("/agency/invites", "authorized")))
}

func TestFailedResolutionRendersUnavailable(t *testing.T) {
	failed := session.Reduce(session.Initial("tok"), session.ResolveFailed{Err: travelsdk.ErrRequestFailed})
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	t.Run("default", func(t *testing.T) {
		g := &Guard{Metrics: metrics, State: stateOf(failed)}
		rec := httptest.NewRecorder()
		g.Require(SignedIn())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Empty(t, rec.Header().Get("Location"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("custom page gets the retry path", func(t *testing.T) {
		var retry string
		g := &Guard{
			Metrics: metrics,
			State:   stateOf(failed),
			Unavailable: func(w http.ResponseWriter, r *http.Request, path string) {
				retry = path
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		}
		rec := httptest.NewRecorder()
		g.Require(SignedIn())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account?tab=trips", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.Equal(t, "/account?tab=trips", retry)
	})

	require.Equal(t, 2.0, testutil.ToFloat64(metrics.Decisions.WithLabelValues("/account", "unavailable")))
}

func TestLoadingPlaceholderRefreshes(t *testing.T) {
	placeholder := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("custom"))
	})
	g := &Guard{Placeholder: placeholder, RefreshSeconds: 2, State: stateOf(session.Initial("tok"))}

	rec := httptest.NewRecorder()
	g.Require(SignedIn())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account", nil))
	require.Equal(t, "2", rec.Header().Get("Refresh"))
	require.Equal(t, "custom", rec.Body.String())
}

func TestRoleChangeTakesEffectNextRequest(t *testing.T) {
	st := signedIn(identity.RoleAgencyAdmin)
	g := &Guard{State: func(*http.Request) session.State { return st }}
	h := g.Require(Require(identity.RoleAgencyAdmin))(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agency/invites", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	st = signedIn(identity.RoleAgencyStaff)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agency/invites", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestSelfRedirectRendersDenied(t *testing.T) {
	var gotStatus int
	g := &Guard{
		State: stateOf(signedIn(identity.RoleCustomer)),
		Denied: func(w http.ResponseWriter, r *http.Request, status int) {
			gotStatus = status
			w.WriteHeader(status)
		},
	}
	h := g.Require(Require(identity.RoleAgencyAdmin).WithFallback("/agency"))(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agency", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, http.StatusForbidden, gotStatus)
	require.Empty(t, rec.Header().Get("Location"))
}

func TestCapabilities(t *testing.T) {
	g := &Guard{State: stateOf(signedIn(identity.RolePlatformStaff))}
	h := g.Capabilities()(ok)

	for path, want := range map[string]int{
		"/":              http.StatusOK,
		"/packages":      http.StatusOK,
		"/account":       http.StatusOK,
		"/admin":         http.StatusOK,
		"/admin/invites": http.StatusSeeOther,
		"/agency":        http.StatusSeeOther,
		"/administrator": http.StatusOK,
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, want, rec.Code, path)
	}
}
