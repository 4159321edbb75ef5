package http

import (
	"context"
	"net/http"
	"time"

	"github.com/tripnest/tripnest/pkg/httpx"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ReadinessChecker reports whether the platform API is reachable.
// *travelsdk.SDKClient implements it.
type ReadinessChecker interface {
	GetReadiness(ctx context.Context) (*travelsdk.HealthResponse, error)
}

// Pinger is a dependency that can be probed, like the identity cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LivezHandler always answers 200 while the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler probes the platform API and the identity cache.
func ReadyzHandler(startTime time.Time, version string, api ReadinessChecker, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"backend": "ok", "cache": "ok"}
		status, code := "ok", http.StatusOK

		if _, err := api.GetReadiness(ctx); err != nil {
			checks["backend"] = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
		if err := cache.Ping(ctx); err != nil {
			checks["cache"] = "error: " + err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
