package travelsdk

import (
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 10 * time.Second

// SDKClient performs unauthenticated calls and creates Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Metrics is optional; nil disables instrumentation.
	Metrics *Metrics
}

// NewSDKClient creates a client for the API rooted at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// NewSession wraps an existing bearer token, e.g. one read back from a
// cookie on page load.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}
