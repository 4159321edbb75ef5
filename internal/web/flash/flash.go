// Package flash carries one-shot notices across a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tripnest/tripnest/pkg/httpx"
)

const CookieName = "tn_flash"

// maxMessage keeps the cookie well under browser limits.
const maxMessage = 512

type Kind string

const (
	Success Kind = "success"
	Info    Kind = "info"
	Warning Kind = "warning"
	Error   Kind = "error"
)

// Notice is one dismissable message.
type Notice struct {
	Kind    Kind   `json:"k"`
	Message string `json:"m"`
}

// Write stores n for the next page render. Invalid notices are dropped.
func Write(w http.ResponseWriter, r *http.Request, n Notice) {
	n, ok := normalize(n)
	if !ok {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   httpx.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadAndClear returns the pending notice, if any, and expires the cookie
// even when its content is unreadable.
func ReadAndClear(w http.ResponseWriter, r *http.Request) (Notice, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Notice{}, false
	}
	Clear(w, r)

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(c.Value))
	if err != nil {
		return Notice{}, false
	}
	var n Notice
	if err := json.Unmarshal(raw, &n); err != nil {
		return Notice{}, false
	}
	return normalize(n)
}

// Clear expires the notice cookie.
func Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   httpx.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func normalize(n Notice) (Notice, bool) {
	n.Message = strings.TrimSpace(n.Message)
	if n.Message == "" {
		return Notice{}, false
	}
	if len(n.Message) > maxMessage {
		n.Message = strings.ToValidUTF8(n.Message[:maxMessage], "")
	}
	n.Kind = Kind(strings.ToLower(strings.TrimSpace(string(n.Kind))))
	switch n.Kind {
	case Success, Info, Warning, Error:
		return n, true
	}
	return Notice{}, false
}
