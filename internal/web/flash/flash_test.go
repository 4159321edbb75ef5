package flash

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/agency/invites", nil)
	rec := httptest.NewRecorder()
	Write(rec, req, Notice{Kind: "SUCCESS", Message: " Invitation sent to ana@sunny.travel "})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	req.AddCookie(cookies[0])

	rec = httptest.NewRecorder()
	n, ok := ReadAndClear(rec, req)
	require.True(t, ok)
	require.Equal(t, Notice{Kind: Success, Message: "Invitation sent to ana@sunny.travel"}, n)
	require.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func TestUnreadableCookieStillClears(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "%%%"})
	rec := httptest.NewRecorder()

	_, ok := ReadAndClear(rec, req)
	require.False(t, ok)
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestInvalidNoticesAreDropped(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, n := range []Notice{{Kind: Success}, {Kind: "shout", Message: "hi"}} {
		rec := httptest.NewRecorder()
		Write(rec, req, n)
		require.Empty(t, rec.Result().Cookies())
	}

	n, ok := normalize(Notice{Kind: Error, Message: strings.Repeat("x", 2000)})
	require.True(t, ok)
	require.Len(t, n.Message, maxMessage)
}

func TestNoCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := ReadAndClear(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, ok)
	require.Empty(t, rec.Result().Cookies())
}
