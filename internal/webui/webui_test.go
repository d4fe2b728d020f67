// ABOUTME: Tests for portal routing, login, logout, and the admin console endpoint
// ABOUTME: Uses a fake authenticator and a fake database proxy over httptest

package webui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/gatehouse/internal/auth"
	"github.com/2389/gatehouse/internal/console"
	"github.com/2389/gatehouse/internal/session"
)

// fakeAuth accepts the tokens listed in identities.
type fakeAuth struct {
	mu          sync.Mutex
	identities  map[string]auth.Identity
	tokenReply  *auth.TokenReply
	tokenErr    error
	loggedOut   []string
	validations int
}

func (f *fakeAuth) Initialize(token string) error {
	if token == "" {
		return auth.ErrNoToken
	}
	return nil
}

func (f *fakeAuth) Validate(_ context.Context, token string) (auth.Identity, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.validations++
	id, ok := f.identities[token]
	return id, ok
}

func (f *fakeAuth) RequestToken(_ context.Context, _, _ string) (*auth.TokenReply, error) {
	return f.tokenReply, f.tokenErr
}

func (f *fakeAuth) Logout(_ context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, token)
}

func newTestUI(t *testing.T, fa *fakeAuth) (*UI, *http.ServeMux) {
	t.Helper()
	if fa.identities == nil {
		fa.identities = map[string]auth.Identity{
			"user-tok":  {Username: "ada"},
			"admin-tok": {Username: auth.AdminUsername},
		}
	}

	ui := New(fa, session.NewStore(session.Options{}), Config{
		HangmanURL:       "http://localhost:4000",
		DatabaseProxyURL: "ws://127.0.0.1:1/db",
		Notice:           "<p>maintenance tonight</p>",
	})
	t.Cleanup(ui.Close)

	mux := http.NewServeMux()
	ui.RegisterRoutes(mux)
	return ui, mux
}

func getIndex(mux *http.ServeMux, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func tokenCookie(v string) *http.Cookie {
	return &http.Cookie{Name: session.TokenCookieName, Value: v}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func postForm(mux *http.ServeMux, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestIndex_NoTokenRendersLogin(t *testing.T) {
	fa := &fakeAuth{}
	_, mux := newTestUI(t, fa)

	rec := getIndex(mux)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `id="loginForm"`)
	assert.Zero(t, fa.validations, "no token means no backend call")
	assert.Nil(t, findCookie(rec, session.IdentityCookieName))
}

func TestIndex_UserRendersHub(t *testing.T) {
	_, mux := newTestUI(t, &fakeAuth{})

	rec := getIndex(mux, tokenCookie("user-tok"))
	body := rec.Body.String()

	assert.Contains(t, body, "Welcome to the hub ada")
	assert.Contains(t, body, `<a href="http://localhost:4000">Hangman</a>`)
	assert.Contains(t, body, "maintenance tonight")
	assert.NotContains(t, body, "sendBtn")

	cached := findCookie(rec, session.IdentityCookieName)
	require.NotNil(t, cached)
	assert.Positive(t, cached.MaxAge)
}

func TestIndex_AdminRendersConsole(t *testing.T) {
	_, mux := newTestUI(t, &fakeAuth{})

	body := getIndex(mux, tokenCookie("admin-tok")).Body.String()

	assert.Contains(t, body, "<h3>Database Connection</h3>")
	assert.Contains(t, body, `id="sqlInput"`)
	assert.Contains(t, body, `id="sendBtn"`)
	assert.NotContains(t, body, "Welcome to the hub")
}

func TestIndex_RejectedTokenRendersLoginAndDropsIdentity(t *testing.T) {
	_, mux := newTestUI(t, &fakeAuth{})

	rec := getIndex(mux, tokenCookie("stale"))

	assert.Contains(t, rec.Body.String(), `id="loginForm"`)
	cleared := findCookie(rec, session.IdentityCookieName)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestIndex_EscapesUsername(t *testing.T) {
	fa := &fakeAuth{identities: map[string]auth.Identity{
		"tok": {Username: "<script>alert(1)</script>"},
	}}
	_, mux := newTestUI(t, fa)

	body := getIndex(mux, tokenCookie("tok")).Body.String()

	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestIndex_FlashShownOnce(t *testing.T) {
	_, mux := newTestUI(t, &fakeAuth{})
	flash := &http.Cookie{Name: session.FlashCookieName, Value: "token%20retrieved%20successfully"}

	rec := getIndex(mux, tokenCookie("user-tok"), flash)

	assert.Contains(t, rec.Body.String(), "token retrieved successfully")
	cleared := findCookie(rec, session.FlashCookieName)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestIndex_UnknownPathIsNotFound(t *testing.T) {
	_, mux := newTestUI(t, &fakeAuth{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin_Success(t *testing.T) {
	fa := &fakeAuth{tokenReply: &auth.TokenReply{Status: http.StatusOK, Body: []byte(`{"data":"tok-123"}`)}}
	_, mux := newTestUI(t, fa)

	rec := postForm(mux, "/login", url.Values{"username": {"ada"}, "password": {"pw"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	token := findCookie(rec, session.TokenCookieName)
	require.NotNil(t, token)
	assert.Equal(t, "tok-123", token.Value)

	flash := findCookie(rec, session.FlashCookieName)
	require.NotNil(t, flash)
	assert.Equal(t, "token%20retrieved%20successfully", flash.Value)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply *auth.TokenReply
		want  string
	}{
		{"backend error", &auth.TokenReply{Status: http.StatusUnauthorized, Body: []byte(`{"error":"bad credentials"}`)}, "bad credentials"},
		{"no payload", &auth.TokenReply{Status: http.StatusInternalServerError}, "Something went wrong..."},
		{"no data", &auth.TokenReply{Status: http.StatusOK, Body: []byte(`{"ok":true}`)}, "Response did not contain data object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mux := newTestUI(t, &fakeAuth{tokenReply: tt.reply})

			rec := postForm(mux, "/login", url.Values{"username": {"ada"}, "password": {"pw"}})

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `<p id="message">`+tt.want+`</p>`)
			assert.Nil(t, findCookie(rec, session.TokenCookieName))
		})
	}
}

func TestLogin_NetworkErrorShowsNoMessage(t *testing.T) {
	_, mux := newTestUI(t, &fakeAuth{tokenErr: errors.New("connection refused")})

	rec := postForm(mux, "/login", url.Values{"username": {"ada"}, "password": {"pw"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<p id="message"></p>`)
	assert.Nil(t, findCookie(rec, session.TokenCookieName))
}

func TestLogout(t *testing.T) {
	fa := &fakeAuth{}
	_, mux := newTestUI(t, fa)

	rec := postForm(mux, "/logout", nil, tokenCookie("user-tok"))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, []string{"user-tok"}, fa.loggedOut)
	for _, name := range []string{session.TokenCookieName, session.IdentityCookieName, session.FlashCookieName} {
		c := findCookie(rec, name)
		require.NotNil(t, c, name)
		assert.Equal(t, -1, c.MaxAge)
	}
}

func TestLogout_LogsCachedIdentity(t *testing.T) {
	ui, mux := newTestUI(t, &fakeAuth{})
	var buf bytes.Buffer
	ui.logger = slog.New(slog.NewJSONHandler(&buf, nil))

	identity := &http.Cookie{
		Name:  session.IdentityCookieName,
		Value: url.PathEscape(`{"username":"ada","expiry":0}`),
	}
	rec := postForm(mux, "/logout", nil, tokenCookie("user-tok"), identity)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, buf.String(), `"msg":"user logged out"`)
	assert.Contains(t, buf.String(), `"username":"ada"`)
}

func TestLogout_WithoutSession(t *testing.T) {
	fa := &fakeAuth{}
	_, mux := newTestUI(t, fa)

	rec := postForm(mux, "/logout", nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, fa.loggedOut)
}

func TestConsole_RefusesNonAdmin(t *testing.T) {
	ui, mux := newTestUI(t, &fakeAuth{})
	dialed := false
	ui.dial = func(context.Context, string, string, string) (*console.Conn, error) {
		dialed = true
		return nil, errors.New("unexpected dial")
	}

	for _, cookies := range [][]*http.Cookie{nil, {tokenCookie("user-tok")}, {tokenCookie("stale")}} {
		req := httptest.NewRequest(http.MethodGet, ConsolePath, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}
	assert.False(t, dialed)
}

func TestConsole_AdminRoundTrip(t *testing.T) {
	gotAuth := make(chan string, 1)
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth <- r.Header.Get("Authorization")
		ws, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				return
			}
			reply := `{"data":"1 rows affected"}`
			if strings.HasPrefix(string(msg), "SELECT") {
				reply = `[{"id":1,"name":"<b>a</b>"}]`
			}
			_ = ws.WriteMessage(websocket.TextMessage, []byte(reply))
		}
	}))
	defer proxy.Close()

	fa := &fakeAuth{}
	ui := New(fa, session.NewStore(session.Options{}), Config{
		DatabaseProxyURL: "ws" + strings.TrimPrefix(proxy.URL, "http"),
	})
	defer ui.Close()
	fa.identities = map[string]auth.Identity{"admin-tok": {Username: "admin"}}

	mux := http.NewServeMux()
	ui.RegisterRoutes(mux)
	portal := httptest.NewServer(mux)
	defer portal.Close()

	header := http.Header{}
	header.Set("Cookie", session.TokenCookieName+"=admin-tok")
	browser, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(portal.URL, "http")+ConsolePath, header)
	require.NoError(t, err)
	defer browser.Close()

	require.NoError(t, browser.WriteMessage(websocket.TextMessage, []byte("SELECT * FROM users")))
	_ = browser.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, frame, err := browser.ReadMessage()
	require.NoError(t, err)

	assert.Contains(t, string(frame), "<th>id</th><th>name</th>")
	assert.Contains(t, string(frame), "<td>1</td><td>&lt;b&gt;a&lt;/b&gt;</td>")
	assert.Equal(t, "Bearer admin-tok", <-gotAuth)

	require.NoError(t, browser.WriteMessage(websocket.TextMessage, []byte("DELETE FROM users WHERE id = 9")))
	_, frame, err = browser.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(frame), `<p id="message">1 rows affected</p>`)
	assert.NotContains(t, string(frame), "<th>")
}

func TestConsole_ProxyUnavailable(t *testing.T) {
	ui, _ := newTestUI(t, &fakeAuth{})
	ui.dial = func(context.Context, string, string, string) (*console.Conn, error) {
		return nil, errors.New("connection refused")
	}
	mux := http.NewServeMux()
	ui.RegisterRoutes(mux)
	portal := httptest.NewServer(mux)
	defer portal.Close()

	header := http.Header{}
	header.Set("Cookie", session.TokenCookieName+"=admin-tok")
	browser, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(portal.URL, "http")+ConsolePath, header)
	require.NoError(t, err)
	defer browser.Close()

	_ = browser.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = browser.ReadMessage()
	var ce *websocket.CloseError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, websocket.CloseInternalServerErr, ce.Code)
}

func TestRenderResult(t *testing.T) {
	frame, err := RenderResult(console.Rows{
		Columns: []string{"id", "note"},
		Records: [][]string{{"1", "a & b"}, {"2", ""}},
	})
	require.NoError(t, err)
	html := string(frame)
	assert.Contains(t, html, `<p id="message"></p>`)
	assert.Contains(t, html, "<tr><th>id</th><th>note</th></tr>")
	assert.Contains(t, html, "<tr><td>1</td><td>a &amp; b</td></tr>")
	assert.Contains(t, html, "<tr><td>2</td><td></td></tr>")

	frame, err = RenderResult(console.Status{Message: "unknown response"})
	require.NoError(t, err)
	assert.Contains(t, string(frame), `<p id="message">unknown response</p>`)
	assert.NotContains(t, string(frame), "<thead>")

	frame, err = RenderResult(console.Rows{})
	require.NoError(t, err)
	assert.NotContains(t, string(frame), "<thead>")
}

func TestRenderNotice(t *testing.T) {
	html, err := RenderNotice([]byte("# Heads up\n\nThe **hub** moves tonight."))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<h1>Heads up</h1>")
	assert.Contains(t, string(html), "<strong>hub</strong>")

	empty, err := LoadNotice("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = LoadNotice("/nonexistent/notice.md")
	assert.Error(t, err)
}
