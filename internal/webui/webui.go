// ABOUTME: Portal web UI: routes each request to the login, hub, or admin view
// ABOUTME: Handles login, logout, and the admin console websocket

package webui

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/2389/gatehouse/internal/auth"
	"github.com/2389/gatehouse/internal/console"
	"github.com/2389/gatehouse/internal/session"
	"github.com/2389/gatehouse/internal/views"
)

// ConsolePath is where the admin page opens its console socket.
const ConsolePath = "/console"

// Authenticator talks to the auth backend.
type Authenticator interface {
	Initialize(token string) error
	Validate(ctx context.Context, token string) (auth.Identity, bool)
	RequestToken(ctx context.Context, username, password string) (*auth.TokenReply, error)
	Logout(ctx context.Context, token string)
}

// DialFunc opens a console connection to the database proxy.
type DialFunc func(ctx context.Context, proxyURL, token, id string) (*console.Conn, error)

// Config holds the values the views need.
type Config struct {
	// HangmanURL is the hub's outbound link
	HangmanURL string

	// DatabaseProxyURL is the ws/wss address of the database proxy
	DatabaseProxyURL string

	// Notice is pre-rendered HTML shown on the hub, may be empty
	Notice template.HTML
}

// UI serves the portal pages.
type UI struct {
	auth     Authenticator
	sessions *session.Store
	config   Config
	dial     DialFunc
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// consoles outlive their requests, so they hang off the UI's own context
	ctx      context.Context
	cancel   context.CancelFunc
	consoles sync.WaitGroup
}

// New creates the portal UI.
func New(authenticator Authenticator, sessions *session.Store, cfg Config) *UI {
	ctx, cancel := context.WithCancel(context.Background())
	return &UI{
		auth:     authenticator,
		sessions: sessions,
		config:   cfg,
		dial:     console.Dial,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		logger: slog.Default().With("component", "webui"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Close ends every open console and waits for the bridges to stop.
func (u *UI) Close() {
	u.cancel()
	done := make(chan struct{})
	go func() {
		u.consoles.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		u.logger.Warn("timed out waiting for consoles to close")
	}
}

// RegisterRoutes registers the portal routes on the given mux
func (u *UI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", u.handleIndex)
	mux.HandleFunc("POST /login", u.handleLogin)
	mux.HandleFunc("POST /logout", u.handleLogout)
	mux.HandleFunc("GET "+ConsolePath, u.handleConsole)

	u.logger.Info("portal routes registered")
}

// validate checks the stored token against the auth backend without touching cookies.
func (u *UI) validate(r *http.Request) (string, auth.Identity, bool) {
	token, _ := u.sessions.Token(r)
	if err := u.auth.Initialize(token); err != nil {
		u.logger.Debug("no stored session", "error", err)
		return "", auth.Identity{}, false
	}

	id, ok := u.auth.Validate(r.Context(), token)
	return token, id, ok
}

// resolveSession validates the session and keeps the cached identity cookie in step.
func (u *UI) resolveSession(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	token, id, ok := u.validate(r)
	if !ok {
		if token != "" {
			u.sessions.Clear(w, session.IdentityCookieName)
		}
		return auth.Identity{}, false
	}

	u.sessions.SetIdentity(w, id)
	return id, true
}

func (u *UI) handleIndex(w http.ResponseWriter, r *http.Request) {
	id, valid := u.resolveSession(w, r)
	flash := u.sessions.PopFlash(w, r)

	var current *auth.Identity
	if valid {
		current = &id
	}

	view := views.Select(valid, current)
	u.logger.Debug("routing request", "view", view, "username", id.Username)

	switch view {
	case views.ViewAdmin:
		u.renderAdminPage(w, views.NewAdminModel(id, ConsolePath, flash))
	case views.ViewHub:
		u.renderHubPage(w, views.NewHubModel(id, u.config.HangmanURL, u.config.Notice, flash))
	default:
		u.renderLoginPage(w, flash)
	}
}

func (u *UI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		u.logger.Warn("invalid login form", "error", err)
		u.renderLoginPage(w, "")
		return
	}

	reply, err := u.auth.RequestToken(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		u.logger.Error("Network error: request failed", "error", err)
		u.renderLoginPage(w, "")
		return
	}

	outcome := views.InterpretTokenResponse(reply.Status, reply.Body)
	if !outcome.Success {
		u.logger.Info("login rejected", "status", reply.Status, "message", outcome.Message)
		u.renderLoginPage(w, outcome.Message)
		return
	}

	u.sessions.SetToken(w, outcome.Token)
	u.sessions.SetFlash(w, outcome.Message)
	u.logger.Info(outcome.Message)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (u *UI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := u.sessions.Token(r); ok && token != "" {
		u.auth.Logout(r.Context(), token)
	}

	// The cached identity is only read here, to name who left.
	if id, ok := u.sessions.Identity(r); ok {
		u.logger.Info("user logged out", "username", id.Username)
	}

	u.sessions.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (u *UI) handleConsole(w http.ResponseWriter, r *http.Request) {
	token, id, ok := u.validate(r)
	if !ok || !id.IsAdmin() {
		u.logger.Warn("console refused", "username", id.Username)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	ws, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		u.logger.Warn("console upgrade failed", "error", err)
		return
	}

	consoleID := uuid.NewString()
	logger := u.logger.With("console_id", consoleID, "username", id.Username)

	u.consoles.Add(1)
	defer u.consoles.Done()

	conn, err := u.dial(u.ctx, u.config.DatabaseProxyURL, token, consoleID)
	if err != nil {
		logger.Error("failed to connect to database proxy", "error", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "database proxy unavailable"),
			time.Now().Add(time.Second))
		_ = ws.Close()
		return
	}

	if err := console.NewBridge(ws, conn, RenderResult).Run(u.ctx); err != nil {
		logger.Error("console stopped", "error", err)
		return
	}
	logger.Info("console finished")
}
