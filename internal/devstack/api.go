// ABOUTME: Development auth backend: token issue, token check, and logout endpoints
// ABOUTME: Issues HS256 session tokens for users in the SQLite store

package devstack

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/2389/gatehouse/internal/auth"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// Authority issues and checks session tokens.
type Authority struct {
	store   *Store
	issuer  *auth.TokenIssuer
	ttl     time.Duration
	revoked *revocationList
	logger  *slog.Logger
}

// NewAuthority creates the auth backend. A zero ttl means DefaultTokenTTL.
func NewAuthority(store *Store, issuer *auth.TokenIssuer, ttl time.Duration) *Authority {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authority{
		store:   store,
		issuer:  issuer,
		ttl:     ttl,
		revoked: newRevocationList(),
		logger:  slog.Default().With("component", "devstack.auth"),
	}
}

// Verify implements auth.TokenVerifier, rejecting logged-out tokens.
func (a *Authority) Verify(token string) (auth.Claims, error) {
	claims, err := a.issuer.Verify(token)
	if err != nil {
		return auth.Claims{}, err
	}
	if a.revoked.contains(claims.TokenID) {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return claims, nil
}

// handleToken exchanges form credentials for a token.
func (a *Authority) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "username and password are required"})
		return
	}

	if err := a.store.CheckPassword(r.Context(), username, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			a.logger.Info("login rejected", "username", username)
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": ErrInvalidCredentials.Error()})
			return
		}
		a.logger.Error("checking credentials", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	token, err := a.issuer.Generate(username, a.ttl)
	if err != nil {
		a.logger.Error("generating token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	a.logger.Info("issued token", "username", username)
	writeJSON(w, http.StatusOK, map[string]string{"data": token})
}

// handleAuthenticate returns the identity behind the bearer token.
func (a *Authority) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	claims := auth.MustFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]auth.Identity{"data": claims.Identity()})
}

// handleLogout revokes the bearer token.
func (a *Authority) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := auth.MustFromContext(r.Context())
	a.revoked.add(claims.TokenID, claims.ExpiresAt)
	a.logger.Info("logged out", "username", claims.Username)
	writeJSON(w, http.StatusOK, map[string]string{"data": "logged out"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// revocationList remembers logged-out token ids until they would have expired anyway.
type revocationList struct {
	mu  sync.Mutex
	ids map[string]time.Time
	now func() time.Time
}

func newRevocationList() *revocationList {
	return &revocationList{ids: make(map[string]time.Time), now: time.Now}
}

func (l *revocationList) add(id string, expires time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, exp := range l.ids {
		if now.After(exp) {
			delete(l.ids, k)
		}
	}
	l.ids[id] = expires
}

func (l *revocationList) contains(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.ids[id]
	return ok
}
