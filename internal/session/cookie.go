// ABOUTME: Cookie-backed client state: session token, cached identity, and flash message
// ABOUTME: Values are path-escaped on write and unescaped on read; default lifetime is one day

package session

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/2389/gatehouse/internal/auth"
)

const (
	// TokenCookieName holds the bearer token
	TokenCookieName = "gatehouse_token"

	// IdentityCookieName caches the last validated identity
	IdentityCookieName = "gatehouse_user"

	// FlashCookieName carries a one-shot message to the next rendered view
	FlashCookieName = "gatehouse_flash"

	// DefaultLifetime is how long cookies last unless configured otherwise
	DefaultLifetime = 24 * time.Hour

	flashLifetime = time.Minute
)

// Options configures a Store.
type Options struct {
	Lifetime time.Duration
	Secure   bool
}

// Store reads and writes named cookies on behalf of the portal.
type Store struct {
	lifetime time.Duration
	secure   bool
	now      func() time.Time
}

// NewStore creates a cookie store. A zero lifetime means DefaultLifetime.
func NewStore(opts Options) *Store {
	lifetime := opts.Lifetime
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Store{
		lifetime: lifetime,
		secure:   opts.Secure,
		now:      time.Now,
	}
}

// Set writes name=value with the default lifetime.
func (s *Store) Set(w http.ResponseWriter, name, value string) {
	s.SetFor(w, name, value, s.lifetime)
}

// SetFor writes name=value expiring after d.
func (s *Store) SetFor(w http.ResponseWriter, name, value string, d time.Duration) {
	expires := s.now().Add(d)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    url.PathEscape(value),
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(d / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get returns the unescaped value of the named cookie. Missing, empty, or
// badly escaped cookies read as absent.
func (s *Store) Get(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	value, err := url.PathUnescape(cookie.Value)
	if err != nil {
		return "", false
	}
	return value, true
}

// Clear expires the named cookie.
func (s *Store) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetToken persists the session token.
func (s *Store) SetToken(w http.ResponseWriter, token string) {
	s.Set(w, TokenCookieName, token)
}

// Token returns the stored session token.
func (s *Store) Token(r *http.Request) (string, bool) {
	return s.Get(r, TokenCookieName)
}

// SetIdentity caches the last validated identity.
func (s *Store) SetIdentity(w http.ResponseWriter, id auth.Identity) {
	raw, err := json.Marshal(id)
	if err != nil {
		return
	}
	s.Set(w, IdentityCookieName, string(raw))
}

// Identity returns the cached identity, if present and decodable.
func (s *Store) Identity(r *http.Request) (auth.Identity, bool) {
	raw, ok := s.Get(r, IdentityCookieName)
	if !ok {
		return auth.Identity{}, false
	}
	id, err := auth.ParseIdentity([]byte(raw))
	if err != nil {
		return auth.Identity{}, false
	}
	return id, true
}

// SetFlash stores a message for the next rendered view.
func (s *Store) SetFlash(w http.ResponseWriter, msg string) {
	s.SetFor(w, FlashCookieName, msg, flashLifetime)
}

// PopFlash returns and clears the pending flash message.
func (s *Store) PopFlash(w http.ResponseWriter, r *http.Request) string {
	msg, ok := s.Get(r, FlashCookieName)
	if !ok {
		return ""
	}
	s.Clear(w, FlashCookieName)
	return msg
}

// ClearSession drops every cookie the portal owns.
func (s *Store) ClearSession(w http.ResponseWriter) {
	s.Clear(w, TokenCookieName)
	s.Clear(w, IdentityCookieName)
	s.Clear(w, FlashCookieName)
}
