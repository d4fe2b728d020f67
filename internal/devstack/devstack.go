// ABOUTME: Assembles the development stack's routes on one mux
// ABOUTME: Auth API under /api and the database proxy socket at /db

package devstack

import (
	"net/http"

	"github.com/2389/gatehouse/internal/auth"
)

// RegisterRoutes mounts the auth API and the admin-only database proxy.
func RegisterRoutes(mux *http.ServeMux, authority *Authority, proxy *Proxy) {
	authed := auth.HTTPAuthMiddleware(authority)

	mux.HandleFunc("POST /api/token", authority.handleToken)
	mux.Handle("GET /api/authenticate", authed(http.HandlerFunc(authority.handleAuthenticate)))
	mux.Handle("GET /api/logout", authed(http.HandlerFunc(authority.handleLogout)))
	mux.Handle("GET /db", authed(auth.RequireAdminHTTP()(proxy)))
}
