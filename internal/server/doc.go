// Package server runs the gatehouse portal process.
//
// New wires the auth backend client, the cookie session store, and the web
// UI onto one http.ServeMux, adds /health, and wraps everything in request
// logging. Run listens on server.http_addr, or on a tailnet node when
// tailscale is enabled (plain HTTP on :80, HTTPS with tailscale certs, or
// Funnel on :443).
//
// Shutdown allows five seconds for in-flight requests, then closes any open
// admin consoles and leaves the tailnet.
package server
