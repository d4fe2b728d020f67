// Package views holds the portal's view decisions, free of HTTP and templates.
//
// Select is the router: it maps (authValid, identity) to exactly one of the
// login, hub, or admin views. InterpretTokenResponse is the login form's
// response handling. The model constructors build what the templates render.
package views
