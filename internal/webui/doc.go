// Package webui serves the portal's browser-facing pages.
//
// Every GET / validates the stored session token against the auth backend
// and renders exactly one of three views:
//
//   - login: no token, or the backend rejected it
//   - hub: a valid non-admin identity
//   - admin: the identity named "admin", with the database console
//
// Login and logout both answer with a 303 redirect to /, so the routing
// decision runs once more after each. The admin page opens a websocket to
// /console; the portal dials the database proxy for it and pumps frames with
// a console.Bridge until either side goes away.
//
// Templates are embedded and parsed on each render.
package webui
