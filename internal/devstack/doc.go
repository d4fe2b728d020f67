// Package devstack is a small local backend for running the portal without
// the production services.
//
// It provides the two backends the portal talks to:
//
//   - an auth API: POST /api/token, GET /api/authenticate, GET /api/logout,
//     backed by a SQLite user table with bcrypt hashes and HS256 tokens
//   - a database proxy: GET /db, a websocket that runs each text frame as SQL
//     against the same SQLite file; admin bearer only
//
// Nothing here is meant for production.
package devstack
