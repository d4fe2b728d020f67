// Package session persists the portal's client-side state in cookies.
//
// Three cookies are used, all with path "/":
//
//   - gatehouse_token: the opaque bearer token from the auth backend
//   - gatehouse_user: the last validated identity, as JSON
//   - gatehouse_flash: a one-shot message for the next rendered view
//
// Values are escaped like a URL path segment so that spaces, commas,
// semicolons and quotes survive the cookie header.
package session
