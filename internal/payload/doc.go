// Package payload inspects the small JSON documents exchanged with the auth
// backend and the database proxy.
//
// Responses from both backends follow the same loose envelope: an object that
// may carry a "data" field on success and an "error" field on failure, or, for
// query results, a bare array of records. The helpers here decode those bodies
// with gjson so that object keys keep their document order, and apply the
// truthiness rules the views rely on (an empty string, zero, false or null
// "data" counts as absent).
package payload
