// Package auth provides session identity handling for gatehouse.
//
// # Overview
//
// Two sides of the same bearer-token session live here:
//
//   - Service: the portal's client for the auth backend. It exchanges
//     credentials for a token, validates a stored token into an Identity,
//     and performs logout.
//   - TokenIssuer: HS256 JWT issue/verify used by the development auth
//     backend, plus HTTPAuthMiddleware and RequireAdminHTTP for guarding its
//     endpoints.
//
// # Identity
//
// An Identity is {username, expiry}. The username "admin" is the only role
// discriminant. An Identity that is present and not expired means the user is
// authenticated.
//
// # Failure handling
//
// Service.Validate never returns an error. Transport failures, non-2xx
// statuses, and absent or unparseable payloads are logged and reported as
// "not authenticated". Service.RequestToken only fails on transport errors;
// interpreting the response is the login view's job.
//
// # Usage
//
//	svc := auth.NewService(auth.Endpoints{
//		Authenticate: eps.AuthenticateURL(),
//		Token:        eps.TokenURL(),
//		Logout:       eps.LogoutURL(),
//	}, httpClient)
//
//	id, ok := svc.Validate(ctx, token)
package auth
