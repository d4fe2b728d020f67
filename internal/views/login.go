// ABOUTME: Interpretation of the auth backend's reply to a login form submission
// ABOUTME: Decides the message shown on the form and whether a token was issued

package views

import (
	"github.com/2389/gatehouse/internal/payload"
)

// Messages shown on the login form.
const (
	MsgLoginFailed  = "Something went wrong..."
	MsgNoData       = "Response did not contain data object"
	MsgTokenFetched = "token retrieved successfully"
)

// LoginOutcome is what the login form does with a token reply.
type LoginOutcome struct {
	Success bool
	Message string
	Token   string
}

// InterpretTokenResponse applies the login branch rules in order: an
// undecodable body counts as no payload; a non-2xx status shows the payload's
// error or a generic failure; a 2xx without data says so; otherwise the data
// is the token.
func InterpretTokenResponse(status int, body []byte) LoginOutcome {
	doc, ok := payload.Parse(body)

	if status < 200 || status > 299 {
		return LoginOutcome{Message: payload.ErrorMessage(doc, ok, MsgLoginFailed)}
	}

	data, found := payload.Data(doc, ok)
	if !found {
		return LoginOutcome{Message: MsgNoData}
	}

	return LoginOutcome{
		Success: true,
		Message: MsgTokenFetched,
		Token:   payload.Text(data),
	}
}
