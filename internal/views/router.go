// ABOUTME: Pure view selection from authentication state and role
// ABOUTME: Exactly one of login, hub, or admin is chosen for every request

package views

import "github.com/2389/gatehouse/internal/auth"

// View names one of the three mutually exclusive pages.
type View int

const (
	ViewLogin View = iota
	ViewHub
	ViewAdmin
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewHub:
		return "hub"
	case ViewAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Select picks the view for the given authentication result. An invalid
// session always gets the login view, whatever identity is supplied.
func Select(authValid bool, id *auth.Identity) View {
	if !authValid || id == nil {
		return ViewLogin
	}
	if id.IsAdmin() {
		return ViewAdmin
	}
	return ViewHub
}
