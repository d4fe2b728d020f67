// ABOUTME: View models handed to the page templates
// ABOUTME: Built from session state and configuration without touching HTTP

package views

import (
	"html/template"

	"github.com/2389/gatehouse/internal/auth"
)

// LoginModel feeds the login form.
type LoginModel struct {
	Title   string
	Message string
}

// HubModel feeds the hub page.
type HubModel struct {
	Title      string
	Username   string
	HangmanURL string
	Notice     template.HTML
	Flash      string
}

// AdminModel feeds the database console page.
type AdminModel struct {
	Title       string
	Username    string
	ConsolePath string
	Flash       string
}

// NewLoginModel builds the login page model.
func NewLoginModel(message string) LoginModel {
	return LoginModel{Title: "Login", Message: message}
}

// NewHubModel builds the hub page model.
func NewHubModel(id auth.Identity, hangmanURL string, notice template.HTML, flash string) HubModel {
	return HubModel{
		Title:      "Hub",
		Username:   id.Username,
		HangmanURL: hangmanURL,
		Notice:     notice,
		Flash:      flash,
	}
}

// NewAdminModel builds the admin page model.
func NewAdminModel(id auth.Identity, consolePath, flash string) AdminModel {
	return AdminModel{
		Title:       "Database Connection",
		Username:    id.Username,
		ConsolePath: consolePath,
		Flash:       flash,
	}
}
