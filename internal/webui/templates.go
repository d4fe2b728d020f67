// ABOUTME: Template rendering for the login, hub, and admin views
// ABOUTME: Also renders query console results into the fragment the admin page swaps in

package webui

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/2389/gatehouse/internal/console"
	"github.com/2389/gatehouse/internal/views"
)

// consoleResultData feeds partials/console_result.html.
type consoleResultData struct {
	Message string
	Columns []string
	Records [][]string
}

// renderLoginPage renders the login form with an optional message
func (u *UI) renderLoginPage(w http.ResponseWriter, message string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/login.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, views.NewLoginModel(message)); err != nil {
		u.logger.Error("failed to render login page", "error", err)
	}
}

// renderHubPage renders the per-user hub
func (u *UI) renderHubPage(w http.ResponseWriter, model views.HubModel) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/hub.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, model); err != nil {
		u.logger.Error("failed to render hub page", "error", err)
	}
}

// renderAdminPage renders the database console shell
func (u *UI) renderAdminPage(w http.ResponseWriter, model views.AdminModel) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/admin.html"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, model); err != nil {
		u.logger.Error("failed to render admin page", "error", err)
	}
}

// RenderResult turns a decoded console result into the HTML fragment that
// replaces the previous result in the admin page.
func RenderResult(result console.Result) ([]byte, error) {
	var data consoleResultData
	switch r := result.(type) {
	case console.Rows:
		data.Columns = r.Columns
		data.Records = r.Records
	case console.Status:
		data.Message = r.Message
	default:
		return nil, fmt.Errorf("unsupported console result %T", result)
	}

	tmpl := template.Must(template.ParseFS(templateFS, "templates/partials/console_result.html"))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering console result: %w", err)
	}
	return buf.Bytes(), nil
}
