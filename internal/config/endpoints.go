// ABOUTME: Loader for the endpoint document naming the auth backend, database proxy, and hub link
// ABOUTME: Reads a JSON file or fetches it over HTTP once at startup; strict shape checking

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Endpoints is the immutable set of backend URLs used for the life of the process.
type Endpoints struct {
	AuthBaseURL      string `json:"AUTH_BASE_URL"`
	DatabaseProxyURL string `json:"DATABASE_PROXY_URL"`
	HangmanURL       string `json:"HANGMAN_URL"`

	// Optional overrides for the endpoints derived from AuthBaseURL
	AuthEndpoint   string `json:"AUTH_ENDPOINT,omitempty"`
	TokenEndpoint  string `json:"TOKEN_ENDPOINT,omitempty"`
	LogoutEndpoint string `json:"LOGOUT_ENDPOINT,omitempty"`
}

// AuthenticateURL is where stored tokens are validated.
func (e Endpoints) AuthenticateURL() string {
	if e.AuthEndpoint != "" {
		return e.AuthEndpoint
	}
	return joinPath(e.AuthBaseURL, "/api/authenticate")
}

// TokenURL is where credentials are exchanged for a token.
func (e Endpoints) TokenURL() string {
	if e.TokenEndpoint != "" {
		return e.TokenEndpoint
	}
	return joinPath(e.AuthBaseURL, "/api/token")
}

// LogoutURL is notified when a user logs out.
func (e Endpoints) LogoutURL() string {
	if e.LogoutEndpoint != "" {
		return e.LogoutEndpoint
	}
	if e.AuthBaseURL == "" {
		return ""
	}
	return joinPath(e.AuthBaseURL, "/api/logout")
}

// Validate checks required fields and URL shapes.
func (e Endpoints) Validate() error {
	if e.AuthBaseURL == "" && (e.AuthEndpoint == "" || e.TokenEndpoint == "") {
		return fmt.Errorf("AUTH_BASE_URL is required")
	}
	if e.DatabaseProxyURL == "" {
		return fmt.Errorf("DATABASE_PROXY_URL is required")
	}
	if e.HangmanURL == "" {
		return fmt.Errorf("HANGMAN_URL is required")
	}

	for name, raw := range map[string]string{
		"AUTH_BASE_URL":   e.AuthBaseURL,
		"HANGMAN_URL":     e.HangmanURL,
		"AUTH_ENDPOINT":   e.AuthEndpoint,
		"TOKEN_ENDPOINT":  e.TokenEndpoint,
		"LOGOUT_ENDPOINT": e.LogoutEndpoint,
	} {
		if raw == "" {
			continue
		}
		if err := checkURL(raw, "http", "https"); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if err := checkURL(e.DatabaseProxyURL, "ws", "wss"); err != nil {
		return fmt.Errorf("DATABASE_PROXY_URL: %w", err)
	}

	return nil
}

// LoadEndpoints reads the endpoint document from a file path or an http(s) URL.
// Unknown keys, missing keys, and malformed URLs are all errors.
func LoadEndpoints(ctx context.Context, source string, client *http.Client) (Endpoints, error) {
	data, err := readSource(ctx, source, client)
	if err != nil {
		return Endpoints{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var eps Endpoints
	if err := dec.Decode(&eps); err != nil {
		return Endpoints{}, fmt.Errorf("parsing endpoint document: %w", err)
	}
	if dec.More() {
		return Endpoints{}, fmt.Errorf("parsing endpoint document: trailing data")
	}

	if err := eps.Validate(); err != nil {
		return Endpoints{}, fmt.Errorf("validating endpoint document: %w", err)
	}

	return eps, nil
}

func readSource(ctx context.Context, source string, client *http.Client) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading endpoint document: %w", err)
		}
		return data, nil
	}

	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("building endpoint document request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching endpoint document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching endpoint document: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading endpoint document: %w", err)
	}
	return data, nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return fmt.Errorf("missing host in %q", raw)
			}
			return nil
		}
	}
	return fmt.Errorf("scheme %q not one of %v", u.Scheme, schemes)
}

func joinPath(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
