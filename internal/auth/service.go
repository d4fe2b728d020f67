// ABOUTME: Client for the auth backend: token exchange, identity validation, logout
// ABOUTME: Failures are logged and reported as "not authenticated", never returned to views

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389/gatehouse/internal/payload"
)

// ErrNoToken is reported by Initialize when no stored session token was found.
var ErrNoToken = errors.New("no stored session token")

// maxResponseBytes bounds how much of a backend response body is read.
const maxResponseBytes = 1 << 20

// Endpoints are the auth backend URLs the service talks to.
type Endpoints struct {
	Authenticate string
	Token        string
	Logout       string
}

// TokenReply is the raw outcome of a token request. Interpretation is left to
// the login view.
type TokenReply struct {
	Status int
	Body   []byte
}

// Service exchanges credentials for session tokens and validates stored tokens.
type Service struct {
	endpoints Endpoints
	client    *http.Client
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates an auth service. A nil client uses http.DefaultClient.
func NewService(endpoints Endpoints, client *http.Client) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{
		endpoints: endpoints,
		client:    client,
		logger:    slog.Default().With("component", "auth"),
		now:       time.Now,
	}
}

// Initialize reports whether a previously stored token was located.
func (s *Service) Initialize(token string) error {
	if token == "" {
		return ErrNoToken
	}
	return nil
}

// Validate performs one round trip to the authenticate endpoint. It returns
// true only when the backend answers 2xx with a data payload that decodes into
// a non-expired identity. Every other outcome is logged and yields false.
func (s *Service) Validate(ctx context.Context, token string) (Identity, bool) {
	if err := s.Initialize(token); err != nil {
		s.logger.Debug("skipping validation", "reason", err)
		return Identity{}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoints.Authenticate, nil)
	if err != nil {
		s.logger.Error("building authenticate request", "error", err)
		return Identity{}, false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	status, body, err := s.do(req)
	if err != nil {
		s.logger.Error("Network error: request failed", "endpoint", s.endpoints.Authenticate, "error", err)
		return Identity{}, false
	}

	doc, ok := payload.Parse(body)
	if !isSuccess(status) {
		s.logger.Error(payload.ErrorMessage(doc, ok, "something went wrong..."), "status", status)
		return Identity{}, false
	}

	data, found := payload.Data(doc, ok)
	if !found {
		s.logger.Error("Response did not contain data object", "status", status)
		return Identity{}, false
	}

	id, err := ParseIdentity([]byte(data.Raw))
	if err != nil {
		s.logger.Error("authenticate response carried an unusable identity", "error", err)
		return Identity{}, false
	}

	if id.Expired(s.now()) {
		s.logger.Warn("authenticate response carried an expired identity",
			"username", id.Username,
			"expires_at", id.ExpiresAt(),
		)
		return Identity{}, false
	}

	return id, true
}

// RequestToken posts the credentials form-encoded to the token endpoint.
// Only transport failures return an error; any HTTP response is handed back.
func (s *Service) RequestToken(ctx context.Context, username, password string) (*TokenReply, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoints.Token, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}

	return &TokenReply{Status: status, Body: body}, nil
}

// Logout tells the backend the session is over. The outcome is only logged.
func (s *Service) Logout(ctx context.Context, token string) {
	if s.endpoints.Logout == "" || token == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoints.Logout, nil)
	if err != nil {
		s.logger.Warn("building logout request", "error", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)

	status, _, err := s.do(req)
	if err != nil {
		s.logger.Warn("logout request failed", "error", err)
		return
	}
	s.logger.Debug("logout acknowledged", "status", status)
}

func (s *Service) do(req *http.Request) (int, []byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		// a truncated body is treated like an absent payload
		return resp.StatusCode, nil, nil
	}
	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
