// Package session implements the REST client for the FurryKids auth
// backend. Login establishes a server-set session cookie which the
// client's jar replays on every subsequent request.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"furrykids/pkg/domain"
)

const (
	registerPath    = "/auth/register"
	loginPath       = "/auth/login"
	logoutPath      = "/auth/logout"
	currentUserPath = "/api/user"
	healthPath      = "/api/health"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Client calls the auth backend over HTTP with cookie-jar semantics.
// It performs no retries and holds no state beyond the cookie jar.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The caller is
// responsible for attaching a cookie jar if session continuity matters.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout adjusts the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New constructs a session client for the given base URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("init cookie jar: %w", err)
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidRequest)
	}
	return c, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password string) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.postJSON(ctx, registerPath, credentials{Username: username, Password: password}, &out)
	return out, err
}

// Login authenticates and stores the server-set session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.postJSON(ctx, loginPath, credentials{Username: username, Password: password}, &out)
	return out, err
}

// Logout ends the server-side session.
func (c *Client) Logout(ctx context.Context) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.postJSON(ctx, logoutPath, nil, &out)
	return out, err
}

// CurrentUser returns the user bound to the session cookie, if any.
func (c *Client) CurrentUser(ctx context.Context) (domain.UserInfoResponse, error) {
	var out domain.UserInfoResponse
	err := c.getJSON(ctx, currentUserPath, &out)
	return out, err
}

// HealthCheck probes the backend.
func (c *Client) HealthCheck(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if err := c.getJSON(ctx, healthPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %v", ErrInvalidRequest, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		// Error bodies still follow the envelope; fall back to the status line.
		var envelope domain.AuthResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil && envelope.Message != "" {
			return &StatusError{Status: resp.StatusCode, Message: envelope.Message}
		}
		return &StatusError{Status: resp.StatusCode, Message: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodingError{Err: err}
	}
	return nil
}
