package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chatterm/internal/client/models"
)

// HTTPClient talks JSON over HTTP to the backend. It is safe for concurrent
// use; the bearer token is resolved per request through the TokenSource.
type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// NewHTTPClient builds a client for the given base URL (e.g.
// "http://localhost:5000/api"). timeout bounds each request; the chat path
// applies its own tighter bound through the context.
func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration) *HTTPClient {
	if tokens == nil {
		tokens = func() string { return "" }
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
	}
}

// errorBody is the backend's error payload. Only message matters.
type errorBody struct {
	Message string `json:"message"`
}

// do runs one JSON round trip. A non-2xx status or transport failure comes
// back as a normalized *Error; fallback is the message of last resort.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, authorized bool, out any, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return newError(fallback, 0, nil)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return newError(fallback, 0, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		if token := c.tokens(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = fallback
		}
		return newError(msg, 0, ErrUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(fallback, 0, ErrUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallback
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
			msg = eb.Message
		} else if resp.Status != "" {
			msg = resp.Status
		}
		var kind error
		if resp.StatusCode == http.StatusUnauthorized {
			kind = ErrUnauthorized
		}
		return newError(msg, resp.StatusCode, kind)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return newError(fallback, resp.StatusCode, ErrUnavailable)
		}
	}
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/login", payload, false, &res, "Login failed"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password, avatar string) (*AuthResult, error) {
	var res AuthResult
	payload := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"avatar":   avatar,
	}
	if err := c.do(ctx, http.MethodPost, "/register", payload, false, &res, "Signup failed"); err != nil {
		return nil, err
	}
	return &res, nil
}

// meResponse models the two shapes /me is known to return: a nested user
// object or the same fields flat on the top level.
type meResponse struct {
	User   *models.UserProfile `json:"user"`
	ID     *models.FlexID      `json:"id"`
	Name   string              `json:"name"`
	Email  string              `json:"email"`
	Avatar string              `json:"avatar"`
}

// normalize maps either variant to the canonical profile record. Missing
// required fields are an error, never silently defaulted.
func (m *meResponse) normalize() (*models.UserProfile, error) {
	u := m.User
	if u == nil {
		u = &models.UserProfile{Name: m.Name, Email: m.Email, Avatar: m.Avatar}
		if m.ID != nil {
			u.ID = *m.ID
		}
	}
	if u.ID == "" || u.Email == "" {
		return nil, fmt.Errorf("malformed profile response: missing id or email")
	}
	return u, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	var res meResponse
	if err := c.do(ctx, http.MethodGet, "/me", nil, true, &res, "Request failed"); err != nil {
		return nil, err
	}
	return res.normalize()
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*models.UserProfile, error) {
	var res struct {
		User *models.UserProfile `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/profile", upd, true, &res, "Profile update failed"); err != nil {
		return nil, err
	}
	return res.User, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	payload := map[string]string{"oldPassword": oldPassword, "newPassword": newPassword}
	if err := c.do(ctx, http.MethodPut, "/password", payload, true, &res, "Password change failed"); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *HTTPClient) ValidateToken(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/validate", nil, true, nil, "Session check failed")
}

func (c *HTTPClient) Chat(ctx context.Context, message string) (string, error) {
	var res struct {
		Reply string `json:"reply"`
	}
	payload := map[string]string{"message": message}
	if err := c.do(ctx, http.MethodPost, "/chat", payload, true, &res, "Chat request failed"); err != nil {
		return "", err
	}
	return res.Reply, nil
}
