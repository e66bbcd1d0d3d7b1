// Package backend talks to the academy REST API's authentication endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/saa-academy/portal/internal/api/metrics"
	"github.com/saa-academy/portal/internal/core/domain"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 1 << 20
)

// Client implements ports.AuthBackend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the API rooted at baseURL
// (e.g. http://localhost:5000/api).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// identityResponse accepts both "id" and the Mongo-style "_id".
type identityResponse struct {
	ID       string `json:"id"`
	MongoID  string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Login posts credentials to /users/login.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	return c.authenticate(ctx, "login", "/users/login", loginRequest{Email: email, Password: password}, domain.ErrInvalidCredentials)
}

// Register posts a new account to /users/register.
func (c *Client) Register(ctx context.Context, username, email, password string) (*domain.Identity, error) {
	return c.authenticate(ctx, "register", "/users/register", registerRequest{Username: username, Email: email, Password: password}, domain.ErrRegistrationRejected)
}

// authenticate maps rejections of the submitted credentials to rejectErr,
// carrying the API's message. Every other non-2xx answer is a backend failure.
func (c *Client) authenticate(ctx context.Context, endpoint, path string, body any, rejectErr error) (*domain.Identity, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(endpoint, "error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.BackendRequestDuration.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", domain.ErrBackendUnavailable, endpoint, err)
	}

	switch {
	case rejection(resp.StatusCode):
		return nil, fmt.Errorf("%w: %s", rejectErr, messageOr(raw, rejectErr.Error()))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrBackendFailure, endpoint, resp.StatusCode)
	}

	var ir identityResponse
	if err := json.Unmarshal(raw, &ir); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %v", domain.ErrBackendFailure, endpoint, err)
	}
	identity := &domain.Identity{
		ID:       ir.ID,
		Username: ir.Username,
		Email:    ir.Email,
		Role:     domain.Role(ir.Role),
		Token:    ir.Token,
	}
	if identity.ID == "" {
		identity.ID = ir.MongoID
	}
	return identity, nil
}

// rejection reports whether status means the API refused the credentials or
// registration data, as opposed to a misrouted or throttled request.
func rejection(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

func messageOr(raw []byte, fallback string) string {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil {
		if er.Message != "" {
			return er.Message
		}
		if er.Error != "" {
			return er.Error
		}
	}
	return fallback
}
