// Package travelapi is a typed client for the travel backend's session and
// search endpoints. Every call goes through the authenticated gateway;
// this package only shapes requests and decodes responses.
package travelapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arthurpeter/VacationAgent/internal/domain"
	"github.com/arthurpeter/VacationAgent/pkg/httpclient"
)

// Doer issues authenticated requests. *auth.Gateway is the production
// implementation.
type Doer interface {
	Call(ctx context.Context, method, path string, body any) (*http.Response, error)
}

// Client wraps the gateway with one method per backend route.
type Client struct {
	gw     Doer
	logger *slog.Logger
}

// New creates a travel API client.
func New(gw Doer, logger *slog.Logger) *Client {
	return &Client{gw: gw, logger: logger}
}

// CreateSession creates a fresh planning session and returns its id.
func (c *Client) CreateSession(ctx context.Context) (int, error) {
	var out struct {
		SessionID int `json:"session_id"`
	}
	if err := c.call(ctx, http.MethodPost, "/session/create", nil, &out, "create session"); err != nil {
		return 0, err
	}
	return out.SessionID, nil
}

// GetSession fetches the server-owned session record.
func (c *Client) GetSession(ctx context.Context, id int) (*domain.PlanningSession, error) {
	var out domain.PlanningSession
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/session/%d", id), nil, &out, "get session"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSessions returns the ids of the user's planning sessions.
func (c *Client) ListSessions(ctx context.Context) ([]int, error) {
	var out struct {
		SessionIDs []int `json:"session_ids"`
	}
	if err := c.call(ctx, http.MethodGet, "/session/getSessions", nil, &out, "list sessions"); err != nil {
		return nil, err
	}
	return out.SessionIDs, nil
}

// DeleteSession removes a planning session.
func (c *Client) DeleteSession(ctx context.Context, id int) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/session/delete/%d", id), nil, nil, "delete session")
}

// UpdateSessionDetails applies a field-level partial update to the session
// record.
func (c *Client) UpdateSessionDetails(ctx context.Context, id int, patch domain.SessionPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	return c.call(ctx, http.MethodPatch, fmt.Sprintf("/session/%d/details", id), patch, nil, "update session details")
}

// call issues a request through the gateway and decodes a 2xx body into
// out (when out is non-nil). Non-2xx bodies are mapped to AppErrors.
func (c *Client) call(ctx context.Context, method, path string, body, out any, operation string) error {
	resp, err := c.gw.Call(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, operation)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
