package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/arthurpeter/VacationAgent/internal/credential"
)

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// csrfHeader is the anti-forgery header the refresh and logout endpoints
// expect when the corresponding cookie was issued.
const csrfHeader = "X-CSRF-TOKEN-Refresh"

// Coordinator performs credential renewal with single-flight semantics:
// at most one renewal request is in flight system-wide, and every caller
// that asked for renewal while it was pending observes the same outcome.
//
// The in-flight slot is managed by singleflight and self-clears on every
// exit path, including panics, so a failed renewal can never wedge later
// authenticated calls.
type Coordinator struct {
	store   credential.Store
	client  HTTPDoer
	baseURL string
	logger  *slog.Logger

	group singleflight.Group
}

// NewCoordinator creates a refresh coordinator. It is constructed once per
// application instance and shared by reference.
func NewCoordinator(store credential.Store, client HTTPDoer, baseURL string, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:   store,
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Renew obtains a fresh credential. Concurrent callers collapse into one
// network call and share its result. Renewal failure clears the stored
// credential and is terminal for the session; it is not retried.
func (c *Coordinator) Renew(ctx context.Context) (credential.Credential, error) {
	v, err, shared := c.group.Do("refresh", func() (any, error) {
		return c.renew(ctx)
	})
	if shared {
		refreshCollapsedTotal.Inc()
	}
	if err != nil {
		return credential.Credential{}, err
	}
	return v.(credential.Credential), nil
}

func (c *Coordinator) renew(ctx context.Context) (credential.Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", http.NoBody)
	if err != nil {
		return credential.Credential{}, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// The refresh call authenticates via the refresh cookie in the
	// client's jar; the anti-forgery token rides along when available.
	if csrf, err := c.store.CSRFToken(ctx); err == nil && csrf != "" {
		req.Header.Set(csrfHeader, csrf)
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return credential.Credential{}, c.fail(ctx, fmt.Errorf("refresh request: %v: %w", err, ErrSessionExpired))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return credential.Credential{}, c.fail(ctx, fmt.Errorf("refresh rejected with status %d: %w", resp.StatusCode, ErrSessionExpired))
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return credential.Credential{}, c.fail(ctx, fmt.Errorf("decode refresh response: %v: %w", err, ErrSessionExpired))
	}
	if body.AccessToken == "" {
		return credential.Credential{}, c.fail(ctx, fmt.Errorf("refresh response missing access token: %w", ErrSessionExpired))
	}

	cred := credential.Credential{AccessToken: body.AccessToken}
	if err := c.store.Set(ctx, cred); err != nil {
		return credential.Credential{}, c.fail(ctx, fmt.Errorf("store refreshed credential: %v: %w", err, ErrSessionExpired))
	}

	refreshTotal.WithLabelValues("success").Inc()
	c.logger.InfoContext(ctx, "credential refreshed")
	return cred, nil
}

// fail clears the credential and records the failed renewal. The caller
// is expected to terminate the session.
func (c *Coordinator) fail(ctx context.Context, err error) error {
	refreshTotal.WithLabelValues("failure").Inc()
	if clearErr := c.store.Clear(ctx); clearErr != nil {
		c.logger.ErrorContext(ctx, "failed to clear credential after renewal failure",
			slog.String("error", clearErr.Error()),
		)
	}
	c.logger.WarnContext(ctx, "credential renewal failed",
		slog.String("error", err.Error()),
	)
	return err
}
