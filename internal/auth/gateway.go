package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/arthurpeter/VacationAgent/internal/credential"
)

// Renewer renews the current credential. *Coordinator is the production
// implementation.
type Renewer interface {
	Renew(ctx context.Context) (credential.Credential, error)
}

// TerminateFunc is invoked exactly once per session teardown with a short
// reason. The host application uses it to route the user back to login.
type TerminateFunc func(reason string)

// Gateway is the single path for authenticated calls. It attaches the
// bearer credential, resolves authorization failures internally via the
// refresh coordinator, and retries the original request exactly once with
// the renewed credential. Callers never see a raw 401.
type Gateway struct {
	store       credential.Store
	renewer     Renewer
	client      HTTPDoer
	baseURL     string
	logger      *slog.Logger
	onTerminate TerminateFunc
	now         func() time.Time
}

// NewGateway creates an authenticated-call gateway. onTerminate may be nil.
func NewGateway(store credential.Store, renewer Renewer, client HTTPDoer, baseURL string, logger *slog.Logger, onTerminate TerminateFunc) *Gateway {
	return &Gateway{
		store:       store,
		renewer:     renewer,
		client:      client,
		baseURL:     baseURL,
		logger:      logger,
		onTerminate: onTerminate,
		now:         time.Now,
	}
}

// isAuthFailure reports whether a status is one of the authorization
// failure signals: unauthorized, forbidden, or the backend's
// unprocessable-credential response.
func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized ||
		status == http.StatusForbidden ||
		status == http.StatusUnprocessableEntity
}

// Call issues an authenticated request. body is JSON-encoded for mutating
// verbs; GET and HEAD never carry a body. Responses other than
// authorization failures are returned unmodified, success or not; the
// gateway does not interpret business-level error bodies.
func (g *Gateway) Call(ctx context.Context, method, path string, body any) (*http.Response, error) {
	cred, ok, err := g.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if !ok {
		// No credential: short-circuit without any network call.
		g.terminate(ctx, "no credential")
		return nil, ErrNotAuthenticated
	}

	payload, err := encodeBody(method, body)
	if err != nil {
		return nil, err
	}

	// A token that is visibly past its expiry would only buy a guaranteed
	// 401 round trip; renew up front instead.
	if tokenExpired(cred.AccessToken, g.now()) {
		cred, err = g.renewer.Renew(ctx)
		if err != nil {
			g.terminate(ctx, "renewal failed")
			return nil, err
		}
	}

	resp, err := g.do(ctx, method, path, payload, cred)
	if err != nil {
		return nil, err
	}

	if !isAuthFailure(resp.StatusCode) {
		return resp, nil
	}
	drain(resp)

	// Authorization failure: renew once and retry once.
	cred, err = g.renewer.Renew(ctx)
	if err != nil {
		g.terminate(ctx, "renewal failed")
		return nil, err
	}

	resp, err = g.do(ctx, method, path, payload, cred)
	if err != nil {
		return nil, err
	}
	if isAuthFailure(resp.StatusCode) {
		drain(resp)
		g.terminate(ctx, "retry rejected")
		return nil, fmt.Errorf("request rejected after credential renewal: %w", ErrSessionExpired)
	}

	return resp, nil
}

// Validate probes the backend's token-validation route. It reports nil
// when the stored credential (possibly after a renewal) is accepted.
func (g *Gateway) Validate(ctx context.Context) error {
	resp, err := g.Call(ctx, http.MethodPost, "/auth/validate", nil)
	if err != nil {
		return err
	}
	drain(resp)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("token validation returned %d", resp.StatusCode)
	}
	return nil
}

// Get issues an authenticated GET request.
func (g *Gateway) Get(ctx context.Context, path string) (*http.Response, error) {
	return g.Call(ctx, http.MethodGet, path, nil)
}

// Post issues an authenticated POST request with a JSON body.
func (g *Gateway) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	return g.Call(ctx, http.MethodPost, path, body)
}

// Patch issues an authenticated PATCH request with a JSON body.
func (g *Gateway) Patch(ctx context.Context, path string, body any) (*http.Response, error) {
	return g.Call(ctx, http.MethodPatch, path, body)
}

func (g *Gateway) do(ctx context.Context, method, path string, payload []byte, cred credential.Credential) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// terminate clears residual credential state and fires the teardown hook.
func (g *Gateway) terminate(ctx context.Context, reason string) {
	if err := g.store.Clear(ctx); err != nil {
		g.logger.ErrorContext(ctx, "failed to clear credential on session teardown",
			slog.String("error", err.Error()),
		)
	}
	g.logger.WarnContext(ctx, "session terminated", slog.String("reason", reason))
	if g.onTerminate != nil {
		g.onTerminate(reason)
	}
}

// encodeBody marshals the request body. Read-only verbs never carry one,
// even when a caller passes a value.
func encodeBody(method string, body any) ([]byte, error) {
	if method == http.MethodGet || method == http.MethodHead || body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return payload, nil
}

// drain discards and closes a response body so the connection can be
// reused before a retry.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
}
