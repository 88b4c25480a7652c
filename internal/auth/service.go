package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arthurpeter/VacationAgent/internal/credential"
	"github.com/arthurpeter/VacationAgent/pkg/httpclient"
)

// csrfCookieName is the cookie the backend sets next to the refresh cookie;
// its value must be echoed in the anti-forgery header on refresh/logout.
const csrfCookieName = "csrf_refresh_token"

// Service implements the unauthenticated entry points: login, register,
// logout. Login success stores the access credential and captures the
// anti-forgery token; the refresh cookie itself lives in the HTTP client's
// cookie jar.
type Service struct {
	store   credential.Store
	client  HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewService creates the authentication service.
func NewService(store credential.Store, client HTTPDoer, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

// LoginInput holds login credentials.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterInput holds the registration form.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Login authenticates and stores the resulting credential.
func (s *Service) Login(ctx context.Context, input LoginInput) error {
	return s.obtainCredential(ctx, "/auth/login", input)
}

// Register creates an account. The backend returns the user record, not a
// token, so a login follows registration.
func (s *Service) Register(ctx context.Context, input RegisterInput) error {
	resp, err := s.post(ctx, "/auth/register", input)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, "register")
	}
	s.logger.InfoContext(ctx, "account registered", slog.String("username", input.Username))
	return nil
}

// Logout invalidates the session server-side, best effort: the local
// credential is cleared regardless of what the backend says.
func (s *Service) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/logout", http.NoBody)
	if err == nil {
		if cred, ok, getErr := s.store.Get(ctx); getErr == nil && ok {
			req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
		}
		if csrf, csrfErr := s.store.CSRFToken(ctx); csrfErr == nil && csrf != "" {
			req.Header.Set(csrfHeader, csrf)
		}
		if resp, doErr := s.client.Do(ctx, req); doErr == nil {
			drain(resp)
		} else {
			s.logger.WarnContext(ctx, "logout request failed", slog.String("error", doErr.Error()))
		}
	}

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	s.logger.InfoContext(ctx, "logged out")
	return nil
}

// obtainCredential posts the form, stores the returned access token, and
// captures the anti-forgery cookie from the response.
func (s *Service) obtainCredential(ctx context.Context, path string, input any) error {
	resp, err := s.post(ctx, path, input)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, "login")
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if body.AccessToken == "" {
		return fmt.Errorf("login response missing access token")
	}

	if err := s.store.Set(ctx, credential.Credential{AccessToken: body.AccessToken}); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == csrfCookieName {
			if err := s.store.SetCSRFToken(ctx, cookie.Value); err != nil {
				return fmt.Errorf("store csrf token: %w", err)
			}
			break
		}
	}

	s.logger.InfoContext(ctx, "authenticated")
	return nil
}

func (s *Service) post(ctx context.Context, path string, input any) (*http.Response, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	return resp, nil
}
