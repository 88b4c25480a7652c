package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/arthurpeter/VacationAgent/pkg/errors"

	"github.com/arthurpeter/VacationAgent/internal/credential"
)

func TestService_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)

		var body LoginInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Username != "alex" || body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Bad credentials"})
			return
		}

		http.SetCookie(w, &http.Cookie{Name: "csrf_refresh_token", Value: "csrf-xyz", HttpOnly: true})
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-login"})
	}))
	defer server.Close()

	store := credential.NewMemoryStore()
	svc := NewService(store, testHTTPClient(), server.URL, discardLogger())

	t.Run("success stores token and csrf cookie", func(t *testing.T) {
		require.NoError(t, svc.Login(context.Background(), LoginInput{Username: "alex", Password: "secret"}))

		cred, ok, err := store.Get(context.Background())
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "tok-login", cred.AccessToken)

		csrf, err := store.CSRFToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "csrf-xyz", csrf)
	})

	t.Run("bad credentials", func(t *testing.T) {
		err := svc.Login(context.Background(), LoginInput{Username: "alex", Password: "wrong"})
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.Contains(t, err.Error(), "Bad credentials")
	})
}

func TestService_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		var body RegisterInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Email == "taken@example.com" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Email already registered"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "u1", "username": body.Username})
	}))
	defer server.Close()

	store := credential.NewMemoryStore()
	svc := NewService(store, testHTTPClient(), server.URL, discardLogger())

	t.Run("success does not authenticate by itself", func(t *testing.T) {
		require.NoError(t, svc.Register(context.Background(), RegisterInput{
			Username: "alex", Email: "alex@example.com", Password: "secret",
		}))

		_, ok, err := store.Get(context.Background())
		require.NoError(t, err)
		assert.False(t, ok, "registration returns a user record, not a token")
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := svc.Register(context.Background(), RegisterInput{
			Username: "alex", Email: "taken@example.com", Password: "secret",
		})
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestService_Logout(t *testing.T) {
	t.Run("clears store and sends csrf header", func(t *testing.T) {
		seen := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/auth/logout", r.URL.Path)
			seen <- r.Header.Get("X-CSRF-TOKEN-Refresh")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		store := credential.NewMemoryStore()
		require.NoError(t, store.Set(context.Background(), credential.Credential{AccessToken: "tok"}))
		require.NoError(t, store.SetCSRFToken(context.Background(), "csrf-out"))

		svc := NewService(store, testHTTPClient(), server.URL, discardLogger())
		require.NoError(t, svc.Logout(context.Background()))

		assert.Equal(t, "csrf-out", <-seen)
		_, ok, err := store.Get(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("clears store even when the backend call fails", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		store := credential.NewMemoryStore()
		require.NoError(t, store.Set(context.Background(), credential.Credential{AccessToken: "tok"}))

		svc := NewService(store, testHTTPClient(), server.URL, discardLogger())
		require.NoError(t, svc.Logout(context.Background()), "logout is best effort")

		assert.Positive(t, calls.Load())
		_, ok, err := store.Get(context.Background())
		require.NoError(t, err)
		assert.False(t, ok, "local credential goes away regardless of the server")
	})
}
