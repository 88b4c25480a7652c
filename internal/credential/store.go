// Package credential owns storage of the current access credential. It is
// pure storage: no network calls, no interpretation of the token beyond
// holding it. A request is authenticated iff a credential is present, so
// absence is an ordinary value here, never an error.
package credential

import "context"

// Credential is the opaque bearer token identifying an authenticated user.
type Credential struct {
	AccessToken string `json:"access_token"`
}

// Store is durable, process-wide storage for the current credential and the
// anti-forgery token paired with the refresh cookie.
//
// Get returns (zero, false, nil) when no credential is stored.
type Store interface {
	Set(ctx context.Context, cred Credential) error
	Get(ctx context.Context) (Credential, bool, error)
	Clear(ctx context.Context) error

	// SetCSRFToken records the anti-forgery token captured from the
	// refresh cookie's sibling cookie at login time. An empty token is
	// valid and means "none available".
	SetCSRFToken(ctx context.Context, token string) error
	CSRFToken(ctx context.Context) (string, error)
}
