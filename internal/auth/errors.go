package auth

import "errors"

var (
	// ErrNotAuthenticated is returned when no credential is stored; no
	// network call is made in that case.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is returned when credential renewal failed or a
	// renewed credential was still rejected. It is terminal for the
	// session: the caller must send the user back through login.
	ErrSessionExpired = errors.New("session expired")
)
