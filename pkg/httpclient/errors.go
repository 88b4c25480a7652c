package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/arthurpeter/VacationAgent/pkg/errors"
)

// DetailErrorResponse mirrors the error body shape the travel backend
// returns on non-2xx responses: {"detail": "..."}​. Validation failures use
// the same field with a structured payload, which is flattened to a string.
type DetailErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. If the response body matches the backend's
// detail format, the message is preserved. Otherwise a generic error is
// returned with the status code and raw body.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, operation string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", operation, resp.StatusCode, err)
	}

	var detail DetailErrorResponse
	if json.Unmarshal(bodyBytes, &detail) == nil && len(detail.Detail) > 0 {
		return mapDetailError(resp.StatusCode, detailString(detail.Detail), operation)
	}

	// Fallback: unstructured error body.
	return fmt.Errorf("%s returned status %d: %s", operation, resp.StatusCode, string(bodyBytes))
}

// detailString renders the detail payload as a plain message. Strings are
// unquoted; anything structured is kept as compact JSON.
func detailString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// mapDetailError translates the backend's HTTP status code and detail
// message into an AppError that preserves the error semantics.
func mapDetailError(status int, message, operation string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", operation, message)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(operation, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status == http.StatusUnprocessableEntity:
		return apperrors.BookingRejected(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualifiedMsg)
	case status >= 500:
		return fmt.Errorf("%s server error (%d): %s", operation, status, message)
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
