package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/careerbridge/careerbridge-go/internal/errors"
)

// maxErrorBodyBytes bounds how much of an error body we read for messages.
const maxErrorBodyBytes = 64 * 1024

// expiryPhrases are the backend's known ways of saying the bearer token is
// dead. Matched case-insensitively against 401/403 bodies. Inherited contract
// with the backend; brittle across message changes, kept verbatim.
var expiryPhrases = []string{
	"jwt expired",
	"token expired",
	"expired token",
	"invalid token",
	"invalid or expired",
	"signature has expired",
}

// ContainsExpiryPhrase reports whether the body text carries one of the
// known token-expiry phrases.
func ContainsExpiryPhrase(body string) bool {
	lower := strings.ToLower(body)
	for _, phrase := range expiryPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// errorFromResponse turns a non-2xx response into a typed AppError. The
// message prefers JSON message/error/detail fields, then raw text, then a
// status-derived default. A 401/403 whose body carries an expiry phrase
// becomes ErrCodeExpiredToken; any other 401/403 stays ErrCodeUnauthorized so
// endpoint-specific authorization failures never end the session.
func errorFromResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	message := deriveMessage(raw, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if ContainsExpiryPhrase(string(raw)) {
			return apperrors.ExpiredToken(resp.StatusCode, message)
		}
		return apperrors.Unauthorized(resp.StatusCode, message)
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{Code: apperrors.ErrCodeNotFound, Message: message, Status: resp.StatusCode}
	case resp.StatusCode >= 500:
		return &apperrors.AppError{Code: apperrors.ErrCodeUnavailable, Message: message, Status: resp.StatusCode}
	default:
		if isProfileNotFoundMessage(message) {
			return &apperrors.AppError{Code: apperrors.ErrCodeNotFound, Message: message, Status: resp.StatusCode}
		}
		return &apperrors.AppError{Code: apperrors.ErrCodeValidation, Message: message, Status: resp.StatusCode}
	}
}

// isProfileNotFoundMessage detects backends that report a missing profile
// with a 200-family status code replaced by a 400 plus a message pattern.
func isProfileNotFoundMessage(message string) bool {
	return strings.Contains(strings.ToLower(message), "profile not found")
}

// deriveMessage extracts a human-readable message from an error body.
func deriveMessage(raw []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		for _, candidate := range []string{payload.Message, payload.Error, payload.Detail} {
			if strings.TrimSpace(candidate) != "" {
				return strings.TrimSpace(candidate)
			}
		}
	}

	text := strings.TrimSpace(string(raw))
	if text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "[") {
		return text
	}
	return http.StatusText(status)
}
