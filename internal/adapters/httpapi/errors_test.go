package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/careerbridge/careerbridge-go/internal/errors"
)

func TestContainsExpiryPhrase(t *testing.T) {
	positives := []string{
		`{"message":"JWT Expired"}`,
		"token expired",
		"Expired Token supplied",
		"Invalid Token",
		"invalid or expired credentials",
		"Signature has EXPIRED",
	}
	for _, body := range positives {
		assert.True(t, ContainsExpiryPhrase(body), "body %q", body)
	}
	assert.False(t, ContainsExpiryPhrase(`{"message":"insufficient permissions"}`))
}

func TestErrorFromResponse_ExpiredVsGenericUnauthorized(t *testing.T) {
	expired := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"jwt expired"}`, http.StatusUnauthorized)
	}))
	_, err := expired.FetchIdentity(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsExpiredToken(err))
	assert.Equal(t, 401, apperrors.GetStatus(err))

	generic := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"cannot view another role's resource"}`, http.StatusForbidden)
	}))
	_, err = generic.FetchIdentity(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.False(t, apperrors.IsExpiredToken(err))
}

func TestErrorFromResponse_NotFoundStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"company profile not found"}`, http.StatusNotFound)
	}))
	_, err := client.GetCompanyProfile(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestErrorFromResponse_NotFoundMessagePattern(t *testing.T) {
	// Some backends answer 400 with a "profile not found" message instead of 404.
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Professor profile not found"}`, http.StatusBadRequest)
	}))
	_, err := client.GetProfessorProfile(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestErrorFromResponse_ServerErrorIsUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream blew up", http.StatusBadGateway)
	}))
	_, err := client.FetchIdentity(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
	assert.Equal(t, "upstream blew up", apperrors.UserMessage(err))
}

func TestDeriveMessage_Fallbacks(t *testing.T) {
	assert.Equal(t, "boom", deriveMessage([]byte(`{"detail":"boom"}`), 500))
	assert.Equal(t, "plain failure", deriveMessage([]byte("plain failure"), 500))
	assert.Equal(t, http.StatusText(503), deriveMessage(nil, 503))
	// Raw JSON without known fields never leaks to the user.
	assert.Equal(t, http.StatusText(500), deriveMessage([]byte(`{"trace":"..."}`), 500))
}

func TestNetworkFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // force connection refused

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = client.FetchIdentity(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
}
