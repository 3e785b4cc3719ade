package httpapi

// Package httpapi implements the backend ports over HTTP. All payload
// normalization (role vs roles, optional data nesting) happens here; one
// fixed internal shape leaves this package.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/careerbridge/careerbridge-go/internal/errors"
)

// Config captures the subset of backend client behaviour we need.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client

	// VerificationHeader, when non-empty, is sent as X-Client-Verification on
	// every request. Enabled by a backend feature flag.
	VerificationHeader string
}

// Client talks to the job-portal backend API.
type Client struct {
	baseURL            string
	verificationHeader string
	instanceID         string
	client             *http.Client
}

// NewClient builds a backend API client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parse backend base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:            base,
		verificationHeader: strings.TrimSpace(cfg.VerificationHeader),
		instanceID:         uuid.NewString(),
		client:             hc,
	}, nil
}

// HTTPClient exposes the underlying client so the watchdog interceptor can be
// installed on its transport exactly once at startup.
func (c *Client) HTTPClient() *http.Client { return c.client }

// requestParams groups the inputs for a single backend call.
type requestParams struct {
	method      string
	path        string
	accessToken string
	body        any
}

// do issues a request and decodes a 2xx JSON response into out (when non-nil).
// Non-2xx responses become typed AppErrors with a message derived from the body.
func (c *Client) do(ctx context.Context, p requestParams, out any) error {
	var reader io.Reader
	if p.body != nil {
		payload, err := json.Marshal(p.body)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, c.baseURL+p.path, reader)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Client-Instance", c.instanceID)
	if p.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.accessToken)
	}
	if c.verificationHeader != "" {
		req.Header.Set("X-Client-Verification", c.verificationHeader)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "%s %s", p.method, p.path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode response body")
	}
	return nil
}
