package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// identityPayload is the loose shape the backend uses for identity responses.
// Fields may be named role or roles, and the whole object may be nested under
// data. Nothing outside this file depends on that looseness.
type identityPayload struct {
	Data     *identityPayload `json:"data,omitempty"`
	UserName string           `json:"user_name"`
	Email    string           `json:"email"`
	Role     string           `json:"role"`
	Roles    json.RawMessage  `json:"roles,omitempty"`
}

// unwrap follows the optional data nesting to the innermost payload.
func (p *identityPayload) unwrap() *identityPayload {
	inner := p
	for inner.Data != nil {
		inner = inner.Data
	}
	return inner
}

// rawRole reconciles the role vs roles ambiguity. roles may be a plain string
// or an array; the first non-empty entry wins.
func (p *identityPayload) rawRole() string {
	if strings.TrimSpace(p.Role) != "" {
		return p.Role
	}
	if len(p.Roles) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(p.Roles, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(p.Roles, &many); err == nil {
		for _, r := range many {
			if strings.TrimSpace(r) != "" {
				return r
			}
		}
	}
	return ""
}

// FetchIdentity calls the "who am I" endpoint and normalizes the response.
func (c *Client) FetchIdentity(ctx context.Context, accessToken string) (domainsession.Identity, error) {
	var payload identityPayload
	err := c.do(ctx, requestParams{
		method:      http.MethodGet,
		path:        "/auth/me",
		accessToken: accessToken,
	}, &payload)
	if err != nil {
		return domainsession.Identity{}, err
	}

	inner := payload.unwrap()
	raw := inner.rawRole()
	return domainsession.Identity{
		UserName: inner.UserName,
		Email:    inner.Email,
		Role:     domainsession.NormalizeRole(raw),
		RawRole:  raw,
	}, nil
}

// RefreshToken mints a new access token from the refresh token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (ports.RefreshResult, error) {
	var payload struct {
		Data *struct {
			AccessToken string `json:"access_token"`
		} `json:"data,omitempty"`
		AccessToken string `json:"access_token"`
	}
	err := c.do(ctx, requestParams{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   map[string]string{"refresh_token": refreshToken},
	}, &payload)
	if err != nil {
		return ports.RefreshResult{}, err
	}
	token := payload.AccessToken
	if token == "" && payload.Data != nil {
		token = payload.Data.AccessToken
	}
	return ports.RefreshResult{AccessToken: token}, nil
}

// roleUpdatePayload is the loose shape of role update responses. Tokens and
// identity fields may appear at the top level or nested under data.
type roleUpdatePayload struct {
	Data         *roleUpdatePayload `json:"data,omitempty"`
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	UserName     string             `json:"user_name"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	Roles        json.RawMessage    `json:"roles,omitempty"`
}

// firstNonEmpty walks the nesting and returns the first non-empty value that
// pick extracts.
func (p *roleUpdatePayload) firstNonEmpty(pick func(*roleUpdatePayload) string) string {
	for node := p; node != nil; node = node.Data {
		if v := strings.TrimSpace(pick(node)); v != "" {
			return v
		}
	}
	return ""
}

// UpdateRole persists the chosen role server-side. The backend may rotate the
// token pair; callers must persist any returned tokens before their next
// identity fetch.
func (c *Client) UpdateRole(ctx context.Context, accessToken string, role domainsession.Role) (ports.RoleUpdateResult, error) {
	var payload roleUpdatePayload
	err := c.do(ctx, requestParams{
		method:      http.MethodPatch,
		path:        "/auth/role",
		accessToken: accessToken,
		body:        map[string]string{"role": string(role)},
	}, &payload)
	if err != nil {
		return ports.RoleUpdateResult{}, err
	}

	return ports.RoleUpdateResult{
		AccessToken:  payload.firstNonEmpty(func(n *roleUpdatePayload) string { return n.AccessToken }),
		RefreshToken: payload.firstNonEmpty(func(n *roleUpdatePayload) string { return n.RefreshToken }),
		UserName:     payload.firstNonEmpty(func(n *roleUpdatePayload) string { return n.UserName }),
		Email:        payload.firstNonEmpty(func(n *roleUpdatePayload) string { return n.Email }),
		RawRole: payload.firstNonEmpty(func(n *roleUpdatePayload) string {
			return (&identityPayload{Role: n.Role, Roles: n.Roles}).rawRole()
		}),
	}, nil
}

// TerminateSession invalidates the server-side session. Best effort; callers
// log and ignore failures.
func (c *Client) TerminateSession(ctx context.Context, accessToken string) error {
	return c.do(ctx, requestParams{
		method:      http.MethodPost,
		path:        "/auth/logout",
		accessToken: accessToken,
	}, nil)
}
