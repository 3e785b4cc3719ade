package session

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// Resolver answers "who is currently logged in" against the backend and keeps
// the stored access token usable, refreshing it when absent.
type Resolver struct {
	api    ports.IdentityAPI
	store  ports.CredentialStore
	logger *slog.Logger
	group  singleflight.Group
}

// ResolverOptions groups dependencies for the Resolver.
type ResolverOptions struct {
	API    ports.IdentityAPI
	Store  ports.CredentialStore
	Logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(opts ResolverOptions) *Resolver {
	return &Resolver{
		api:    opts.API,
		store:  opts.Store,
		logger: opts.Logger,
	}
}

func (r *Resolver) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// FetchIdentity calls the backend's "who am I" endpoint with the given token.
// Any failure means "not logged in now" to callers; the error carries detail
// for logging only and must not be surfaced to the user.
func (r *Resolver) FetchIdentity(ctx context.Context, accessToken string) (domainsession.Identity, error) {
	return r.api.FetchIdentity(ctx, accessToken)
}

// RefreshAccessToken mints a new access token from the stored refresh token
// and persists it. Returns "" on any failure without surfacing an error;
// a failed refresh is indistinguishable from "not logged in".
func (r *Resolver) RefreshAccessToken(ctx context.Context) string {
	creds, err := r.store.Load(ctx)
	if err != nil {
		r.log().WarnContext(ctx, "credential load failed before refresh", "error", err)
		return ""
	}
	if creds.RefreshToken == "" {
		return ""
	}

	res, err := r.api.RefreshToken(ctx, creds.RefreshToken)
	if err != nil || res.AccessToken == "" {
		if err != nil {
			r.log().InfoContext(ctx, "token refresh failed", "error", err)
		}
		return ""
	}

	creds.AccessToken = res.AccessToken
	if err := r.store.Save(ctx, creds); err != nil {
		r.log().ErrorContext(ctx, "persist refreshed token failed", "error", err)
	}
	return res.AccessToken
}

// EnsureAccessToken returns the stored access token when present, otherwise
// attempts a refresh. Concurrent callers share a single refresh round-trip.
func (r *Resolver) EnsureAccessToken(ctx context.Context) string {
	creds, err := r.store.Load(ctx)
	if err == nil && creds.AccessToken != "" {
		return creds.AccessToken
	}

	token, _, _ := r.group.Do("refresh", func() (any, error) {
		return r.RefreshAccessToken(ctx), nil
	})
	s, _ := token.(string)
	return s
}
