package ports

// Package ports defines interfaces (hexagonal ports) for the session core.
// Implementations live in internal/adapters; orchestration in internal/session
// and internal/gates.

import (
	"context"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
)

// CredentialStore persists the session credential record across process
// restarts. Implementations perform whole-record overwrites; no validation.
type CredentialStore interface {
	// Load returns the persisted record. A missing record is not an error;
	// it loads as the zero value.
	Load(ctx context.Context) (domainsession.Credentials, error)
	// Save overwrites the whole record.
	Save(ctx context.Context, creds domainsession.Credentials) error
	// Clear removes every persisted field, one-shot flags included.
	Clear(ctx context.Context) error
}

// IdentityAPI covers the backend's identity and token operations.
type IdentityAPI interface {
	// FetchIdentity calls the "who am I" endpoint with the given bearer token
	// and returns the normalized identity. Non-2xx responses fail with a
	// typed error; callers treat any failure as "not logged in now".
	FetchIdentity(ctx context.Context, accessToken string) (domainsession.Identity, error)

	// RefreshToken mints a new access token from a refresh token.
	RefreshToken(ctx context.Context, refreshToken string) (RefreshResult, error)

	// UpdateRole persists the chosen role server-side. The backend may rotate
	// the token pair; any returned tokens must be persisted before the next
	// identity fetch.
	UpdateRole(ctx context.Context, accessToken string, role domainsession.Role) (RoleUpdateResult, error)

	// TerminateSession invalidates the server-side session. Best effort;
	// failures are logged and ignored by callers.
	TerminateSession(ctx context.Context, accessToken string) error
}

// RefreshResult carries the outcome of a token refresh.
type RefreshResult struct {
	AccessToken string
}

// RoleUpdateResult carries the outcome of a role update. Token fields are
// empty when the backend did not rotate them.
type RoleUpdateResult struct {
	AccessToken  string
	RefreshToken string
	UserName     string
	Email        string
	RawRole      string
}

// CompanyProfile is the backend's company profile record as the gates see it.
type CompanyProfile struct {
	Name        string
	Location    string
	Description string
}

// ProfessorProfile is the backend's professor profile record.
type ProfessorProfile struct {
	Department string
	Faculty    string
}

// CompanyProfileAPI covers company profile reads and writes.
type CompanyProfileAPI interface {
	// GetCompanyProfile returns the caller's company profile, or a NotFound
	// error when no record exists.
	GetCompanyProfile(ctx context.Context, accessToken string) (CompanyProfile, error)
	// UpsertCompanyProfile creates or updates the caller's company profile.
	UpsertCompanyProfile(ctx context.Context, accessToken string, profile CompanyProfile) (CompanyProfile, error)
}

// ProfessorProfileAPI covers professor profile reads and creation.
type ProfessorProfileAPI interface {
	// GetProfessorProfile returns the caller's professor profile. A confirmed
	// "not found" (status or a message containing "profile not found") is a
	// NotFound error, distinguishable from transport failures.
	GetProfessorProfile(ctx context.Context, accessToken string) (ProfessorProfile, error)
	// CreateProfessorProfile creates the caller's professor profile.
	CreateProfessorProfile(ctx context.Context, accessToken string, profile ProfessorProfile) (ProfessorProfile, error)
}

// BackendAPI aggregates every backend operation the session core consumes.
type BackendAPI interface {
	IdentityAPI
	CompanyProfileAPI
	ProfessorProfileAPI
}

// Navigator abstracts the navigation surface so logout redirect targets are
// observable and testable.
type Navigator interface {
	// CurrentPath returns the current location path (e.g., "/profile").
	CurrentPath() string
	// NavigateTo moves to the given path.
	NavigateTo(path string)
	// Reload performs a hard reload of the current location, flushing any
	// stale in-memory state.
	Reload()
}
