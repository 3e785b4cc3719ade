package session

// Package session contains domain-level types for the client session core.
// It is pure and free of transport/storage concerns.

import "strings"

// Role represents a canonical portal role.
// Keep string form for easy persistence.
// Valid values are defined as constants below; RoleUnknown means "not yet resolved".
type Role string

const (
	RoleStudent   Role = "student"
	RoleCompany   Role = "company"
	RoleProfessor Role = "professor"
	RoleUnknown   Role = ""
)

// NormalizeRole maps any backend-provided role string onto a canonical Role.
// Matching is a case-insensitive substring check so values like
// "ROLE_COMPANY" or "Company Admin" still resolve. Anything else is returned
// trimmed and lowercased verbatim; empty or whitespace-only input yields
// RoleUnknown.
//
// Every consumer of a raw role string must go through this function.
func NormalizeRole(raw string) Role {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(v, "company"):
		return RoleCompany
	case strings.Contains(v, "student"):
		return RoleStudent
	case strings.Contains(v, "professor"):
		return RoleProfessor
	default:
		return Role(v)
	}
}

// IsKnown reports whether the role is one of the three canonical values.
// Placeholder values such as "unknown" or "unset" are not known.
func (r Role) IsKnown() bool {
	switch r {
	case RoleStudent, RoleCompany, RoleProfessor:
		return true
	default:
		return false
	}
}

// NeedsResolution reports whether a role gate should open for this role:
// empty, or any value still carrying an unknown/unset placeholder.
func (r Role) NeedsResolution() bool {
	if r.IsKnown() {
		return false
	}
	v := string(r)
	return v == "" || strings.Contains(v, "unknown") || strings.Contains(v, "unset")
}

// Credentials is the persisted session record. It is owned by the credential
// store; all writers overwrite the whole record (last write wins).
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserName     string `json:"user_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`

	// PendingCompanyOnboarding is a one-shot marker set by registration or
	// role selection; cleared permanently once company onboarding completes.
	PendingCompanyOnboarding bool `json:"pending_company_onboarding,omitempty"`
}

// IsAuthenticated reports whether the record carries a bearer credential.
func (c Credentials) IsAuthenticated() bool { return c.AccessToken != "" }

// User is the in-memory authenticated principal derived from Credentials.
// It exists only while the session manager holds an authenticated session.
type User struct {
	UserName     string
	Email        string
	Role         Role
	AccessToken  string
	RefreshToken string
}

// Identity is the authoritative answer from the backend's "who am I"
// endpoint after boundary normalization. The resolver maps the backend's
// loose payload (role vs roles, optional data nesting) into this shape.
type Identity struct {
	UserName string
	Email    string
	Role     Role
	RawRole  string
}

// Phase is the session lifecycle state.
type Phase int

const (
	// PhaseHydrating is the initial state before the credential store has
	// been read.
	PhaseHydrating Phase = iota
	// PhaseUnauthenticated means hydration completed with no credential.
	PhaseUnauthenticated
	// PhaseAuthenticated means a bearer credential is present and a User is
	// held in memory.
	PhaseAuthenticated
)

// String implements fmt.Stringer for logging.
func (p Phase) String() string {
	switch p {
	case PhaseHydrating:
		return "hydrating"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}
