package gates

import (
	"context"
	"log/slog"
	"sync"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	apperrors "github.com/careerbridge/careerbridge-go/internal/errors"
	"github.com/careerbridge/careerbridge-go/internal/ports"
	"github.com/careerbridge/careerbridge-go/internal/session"
)

// RoleGate blocks the app behind a role-selection prompt while the
// authenticated user's role is still unknown.
type RoleGate struct {
	mgr    *session.Manager
	api    ports.IdentityAPI
	logger *slog.Logger

	mu       sync.Mutex
	inFlight bool
}

// NewRoleGate constructs a RoleGate.
func NewRoleGate(mgr *session.Manager, api ports.IdentityAPI, logger *slog.Logger) *RoleGate {
	return &RoleGate{mgr: mgr, api: api, logger: logger}
}

func (g *RoleGate) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}

// Open reports whether the role-selection prompt must be shown for snap.
func (g *RoleGate) Open(snap session.Snapshot) bool {
	return snap.User != nil && snap.User.Role.NeedsResolution()
}

// InFlight reports whether a role update is currently running. The prompt is
// not dismissible while this is true.
func (g *RoleGate) InFlight() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inFlight
}

// mapSelection turns a UI selection into a canonical role, defaulting to
// student when the selection maps to nothing known.
func mapSelection(selection string) domainsession.Role {
	role := domainsession.NormalizeRole(selection)
	if !role.IsKnown() {
		return domainsession.RoleStudent
	}
	return role
}

// Resolve persists the selected role and reconciles the session. Order
// matters: any rotated token pair is persisted before the identity re-fetch,
// else the re-fetch could run against a revoked token and flicker the gate
// back open. On failure the gate stays open and the error is retryable.
func (g *RoleGate) Resolve(ctx context.Context, selection string) error {
	g.mu.Lock()
	if g.inFlight {
		g.mu.Unlock()
		return apperrors.Validation("a role update is already in progress")
	}
	g.inFlight = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.inFlight = false
		g.mu.Unlock()
	}()

	role := mapSelection(selection)

	res, err := g.api.UpdateRole(ctx, g.mgr.AccessToken(), role)
	if err != nil {
		g.log().WarnContext(ctx, "role update failed", "role", role, "error", err)
		return err
	}

	// Persist rotated tokens first.
	g.mgr.AdoptTokens(ctx, res.AccessToken, res.RefreshToken)

	// Re-fetch identity with the freshest token for the authoritative role.
	snap := g.mgr.Snapshot()
	reconciled := session.LoginInput{
		AccessToken: g.mgr.AccessToken(),
		RawRole:     res.RawRole,
		UserName:    res.UserName,
		Email:       res.Email,
	}
	if snap.User != nil {
		reconciled.RefreshToken = snap.User.RefreshToken
		if reconciled.UserName == "" {
			reconciled.UserName = snap.User.UserName
		}
		if reconciled.Email == "" {
			reconciled.Email = snap.User.Email
		}
	}
	if reconciled.RawRole == "" {
		reconciled.RawRole = string(role)
	}

	identity, fetchErr := g.api.FetchIdentity(ctx, reconciled.AccessToken)
	if fetchErr != nil {
		// The update succeeded; fall back to its fields rather than failing.
		g.log().WarnContext(ctx, "identity re-fetch after role update failed", "error", fetchErr)
	} else {
		if identity.UserName != "" {
			reconciled.UserName = identity.UserName
		}
		if identity.Email != "" {
			reconciled.Email = identity.Email
		}
		if identity.RawRole != "" {
			reconciled.RawRole = identity.RawRole
		}
	}

	// A company resolution chains straight into company onboarding. The
	// marker must be persisted before Login, whose notification starts the
	// evaluation cycle that reads it; Login preserves the marker.
	if domainsession.NormalizeRole(reconciled.RawRole) == domainsession.RoleCompany {
		g.mgr.SetPendingCompanyOnboarding(ctx, true)
	}

	g.mgr.Login(ctx, reconciled)
	return nil
}
