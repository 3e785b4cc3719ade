package gates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	apperrors "github.com/careerbridge/careerbridge-go/internal/errors"
	"github.com/careerbridge/careerbridge-go/internal/ports"
	"github.com/careerbridge/careerbridge-go/internal/session"
)

func TestRoleGate_OpensOnlyForUnresolvedRole(t *testing.T) {
	f := newFixture(t, "/jobs")
	gate := NewRoleGate(f.mgr, f.api, nil)

	assert.False(t, gate.Open(session.Snapshot{IsReady: true}), "no user, no prompt")

	f.login("")
	assert.True(t, gate.Open(f.mgr.Snapshot()))

	f.login("ROLE_UNKNOWN")
	assert.True(t, gate.Open(f.mgr.Snapshot()))

	f.login("Student")
	assert.False(t, gate.Open(f.mgr.Snapshot()))

	// A foreign but concrete role is not "unresolved".
	f.login("admin")
	assert.False(t, gate.Open(f.mgr.Snapshot()))
}

func TestRoleGate_ResolvePersistsAndReconciles(t *testing.T) {
	f := newFixture(t, "/jobs")
	f.login("")

	f.api.UpdateRoleFunc = func(_ context.Context, accessToken string, role domainsession.Role) (ports.RoleUpdateResult, error) {
		assert.Equal(t, "access-1", accessToken)
		assert.Equal(t, domainsession.RoleProfessor, role)
		return ports.RoleUpdateResult{RawRole: "Professor"}, nil
	}
	f.api.FetchIdentityFunc = func(_ context.Context, _ string) (domainsession.Identity, error) {
		return domainsession.Identity{
			UserName: "casey",
			Email:    "casey@example.com",
			Role:     domainsession.RoleProfessor,
			RawRole:  "professor",
		}, nil
	}

	gate := NewRoleGate(f.mgr, f.api, nil)
	require.NoError(t, gate.Resolve(context.Background(), "professor"))

	snap := f.mgr.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, domainsession.RoleProfessor, snap.User.Role)
	assert.False(t, gate.Open(snap))

	creds, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "professor", creds.Role)
}

func TestRoleGate_RotatedTokensPersistBeforeIdentityRefetch(t *testing.T) {
	f := newFixture(t, "/jobs")
	f.login("")

	f.api.UpdateRoleFunc = func(_ context.Context, _ string, _ domainsession.Role) (ports.RoleUpdateResult, error) {
		return ports.RoleUpdateResult{
			AccessToken:  "access-2",
			RefreshToken: "refresh-2",
			RawRole:      "student",
		}, nil
	}
	var fetchToken string
	f.api.FetchIdentityFunc = func(ctx context.Context, accessToken string) (domainsession.Identity, error) {
		fetchToken = accessToken
		// Rotated pair must already be persisted when the re-fetch runs.
		creds, err := f.store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access-2", creds.AccessToken)
		assert.Equal(t, "refresh-2", creds.RefreshToken)
		return domainsession.Identity{UserName: "casey", Role: domainsession.RoleStudent, RawRole: "student"}, nil
	}

	gate := NewRoleGate(f.mgr, f.api, nil)
	require.NoError(t, gate.Resolve(context.Background(), "student"))

	assert.Equal(t, "access-2", fetchToken)
	assert.Equal(t, "access-2", f.mgr.AccessToken())
}

func TestRoleGate_UnknownSelectionDefaultsToStudent(t *testing.T) {
	f := newFixture(t, "/jobs")
	f.login("")

	var updated domainsession.Role
	f.api.UpdateRoleFunc = func(_ context.Context, _ string, role domainsession.Role) (ports.RoleUpdateResult, error) {
		updated = role
		return ports.RoleUpdateResult{RawRole: string(role)}, nil
	}

	gate := NewRoleGate(f.mgr, f.api, nil)
	require.NoError(t, gate.Resolve(context.Background(), "something-else"))
	assert.Equal(t, domainsession.RoleStudent, updated)
}

func TestRoleGate_UpdateFailureKeepsGateOpen(t *testing.T) {
	f := newFixture(t, "/jobs")
	f.login("")

	f.api.UpdateRoleFunc = func(_ context.Context, _ string, _ domainsession.Role) (ports.RoleUpdateResult, error) {
		return ports.RoleUpdateResult{}, apperrors.Unavailable("backend down")
	}

	gate := NewRoleGate(f.mgr, f.api, nil)
	err := gate.Resolve(context.Background(), "company")
	require.Error(t, err)

	assert.True(t, gate.Open(f.mgr.Snapshot()))
	assert.False(t, gate.InFlight(), "failed attempt must release the in-flight guard")
}

func TestRoleGate_RefetchFailureFallsBackToUpdateResult(t *testing.T) {
	f := newFixture(t, "/jobs")
	f.login("")

	f.api.UpdateRoleFunc = func(_ context.Context, _ string, _ domainsession.Role) (ports.RoleUpdateResult, error) {
		return ports.RoleUpdateResult{RawRole: "company"}, nil
	}
	f.api.FetchIdentityFunc = func(_ context.Context, _ string) (domainsession.Identity, error) {
		return domainsession.Identity{}, apperrors.Unavailable("backend down")
	}

	gate := NewRoleGate(f.mgr, f.api, nil)
	require.NoError(t, gate.Resolve(context.Background(), "company"))

	snap := f.mgr.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, domainsession.RoleCompany, snap.User.Role)
}

func TestRoleGate_CompanyResolutionSetsOnboardingMarker(t *testing.T) {
	f := newFixture(t, "/jobs")
	f.login("")

	f.api.UpdateRoleFunc = func(_ context.Context, _ string, role domainsession.Role) (ports.RoleUpdateResult, error) {
		return ports.RoleUpdateResult{RawRole: string(role)}, nil
	}
	f.api.FetchIdentityFunc = func(_ context.Context, _ string) (domainsession.Identity, error) {
		return domainsession.Identity{UserName: "casey", Role: domainsession.RoleCompany, RawRole: "company"}, nil
	}

	gate := NewRoleGate(f.mgr, f.api, nil)
	require.NoError(t, gate.Resolve(context.Background(), "company"))
	assert.True(t, f.mgr.PendingCompanyOnboarding(context.Background()))
}

func TestRoleGate_ConcurrentResolveRejected(t *testing.T) {
	f := newFixture(t, "/jobs")
	f.login("")

	started := make(chan struct{})
	release := make(chan struct{})
	f.api.UpdateRoleFunc = func(_ context.Context, _ string, role domainsession.Role) (ports.RoleUpdateResult, error) {
		close(started)
		<-release
		return ports.RoleUpdateResult{RawRole: string(role)}, nil
	}

	gate := NewRoleGate(f.mgr, f.api, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- gate.Resolve(context.Background(), "student") }()

	<-started
	assert.True(t, gate.InFlight())
	err := gate.Resolve(context.Background(), "company")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	close(release)
	require.NoError(t, <-errCh)
	assert.Equal(t, 1, f.api.Calls("UpdateRole"))
}
