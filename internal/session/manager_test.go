package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerbridge/careerbridge-go/internal/adapters/credstore"
	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/mocks/backend"
)

func newManager(t *testing.T) (*Manager, *credstore.Memory, *backend.MockBackend, *backend.StubNavigator) {
	t.Helper()
	store := credstore.NewMemory()
	api := &backend.MockBackend{}
	nav := backend.NewStubNavigator("/profile")
	mgr := NewManager(ManagerOptions{Store: store, API: api, Navigator: nav})
	return mgr, store, api, nav
}

func TestHydrate_NoToken(t *testing.T) {
	mgr, _, _, _ := newManager(t)

	assert.False(t, mgr.Snapshot().IsReady)

	mgr.Hydrate(context.Background())

	snap := mgr.Snapshot()
	assert.True(t, snap.IsReady)
	assert.Nil(t, snap.User)
	assert.Equal(t, domainsession.PhaseUnauthenticated, mgr.Phase())
}

func TestHydrate_WithStoredToken(t *testing.T) {
	mgr, store, _, _ := newManager(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domainsession.Credentials{
		AccessToken:  "A",
		RefreshToken: "B",
		UserName:     "alice",
		Email:        "a@x.com",
		Role:         "Student",
	}))

	mgr.Hydrate(ctx)

	snap := mgr.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "alice", snap.User.UserName)
	assert.Equal(t, domainsession.RoleStudent, snap.User.Role)
	assert.Equal(t, "A", snap.User.AccessToken)
}

func TestHydrate_RunsOnce(t *testing.T) {
	mgr, store, _, _ := newManager(t)
	ctx := context.Background()

	mgr.Hydrate(ctx)
	require.NoError(t, store.Save(ctx, domainsession.Credentials{AccessToken: "late"}))
	mgr.Hydrate(ctx)

	// A second hydrate must not re-read the store.
	assert.Nil(t, mgr.Snapshot().User)
}

func TestLogin_PopulatesStoreFully(t *testing.T) {
	mgr, store, _, _ := newManager(t)
	ctx := context.Background()
	mgr.Hydrate(ctx)

	mgr.Login(ctx, LoginInput{
		AccessToken:  "A",
		RefreshToken: "B",
		UserName:     "alice",
		Email:        "a@x.com",
		RawRole:      "Student",
	})

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", creds.AccessToken)
	assert.Equal(t, "B", creds.RefreshToken)
	assert.Equal(t, "alice", creds.UserName)
	assert.Equal(t, "a@x.com", creds.Email)
	assert.Equal(t, "student", creds.Role)

	snap := mgr.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, "A", snap.User.AccessToken)
	assert.Equal(t, domainsession.RoleStudent, snap.User.Role)
}

func TestLogin_PreservesOnboardingMarker(t *testing.T) {
	mgr, _, _, _ := newManager(t)
	ctx := context.Background()
	mgr.Hydrate(ctx)

	mgr.SetPendingCompanyOnboarding(ctx, true)
	mgr.Login(ctx, LoginInput{AccessToken: "A", RawRole: "Company"})

	assert.True(t, mgr.PendingCompanyOnboarding(ctx))
}

func TestLogout_IsTotalReset(t *testing.T) {
	mgr, store, api, nav := newManager(t)
	ctx := context.Background()
	mgr.Hydrate(ctx)

	mgr.Login(ctx, LoginInput{AccessToken: "A", RefreshToken: "B", UserName: "alice", RawRole: "student"})
	mgr.Login(ctx, LoginInput{AccessToken: "A2", RefreshToken: "B2", UserName: "alice", RawRole: "student"})
	mgr.Logout(ctx)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domainsession.Credentials{}, creds)
	assert.Nil(t, mgr.Snapshot().User)
	assert.Equal(t, 1, api.Calls("TerminateSession"))
	assert.Equal(t, []string{"/login"}, nav.History())
}

func TestLogout_TerminationFailureIgnored(t *testing.T) {
	mgr, store, api, _ := newManager(t)
	ctx := context.Background()
	mgr.Hydrate(ctx)
	api.TerminateSessionFunc = func(context.Context, string) error {
		return errors.New("backend down")
	}

	mgr.Login(ctx, LoginInput{AccessToken: "A"})
	mgr.Logout(ctx)

	creds, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, creds.IsAuthenticated())
}

func TestLogout_NoNavigationWhenAlreadyOnLogin(t *testing.T) {
	store := credstore.NewMemory()
	nav := backend.NewStubNavigator("/login")
	mgr := NewManager(ManagerOptions{Store: store, Navigator: nav})
	ctx := context.Background()
	mgr.Hydrate(ctx)

	mgr.Login(ctx, LoginInput{AccessToken: "A"})
	mgr.Logout(ctx)

	assert.Empty(t, nav.History())
}

func TestSubscribe_NotifiesAndUnsubscribes(t *testing.T) {
	mgr, _, _, _ := newManager(t)
	ctx := context.Background()

	var seen []Snapshot
	cancel := mgr.Subscribe(func(s Snapshot) { seen = append(seen, s) })

	mgr.Hydrate(ctx)
	mgr.Login(ctx, LoginInput{AccessToken: "A", RawRole: "company"})
	require.Len(t, seen, 2)
	assert.Nil(t, seen[0].User)
	require.NotNil(t, seen[1].User)
	assert.Equal(t, domainsession.RoleCompany, seen[1].User.Role)

	cancel()
	mgr.Logout(ctx)
	assert.Len(t, seen, 2)
}
