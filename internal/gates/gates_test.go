package gates

import (
	"context"
	"testing"

	"github.com/careerbridge/careerbridge-go/internal/adapters/credstore"
	"github.com/careerbridge/careerbridge-go/internal/mocks/backend"
	"github.com/careerbridge/careerbridge-go/internal/session"
)

type fixture struct {
	mgr   *session.Manager
	store *credstore.Memory
	api   *backend.MockBackend
	nav   *backend.StubNavigator
}

func newFixture(t *testing.T, path string) *fixture {
	t.Helper()
	store := credstore.NewMemory()
	api := &backend.MockBackend{}
	nav := backend.NewStubNavigator(path)
	mgr := session.NewManager(session.ManagerOptions{Store: store, API: api, Navigator: nav})
	mgr.Hydrate(context.Background())
	return &fixture{mgr: mgr, store: store, api: api, nav: nav}
}

func (f *fixture) login(rawRole string) {
	f.mgr.Login(context.Background(), session.LoginInput{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		UserName:     "casey",
		Email:        "casey@example.com",
		RawRole:      rawRole,
	})
}
