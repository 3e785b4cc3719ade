package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/careerbridge/careerbridge-go/config"
	"github.com/careerbridge/careerbridge-go/internal/adapters/httpapi"
	"github.com/careerbridge/careerbridge-go/internal/gates"
	"github.com/careerbridge/careerbridge-go/internal/ports"
	"github.com/careerbridge/careerbridge-go/internal/session"
	"github.com/careerbridge/careerbridge-go/internal/watchdog"
)

// App wires the session core together: credential store, backend client,
// session manager and resolver, gates, dispatcher, and watchdog.
type App struct {
	Config     config.AppConfig
	Logger     *slog.Logger
	Store      ports.CredentialStore
	API        *httpapi.Client
	Manager    *session.Manager
	Resolver   *session.Resolver
	Dispatcher *gates.Dispatcher
	RoleGate   *gates.RoleGate
	Company    *gates.CompanyGate
	Professor  *gates.ProfessorGate
	Watchdog   *watchdog.Watchdog

	bootstrapOnce  sync.Once
	stopWatchdog   func()
	stopDispatcher func()
}

// NewApp builds the full application graph. The navigator abstracts the
// hosting surface (browser shell, TUI, test double). The watchdog response
// interceptor is installed on the shared HTTP client exactly once, here.
func NewApp(cfg config.AppConfig, logger *slog.Logger, nav ports.Navigator) (*App, error) {
	store, err := BuildCredentialStore(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("build credential store: %w", err)
	}

	api, err := httpapi.NewClient(httpapi.Config{
		BaseURL:            cfg.Backend.BaseURL,
		Timeout:            cfg.Backend.Timeout,
		VerificationHeader: cfg.Backend.VerificationHeader,
	})
	if err != nil {
		return nil, fmt.Errorf("build backend client: %w", err)
	}

	mgr := session.NewManager(session.ManagerOptions{
		Store:     store,
		API:       api,
		Navigator: nav,
		Logger:    logger,
		LoginPath: cfg.Session.LoginPath,
	})
	resolver := session.NewResolver(session.ResolverOptions{
		API:    api,
		Store:  store,
		Logger: logger,
	})

	wd := watchdog.New(watchdog.Options{
		Manager:   mgr,
		Store:     store,
		Navigator: nav,
		Logger:    logger,
	})
	watchdog.Install(api.HTTPClient(), wd)

	roleGate := gates.NewRoleGate(mgr, api, logger)
	companyGate := gates.NewCompanyGate(mgr, api, logger)
	professorGate := gates.NewProfessorGate(mgr, api, logger)
	dispatcher := gates.NewDispatcher(gates.DispatcherOptions{
		RouteGuard: gates.NewRouteGuard(gates.RouteGuardOptions{
			PublicPaths:    cfg.Session.PublicPaths,
			PublicPrefixes: cfg.Session.PublicPrefixes,
		}),
		RoleGate:      roleGate,
		CompanyGate:   companyGate,
		ProfessorGate: professorGate,
		Navigator:     nav,
		Logger:        logger,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		API:        api,
		Manager:    mgr,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		RoleGate:   roleGate,
		Company:    companyGate,
		Professor:  professorGate,
		Watchdog:   wd,
	}, nil
}

func (a *App) log() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Start hydrates the session, attaches the watchdog and dispatcher to state
// changes, and kicks off the async bootstrap. It returns immediately; the
// bootstrap settles the session in the background.
func (a *App) Start(ctx context.Context) {
	a.stopWatchdog = a.Watchdog.Watch()
	a.stopDispatcher = a.Dispatcher.Watch(a.Manager)

	a.Manager.Hydrate(ctx)
	go a.Bootstrap(ctx)
}

// Stop detaches the watchdog and dispatcher.
func (a *App) Stop() {
	if a.stopDispatcher != nil {
		a.stopDispatcher()
	}
	if a.stopWatchdog != nil {
		a.stopWatchdog()
	}
}

// Bootstrap runs the one-shot session restoration: obtain a usable access
// token (stored or refreshed), fetch the authoritative identity, and merge it
// into the session. Failures are logged, never surfaced: the session keeps
// whatever phase hydration settled on, and the expiry watchdog tears down a
// stale optimistic session when its token proves dead.
// Runs at most once per process.
func (a *App) Bootstrap(ctx context.Context) {
	a.bootstrapOnce.Do(func() {
		token := a.Resolver.EnsureAccessToken(ctx)
		if token == "" {
			a.log().InfoContext(ctx, "no usable access token; starting unauthenticated")
			return
		}

		identity, err := a.Resolver.FetchIdentity(ctx, token)
		if err != nil {
			a.log().InfoContext(ctx, "identity fetch failed during bootstrap", "error", err)
			return
		}

		refresh := ""
		if creds, loadErr := a.Store.Load(ctx); loadErr == nil {
			refresh = creds.RefreshToken
		}
		a.Manager.Login(ctx, session.LoginInput{
			AccessToken:  token,
			RefreshToken: refresh,
			UserName:     identity.UserName,
			Email:        identity.Email,
			RawRole:      identity.RawRole,
		})
	})
}
