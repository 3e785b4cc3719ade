package session

// Package session holds the process-wide authentication state machine and the
// identity resolver. The Manager is the only mutation surface for session
// state; gates and pages consume snapshots and subscribe to changes.

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// DefaultLoginPath is the login surface users are sent to after logout.
const DefaultLoginPath = "/login"

// terminateTimeout bounds the best-effort server session termination so a
// slow backend cannot hang logout.
const terminateTimeout = 5 * time.Second

// Snapshot is the read surface consumed by every gate and page.
type Snapshot struct {
	// User is nil while unauthenticated or hydrating.
	User *domainsession.User
	// IsReady is false only before hydration; pages render nothing until it
	// turns true.
	IsReady bool
}

// LoginInput carries the fields merged into the session on login. RawRole
// accepts whatever role string the backend produced; normalization happens
// inside Login.
type LoginInput struct {
	AccessToken  string
	RefreshToken string
	UserName     string
	Email        string
	RawRole      string
}

// ManagerOptions groups dependencies for the Manager.
type ManagerOptions struct {
	Store     ports.CredentialStore
	API       ports.IdentityAPI
	Navigator ports.Navigator
	Logger    *slog.Logger
	// LoginPath overrides DefaultLoginPath when non-empty.
	LoginPath string
}

// Manager is the authentication state machine:
// hydrating -> unauthenticated | authenticated.
// The hydrating transition happens exactly once, synchronously, from the
// credential store; no network call gates it.
type Manager struct {
	store     ports.CredentialStore
	api       ports.IdentityAPI
	nav       ports.Navigator
	logger    *slog.Logger
	loginPath string

	mu      sync.RWMutex
	phase   domainsession.Phase
	user    *domainsession.User
	hydrate sync.Once

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewManager constructs a Manager. Store is required; the rest may be nil
// (API nil skips server-side termination, Navigator nil skips navigation).
func NewManager(opts ManagerOptions) *Manager {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	return &Manager{
		store:     opts.Store,
		api:       opts.API,
		nav:       opts.Navigator,
		logger:    opts.Logger,
		loginPath: loginPath,
		phase:     domainsession.PhaseHydrating,
		subs:      map[int]func(Snapshot){},
	}
}

func (m *Manager) log() *slog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return slog.Default()
}

// LoginPath returns the configured login surface path.
func (m *Manager) LoginPath() string { return m.loginPath }

// Hydrate reads the credential store and settles the initial phase. It runs
// at most once; later calls are no-ops. The transition is optimistic: token
// presence alone decides, and the async bootstrap corrects the fields later.
func (m *Manager) Hydrate(ctx context.Context) {
	m.hydrate.Do(func() {
		creds, err := m.store.Load(ctx)
		if err != nil {
			m.log().WarnContext(ctx, "credential load failed, treating as unauthenticated", "error", err)
			creds = domainsession.Credentials{}
		}

		m.mu.Lock()
		if creds.IsAuthenticated() {
			m.phase = domainsession.PhaseAuthenticated
			m.user = &domainsession.User{
				UserName:     creds.UserName,
				Email:        creds.Email,
				Role:         domainsession.NormalizeRole(creds.Role),
				AccessToken:  creds.AccessToken,
				RefreshToken: creds.RefreshToken,
			}
		} else {
			m.phase = domainsession.PhaseUnauthenticated
			m.user = nil
		}
		m.mu.Unlock()
		m.notify()
	})
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{IsReady: m.phase != domainsession.PhaseHydrating}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// Phase returns the current lifecycle phase.
func (m *Manager) Phase() domainsession.Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// AccessToken returns the current access token, or "" when unauthenticated.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.user.AccessToken
}

// Login merges the provided fields into the session: normalizes the role,
// persists the whole credential record, and swaps the in-memory user.
// Idempotent; callable repeatedly to refresh fields after a role change.
// It never fails its caller: persistence errors are logged and the in-memory
// state still advances, since login is also invoked from fire-and-forget
// bootstrap paths.
func (m *Manager) Login(ctx context.Context, in LoginInput) {
	role := domainsession.NormalizeRole(in.RawRole)

	// The one-shot onboarding marker is its own key; login must not drop it.
	pending := false
	if current, err := m.store.Load(ctx); err == nil {
		pending = current.PendingCompanyOnboarding
	}

	creds := domainsession.Credentials{
		AccessToken:              in.AccessToken,
		RefreshToken:             in.RefreshToken,
		UserName:                 in.UserName,
		Email:                    in.Email,
		Role:                     string(role),
		PendingCompanyOnboarding: pending,
	}
	if err := m.store.Save(ctx, creds); err != nil {
		m.log().ErrorContext(ctx, "persist credentials failed", "error", err)
	}

	m.mu.Lock()
	m.phase = domainsession.PhaseAuthenticated
	m.user = &domainsession.User{
		UserName:     in.UserName,
		Email:        in.Email,
		Role:         role,
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
	}
	m.mu.Unlock()
	m.notify()
}

// Logout terminates the session: best-effort server-side termination, full
// credential clear, in-memory reset, and navigation to the login surface
// unless already there. It never fails its caller; failures are logged.
// Safe to call from the watchdog's response interceptor: the termination
// request runs on a bare context and its own failure path cannot recurse.
func (m *Manager) Logout(ctx context.Context) {
	token := m.AccessToken()

	if m.api != nil && token != "" {
		termCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), terminateTimeout)
		defer cancel()
		if err := m.api.TerminateSession(termCtx, token); err != nil {
			m.log().WarnContext(ctx, "server session termination failed", "error", err)
		}
	}

	if err := m.store.Clear(ctx); err != nil {
		m.log().ErrorContext(ctx, "credential clear failed", "error", err)
	}

	m.mu.Lock()
	m.phase = domainsession.PhaseUnauthenticated
	m.user = nil
	m.mu.Unlock()
	m.notify()

	if m.nav != nil && m.nav.CurrentPath() != m.loginPath {
		m.nav.NavigateTo(m.loginPath)
	}
}

// AdoptTokens persists a rotated token pair without touching identity fields.
// The role gate calls this before its identity re-fetch so the re-fetch never
// runs against a revoked token. Empty arguments leave the stored value alone.
func (m *Manager) AdoptTokens(ctx context.Context, accessToken, refreshToken string) {
	if accessToken == "" && refreshToken == "" {
		return
	}

	creds, err := m.store.Load(ctx)
	if err != nil {
		m.log().WarnContext(ctx, "credential load failed before token adoption", "error", err)
	}
	if accessToken != "" {
		creds.AccessToken = accessToken
	}
	if refreshToken != "" {
		creds.RefreshToken = refreshToken
	}
	if err := m.store.Save(ctx, creds); err != nil {
		m.log().ErrorContext(ctx, "persist rotated tokens failed", "error", err)
	}

	m.mu.Lock()
	if m.user != nil {
		if accessToken != "" {
			m.user.AccessToken = accessToken
		}
		if refreshToken != "" {
			m.user.RefreshToken = refreshToken
		}
	}
	m.mu.Unlock()
}

// PendingCompanyOnboarding reports the one-shot company onboarding marker.
func (m *Manager) PendingCompanyOnboarding(ctx context.Context) bool {
	creds, err := m.store.Load(ctx)
	if err != nil {
		m.log().WarnContext(ctx, "credential load failed reading onboarding marker", "error", err)
		return false
	}
	return creds.PendingCompanyOnboarding
}

// SetPendingCompanyOnboarding flips the one-shot company onboarding marker.
func (m *Manager) SetPendingCompanyOnboarding(ctx context.Context, pending bool) {
	creds, err := m.store.Load(ctx)
	if err != nil {
		m.log().WarnContext(ctx, "credential load failed writing onboarding marker", "error", err)
		return
	}
	creds.PendingCompanyOnboarding = pending
	if err := m.store.Save(ctx, creds); err != nil {
		m.log().ErrorContext(ctx, "persist onboarding marker failed", "error", err)
	}
}

// Subscribe registers fn to run after every state change. The returned
// function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// notify runs subscribers with a fresh snapshot, outside the state lock.
func (m *Manager) notify() {
	snap := m.Snapshot()
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
