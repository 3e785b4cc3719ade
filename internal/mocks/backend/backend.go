package backend

// Package backend contains simple hand-written test doubles for the backend
// and navigation ports. These are lightweight and suitable for unit tests
// without codegen.

import (
	"context"
	"sync"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	apperrors "github.com/careerbridge/careerbridge-go/internal/errors"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.BackendAPI = (*MockBackend)(nil)
	_ ports.Navigator  = (*StubNavigator)(nil)
)

// MockBackend simulates the job-portal backend. Zero-value behavior is a
// healthy backend with a student identity; override the Func fields to model
// other responses.
type MockBackend struct {
	FetchIdentityFunc          func(ctx context.Context, accessToken string) (domainsession.Identity, error)
	RefreshTokenFunc           func(ctx context.Context, refreshToken string) (ports.RefreshResult, error)
	UpdateRoleFunc             func(ctx context.Context, accessToken string, role domainsession.Role) (ports.RoleUpdateResult, error)
	TerminateSessionFunc       func(ctx context.Context, accessToken string) error
	GetCompanyProfileFunc      func(ctx context.Context, accessToken string) (ports.CompanyProfile, error)
	UpsertCompanyProfileFunc   func(ctx context.Context, accessToken string, p ports.CompanyProfile) (ports.CompanyProfile, error)
	GetProfessorProfileFunc    func(ctx context.Context, accessToken string) (ports.ProfessorProfile, error)
	CreateProfessorProfileFunc func(ctx context.Context, accessToken string, p ports.ProfessorProfile) (ports.ProfessorProfile, error)

	mu    sync.Mutex
	calls map[string]int
}

// Calls returns how many times the named operation ran.
func (m *MockBackend) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[name]++
}

func (m *MockBackend) FetchIdentity(ctx context.Context, accessToken string) (domainsession.Identity, error) {
	m.record("FetchIdentity")
	if m.FetchIdentityFunc != nil {
		return m.FetchIdentityFunc(ctx, accessToken)
	}
	return domainsession.Identity{
		UserName: "mock-user",
		Email:    "mock.user@example.com",
		Role:     domainsession.RoleStudent,
		RawRole:  "Student",
	}, nil
}

func (m *MockBackend) RefreshToken(ctx context.Context, refreshToken string) (ports.RefreshResult, error) {
	m.record("RefreshToken")
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}
	return ports.RefreshResult{AccessToken: "refreshed-token"}, nil
}

func (m *MockBackend) UpdateRole(ctx context.Context, accessToken string, role domainsession.Role) (ports.RoleUpdateResult, error) {
	m.record("UpdateRole")
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, accessToken, role)
	}
	return ports.RoleUpdateResult{RawRole: string(role)}, nil
}

func (m *MockBackend) TerminateSession(ctx context.Context, accessToken string) error {
	m.record("TerminateSession")
	if m.TerminateSessionFunc != nil {
		return m.TerminateSessionFunc(ctx, accessToken)
	}
	return nil
}

func (m *MockBackend) GetCompanyProfile(ctx context.Context, accessToken string) (ports.CompanyProfile, error) {
	m.record("GetCompanyProfile")
	if m.GetCompanyProfileFunc != nil {
		return m.GetCompanyProfileFunc(ctx, accessToken)
	}
	return ports.CompanyProfile{}, apperrors.NotFound("company profile not found")
}

func (m *MockBackend) UpsertCompanyProfile(ctx context.Context, accessToken string, p ports.CompanyProfile) (ports.CompanyProfile, error) {
	m.record("UpsertCompanyProfile")
	if m.UpsertCompanyProfileFunc != nil {
		return m.UpsertCompanyProfileFunc(ctx, accessToken, p)
	}
	return p, nil
}

func (m *MockBackend) GetProfessorProfile(ctx context.Context, accessToken string) (ports.ProfessorProfile, error) {
	m.record("GetProfessorProfile")
	if m.GetProfessorProfileFunc != nil {
		return m.GetProfessorProfileFunc(ctx, accessToken)
	}
	return ports.ProfessorProfile{}, apperrors.NotFound("professor profile not found")
}

func (m *MockBackend) CreateProfessorProfile(ctx context.Context, accessToken string, p ports.ProfessorProfile) (ports.ProfessorProfile, error) {
	m.record("CreateProfessorProfile")
	if m.CreateProfessorProfileFunc != nil {
		return m.CreateProfessorProfileFunc(ctx, accessToken, p)
	}
	return p, nil
}

// StubNavigator records navigation for assertions.
type StubNavigator struct {
	mu      sync.Mutex
	path    string
	history []string
	reloads int
}

// NewStubNavigator creates a navigator positioned at path.
func NewStubNavigator(path string) *StubNavigator {
	return &StubNavigator{path: path}
}

func (n *StubNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *StubNavigator) NavigateTo(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
	n.history = append(n.history, path)
}

func (n *StubNavigator) Reload() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reloads++
}

// History returns every navigation target in order.
func (n *StubNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}

// Reloads returns how many hard reloads were requested.
func (n *StubNavigator) Reloads() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reloads
}
