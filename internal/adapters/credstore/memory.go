package credstore

// Package credstore provides credential store implementations. Every backend
// persists the whole credential record at once; last write wins.

import (
	"context"
	"sync"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// Memory is an in-process credential store for tests and ephemeral runs.
type Memory struct {
	mu    sync.RWMutex
	creds domainsession.Credentials
}

// NewMemory creates an empty in-memory credential store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (domainsession.Credentials, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds, nil
}

func (m *Memory) Save(_ context.Context, creds domainsession.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = creds
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = domainsession.Credentials{}
	return nil
}

var _ ports.CredentialStore = (*Memory)(nil)
