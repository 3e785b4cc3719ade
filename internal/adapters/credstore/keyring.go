package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// keyringUser is the account name under which the record is stored.
const keyringUser = "session-credentials"

// Keyring persists credentials in the OS keychain (macOS Keychain, Windows
// Credential Manager, Secret Service on Linux). Tokens never touch disk in
// plain text.
type Keyring struct {
	service string
}

// NewKeyring creates a keychain-backed credential store under the given
// service name (e.g., "com.careerbridge.app").
func NewKeyring(service string) (*Keyring, error) {
	if service == "" {
		return nil, errors.New("keyring service name is required")
	}
	return &Keyring{service: service}, nil
}

func (k *Keyring) Load(_ context.Context) (domainsession.Credentials, error) {
	data, err := keyring.Get(k.service, keyringUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return domainsession.Credentials{}, nil
		}
		return domainsession.Credentials{}, fmt.Errorf("keyring get: %w", err)
	}

	var creds domainsession.Credentials
	if unmarshalErr := json.Unmarshal([]byte(data), &creds); unmarshalErr != nil {
		return domainsession.Credentials{}, fmt.Errorf("unmarshal credentials: %w", unmarshalErr)
	}
	return creds, nil
}

func (k *Keyring) Save(_ context.Context, creds domainsession.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := keyring.Set(k.service, keyringUser, string(data)); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (k *Keyring) Clear(_ context.Context) error {
	if err := keyring.Delete(k.service, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}

var _ ports.CredentialStore = (*Keyring)(nil)
