package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// File persists credentials as a JSON document on disk. It is the default
// backend: durable across process restarts with no external dependency.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed credential store at path. The parent
// directory is created on first save.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("credential file path is required")
	}
	return &File{path: path}, nil
}

func (f *File) Load(_ context.Context) (domainsession.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domainsession.Credentials{}, nil
		}
		return domainsession.Credentials{}, fmt.Errorf("read credential file: %w", err)
	}

	var creds domainsession.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		// A corrupt record is treated as absent rather than blocking startup.
		return domainsession.Credentials{}, nil
	}
	return creds, nil
}

func (f *File) Save(_ context.Context, creds domainsession.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}

	raw, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	// Write-then-rename keeps the record whole under concurrent readers.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

var _ ports.CredentialStore = (*File)(nil)
