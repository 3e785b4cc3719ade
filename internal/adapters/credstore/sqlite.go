package credstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// credentialRecord is the single-row GORM model backing the SQLite store.
type credentialRecord struct {
	ID                       uint `gorm:"primaryKey"`
	AccessToken              string
	RefreshToken             string
	UserName                 string
	Email                    string
	Role                     string
	PendingCompanyOnboarding bool
}

func (credentialRecord) TableName() string { return "credentials" }

// SQLite persists credentials in a local SQLite database via GORM. Suited to
// installations that already keep other local state in SQLite.
type SQLite struct {
	db *gorm.DB
}

// NewSQLite opens (creating if needed) the database at path and migrates the
// credentials table.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return newSQLiteWithDB(db)
}

// newSQLiteWithDB wraps an already-open GORM handle. Used by tests with an
// in-memory database.
func newSQLiteWithDB(db *gorm.DB) (*SQLite, error) {
	if err := db.AutoMigrate(&credentialRecord{}); err != nil {
		return nil, fmt.Errorf("migrate credentials table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context) (domainsession.Credentials, error) {
	var rec credentialRecord
	err := s.db.WithContext(ctx).First(&rec, 1).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainsession.Credentials{}, nil
		}
		return domainsession.Credentials{}, fmt.Errorf("load credentials: %w", err)
	}
	return domainsession.Credentials{
		AccessToken:              rec.AccessToken,
		RefreshToken:             rec.RefreshToken,
		UserName:                 rec.UserName,
		Email:                    rec.Email,
		Role:                     rec.Role,
		PendingCompanyOnboarding: rec.PendingCompanyOnboarding,
	}, nil
}

func (s *SQLite) Save(ctx context.Context, creds domainsession.Credentials) error {
	rec := credentialRecord{
		ID:                       1,
		AccessToken:              creds.AccessToken,
		RefreshToken:             creds.RefreshToken,
		UserName:                 creds.UserName,
		Email:                    creds.Email,
		Role:                     creds.Role,
		PendingCompanyOnboarding: creds.PendingCompanyOnboarding,
	}
	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&credentialRecord{}, 1).Error; err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

var _ ports.CredentialStore = (*SQLite)(nil)
