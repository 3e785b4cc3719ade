package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/careerbridge/careerbridge-go/config"
	"github.com/careerbridge/careerbridge-go/internal/adapters/credstore"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// BuildCredentialStore creates the credential store selected by the storage
// configuration.
func BuildCredentialStore(cfg config.StorageConfig, logger *slog.Logger) (ports.CredentialStore, error) {
	switch cfg.Backend {
	case config.StorageMemory:
		if logger != nil {
			logger.Warn("using in-memory credential store; sessions will not survive restarts")
		}
		return credstore.NewMemory(), nil

	case config.StorageFile:
		return credstore.NewFile(cfg.FilePath)

	case config.StorageSQLite:
		return credstore.NewSQLite(cfg.SQLitePath)

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return credstore.NewRedis(client, cfg.Redis.Key)

	case config.StorageKeyring:
		return credstore.NewKeyring(cfg.KeyringService)

	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}
