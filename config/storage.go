package config

import (
	"fmt"
	"strings"
)

// StorageBackend selects the credential store implementation.
type StorageBackend string

const (
	// StorageMemory keeps credentials in process memory only.
	StorageMemory StorageBackend = "memory"
	// StorageFile persists credentials as a JSON file.
	StorageFile StorageBackend = "file"
	// StorageSQLite persists credentials in a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"
	// StorageRedis persists credentials in Redis.
	StorageRedis StorageBackend = "redis"
	// StorageKeyring persists credentials in the OS keyring.
	StorageKeyring StorageBackend = "keyring"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (s *StorageBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "memory", "file", "sqlite", "redis", "keyring":
		*s = StorageBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: memory, file, sqlite, redis, keyring)", v)
	}
}

// RedisStorageConfig contains Redis connection settings for the redis
// storage backend.
type RedisStorageConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
	Key      string `env:"KEY"      envDefault:"careerbridge:session"`
}

// StorageConfig contains credential storage configuration.
type StorageConfig struct {
	// Backend selects which credential store implementation to build.
	Backend StorageBackend `env:"BACKEND" envDefault:"file"`

	// FilePath is the JSON file location for the file backend.
	FilePath string `env:"FILE_PATH" envDefault:"./careerbridge-session.json"`

	// SQLitePath is the database file location for the sqlite backend.
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./careerbridge-session.db"`

	// KeyringService is the OS keyring service name for the keyring backend.
	KeyringService string `env:"KEYRING_SERVICE" envDefault:"careerbridge"`

	// Redis settings for the redis backend.
	Redis RedisStorageConfig `envPrefix:"REDIS_"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = StorageFile
	}
	if s.Redis.DB < 0 {
		s.Redis.DB = 0
	}
}
