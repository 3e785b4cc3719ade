package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domainsession "github.com/careerbridge/careerbridge-go/internal/domain/session"
	"github.com/careerbridge/careerbridge-go/internal/ports"
)

// Redis persists credentials in Redis, keyed per installation. Suited to
// BFF-style deployments where the session core runs server-side and local
// disk is not durable.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis creates a Redis-backed credential store. key identifies this
// installation's record (e.g., "credentials:default").
func NewRedis(client redis.UniversalClient, key string) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if key == "" {
		key = "credentials:default"
	}
	return &Redis{client: client, key: key}, nil
}

func (r *Redis) Load(ctx context.Context) (domainsession.Credentials, error) {
	data, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainsession.Credentials{}, nil
		}
		return domainsession.Credentials{}, fmt.Errorf("redis get: %w", err)
	}

	var creds domainsession.Credentials
	if unmarshalErr := json.Unmarshal([]byte(data), &creds); unmarshalErr != nil {
		return domainsession.Credentials{}, fmt.Errorf("unmarshal credentials: %w", unmarshalErr)
	}
	return creds, nil
}

func (r *Redis) Save(ctx context.Context, creds domainsession.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	// No TTL: the record survives until an explicit Clear; expiry is the
	// watchdog's concern.
	return r.client.Set(ctx, r.key, data, 0).Err()
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

var _ ports.CredentialStore = (*Redis)(nil)
