package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	credentialKey = "vacationagent:credential"
	csrfKey       = "vacationagent:csrf"
)

// RedisStore persists the credential in Redis so that multiple agent
// processes behind the same account share one session and one refresh
// cycle.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed credential store. Entries expire
// after ttl; a zero ttl keeps them until explicitly cleared.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Set(ctx context.Context, cred Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	if err := s.client.Set(ctx, credentialKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context) (Credential, bool, error) {
	data, err := s.client.Get(ctx, credentialKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Credential{}, false, nil
		}
		return Credential{}, false, fmt.Errorf("redis get credential: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, false, fmt.Errorf("unmarshal credential: %w", err)
	}
	return cred, true, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, credentialKey, csrfKey).Err(); err != nil {
		return fmt.Errorf("redis del credential: %w", err)
	}
	return nil
}

func (s *RedisStore) SetCSRFToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, csrfKey, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set csrf token: %w", err)
	}
	return nil
}

func (s *RedisStore) CSRFToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, csrfKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get csrf token: %w", err)
	}
	return token, nil
}
