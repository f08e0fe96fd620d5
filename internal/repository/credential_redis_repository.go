package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errRedisNotConfigured = errors.New("redis client not configured")

// CredentialRedisRepository keeps the session token under a single Redis key.
type CredentialRedisRepository struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewCredentialRedisRepository constructs a Redis-backed credential store.
func NewCredentialRedisRepository(client *redis.Client, key string, logger *zap.Logger) *CredentialRedisRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialRedisRepository{client: client, key: key, logger: logger}
}

// Load returns the stored token, or "" when the key is absent.
func (r *CredentialRedisRepository) Load(ctx context.Context) (string, error) {
	if r.client == nil {
		return "", errRedisNotConfigured
	}
	token, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return token, nil
}

// Save stores the token without expiry; the backend decides when it stops working.
func (r *CredentialRedisRepository) Save(ctx context.Context, token string) error {
	if r.client == nil {
		return errRedisNotConfigured
	}
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Clear deletes the key.
func (r *CredentialRedisRepository) Clear(ctx context.Context) error {
	if r.client == nil {
		return errRedisNotConfigured
	}
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", r.key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *CredentialRedisRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
