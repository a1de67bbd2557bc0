package authflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "aft"

var (
	errTokenNotFound         = errors.New("session token not found")
	errTokenStoreUnavailable = errors.New("token store unavailable")
)

// tokenStore persists the session credential across process restarts. The
// value is stored verbatim under a namespaced key with no TTL; expiry is
// server-driven and discovered through a failing load-user call.
type tokenStore struct {
	redis  *redis.Client
	prefix string
}

func newTokenStore(redisClient *redis.Client) *tokenStore {
	return &tokenStore{
		redis:  redisClient,
		prefix: tokenKeyPrefix,
	}
}

func (s *tokenStore) key(name string) string {
	return s.prefix + ":" + name
}

// Get returns the stored token, or errTokenNotFound when absent.
func (s *tokenStore) Get(ctx context.Context, name string) (string, error) {
	token, err := s.redis.Get(ctx, s.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errTokenNotFound
		}
		return "", fmt.Errorf("%w: %v", errTokenStoreUnavailable, err)
	}
	return token, nil
}

// Set writes the token under the given name, replacing any previous value.
func (s *tokenStore) Set(ctx context.Context, name, token string) error {
	if err := s.redis.Set(ctx, s.key(name), token, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", errTokenStoreUnavailable, err)
	}
	return nil
}

// Remove deletes the stored token. Removing an absent token is not an error.
func (s *tokenStore) Remove(ctx context.Context, name string) error {
	if err := s.redis.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errTokenStoreUnavailable, err)
	}
	return nil
}
