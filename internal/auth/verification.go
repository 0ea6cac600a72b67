package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenNotFound reports an unknown or expired verification token.
var ErrTokenNotFound = errors.New("verification token not found")

// VerificationStore issues and redeems one-shot email verification tokens.
type VerificationStore interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	Redeem(ctx context.Context, token string) (string, error)
}

const verificationKeyPrefix = "verify:"

type redisVerificationStore struct {
	client *redis.Client
}

// NewRedisVerificationStore stores tokens in Redis with a TTL.
func NewRedisVerificationStore(client *redis.Client) VerificationStore {
	return &redisVerificationStore{client: client}
}

func (s *redisVerificationStore) Put(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, verificationKeyPrefix+token, userID, ttl).Err()
}

// Redeem returns the user id for a token and deletes it so verification links
// are single use.
func (s *redisVerificationStore) Redeem(ctx context.Context, token string) (string, error) {
	key := verificationKeyPrefix + token
	userID, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	_ = s.client.Del(ctx, key).Err()
	return userID, nil
}
