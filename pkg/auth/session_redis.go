package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "pantrypal:session:"

// RedisSessionStore implements SessionStore on Redis, one key per JTI with
// the refresh TTL as the key TTL. Expiry needs no janitor: Redis drops the
// key and IsLive turns false.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(addr string, db int) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisSessionStore{client: client}, nil
}

// Record registers a new live session
func (r *RedisSessionStore) Record(ctx context.Context, session *Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, sessionKeyPrefix+session.JTI, session.UserID, ttl).Err()
}

// IsLive reports whether the session for this JTI is still valid
func (r *RedisSessionStore) IsLive(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, sessionKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke retires a session
func (r *RedisSessionStore) Revoke(ctx context.Context, jti string) error {
	return r.client.Del(ctx, sessionKeyPrefix+jti).Err()
}

// Close closes the Redis connection
func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}
