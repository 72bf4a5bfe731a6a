package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/c2xstation/storefront/params"
)

// RedisRepository shares the profile through redis.
type RedisRepository struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisRepository new redis repository
func NewRedisRepository(addr, password string, db int, ttl time.Duration) *RedisRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisRepository{
		client: client,
		key:    params.GetIdentifier() + ":" + profileKey,
		ttl:    ttl,
	}
}

// Get reads the profile.
func (r *RedisRepository) Get(ctx context.Context) (*Profile, error) {
	val, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}
	return decodeProfile(val)
}

// Set writes the profile with the configured ttl.
func (r *RedisRepository) Set(ctx context.Context, profile *Profile) error {
	data, err := encodeProfile(profile)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}

// Clear deletes the profile.
func (r *RedisRepository) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

// Close closes the client.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
