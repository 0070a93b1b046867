package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "auth:token:"

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redis and returns a shared token table.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (TokenStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisStore{client: client, prefix: prefix}, nil
}

func (s *redisStore) key(token string) string {
	return s.prefix + token
}

func (s *redisStore) Put(ctx context.Context, token string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	// Key expiry bounds storage; validity is still decided by ExpiresAt.
	ttl := rec.ExpiresAt.Sub(rec.IssuedAt)
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.key(token), data, ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, token string) (Record, bool, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode token record: %w", err)
	}
	return rec, true, nil
}

func (s *redisStore) Delete(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Del(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
