package auth

import (
	"context"
	"fmt"
	"strings"
)

// Driver identifiers accepted by NewTokenStore.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// NewTokenStore creates a token table for the configured driver.
func NewTokenStore(ctx context.Context, driver string, redisCfg RedisConfig) (TokenStore, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverMemory
	}

	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		return NewRedisStore(ctx, redisCfg)
	default:
		return nil, fmt.Errorf("unsupported token store driver: %s", driver)
	}
}
