package auth

import (
	"context"
	"time"

	"github.com/tanutchapol/backend-ChatBot/internal/model/auth"
)

// Record is what a token resolves to.
type Record struct {
	User      auth.User `json:"user"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the record is no longer valid at t.
func (r Record) Expired(t time.Time) bool {
	return !r.ExpiresAt.After(t)
}

// TokenStore is the token table behind the Authority. Operations are atomic per token.
type TokenStore interface {
	Put(ctx context.Context, token string, rec Record) error
	Get(ctx context.Context, token string) (Record, bool, error)
	Delete(ctx context.Context, token string) (bool, error)
	Close() error
}

// RedisConfig captures connection options for the redis driver.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
