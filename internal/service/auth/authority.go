package auth

import (
	"context"
	"fmt"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tanutchapol/backend-ChatBot/internal/model/auth"
)

const DefaultTokenTTL = 24 * time.Hour

var now = func() time.Time { return time.Now().UTC() }

// Authority issues, verifies and revokes opaque bearer tokens.
type Authority struct {
	store TokenStore
	ttl   time.Duration
}

// NewAuthority binds an Authority to a token table. Non-positive ttl means DefaultTokenTTL.
func NewAuthority(store TokenStore, ttl time.Duration) *Authority {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authority{store: store, ttl: ttl}
}

// TTL returns the lifetime given to new tokens.
func (a *Authority) TTL() time.Duration {
	return a.ttl
}

// Issue stores a fresh random token for user.
func (a *Authority) Issue(ctx context.Context, user auth.User) (string, time.Time, error) {
	token := uuid.NewString()
	issuedAt := now()
	rec := Record{User: user, IssuedAt: issuedAt, ExpiresAt: issuedAt.Add(a.ttl)}

	if err := a.store.Put(ctx, token, rec); err != nil {
		return "", time.Time{}, fmt.Errorf("store token: %w", err)
	}
	return token, rec.ExpiresAt, nil
}

// Verify resolves a token to its user. Expired tokens are evicted on the way.
func (a *Authority) Verify(ctx context.Context, token string) (auth.User, bool) {
	if token == "" {
		return auth.User{}, false
	}

	rec, ok, err := a.store.Get(ctx, token)
	if err != nil {
		log.Warn("token lookup failed", "err", err)
		return auth.User{}, false
	}
	if !ok {
		return auth.User{}, false
	}

	if rec.Expired(now()) {
		if _, err := a.store.Delete(ctx, token); err != nil {
			log.Warn("expired token eviction failed", "err", err)
		}
		return auth.User{}, false
	}
	return rec.User, true
}

// Revoke removes a token and reports whether it existed.
func (a *Authority) Revoke(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	existed, err := a.store.Delete(ctx, token)
	if err != nil {
		log.Warn("token revoke failed", "err", err)
		return false
	}
	return existed
}
