package auth

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/tanutchapol/backend-ChatBot/internal/model/auth"
)

func withClock(t *testing.T, start time.Time) *time.Time {
	t.Helper()
	current := start
	prev := now
	now = func() time.Time { return current }
	t.Cleanup(func() { now = prev })
	return &current
}

func TestAuthorityIssueVerify(t *testing.T) {
	ctx := context.Background()
	a := NewAuthority(NewMemoryStore(), time.Hour)
	alice := auth.User{ID: "Alice", Name: "Alice", PIN: "123456"}

	token, expiresAt, err := a.Issue(ctx, alice)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("expected token")
	}
	if expiresAt.Before(time.Now().Add(59 * time.Minute)) {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	got, ok := a.Verify(ctx, token)
	if !ok || got != alice {
		t.Fatalf("expected alice, got %+v ok=%v", got, ok)
	}
}

func TestAuthorityTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	a := NewAuthority(NewMemoryStore(), time.Hour)

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		token, _, err := a.Issue(ctx, auth.User{ID: "u"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %s", token)
		}
		seen[token] = struct{}{}
	}
}

func TestAuthorityExpiryEvictsLazily(t *testing.T) {
	ctx := context.Background()
	clock := withClock(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	store := NewMemoryStore()
	a := NewAuthority(store, time.Minute)

	token, expiresAt, err := a.Issue(ctx, auth.User{ID: "u"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	*clock = expiresAt.Add(-time.Nanosecond)
	if _, ok := a.Verify(ctx, token); !ok {
		t.Fatal("expected token valid just before expiry")
	}

	*clock = expiresAt
	if _, ok := a.Verify(ctx, token); ok {
		t.Fatal("expected token invalid at expiry")
	}
	if _, present, _ := store.Get(ctx, token); present {
		t.Fatal("expected expired token to be evicted")
	}
}

func TestAuthorityRevoke(t *testing.T) {
	ctx := context.Background()
	a := NewAuthority(NewMemoryStore(), time.Hour)

	token, _, _ := a.Issue(ctx, auth.User{ID: "u"})
	if !a.Revoke(ctx, token) {
		t.Fatal("expected revoke to report existing token")
	}
	if _, ok := a.Verify(ctx, token); ok {
		t.Fatal("expected revoked token to be invalid")
	}
	if a.Revoke(ctx, token) {
		t.Fatal("expected second revoke to report false")
	}
	if a.Revoke(ctx, "unknown") {
		t.Fatal("expected unknown token revoke to report false")
	}
}

func TestAuthorityEmptyToken(t *testing.T) {
	a := NewAuthority(NewMemoryStore(), 0)
	if a.TTL() != DefaultTokenTTL {
		t.Fatalf("expected default ttl, got %v", a.TTL())
	}
	if _, ok := a.Verify(context.Background(), ""); ok {
		t.Fatal("expected empty token to be rejected")
	}
}

func TestAuthorityRedisStore(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	store, err := NewTokenStore(ctx, DriverRedis, RedisConfig{Addr: mr.Addr(), Prefix: "test:"})
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	a := NewAuthority(store, time.Minute)
	bob := auth.User{ID: "Bob", Name: "Bob", PIN: "654321"}

	token, _, err := a.Issue(ctx, bob)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !mr.Exists("test:" + token) {
		t.Fatal("expected prefixed key in redis")
	}
	if got, ok := a.Verify(ctx, token); !ok || got != bob {
		t.Fatalf("expected bob, got %+v ok=%v", got, ok)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := a.Verify(ctx, token); ok {
		t.Fatal("expected token to expire with its key")
	}
}

func TestAuthorityRedisRevoke(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	store, err := NewRedisStore(ctx, RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	a := NewAuthority(store, time.Hour)
	token, _, _ := a.Issue(ctx, auth.User{ID: "u"})

	if !a.Revoke(ctx, token) {
		t.Fatal("expected revoke true")
	}
	if a.Revoke(ctx, token) {
		t.Fatal("expected second revoke false")
	}
}

func TestAuthorityRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	store, err := NewRedisStore(ctx, RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	a := NewAuthority(store, time.Hour)
	token, _, err := a.Issue(ctx, auth.User{ID: "u"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mr.Close()
	if _, ok := a.Verify(ctx, token); ok {
		t.Fatal("expected verify to fail closed when redis is down")
	}
	if _, _, err := a.Issue(ctx, auth.User{ID: "u"}); err == nil {
		t.Fatal("expected issue error when redis is down")
	}
}

func TestNewTokenStoreUnknownDriver(t *testing.T) {
	if _, err := NewTokenStore(context.Background(), "sqlite", RedisConfig{}); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	store, err := NewTokenStore(context.Background(), "", RedisConfig{})
	if err != nil {
		t.Fatalf("expected memory default, got %v", err)
	}
	_ = store.Close()
}
