package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tanutchapol/backend-ChatBot/internal/service/sheets"
)

func newSheetLogin(t *testing.T, spreadsheetID string) (*LoginService, *Authority, *sheets.MemoryStore) {
	t.Helper()
	store := sheets.NewMemoryStore(map[string][][]any{
		"Sheet2": {
			{"PIN", "Name"},
			{"123456", "Alice"},
			{" 222222 "},
		},
	})
	a := NewAuthority(NewMemoryStore(), time.Hour)
	dir := NewSheetDirectory(store, spreadsheetID, "Sheet2")
	return NewLoginService(dir, a), a, store
}

func TestLoginResolvesUser(t *testing.T) {
	ctx := context.Background()
	svc, a, _ := newSheetLogin(t, "sheet-1")

	session, err := svc.Login(ctx, "123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.User.Name != "Alice" || session.User.ID != "Alice" || session.User.PIN != "123456" {
		t.Fatalf("unexpected user %+v", session.User)
	}
	if got, ok := a.Verify(ctx, session.Token); !ok || got != session.User {
		t.Fatalf("issued token does not verify: %+v ok=%v", got, ok)
	}
}

func TestLoginDefaultsName(t *testing.T) {
	svc, _, _ := newSheetLogin(t, "sheet-1")

	session, err := svc.Login(context.Background(), "222222")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.User.Name != "User-2222" {
		t.Fatalf("expected default name, got %q", session.User.Name)
	}
}

func TestLoginErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newSheetLogin(t, "sheet-1")

	for _, pin := range []string{"", "12345", "1234567", "12345a"} {
		if _, err := svc.Login(ctx, pin); !errors.Is(err, ErrInvalidPIN) {
			t.Errorf("pin %q: expected ErrInvalidPIN, got %v", pin, err)
		}
	}

	if _, err := svc.Login(ctx, "999999"); !errors.Is(err, ErrUnknownPIN) {
		t.Fatalf("expected ErrUnknownPIN, got %v", err)
	}

	store.FailWith(errors.New("quota exceeded"))
	if _, err := svc.Login(ctx, "123456"); err == nil || errors.Is(err, ErrUnknownPIN) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestLoginRequiresSpreadsheet(t *testing.T) {
	svc, _, _ := newSheetLogin(t, "")

	if _, err := svc.Login(context.Background(), "123456"); !errors.Is(err, ErrDirectoryNotConfigured) {
		t.Fatalf("expected ErrDirectoryNotConfigured, got %v", err)
	}
}

func TestMemoryDirectory(t *testing.T) {
	dir := NewMemoryDirectory(map[string]string{"123456": "Alice", "000042": ""})

	user, ok, _ := dir.LookupPIN(context.Background(), "000042")
	if !ok || user.Name != "User-0042" {
		t.Fatalf("unexpected user %+v ok=%v", user, ok)
	}
	if _, ok, _ := dir.LookupPIN(context.Background(), "111111"); ok {
		t.Fatal("expected unknown pin")
	}
}
