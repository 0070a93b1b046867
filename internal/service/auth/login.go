package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/tanutchapol/backend-ChatBot/internal/model/auth"
)

var pinPattern = regexp.MustCompile(`^\d{6}$`)

var (
	// ErrInvalidPIN is returned for anything that is not exactly six digits.
	ErrInvalidPIN = errors.New("PIN must be exactly 6 digits")
	// ErrUnknownPIN is returned when no user owns the PIN.
	ErrUnknownPIN = errors.New("invalid PIN")
)

// Session is the outcome of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      auth.User
}

// LoginService exchanges a PIN for a bearer token.
type LoginService struct {
	directory Directory
	authority *Authority
}

// NewLoginService wires a PIN directory to a token authority.
func NewLoginService(directory Directory, authority *Authority) *LoginService {
	return &LoginService{directory: directory, authority: authority}
}

// Login validates the PIN format, resolves the user and issues a token.
func (s *LoginService) Login(ctx context.Context, pin string) (*Session, error) {
	if !pinPattern.MatchString(pin) {
		return nil, ErrInvalidPIN
	}

	user, ok, err := s.directory.LookupPIN(ctx, pin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownPIN
	}

	token, expiresAt, err := s.authority.Issue(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
