// Package identity resolves the owner id that local records and sync
// requests are scoped to. The session token is a JWT issued by the external
// auth flow; this package only stores it and reads the owner claim back.
package identity

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNotSignedIn  = errors.New("not signed in")
)

// Provider exposes the current owner identity. Consumers must treat a false
// second return as "unauthenticated" and fail closed.
type Provider interface {
	CurrentOwner() (string, bool)
}

// Claims carries the standard claims plus the owner id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// OwnerFromToken validates tokenString against secretKey and returns the
// owner id claim.
func OwnerFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// TokenProvider is a Provider backed by a session token file. An absent,
// unreadable or expired token simply means "no owner" rather than an error.
type TokenProvider struct {
	path   string
	secret []byte
}

func NewTokenProvider(path string, secret []byte) *TokenProvider {
	return &TokenProvider{path: path, secret: secret}
}

func (p *TokenProvider) CurrentOwner() (string, bool) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", false
	}
	owner, err := OwnerFromToken(string(data), p.secret)
	if err != nil {
		return "", false
	}
	return owner, true
}

// SignIn validates the token and persists it, returning the owner id it
// carries.
func (p *TokenProvider) SignIn(token string) (string, error) {
	owner, err := OwnerFromToken(token, p.secret)
	if err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(token), 0o600); err != nil {
		return "", fmt.Errorf("saving session token: %w", err)
	}
	return owner, nil
}

// SignOut removes the stored session token.
func (p *TokenProvider) SignOut() error {
	err := os.Remove(p.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IssueToken creates a signed session token for owner, valid for ttl.
// Intended for tests and local setups without a real auth backend.
func IssueToken(owner string, secretKey []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID: owner,
	})
	return token.SignedString(secretKey)
}

// Static is a fixed-owner Provider used in tests.
type Static struct {
	Owner string
}

func (s Static) CurrentOwner() (string, bool) {
	return s.Owner, s.Owner != ""
}
