// Package session issues and validates the signed, time-limited tokens
// carried in the auth cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrInvalidSession covers every rejection: bad signature, unknown key,
// expiry, revocation. Callers must not distinguish between them.
var ErrInvalidSession = errors.New("invalid session")

// Claims embedded in a session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Manager struct {
	keys     []Key
	ttl      time.Duration
	denylist Denylist
	now      func() time.Time
}

// NewManager builds a Manager signing with keys[0]. denylist may be nil,
// in which case Revoke is a no-op.
func NewManager(keys []Key, ttl time.Duration, denylist Denylist) (*Manager, error) {
	if len(keys) == 0 {
		return nil, errors.New("session: at least one key is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session: ttl must be positive")
	}
	return &Manager{keys: keys, ttl: ttl, denylist: denylist, now: time.Now}, nil
}

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a token for email, valid for the manager's ttl.
func (m *Manager) Issue(email string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	active := m.keys[0]
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = active.ID
	signed, err := token.SignedString(active.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, expires, nil
}

// Validate verifies signature, expiry and revocation of a token.
func (m *Manager) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidSession)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, m.keyFor,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(m.now()) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidSession)
	}
	if claims.Email == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidSession)
	}

	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: denylist: %v", ErrInvalidSession, err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: revoked", ErrInvalidSession)
		}
	}
	return claims, nil
}

// Revoke denylists the token until its expiry.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.denylist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return m.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(m.now()))
}

func (m *Manager) keyFor(token *jwt.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)
	for _, k := range m.keys {
		if k.ID == kid {
			return k.Secret, nil
		}
	}
	return nil, fmt.Errorf("unknown key id %q", kid)
}
