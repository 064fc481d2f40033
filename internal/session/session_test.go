package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMemDenylist() *memDenylist {
	return &memDenylist{revoked: map[string]time.Duration{}}
}

func (d *memDenylist) Revoke(_ context.Context, id string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[id] = ttl
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

func mustManager(t *testing.T, ring string, ttl time.Duration, dl Denylist) *Manager {
	t.Helper()
	keys, err := ParseKeys(ring)
	require.NoError(t, err)
	m, err := NewManager(keys, ttl, dl)
	require.NoError(t, err)
	return m
}

func TestIssueValidateRoundTrip(t *testing.T) {
	m := mustManager(t, "k1:first-secret", 24*time.Hour, nil)

	token, expires, err := m.Issue("a@b.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expires, 5*time.Second)

	claims, err := m.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := mustManager(t, "k1:first-secret", time.Hour, nil)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue("a@b.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateRejectsTampered(t *testing.T) {
	m := mustManager(t, "k1:first-secret", time.Hour, nil)
	token, _, err := m.Issue("a@b.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, _, err := mustManager(t, "k1:other-secret", time.Hour, nil).Issue("evil@b.com")
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"swapped body":  parts[0] + "." + forgedParts[1] + "." + parts[2],
		"wrong secret":  forged,
		"truncated sig": parts[0] + "." + parts[1] + "." + parts[2][:len(parts[2])-4],
	}
	for name, tok := range cases {
		_, err := m.Validate(context.Background(), tok)
		assert.ErrorIs(t, err, ErrInvalidSession, name)
	}
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	m := mustManager(t, "k1:first-secret", time.Hour, nil)
	claims := Claims{
		Email: "a@b.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	none.Header["kid"] = "k1"
	tok, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Validate(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidSession)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	hs512.Header["kid"] = "k1"
	tok, err = hs512.SignedString([]byte("first-secret"))
	require.NoError(t, err)
	_, err = m.Validate(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateRequiresExpiry(t *testing.T) {
	m := mustManager(t, "k1:first-secret", time.Hour, nil)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email:            "a@b.com",
		RegisteredClaims: jwt.RegisteredClaims{ID: "id"},
	})
	token.Header["kid"] = "k1"
	tok, err := token.SignedString([]byte("first-secret"))
	require.NoError(t, err)

	_, err = m.Validate(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestKeyRotation(t *testing.T) {
	old := mustManager(t, "k1:first-secret", time.Hour, nil)
	token, _, err := old.Issue("a@b.com")
	require.NoError(t, err)

	rotated := mustManager(t, "k2:second-secret,k1:first-secret", time.Hour, nil)
	_, err = rotated.Validate(context.Background(), token)
	assert.NoError(t, err, "old key still verifies during rotation")

	fresh, _, err := rotated.Issue("a@b.com")
	require.NoError(t, err)
	parsed, _, err := jwt.NewParser().ParseUnverified(fresh, &Claims{})
	require.NoError(t, err)
	assert.Equal(t, "k2", parsed.Header["kid"])

	retired := mustManager(t, "k2:second-secret", time.Hour, nil)
	_, err = retired.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = retired.Validate(context.Background(), fresh)
	assert.NoError(t, err)
}

func TestRevoke(t *testing.T) {
	dl := newMemDenylist()
	m := mustManager(t, "k1:first-secret", time.Hour, dl)
	token, _, err := m.Issue("a@b.com")
	require.NoError(t, err)

	claims, err := m.Validate(context.Background(), token)
	require.NoError(t, err)
	require.NoError(t, m.Revoke(context.Background(), claims))
	assert.InDelta(t, time.Hour.Seconds(), dl.revoked[claims.ID].Seconds(), 5)

	_, err = m.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	other, _, err := m.Issue("a@b.com")
	require.NoError(t, err)
	_, err = m.Validate(context.Background(), other)
	assert.NoError(t, err, "revocation is per token")
}

func TestValidateFailsClosedOnDenylistError(t *testing.T) {
	dl := newMemDenylist()
	dl.err = errors.New("redis down")
	m := mustManager(t, "k1:first-secret", time.Hour, dl)
	token, _, err := m.Issue("a@b.com")
	require.NoError(t, err)

	_, err = m.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestParseKeys(t *testing.T) {
	keys, err := ParseKeys(" k1:abc , k2:def:ghi ")
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "k1", keys[0].ID)
	assert.Equal(t, []byte("abc"), keys[0].Secret)
	assert.Equal(t, []byte("def:ghi"), keys[1].Secret)

	for _, bad := range []string{"", " , ", "nocolon", ":secret", "k1:", "k1:a,k1:b"} {
		_, err := ParseKeys(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewManagerValidation(t *testing.T) {
	_, err := NewManager(nil, time.Hour, nil)
	assert.Error(t, err)
	_, err = NewManager([]Key{{ID: "k", Secret: []byte("s")}}, 0, nil)
	assert.Error(t, err)
}
