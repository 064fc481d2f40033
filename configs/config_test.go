package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("SESSION_SECRETS", "k1:abc")
	t.Setenv("APP_PORT", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3004, cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "k1:abc", cfg.SessionSecrets)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("SESSION_SECRETS", "k1:abc")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("SESSION_TTL", "30s")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "todo")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "todo")
	t.Setenv("DB_SSLMODE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, 30*time.Second, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "host=db port=6543 user=todo password=pw dbname=todo sslmode=disable", cfg.DSN())
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv("GO_ENV", "test")

	t.Setenv("SESSION_SECRETS", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRETS", "k1:abc")
	t.Setenv("SESSION_TTL", "forever")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadIntegers(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("SESSION_SECRETS", "k1:abc")

	cases := []struct{ key, value string }{
		{"APP_PORT", "eighty"},
		{"APP_PORT", "70000"},
		{"DB_PORT", "0"},
		{"REDIS_PORT", "-1"},
		{"AUTH_RATE_LIMIT", "-5"},
		{"AUTH_RATE_LIMIT", "lots"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoadConfigRateLimitZeroDisables(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("SESSION_SECRETS", "k1:abc")
	t.Setenv("AUTH_RATE_LIMIT", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.AuthRateLimit)
}
