package configs

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       int
	DBHost        string
	DBPort        int
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	RedisHost     string
	RedisPort     int
	RedisPassword string

	// SessionSecrets is a comma separated key ring, "kid:secret,...".
	// The first entry signs new tokens.
	SessionSecrets string
	SessionTTL     time.Duration
	CookieSecure   bool

	LogDir        string
	UploadDir     string
	AuthRateLimit int
}

func LoadConfig() (Config, error) {
	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using environment only")
		}
	}

	cfg := Config{
		DBHost:         stringEnv("DB_HOST", "localhost"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBSSLMode:      stringEnv("DB_SSLMODE", "disable"),
		RedisHost:      stringEnv("REDIS_HOST", "localhost"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SessionSecrets: os.Getenv("SESSION_SECRETS"),
		SessionTTL:     24 * time.Hour,
		CookieSecure:   true,
		LogDir:         stringEnv("LOG_DIR", "logs"),
		UploadDir:      stringEnv("UPLOAD_DIR", "uploads"),
	}

	var err error
	if cfg.AppPort, err = intEnv("APP_PORT", 3004, 1, 65535); err != nil {
		return Config{}, err
	}
	if cfg.DBPort, err = intEnv("DB_PORT", 5432, 1, 65535); err != nil {
		return Config{}, err
	}
	if cfg.RedisPort, err = intEnv("REDIS_PORT", 6379, 1, 65535); err != nil {
		return Config{}, err
	}
	// 0 mematikan rate limiter
	if cfg.AuthRateLimit, err = intEnv("AUTH_RATE_LIMIT", 20, 0, 1<<20); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL: invalid duration %q", v)
		}
		cfg.SessionTTL = ttl
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = secure
	}
	if cfg.SessionSecrets == "" {
		return Config{}, errors.New("SESSION_SECRETS is required")
	}
	return cfg, nil
}

// DSN builds the lib/pq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intEnv returns def when key is unset and an error when it is set to
// anything but an integer in [lo, hi].
func intEnv(key string, def, lo, hi int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s: want an integer between %d and %d, got %q", key, lo, hi, v)
	}
	return n, nil
}
