// Package config loads process configuration from the environment once at
// start-up. Everything downstream receives its settings by constructor
// injection; nothing reads the environment after boot.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// devFallbackKey is only ever used outside production, and loudly.
const devFallbackKey = "erp-einvoice-dev-only-fallback-encryption-key"

// Config is the process configuration.
type Config struct {
	// Address is the HTTP listen address of the API server.
	Address string

	// Production toggles the credential-key fallback guard.
	Production bool

	// EncryptionKey protects credential secrets at rest. Minimum 32 bytes.
	EncryptionKey []byte

	// HTTP timeouts for the inbound API server.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Outbound retry tuning for the protocol adapter.
	RetryAttempts int
	RetryBackoff  time.Duration

	Debug bool
}

// Load reads configuration from the environment, with an optional .env file
// for local development.
func Load() (*Config, error) {
	// Missing .env is the normal case in deployed environments.
	_ = godotenv.Load()

	cfg := &Config{
		Address:       getenv("EINVOICE_ADDR", ":8080"),
		Production:    getenv("EINVOICE_ENV", "development") == "production",
		ReadTimeout:   getenvDuration("EINVOICE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:  getenvDuration("EINVOICE_WRITE_TIMEOUT", 60*time.Second),
		RetryAttempts: getenvInt("EINVOICE_RETRY_ATTEMPTS", 3),
		RetryBackoff:  getenvDuration("EINVOICE_RETRY_BACKOFF", 500*time.Millisecond),
		Debug:         getenv("EINVOICE_DEBUG", "") != "",
	}

	key := os.Getenv("EINVOICE_ENCRYPTION_KEY")
	switch {
	case len(key) >= 32:
		cfg.EncryptionKey = []byte(key)
	case cfg.Production:
		return nil, fmt.Errorf("EINVOICE_ENCRYPTION_KEY must be set to at least 32 bytes in production")
	default:
		log.Warn("EINVOICE_ENCRYPTION_KEY missing or too short; using built-in development key")
		cfg.EncryptionKey = []byte(devFallbackKey)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.WithField("key", key).Warnf("invalid duration %q, using %s", v, fallback)
		return fallback
	}
	return d
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.WithField("key", key).Warnf("invalid integer %q, using %d", v, fallback)
		return fallback
	}
	return n
}
