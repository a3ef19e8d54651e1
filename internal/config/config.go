// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

const (
	CatalogPostgres = "postgres"
	CatalogMemory   = "memory"
)

type Config struct {
	AppPort         string
	ShutdownTimeout time.Duration
	LogLevel        string

	CatalogStore string
	DatabaseDSN  string

	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	RedisBreakerFailures uint32
	RedisBreakerTimeout  time.Duration

	Denominations []int64
	Currency      string
	SessionTTL    time.Duration

	// bcrypt hash of the key required for catalog changes; empty disables the check
	OperatorKeyHash string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads the environment. Malformed values are collected and returned
// together so a bad deployment reports every problem at once.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		AppPort:  getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		CatalogStore: strings.ToLower(getenv("CATALOG_STORE", CatalogPostgres)),
		DatabaseDSN:  os.Getenv("DATABASE_DSN"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		Currency:        strings.ToUpper(getenv("CURRENCY", "IDR")),
		OperatorKeyHash: os.Getenv("OPERATOR_KEY_HASH"),
	}

	var err error
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 10*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.RedisBreakerTimeout, err = durationEnv("REDIS_BREAKER_TIMEOUT", 30*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}

	failures, err := intEnv("REDIS_BREAKER_FAILURES", 5)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.RedisBreakerFailures = uint32(max(failures, 1))

	if cfg.Denominations, err = parseDenominations(getenv("DENOMINATIONS", "2000,5000")); err != nil {
		errs = append(errs, err)
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}

	return cfg, errors.Join(errs...)
}

// Validate checks cross-field rules.
func (c Config) Validate() error {
	var errs []error

	switch c.CatalogStore {
	case CatalogPostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("config: DATABASE_DSN is required when CATALOG_STORE=postgres"))
		}
	case CatalogMemory:
	default:
		errs = append(errs, fmt.Errorf("config: unknown CATALOG_STORE %q", c.CatalogStore))
	}

	if _, err := currency.ParseISO(c.Currency); err != nil {
		errs = append(errs, fmt.Errorf("config: CURRENCY %q: %w", c.Currency, err))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("config: SESSION_TTL must not be negative"))
	}

	return errors.Join(errs...)
}

// CurrencyUnit returns the configured currency, IDR when unparsable.
func (c Config) CurrencyUnit() currency.Unit {
	u, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.IDR
	}
	return u
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func parseDenominations(v string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: DENOMINATIONS: %w", err)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, errors.New("config: DENOMINATIONS is empty")
	}
	return out, nil
}
