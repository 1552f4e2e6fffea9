// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // ID_TIMEZONE must resolve on minimal images

	"docserial/internal/core/numerator"
)

// Config is shared by the HTTP server and the operator CLI.
type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    string
	Env         string

	DBMaxConns int

	TxLockTimeout      time.Duration
	TxStatementTimeout time.Duration
	AllocMaxAttempts   int

	// Location decides which calendar day an identifier belongs to.
	Location *time.Location

	PrefixTable string
	AutoMigrate bool

	// AdminJWTSecret enables bearer-token auth on the HTTP API.
	AdminJWTSecret string

	// AllocTargets limits which table.column pairs the HTTP API allocates
	// for. Empty allows any.
	AllocTargets []numerator.Target
}

// Development reports whether APP_ENV selects human-readable logs.
func (c Config) Development() bool {
	return c.Env == "development"
}

// FromEnv loads Config. Malformed values are reported, not silently defaulted.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           getEnv("APP_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Env:            getEnv("APP_ENV", "development"),
		PrefixTable:    getEnv("PREFIX_TABLE", "id_prefixes"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
	}

	cfg.DBMaxConns = getEnvInt("DB_MAX_CONNS", 25, &errs)
	cfg.TxLockTimeout = getEnvDuration("TX_LOCK_TIMEOUT", 5*time.Second, &errs)
	cfg.TxStatementTimeout = getEnvDuration("TX_STATEMENT_TIMEOUT", 30*time.Second, &errs)
	cfg.AllocMaxAttempts = getEnvInt("ALLOC_MAX_ATTEMPTS", 3, &errs)
	cfg.AutoMigrate = getEnvBool("AUTO_MIGRATE", false, &errs)

	cfg.Location = time.Local
	if tz := os.Getenv("ID_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			errs = append(errs, fmt.Errorf("ID_TIMEZONE: %w", err))
		} else {
			cfg.Location = loc
		}
	}

	for _, item := range strings.Split(os.Getenv("ALLOC_TARGETS"), ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		target, err := numerator.ParseTarget(item)
		if err != nil {
			errs = append(errs, fmt.Errorf("ALLOC_TARGETS: %w", err))
			continue
		}
		cfg.AllocTargets = append(cfg.AllocTargets, target)
	}

	if cfg.AllocMaxAttempts < 1 {
		errs = append(errs, errors.New("ALLOC_MAX_ATTEMPTS must be at least 1"))
	}

	return cfg, errors.Join(errs...)
}

// RequireDatabase fails when DATABASE_URL is unset.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("required environment variable DATABASE_URL not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func getEnvBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}
