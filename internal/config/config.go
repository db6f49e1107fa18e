package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string
	Env         string

	JWTSecretKey           string
	JWTExpirationMS        int
	JWTRefreshExpirationMS int
	BcryptCost             int

	AccessPolicyFile string

	LoginRateLimitRequests      int
	LoginRateLimitWindowSeconds int
	LoginRateLimitFailClosed    bool
	RateLimitMaxKeys            int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowedOrigins     []string
	ShutdownTimeoutSeconds int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:                    addr,
		PostgresDSN:                 os.Getenv("POSTGRES_DSN"),
		LogLevel:                    envDefault("LOG_LEVEL", "info"),
		Env:                         envDefault("GIFTSTORE_ENV", "prod"),
		JWTSecretKey:                os.Getenv("JWT_SECRET_KEY"),
		JWTExpirationMS:             envIntDefault("JWT_EXPIRATION_MS", 3600000),
		JWTRefreshExpirationMS:      envIntDefault("JWT_REFRESH_EXPIRATION_MS", 604800000),
		BcryptCost:                  envIntDefault("BCRYPT_COST", 10),
		AccessPolicyFile:            os.Getenv("ACCESS_POLICY_FILE"),
		LoginRateLimitRequests:      envIntDefault("LOGIN_RATE_LIMIT_REQUESTS", 10),
		LoginRateLimitWindowSeconds: envIntDefault("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 60),
		LoginRateLimitFailClosed:    envBoolDefault("LOGIN_RATE_LIMIT_FAIL_CLOSED", false),
		RateLimitMaxKeys:            envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:                   os.Getenv("REDIS_ADDR"),
		RedisPassword:               os.Getenv("REDIS_PASSWORD"),
		RedisDB:                     envIntDefault("REDIS_DB", 0),
		CORSAllowedOrigins:          envList("CORS_ALLOWED_ORIGINS"),
		ShutdownTimeoutSeconds:      envIntDefault("SHUTDOWN_TIMEOUT_SECONDS", 10),
	}
}

func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

// Validate reports settings the server cannot start with. A missing signing
// key is tolerated only in dev, where the server generates an ephemeral one.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecretKey == "" {
		if !c.IsDev() {
			errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
		}
	} else if _, err := base64.StdEncoding.DecodeString(c.JWTSecretKey); err != nil {
		errs = append(errs, fmt.Errorf("JWT_SECRET_KEY must be base64: %w", err))
	}
	if c.JWTExpirationMS <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MS must be positive"))
	}
	if c.JWTRefreshExpirationMS <= 0 {
		errs = append(errs, errors.New("JWT_REFRESH_EXPIRATION_MS must be positive"))
	}
	if c.AccessPolicyFile != "" {
		if _, err := os.Stat(c.AccessPolicyFile); err != nil {
			errs = append(errs, fmt.Errorf("ACCESS_POLICY_FILE: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTExpirationMS) * time.Millisecond
}

func (c Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWTRefreshExpirationMS) * time.Millisecond
}

func (c Config) LoginRateLimitWindow() time.Duration {
	return time.Duration(c.LoginRateLimitWindowSeconds) * time.Second
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
