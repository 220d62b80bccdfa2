package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envEnableProfiling       = "ENABLE_PROFILING"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY_MINUTES"
	envSessionCookieName     = "SESSION_COOKIE_NAME"
	envSessionCookieSecure   = "SESSION_COOKIE_SECURE"
	envLoginPath             = "LOGIN_PATH"
	envFallbackPath          = "FALLBACK_PATH"
	envBootstrapAdminEmail   = "BOOTSTRAP_ADMIN_EMAIL"
	envBootstrapAdminPass    = "BOOTSTRAP_ADMIN_PASSWORD"
	envRateLimitRPS          = "RATE_LIMIT_RPS"
	envRateLimitBurst        = "RATE_LIMIT_BURST"
)

const (
	defaultServerPort          = "8080"
	defaultServerReadTimeout   = 10 * time.Second
	defaultServerWriteTimeout  = 10 * time.Second
	defaultServerShutdown      = 10 * time.Second
	defaultJWTExpiry           = 60 * time.Minute
	defaultSessionCookieName   = "portal_session"
	defaultSessionCookieSecure = true
	defaultLoginPath           = "/login"
	defaultFallbackPath        = "/"
	defaultRateLimitRPS        = 100
	defaultRateLimitBurst      = 200
	minJWTSecretLength         = 32
	minUniqueCharsInSecret     = 16
	minRepeatedCharThreshold   = 4
	maxRepeatedChars           = 2
	errPortRequiredFmt         = "PORT must be set"
	errJWTSecretRequiredFmt    = "JWT_SECRET must be set"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errJWTExpiryPositiveFmt    = "JWT_EXPIRY_MINUTES must be positive"
	errCookieNameRequiredFmt   = "SESSION_COOKIE_NAME must be set"
	errPathAbsoluteFmt         = "%s must be an absolute path, got %q"
	errBootstrapIncompleteFmt  = "BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together"
	errRateLimitPositiveFmt    = "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server    ServerConfig
	JWT       JWTConfig
	Session   SessionConfig
	Guard     GuardConfig
	Bootstrap BootstrapConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// EnableProfiling mounts pprof for super admins.
	EnableProfiling bool
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
}

type SessionConfig struct {
	CookieName   string
	CookieSecure bool
}

// GuardConfig holds the redirect targets of page guards.
type GuardConfig struct {
	LoginPath    string
	FallbackPath string
}

// BootstrapConfig seeds the first super admin. Both fields empty disables it.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

func (b BootstrapConfig) Enabled() bool {
	return b.AdminEmail != "" && b.AdminPassword != ""
}

type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
			EnableProfiling: getBoolEnv(envEnableProfiling, false),
		},
		JWT: JWTConfig{
			Secret:         requireEnv(envJWTSecret),
			ExpiryDuration: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
		},
		Session: SessionConfig{
			CookieName:   getEnv(envSessionCookieName, defaultSessionCookieName),
			CookieSecure: getBoolEnv(envSessionCookieSecure, defaultSessionCookieSecure),
		},
		Guard: GuardConfig{
			LoginPath:    getEnv(envLoginPath, defaultLoginPath),
			FallbackPath: getEnv(envFallbackPath, defaultFallbackPath),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    strings.TrimSpace(os.Getenv(envBootstrapAdminEmail)),
			AdminPassword: os.Getenv(envBootstrapAdminPass),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getIntEnv(envRateLimitRPS, defaultRateLimitRPS),
			Burst:             getIntEnv(envRateLimitBurst, defaultRateLimitBurst),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	if !hasMinimumEntropy(c.JWT.Secret) {
		return fmt.Errorf(errJWTSecretLowEntropyFmt)
	}

	if c.JWT.ExpiryDuration <= 0 {
		return fmt.Errorf(errJWTExpiryPositiveFmt)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf(errCookieNameRequiredFmt)
	}

	if !strings.HasPrefix(c.Guard.LoginPath, "/") {
		return fmt.Errorf(errPathAbsoluteFmt, envLoginPath, c.Guard.LoginPath)
	}

	if !strings.HasPrefix(c.Guard.FallbackPath, "/") {
		return fmt.Errorf(errPathAbsoluteFmt, envFallbackPath, c.Guard.FallbackPath)
	}

	if (c.Bootstrap.AdminEmail == "") != (c.Bootstrap.AdminPassword == "") {
		return fmt.Errorf(errBootstrapIncompleteFmt)
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf(errRateLimitPositiveFmt)
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(messages.requiredEnvNotSet(key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Println(messages.invalidEnvValue(key, value, "integer", defaultValue))
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Println(messages.invalidEnvValue(key, value, "boolean", defaultValue))
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
		log.Println(messages.invalidEnvValue(key, value, "duration or minutes", defaultValue))
	}
	return defaultValue
}
