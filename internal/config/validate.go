package config

import (
	"fmt"
	"slices"
)

var (
	validDrivers    = []string{"mysql", "sqlite"}
	validPolicies   = []string{"fixed_window", "token_bucket", "redis_fixed_window"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text"}
)

// minSigningSecretLen is the shortest accepted HS256 signing secret.
const minSigningSecretLen = 32

// Validate checks that the configuration is valid and complete.
// It returns an error if required fields are missing or values are invalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	checks := []struct {
		section string
		check   func(*Config) error
	}{
		{"server", validateServer},
		{"keys", validateKeys},
		{"db", validateDB},
		{"pool", validatePool},
		{"rate limit", validateRateLimit},
		{"health", validateHealth},
		{"log", validateLog},
	}
	for _, c := range checks {
		if err := c.check(cfg); err != nil {
			return fmt.Errorf("invalid %s config: %w", c.section, err)
		}
	}
	return nil
}

// validateServer validates the server-related fields.
func validateServer(cfg *Config) error {
	s := cfg.Server
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("PORT must be between 0 and 65535")
	}
	if s.Transport != TransportStreamableHTTP {
		return fmt.Errorf("MCP_TRANSPORT %q is not supported (only %s)", s.Transport, TransportStreamableHTTP)
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}

	// 0 is allowed meaning no timeout
	if s.IdleTimeout < 0 {
		return fmt.Errorf("SERVER_IDLE_TIMEOUT must be non-negative")
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateKeys validates the API-key fields. No keys at all is valid; the
// server then runs with a development key.
func validateKeys(cfg *Config) error {
	k := cfg.Keys
	if k.SigningSecret != "" && len(k.SigningSecret) < minSigningSecretLen {
		return fmt.Errorf("KEY_SIGNING_SECRET must be at least %d bytes", minSigningSecretLen)
	}
	if k.ClockSkew < 0 {
		return fmt.Errorf("KEY_CLOCK_SKEW must be non-negative")
	}
	if k.ReloadInterval < 0 {
		return fmt.Errorf("KEY_RELOAD_INTERVAL must be non-negative")
	}
	if k.ReloadInterval > 0 && k.File == "" {
		return fmt.Errorf("KEY_RELOAD_INTERVAL requires MCP_API_KEYS_FILE")
	}
	return nil
}

// validateDB validates the data-store fields.
func validateDB(cfg *Config) error {
	db := cfg.DB
	if !slices.Contains(validDrivers, db.Driver) {
		return fmt.Errorf("DB_DRIVER %q is not supported (want one of %v)", db.Driver, validDrivers)
	}

	switch db.Driver {
	case "sqlite":
		if db.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case "mysql":
		if db.Host == "" {
			return fmt.Errorf("DB_HOST is required for the mysql driver")
		}
		if db.Name == "" {
			return fmt.Errorf("DB_NAME is required for the mysql driver")
		}
		if db.Port <= 0 || db.Port > 65535 {
			return fmt.Errorf("DB_PORT must be between 1 and 65535")
		}
		if db.Migrate {
			return fmt.Errorf("DB_MIGRATE is only supported for the sqlite driver")
		}
	}

	if db.ConnectTimeout < 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be non-negative")
	}
	return nil
}

// validatePool validates the connection pool fields.
func validatePool(cfg *Config) error {
	p := cfg.Pool
	if p.MaxSize <= 0 {
		return fmt.Errorf("POOL_MAX_SIZE must be positive")
	}
	if p.AcquireTimeout <= 0 {
		return fmt.Errorf("POOL_ACQUIRE_TIMEOUT must be positive")
	}
	if p.MaxLifetime < 0 {
		return fmt.Errorf("POOL_MAX_LIFETIME must be non-negative")
	}
	if p.MaxIdleTime < 0 {
		return fmt.Errorf("POOL_MAX_IDLE_TIME must be non-negative")
	}
	return nil
}

// validateRateLimit validates the admission fields.
func validateRateLimit(cfg *Config) error {
	r := cfg.RateLimit
	if !slices.Contains(validPolicies, r.Policy) {
		return fmt.Errorf("RATE_LIMIT_POLICY %q is not supported (want one of %v)", r.Policy, validPolicies)
	}
	if r.Policy == "redis_fixed_window" && !cfg.Redis.Enabled() {
		return fmt.Errorf("RATE_LIMIT_POLICY %s requires REDIS_ADDR", r.Policy)
	}
	if r.Requests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if r.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if r.ElevatedRequests < r.Requests {
		return fmt.Errorf("RATE_LIMIT_ELEVATED_REQUESTS must be at least RATE_LIMIT_REQUESTS")
	}
	if r.CleanupInterval < 0 {
		return fmt.Errorf("RATE_LIMIT_CLEANUP_INTERVAL must be non-negative")
	}
	if r.StatsTTL < 0 {
		return fmt.Errorf("RATE_LIMIT_STATS_TTL must be non-negative")
	}
	if r.StatsBuffer <= 0 {
		return fmt.Errorf("RATE_LIMIT_STATS_BUFFER must be positive")
	}
	if r.StatsTimeout <= 0 {
		return fmt.Errorf("RATE_LIMIT_STATS_TIMEOUT must be positive")
	}
	if cfg.Redis.DB < 0 {
		return fmt.Errorf("REDIS_DB must be non-negative")
	}
	if cfg.Redis.Enabled() && cfg.Redis.Prefix == "" {
		return fmt.Errorf("REDIS_PREFIX is required when REDIS_ADDR is set")
	}
	return nil
}

// validateHealth validates the health check fields.
func validateHealth(cfg *Config) error {
	if cfg.Health.ProbeTimeout <= 0 {
		return fmt.Errorf("HEALTH_PROBE_TIMEOUT must be positive")
	}
	return nil
}

// validateLog validates the logger fields.
func validateLog(cfg *Config) error {
	if !slices.Contains(validLogLevels, cfg.Log.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not supported (want one of %v)", cfg.Log.Level, validLogLevels)
	}
	if !slices.Contains(validLogFormats, cfg.Log.Format) {
		return fmt.Errorf("LOG_FORMAT %q is not supported (want one of %v)", cfg.Log.Format, validLogFormats)
	}
	return nil
}
