// Package config provides configuration management for the HR MCP gateway.
// Values come from an optional config file and environment variables, with
// defaults for everything except credentials and database secrets.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TransportStreamableHTTP is the only MCP transport served.
const TransportStreamableHTTP = "streamable-http"

// Config holds the complete server configuration.
type Config struct {
	Server    ServerConfig
	Keys      KeysConfig
	DB        DBConfig
	Pool      PoolConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Health    HealthConfig
	Log       LogConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Host and Port form the listen address.
	Host string
	Port int

	// Transport is the MCP transport name. Only streamable-http is served.
	Transport string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// IdleTimeout is the maximum duration to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// KeysConfig holds API-key settings.
type KeysConfig struct {
	// Specs are key specs of the form key[:tier[:scope+scope]].
	Specs []string

	// File is a path holding one key spec per line.
	File string

	// SigningSecret enables signed keys when set.
	SigningSecret string

	// Issuer is the iss claim of signed keys.
	Issuer string

	// ClockSkew is the leeway applied to signed key expiry.
	ClockSkew time.Duration

	// ReloadInterval re-reads File periodically. Zero disables reloading.
	ReloadInterval time.Duration
}

// Configured reports whether any static key source is set.
func (k KeysConfig) Configured() bool {
	return len(k.Specs) > 0 || k.File != ""
}

// DBConfig holds data-store settings.
type DBConfig struct {
	Driver         string
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	Path           string
	ConnectTimeout time.Duration

	// Migrate applies the bundled schema and seed data on startup (SQLite only).
	Migrate bool
}

// PoolConfig holds connection pool limits.
type PoolConfig struct {
	MaxSize        int
	AcquireTimeout time.Duration
	MaxLifetime    time.Duration
	MaxIdleTime    time.Duration
}

// RateLimitConfig holds admission settings.
type RateLimitConfig struct {
	// Policy is fixed_window, token_bucket or redis_fixed_window.
	Policy string

	// Requests and Window bound the default tier.
	Requests int
	Window   time.Duration

	// ElevatedRequests bounds the elevated tier over the same window.
	ElevatedRequests int

	// FailClosed rejects calls when the counting backend fails.
	FailClosed bool

	// CleanupInterval is how often idle in-memory windows are evicted.
	CleanupInterval time.Duration

	// Stats settings apply when Redis is configured. Stats are written off
	// the admission path; StatsBuffer bounds the queue and StatsTimeout
	// bounds each write.
	StatsTTL     time.Duration
	StatsPerKey  bool
	StatsBuffer  int
	StatsTimeout time.Duration
}

// RedisConfig holds the optional Redis connection. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces every key the gateway writes.
	Prefix string
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// HealthConfig holds health check settings.
type HealthConfig struct {
	// ProbeTimeout bounds each dependency check.
	ProbeTimeout time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string

	// Format is json or text.
	Format string
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"server.host":             "MCP_HOST",
	"server.port":             "PORT",
	"server.transport":        "MCP_TRANSPORT",
	"server.read_timeout":     "SERVER_READ_TIMEOUT",
	"server.write_timeout":    "SERVER_WRITE_TIMEOUT",
	"server.idle_timeout":     "SERVER_IDLE_TIMEOUT",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",

	"keys.api_keys":        "MCP_API_KEYS",
	"keys.file":            "MCP_API_KEYS_FILE",
	"keys.signing_secret":  "KEY_SIGNING_SECRET",
	"keys.issuer":          "KEY_ISSUER",
	"keys.clock_skew":      "KEY_CLOCK_SKEW",
	"keys.reload_interval": "KEY_RELOAD_INTERVAL",

	"db.driver":          "DB_DRIVER",
	"db.host":            "DB_HOST",
	"db.port":            "DB_PORT",
	"db.user":            "DB_USER",
	"db.password":        "DB_PASSWORD",
	"db.name":            "DB_NAME",
	"db.path":            "DB_PATH",
	"db.connect_timeout": "DB_CONNECT_TIMEOUT",
	"db.migrate":         "DB_MIGRATE",

	"pool.max_size":        "POOL_MAX_SIZE",
	"pool.acquire_timeout": "POOL_ACQUIRE_TIMEOUT",
	"pool.max_lifetime":    "POOL_MAX_LIFETIME",
	"pool.max_idle_time":   "POOL_MAX_IDLE_TIME",

	"rate_limit.policy":            "RATE_LIMIT_POLICY",
	"rate_limit.requests":          "RATE_LIMIT_REQUESTS",
	"rate_limit.window":            "RATE_LIMIT_WINDOW",
	"rate_limit.elevated_requests": "RATE_LIMIT_ELEVATED_REQUESTS",
	"rate_limit.fail_closed":       "RATE_LIMIT_FAIL_CLOSED",
	"rate_limit.cleanup_interval":  "RATE_LIMIT_CLEANUP_INTERVAL",
	"rate_limit.stats_ttl":         "RATE_LIMIT_STATS_TTL",
	"rate_limit.stats_per_key":     "RATE_LIMIT_STATS_PER_KEY",
	"rate_limit.stats_buffer":      "RATE_LIMIT_STATS_BUFFER",
	"rate_limit.stats_timeout":     "RATE_LIMIT_STATS_TIMEOUT",

	"redis.addr":     "REDIS_ADDR",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",
	"redis.prefix":   "REDIS_PREFIX",

	"health.probe_timeout": "HEALTH_PROBE_TIMEOUT",

	"log.level":  "LOG_LEVEL",
	"log.format": "LOG_FORMAT",
}

// SetDefaults registers default values and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.transport", TransportStreamableHTTP)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("keys.issuer", "hr-mcp-gateway")
	v.SetDefault("keys.clock_skew", "1m")
	v.SetDefault("keys.reload_interval", "0s")

	v.SetDefault("db.port", 3306)
	v.SetDefault("db.connect_timeout", "10s")
	v.SetDefault("db.migrate", false)

	v.SetDefault("pool.max_size", 5)
	v.SetDefault("pool.acquire_timeout", "30s")
	v.SetDefault("pool.max_lifetime", "30m")
	v.SetDefault("pool.max_idle_time", "5m")

	v.SetDefault("rate_limit.policy", "fixed_window")
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.elevated_requests", 1000)
	v.SetDefault("rate_limit.fail_closed", false)
	v.SetDefault("rate_limit.cleanup_interval", "2m")
	v.SetDefault("rate_limit.stats_ttl", "24h")
	v.SetDefault("rate_limit.stats_per_key", false)
	v.SetDefault("rate_limit.stats_buffer", 1024)
	v.SetDefault("rate_limit.stats_timeout", "250ms")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "hrmcp")

	v.SetDefault("health.probe_timeout", "2s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// Load builds a Config from v and validates it. SetDefaults must have been
// called on v first.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, fmt.Errorf("viper instance cannot be nil")
	}

	var err error
	duration := func(key string) time.Duration {
		if err != nil {
			return 0
		}
		var d time.Duration
		d, err = parseDuration(v, key)
		return d
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			Transport:       v.GetString("server.transport"),
			ReadTimeout:     duration("server.read_timeout"),
			WriteTimeout:    duration("server.write_timeout"),
			IdleTimeout:     duration("server.idle_timeout"),
			ShutdownTimeout: duration("server.shutdown_timeout"),
		},
		Keys: KeysConfig{
			Specs:          stringList(v, "keys.api_keys"),
			File:           v.GetString("keys.file"),
			SigningSecret:  v.GetString("keys.signing_secret"),
			Issuer:         v.GetString("keys.issuer"),
			ClockSkew:      duration("keys.clock_skew"),
			ReloadInterval: duration("keys.reload_interval"),
		},
		DB: DBConfig{
			Driver:         v.GetString("db.driver"),
			Host:           v.GetString("db.host"),
			Port:           v.GetInt("db.port"),
			User:           v.GetString("db.user"),
			Password:       v.GetString("db.password"),
			Name:           v.GetString("db.name"),
			Path:           v.GetString("db.path"),
			ConnectTimeout: duration("db.connect_timeout"),
			Migrate:        v.GetBool("db.migrate"),
		},
		Pool: PoolConfig{
			MaxSize:        v.GetInt("pool.max_size"),
			AcquireTimeout: duration("pool.acquire_timeout"),
			MaxLifetime:    duration("pool.max_lifetime"),
			MaxIdleTime:    duration("pool.max_idle_time"),
		},
		RateLimit: RateLimitConfig{
			Policy:           v.GetString("rate_limit.policy"),
			Requests:         v.GetInt("rate_limit.requests"),
			Window:           duration("rate_limit.window"),
			ElevatedRequests: v.GetInt("rate_limit.elevated_requests"),
			FailClosed:       v.GetBool("rate_limit.fail_closed"),
			CleanupInterval:  duration("rate_limit.cleanup_interval"),
			StatsTTL:         duration("rate_limit.stats_ttl"),
			StatsPerKey:      v.GetBool("rate_limit.stats_per_key"),
			StatsBuffer:      v.GetInt("rate_limit.stats_buffer"),
			StatsTimeout:     duration("rate_limit.stats_timeout"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Prefix:   v.GetString("redis.prefix"),
		},
		Health: HealthConfig{
			ProbeTimeout: duration("health.probe_timeout"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}
	if err != nil {
		return nil, err
	}

	// A database path selects SQLite unless a driver is named explicitly.
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "mysql"
		if cfg.DB.Path != "" {
			cfg.DB.Driver = "sqlite"
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration reads a duration. Bare integers are taken as seconds.
func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: cannot parse duration %q: %w", envName(key), raw, err)
	}
	return d, nil
}

// stringList reads a list given either as a config-file sequence or as a
// comma-separated string. Empty values are filtered out.
func stringList(v *viper.Viper, key string) []string {
	var parts []string
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case []string:
		parts = val
	case []any:
		for _, p := range val {
			parts = append(parts, fmt.Sprint(p))
		}
	default:
		parts = strings.Split(fmt.Sprint(val), ",")
	}

	var result []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func envName(key string) string {
	if env, ok := envBindings[key]; ok {
		return env
	}
	return key
}

// String returns a string representation of the configuration (for debugging).
// Sensitive values are redacted.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Addr: %s, Transport: %s, Keys: %d specs, KeysFile: %q, SigningSecret: %s, "+
		"DB: %s://%s@%s, Pool: {MaxSize: %d, AcquireTimeout: %v}, RateLimit: {Policy: %s, Requests: %d, Window: %v}, "+
		"Redis: %s, RedisPassword: %s, Log: %s/%s}",
		c.Server.Addr(), c.Server.Transport, len(c.Keys.Specs), c.Keys.File, redact(c.Keys.SigningSecret),
		c.DB.Driver, c.DB.User, c.dbTarget(), c.Pool.MaxSize, c.Pool.AcquireTimeout,
		c.RateLimit.Policy, c.RateLimit.Requests, c.RateLimit.Window,
		c.Redis.Addr, redact(c.Redis.Password), c.Log.Level, c.Log.Format)
}

func (c *Config) dbTarget() string {
	if c.DB.Driver == "sqlite" {
		return c.DB.Path
	}
	return net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)) + "/" + c.DB.Name
}

func redact(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	return "<redacted>"
}
