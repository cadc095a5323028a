package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a valid configuration for testing.
// Tests can override specific fields as needed.
func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Transport:       TransportStreamableHTTP,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Keys: KeysConfig{
			Specs:     []string{"valid-key-1"},
			Issuer:    "hr-mcp-gateway",
			ClockSkew: time.Minute,
		},
		DB: DBConfig{
			Driver: "sqlite",
			Path:   "/tmp/hr.db",
		},
		Pool: PoolConfig{
			MaxSize:        5,
			AcquireTimeout: 30 * time.Second,
			MaxLifetime:    30 * time.Minute,
			MaxIdleTime:    5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Policy:           "fixed_window",
			Requests:         100,
			Window:           time.Minute,
			ElevatedRequests: 1000,
			CleanupInterval:  2 * time.Minute,
			StatsTTL:         24 * time.Hour,
			StatsBuffer:      1024,
			StatsTimeout:     250 * time.Millisecond,
		},
		Health: HealthConfig{ProbeTimeout: 2 * time.Second},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "port out of range",
			mutate:      func(c *Config) { c.Server.Port = 70000 },
			wantErr:     true,
			errContains: "PORT",
		},
		{
			name:        "unsupported transport",
			mutate:      func(c *Config) { c.Server.Transport = "sse" },
			wantErr:     true,
			errContains: "MCP_TRANSPORT",
		},
		{
			name:        "zero read timeout",
			mutate:      func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr:     true,
			errContains: "SERVER_READ_TIMEOUT",
		},
		{
			name:        "zero write timeout",
			mutate:      func(c *Config) { c.Server.WriteTimeout = 0 },
			wantErr:     true,
			errContains: "SERVER_WRITE_TIMEOUT",
		},
		{
			name:   "zero idle timeout allowed",
			mutate: func(c *Config) { c.Server.IdleTimeout = 0 },
		},
		{
			name:        "negative idle timeout",
			mutate:      func(c *Config) { c.Server.IdleTimeout = -time.Second },
			wantErr:     true,
			errContains: "SERVER_IDLE_TIMEOUT",
		},
		{
			name:   "no keys is valid",
			mutate: func(c *Config) { c.Keys.Specs = nil },
		},
		{
			name:        "short signing secret",
			mutate:      func(c *Config) { c.Keys.SigningSecret = "short" },
			wantErr:     true,
			errContains: "KEY_SIGNING_SECRET",
		},
		{
			name:   "long signing secret",
			mutate: func(c *Config) { c.Keys.SigningSecret = strings.Repeat("s", 32) },
		},
		{
			name:        "reload without file",
			mutate:      func(c *Config) { c.Keys.ReloadInterval = time.Minute },
			wantErr:     true,
			errContains: "MCP_API_KEYS_FILE",
		},
		{
			name: "reload with file",
			mutate: func(c *Config) {
				c.Keys.ReloadInterval = time.Minute
				c.Keys.File = "/etc/hr/keys"
			},
		},
		{
			name:        "unknown driver",
			mutate:      func(c *Config) { c.DB.Driver = "postgres" },
			wantErr:     true,
			errContains: "DB_DRIVER",
		},
		{
			name:        "sqlite without path",
			mutate:      func(c *Config) { c.DB.Path = "" },
			wantErr:     true,
			errContains: "DB_PATH",
		},
		{
			name: "mysql without name",
			mutate: func(c *Config) {
				c.DB = DBConfig{Driver: "mysql", Host: "db", Port: 3306}
			},
			wantErr:     true,
			errContains: "DB_NAME",
		},
		{
			name: "mysql migrate rejected",
			mutate: func(c *Config) {
				c.DB = DBConfig{Driver: "mysql", Host: "db", Port: 3306, Name: "hr", Migrate: true}
			},
			wantErr:     true,
			errContains: "DB_MIGRATE",
		},
		{
			name:        "zero pool size",
			mutate:      func(c *Config) { c.Pool.MaxSize = 0 },
			wantErr:     true,
			errContains: "POOL_MAX_SIZE",
		},
		{
			name:        "zero acquire timeout",
			mutate:      func(c *Config) { c.Pool.AcquireTimeout = 0 },
			wantErr:     true,
			errContains: "POOL_ACQUIRE_TIMEOUT",
		},
		{
			name:        "unknown policy",
			mutate:      func(c *Config) { c.RateLimit.Policy = "leaky_bucket" },
			wantErr:     true,
			errContains: "RATE_LIMIT_POLICY",
		},
		{
			name:   "token bucket policy",
			mutate: func(c *Config) { c.RateLimit.Policy = "token_bucket" },
		},
		{
			name:        "zero requests",
			mutate:      func(c *Config) { c.RateLimit.Requests = 0 },
			wantErr:     true,
			errContains: "RATE_LIMIT_REQUESTS",
		},
		{
			name:        "elevated below default",
			mutate:      func(c *Config) { c.RateLimit.ElevatedRequests = 10 },
			wantErr:     true,
			errContains: "RATE_LIMIT_ELEVATED_REQUESTS",
		},
		{
			name:        "zero stats buffer",
			mutate:      func(c *Config) { c.RateLimit.StatsBuffer = 0 },
			wantErr:     true,
			errContains: "RATE_LIMIT_STATS_BUFFER",
		},
		{
			name:        "zero stats timeout",
			mutate:      func(c *Config) { c.RateLimit.StatsTimeout = 0 },
			wantErr:     true,
			errContains: "RATE_LIMIT_STATS_TIMEOUT",
		},
		{
			name: "redis without prefix",
			mutate: func(c *Config) {
				c.Redis.Addr = "localhost:6379"
				c.Redis.Prefix = ""
			},
			wantErr:     true,
			errContains: "REDIS_PREFIX",
		},
		{
			name:        "zero probe timeout",
			mutate:      func(c *Config) { c.Health.ProbeTimeout = 0 },
			wantErr:     true,
			errContains: "HEALTH_PROBE_TIMEOUT",
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.Log.Level = "trace" },
			wantErr:     true,
			errContains: "LOG_LEVEL",
		},
		{
			name:        "unknown log format",
			mutate:      func(c *Config) { c.Log.Format = "logfmt" },
			wantErr:     true,
			errContains: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config := validConfig()
			tt.mutate(config)

			err := Validate(config)

			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() error = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Validate() error = %q, want to contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	t.Parallel()

	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) should return error")
	}
}
