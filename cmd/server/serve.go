package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/jamesprial/hr-mcp-gateway/internal/auth"
	"github.com/jamesprial/hr-mcp-gateway/internal/config"
	"github.com/jamesprial/hr-mcp-gateway/internal/health"
	"github.com/jamesprial/hr-mcp-gateway/internal/hr"
	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
	"github.com/jamesprial/hr-mcp-gateway/internal/pool"
	"github.com/jamesprial/hr-mcp-gateway/internal/ratelimit"
	"github.com/jamesprial/hr-mcp-gateway/internal/store"
	"github.com/jamesprial/hr-mcp-gateway/internal/tools"
	"github.com/jamesprial/hr-mcp-gateway/internal/transport"
	"github.com/jamesprial/hr-mcp-gateway/pkg/apikey"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server with graceful shutdown support.

SIGINT or SIGTERM drains in-flight requests for up to
SERVER_SHUTDOWN_TIMEOUT before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return serve(cmd.Context(), cmd, cfg)
		},
	}

	cmd.Flags().String("host", "", "listen host (overrides MCP_HOST)")
	cmd.Flags().Int("port", 0, "listen port (overrides PORT)")
	_ = v.BindPFlag("server.host", cmd.Flags().Lookup("host"))
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}

// serve wires every component and blocks until ctx is cancelled or a
// component fails.
func serve(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Set up structured logging
	logger := newLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("server configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire the store and connection pool
	db, err := store.Open(ctx, store.Config{
		Driver:         cfg.DB.Driver,
		Host:           cfg.DB.Host,
		Port:           cfg.DB.Port,
		User:           cfg.DB.User,
		Password:       cfg.DB.Password,
		Name:           cfg.DB.Name,
		Path:           cfg.DB.Path,
		ConnectTimeout: cfg.DB.ConnectTimeout,
		MaxOpen:        cfg.Pool.MaxSize,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	if cfg.DB.Migrate {
		if err := store.Migrate(ctx, db, cfg.DB.Driver); err != nil {
			return fmt.Errorf("failed to migrate store: %w", err)
		}
		if err := store.Seed(ctx, db, cfg.DB.Driver); err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
		logger.Info("store migrated and seeded", "driver", cfg.DB.Driver, "path", cfg.DB.Path)
	}

	conns, err := pool.New(pool.SQLFactory(db), pool.Config{
		MaxSize:        cfg.Pool.MaxSize,
		AcquireTimeout: cfg.Pool.AcquireTimeout,
		MaxLifetime:    cfg.Pool.MaxLifetime,
		MaxIdleTime:    cfg.Pool.MaxIdleTime,
		Logger:         logger.With("component", "pool"),
	})
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	defer func() { _ = conns.Close() }()

	logger.Info("store initialized",
		"driver", cfg.DB.Driver,
		"pool_size", cfg.Pool.MaxSize,
		"acquire_timeout", cfg.Pool.AcquireTimeout,
	)

	// Wire auth components
	keys, err := loadKeys(cfg.Keys)
	if err != nil {
		return err
	}

	var devKey string
	if !cfg.Keys.Configured() {
		devKey, err = auth.NewDevKey()
		if err != nil {
			return fmt.Errorf("failed to generate development key: %w", err)
		}
		logger.Warn("no API keys configured; using a generated development key",
			"key_prefix", apikey.Prefix(devKey),
		)
		fmt.Fprintf(cmd.ErrOrStderr(), "Development API key: %s\n", devKey)
	}

	credentials, keyManager, _, err := auth.NewAuthServices(&auth.Config{
		Keys:          keys,
		DevKey:        devKey,
		SigningSecret: cfg.Keys.SigningSecret,
		Issuer:        cfg.Keys.Issuer,
		ClockSkew:     cfg.Keys.ClockSkew,
		Logger:        logger.With("component", "auth"),
	})
	if err != nil {
		return fmt.Errorf("failed to create auth services: %w", err)
	}

	logger.Info("auth services initialized",
		"static_keys", len(keys),
		"signed_keys", cfg.Keys.SigningSecret != "",
	)

	// Wire rate limiting
	var rdb redis.UniversalClient
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,

			ContextTimeoutEnabled: true,
		})
		defer func() { _ = rdb.Close() }()
	}

	rlCfg := &ratelimit.Config{
		Policy: cfg.RateLimit.Policy,
		Rules: map[string]ratelimit.Rule{
			apikey.TierDefault:  {Limit: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window},
			apikey.TierElevated: {Limit: cfg.RateLimit.ElevatedRequests, Window: cfg.RateLimit.Window},
		},
		CleanupEvery: cfg.RateLimit.CleanupInterval,
		RedisPrefix:  cfg.Redis.Prefix + ":ratelimit",
		FailClosed:   cfg.RateLimit.FailClosed,
		StatsBuffer:  cfg.RateLimit.StatsBuffer,
		StatsTimeout: cfg.RateLimit.StatsTimeout,
		Logger:       logger.With("component", "ratelimit"),
	}
	if rdb != nil {
		rlCfg.Stats = ratelimit.NewRedisStats(rdb,
			ratelimit.WithStatsPrefix(cfg.Redis.Prefix+":ratelimit:stats"),
			ratelimit.WithStatsTTL(cfg.RateLimit.StatsTTL),
			ratelimit.WithStatsTrackKeys(cfg.RateLimit.StatsPerKey),
		)
	}

	limiter, err := ratelimit.New(rlCfg, rdb)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	logger.Info("rate limiter initialized",
		"policy", limiter.Policy(),
		"requests", cfg.RateLimit.Requests,
		"window", cfg.RateLimit.Window,
		"fail_closed", cfg.RateLimit.FailClosed,
	)

	// Wire MCP components
	mcpCfg := &mcp.Config{
		ServerName:    serverName,
		ServerVersion: version,
		Logger:        logger.With("component", "mcp"),
	}

	mcpHandler, toolRegistry, resourceRegistry := mcp.NewMCPServices(mcpCfg, conns)
	if err := tools.Register(toolRegistry, tools.All(hr.NewDirectory(), keyManager)); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}
	if err := tools.RegisterResources(resourceRegistry, toolRegistry); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}

	logger.Info("mcp services initialized",
		"server_name", mcpCfg.ServerName,
		"server_version", mcpCfg.ServerVersion,
		"tools", len(toolRegistry.ListTools()),
	)

	// Wire health checks
	reporter := health.NewReporter(cfg.Health.ProbeTimeout, logger.With("component", "health"))
	reporter.Register("database", health.PoolCheck(conns, cfg.Health.ProbeTimeout))
	if rdb != nil {
		reporter.Register("redis", health.RedisCheck(rdb))
	}

	// Wire transport layer
	server, _, err := transport.NewTransportServices(&transport.Config{
		ServerConfig: &cfg.Server,
		Credentials:  credentials,
		Limiter:      limiter,
		RatePolicy:   limiter.Policy(),
		MCPHandler:   mcpHandler,
		Tools:        toolRegistry,
		Health:       reporter,
		Info:         transport.Info{Name: serverName, Version: version},
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create transport services: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "addr", cfg.Server.Addr(), "transport", cfg.Server.Transport)
		return server.Start()
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, stopping server gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		limiter.Run(gctx)
		if dropped := limiter.StatsDropped(); dropped > 0 {
			logger.Warn("rate limit stats dropped", "events", dropped)
		}
		return nil
	})

	if cfg.Keys.File != "" && cfg.Keys.ReloadInterval > 0 {
		g.Go(func() error {
			reloadKeys(gctx, cfg.Keys, keyManager, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("server stopped successfully")
	return nil
}

// loadKeys reads configured static keys from specs and the keys file.
func loadKeys(cfg config.KeysConfig) ([]auth.StaticKey, error) {
	keys, err := auth.ParseStaticKeys(cfg.Specs)
	if err != nil {
		return nil, fmt.Errorf("invalid MCP_API_KEYS: %w", err)
	}
	if cfg.File != "" {
		fromFile, err := auth.LoadKeysFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("invalid MCP_API_KEYS_FILE: %w", err)
		}
		keys = append(keys, fromFile...)
	}
	return keys, nil
}

// reloadKeys re-reads the keys file every ReloadInterval until ctx is done.
// A file that fails to parse leaves the current keys in place.
func reloadKeys(ctx context.Context, cfg config.KeysConfig, keys auth.KeyManager, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.ReloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			loaded, err := loadKeys(cfg)
			if err != nil {
				logger.Error("key reload failed; keeping current keys", "error", err)
				continue
			}
			if err := keys.Reload(ctx, loaded); err != nil {
				logger.Error("key reload failed; keeping current keys", "error", err)
				continue
			}
			logger.Debug("keys reloaded", "count", len(loaded))
		}
	}
}
