package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesprial/hr-mcp-gateway/internal/config"
)

const serverName = "hr-mcp-gateway"

// newRootCmd builds the command tree. Each call gets its own viper instance
// so commands can be executed repeatedly in tests.
func newRootCmd() *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var cfgFile string

	root := &cobra.Command{
		Use:   serverName,
		Short: "MCP server exposing HR data to AI clients",
		Long: `hr-mcp-gateway serves read-only HR tools over the Model Context Protocol.

Calls are authenticated with API keys and rate limited per key.
Running without a subcommand starts the server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config file %s: %w", cfgFile, err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or JSON); environment variables override it")

	serve := newServeCmd(v)
	root.AddCommand(serve)
	root.AddCommand(newKeysCmd(v))
	root.AddCommand(newVersionCmd())

	// serve is the default command; its flags are mirrored on the root.
	root.Flags().AddFlagSet(serve.Flags())
	root.RunE = serve.RunE

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of " + serverName,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (commit %s)\n", serverName, version, commit)
		},
	}
}

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
