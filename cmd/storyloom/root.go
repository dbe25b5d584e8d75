package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aldaque/storyloom"
	"github.com/aldaque/storyloom/internal/adapters/file"
	"github.com/aldaque/storyloom/internal/adapters/memory"
	redisAdapter "github.com/aldaque/storyloom/internal/adapters/redis"
	"github.com/aldaque/storyloom/internal/config"
	"github.com/aldaque/storyloom/internal/logging"
	"github.com/aldaque/storyloom/pkg/persistence/middleware"
	"github.com/aldaque/storyloom/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storyloom",
	Short: "Storyloom is a session engine for scripted story state",
	Long: `Storyloom manages durable story sessions: clients queue command batches
and execute them atomically against a story's mod tree.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return logging.New(level)
}

// buildSession assembles the store, resolver and optional distributed locker
// declared by the configuration.
func buildSession(cfg *config.Config, logger *slog.Logger, extra ...storyloom.Option) (*storyloom.Session, error) {
	opts := []storyloom.Option{
		storyloom.WithResolver(cfg.BuildResolver()),
		storyloom.WithLogger(logger),
	}
	opts = append(opts, extra...)

	var store ports.StoryStore
	switch cfg.Store.Backend {
	case "memory":
		store = memory.NewStore()
	case "file":
		store = file.New(cfg.Store.File.Path)
	case "redis":
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		storeOpts := []redisAdapter.Option{redisAdapter.WithPrefix(cfg.Store.Redis.Prefix)}
		if cfg.Store.Redis.TTL > 0 {
			storeOpts = append(storeOpts, redisAdapter.WithTTL(cfg.Store.Redis.TTL))
		}
		store = redisAdapter.NewFromClient(client, storeOpts...)
		if cfg.Store.Redis.Lock {
			opts = append(opts, storyloom.WithLocker(redisAdapter.NewLocker(client, cfg.Store.Redis.Prefix)))
		}
	}

	var middlewares []middleware.Middleware
	if len(cfg.Store.MaskKeys) > 0 {
		middlewares = append(middlewares, middleware.NewMaskingMiddleware(cfg.Store.MaskKeys))
	}
	if cfg.Store.Encryption.Key != "" {
		activeKey, err := cfg.Store.Encryption.ActiveKey()
		if err != nil {
			return nil, err
		}
		fallbackKeys, err := cfg.Store.Encryption.DecodedFallbackKeys()
		if err != nil {
			return nil, err
		}
		middlewares = append(middlewares, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    activeKey,
			FallbackKeys: fallbackKeys,
		}))
	}
	store = middleware.Chain(store, middlewares...)

	opts = append(opts, storyloom.WithStore(store))
	return storyloom.New(opts...)
}
