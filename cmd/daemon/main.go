// SPDX-License-Identifier: MIT

// Command daemon runs the rescue mission service: HTTP API, metrics and
// persistent mission state.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NEPXiss/rescue-mission/internal/api"
	"github.com/NEPXiss/rescue-mission/internal/artifact"
	"github.com/NEPXiss/rescue-mission/internal/cache"
	"github.com/NEPXiss/rescue-mission/internal/config"
	"github.com/NEPXiss/rescue-mission/internal/daemon"
	"github.com/NEPXiss/rescue-mission/internal/health"
	"github.com/NEPXiss/rescue-mission/internal/history"
	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
	"github.com/NEPXiss/rescue-mission/internal/store"
	"github.com/NEPXiss/rescue-mission/internal/telemetry"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Safe defaults until the real config is loaded.
	rmlog.Configure(rmlog.Config{
		Level:   "info",
		Service: "rescue-mission",
		Version: version,
	})
	logger := rmlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().Err(err).Str("config_path", *configPath).Msg("failed to load configuration")
	}

	rmlog.Configure(rmlog.Config{
		Level:   cfg.LogLevel,
		Service: "rescue-mission",
		Version: version,
	})

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DataDir).Msg("create data directory")
	}

	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialize tracing")
	}

	missionStore, err := store.New(cfg.StoreBackend, filepath.Join(cfg.DataDir, "missions"))
	if err != nil {
		logger.Fatal().Err(err).Msg("open mission store")
	}

	var archive *history.Archive
	if cfg.HistoryEnabled {
		archive, err = history.Open(filepath.Join(cfg.DataDir, "history.db"))
		if err != nil {
			logger.Fatal().Err(err).Msg("open mission history")
		}
	}

	statusCache, err := buildCache(cfg.Cache)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialize cache")
	}

	artifacts, err := artifact.NewWriter(cfg.ArtifactDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialize artifact writer")
	}

	missions := api.NewManager(api.ManagerDeps{
		Store:     missionStore,
		Cache:     statusCache,
		History:   archive,
		Artifacts: artifacts,
		Defaults:  cfg.Sim,
	})

	healthMg := health.NewManager(version)
	healthMg.RegisterChecker(health.NewStoreChecker(missionStore))
	healthMg.RegisterChecker(health.NewDirChecker("artifact_dir", cfg.ArtifactDir))

	apiServer := api.NewServer(missions, statusCache, archive, healthMg, api.Options{
		APIToken:           cfg.APIToken,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TracingEnabled:     cfg.Telemetry.Enabled,
		CacheTTL:           cfg.Cache.TTL,
	})

	deps := daemon.Deps{
		Logger:      rmlog.Base(),
		APIHandler:  apiServer.Router(),
		MetricsAddr: cfg.MetricsAddr,
	}
	if cfg.MetricsAddr != "" {
		deps.MetricsHandler = promhttp.Handler()
	}

	dm, err := daemon.NewManager(cfg, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("create daemon manager")
	}

	dm.RegisterShutdownHook("tracing", provider.Shutdown)
	dm.RegisterShutdownHook("mission_store", func(context.Context) error {
		missions.Close()
		return missionStore.Close()
	})
	if archive != nil {
		dm.RegisterShutdownHook("history", func(context.Context) error {
			return archive.Close()
		})
	}
	if closer, ok := statusCache.(interface{ Close() error }); ok {
		dm.RegisterShutdownHook("cache", func(context.Context) error {
			return closer.Close()
		})
	}

	holder := config.NewHolder(cfg, loader, *configPath)
	app := daemon.NewApp(rmlog.Base(), dm, holder)

	logger.Info().
		Str("version", version).
		Str("listen", cfg.ListenAddr).
		Str("store", cfg.StoreBackend).
		Msg("rescue mission daemon starting")

	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("daemon terminated with error")
		os.Exit(1)
	}
	logger.Info().Msg("daemon stopped")
}

func buildCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, rmlog.WithComponent("cache"))
	case "none":
		return cache.NewNoOpCache(), nil
	default:
		return cache.NewMemoryCache(30 * time.Second), nil
	}
}
