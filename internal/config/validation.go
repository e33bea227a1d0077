// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"
)

// Validate checks a configuration for consistency. It returns the first
// problem found.
func Validate(cfg AppConfig) error {
	if err := validateListenAddr("listenAddr", cfg.ListenAddr); err != nil {
		return err
	}
	if cfg.MetricsAddr != "" {
		if err := validateListenAddr("metricsAddr", cfg.MetricsAddr); err != nil {
			return err
		}
		if cfg.MetricsAddr == cfg.ListenAddr {
			return fmt.Errorf("metricsAddr must differ from listenAddr (%s)", cfg.ListenAddr)
		}
	}

	switch cfg.StoreBackend {
	case "memory", "badger":
	default:
		return fmt.Errorf("storeBackend must be memory or badger, got %q", cfg.StoreBackend)
	}
	if cfg.StoreBackend == "badger" && cfg.DataDir == "" {
		return fmt.Errorf("dataDir is required with the badger store backend")
	}
	if cfg.HistoryEnabled && cfg.DataDir == "" {
		return fmt.Errorf("dataDir is required with historyEnabled")
	}

	switch cfg.Cache.Backend {
	case "memory", "redis", "none", "":
	default:
		return fmt.Errorf("cache.backend must be memory, redis or none, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Backend == "redis" && cfg.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redisAddr is required with the redis cache backend")
	}
	if cfg.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}

	if cfg.RateLimitPerMinute < 0 {
		return fmt.Errorf("rateLimitPerMinute must not be negative, got %d", cfg.RateLimitPerMinute)
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel %q: %w", cfg.LogLevel, err)
	}

	if err := cfg.Sim.Validate(); err != nil {
		return fmt.Errorf("sim defaults: %w", err)
	}

	if cfg.Telemetry.Enabled {
		switch cfg.Telemetry.ExporterType {
		case "otlp-grpc", "otlp-http":
		default:
			return fmt.Errorf("telemetry exporter must be otlp-grpc or otlp-http, got %q", cfg.Telemetry.ExporterType)
		}
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			return fmt.Errorf("telemetry sampling rate must be within [0,1], got %g", cfg.Telemetry.SamplingRate)
		}
	}

	return nil
}

func validateListenAddr(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s %q is not a valid host:port: %w", field, addr, err)
	}
	return nil
}
