// SPDX-License-Identifier: MIT

// Package config loads and validates daemon configuration from defaults,
// an optional YAML file and RESCUE_* environment variables, with ENV
// taking precedence over the file.
package config

import (
	"time"

	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/telemetry"
)

// CacheConfig selects the status cache backend.
type CacheConfig struct {
	// Backend is one of "memory", "redis" or "none".
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	RedisDB       int           `yaml:"redisDB"`
}

// AppConfig is the full daemon configuration.
type AppConfig struct {
	// ListenAddr is the API listen address.
	ListenAddr string `yaml:"listenAddr"`
	// MetricsAddr serves Prometheus metrics on a separate listener;
	// empty disables the metrics server.
	MetricsAddr string `yaml:"metricsAddr"`

	// APIToken guards mutating endpoints; empty disables auth.
	APIToken string `yaml:"apiToken"`

	// DataDir is the root for persistent state (badger, sqlite).
	DataDir string `yaml:"dataDir"`
	// ArtifactDir receives report, PNG and GIF outputs.
	ArtifactDir string `yaml:"artifactDir"`

	// StoreBackend is "memory" or "badger".
	StoreBackend string `yaml:"storeBackend"`
	// HistoryEnabled archives finished missions in SQLite under DataDir.
	HistoryEnabled bool `yaml:"historyEnabled"`

	Cache CacheConfig `yaml:"cache"`

	// RateLimitPerMinute caps API requests per client IP; 0 disables.
	RateLimitPerMinute int `yaml:"rateLimitPerMinute"`

	LogLevel string `yaml:"logLevel"`

	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// Sim holds the default mission options applied when a create
	// request omits a field.
	Sim sim.Options `yaml:"sim"`

	Telemetry telemetry.Config `yaml:"telemetry"`
}

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		ListenAddr:         ":8080",
		MetricsAddr:        "",
		DataDir:            "./data",
		ArtifactDir:        "./data/artifacts",
		StoreBackend:       "badger",
		HistoryEnabled:     true,
		Cache:              CacheConfig{Backend: "memory", TTL: 2 * time.Second},
		RateLimitPerMinute: 120,
		LogLevel:           "info",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        60 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		Sim:                sim.DefaultOptions(),
		Telemetry: telemetry.Config{
			ServiceName:  "rescue-mission",
			ExporterType: "otlp-grpc",
			SamplingRate: 1.0,
		},
	}
}
