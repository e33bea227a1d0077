// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	rmlog "github.com/NEPXiss/rescue-mission/internal/log"
)

// ParseString reads a string from the environment or returns the
// default. Sensitive values (tokens, passwords) are never logged.
func ParseString(key, defaultValue string) string {
	logger := rmlog.WithComponent("config")
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}

	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "password") {
		logger.Debug().Str("key", key).Bool("sensitive", true).Msg("using environment variable")
	} else {
		logger.Debug().Str("key", key).Str("value", value).Msg("using environment variable")
	}
	return value
}

// ParseInt reads an integer from the environment, falling back to the
// default on absence or parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := rmlog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Int("default", defaultValue).
			Msg("invalid integer in environment, using default")
		return defaultValue
	}
	return i
}

// ParseFloat reads a float from the environment.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := rmlog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Float64("default", defaultValue).
			Msg("invalid float in environment, using default")
		return defaultValue
	}
	return f
}

// ParseBool reads a boolean from the environment.
func ParseBool(key string, defaultValue bool) bool {
	logger := rmlog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Bool("default", defaultValue).
			Msg("invalid boolean in environment, using default")
		return defaultValue
	}
	return b
}

// ParseDuration reads a time.Duration from the environment.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := rmlog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Dur("default", defaultValue).
			Msg("invalid duration in environment, using default")
		return defaultValue
	}
	return d
}

// applyEnv overlays RESCUE_* environment variables onto cfg.
func applyEnv(cfg *AppConfig) {
	cfg.ListenAddr = ParseString("RESCUE_LISTEN_ADDR", cfg.ListenAddr)
	cfg.MetricsAddr = ParseString("RESCUE_METRICS_ADDR", cfg.MetricsAddr)
	cfg.APIToken = ParseString("RESCUE_API_TOKEN", cfg.APIToken)
	cfg.DataDir = ParseString("RESCUE_DATA_DIR", cfg.DataDir)
	cfg.ArtifactDir = ParseString("RESCUE_ARTIFACT_DIR", cfg.ArtifactDir)
	cfg.StoreBackend = ParseString("RESCUE_STORE_BACKEND", cfg.StoreBackend)
	cfg.HistoryEnabled = ParseBool("RESCUE_HISTORY_ENABLED", cfg.HistoryEnabled)
	cfg.RateLimitPerMinute = ParseInt("RESCUE_RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.LogLevel = ParseString("RESCUE_LOG_LEVEL", cfg.LogLevel)

	cfg.Cache.Backend = ParseString("RESCUE_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = ParseDuration("RESCUE_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.RedisAddr = ParseString("RESCUE_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = ParseString("RESCUE_REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = ParseInt("RESCUE_REDIS_DB", cfg.Cache.RedisDB)

	cfg.ReadTimeout = ParseDuration("RESCUE_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = ParseDuration("RESCUE_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.IdleTimeout = ParseDuration("RESCUE_IDLE_TIMEOUT", cfg.IdleTimeout)
	cfg.ShutdownTimeout = ParseDuration("RESCUE_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.Sim.Width = ParseInt("RESCUE_SIM_WIDTH", cfg.Sim.Width)
	cfg.Sim.Height = ParseInt("RESCUE_SIM_HEIGHT", cfg.Sim.Height)
	cfg.Sim.ObstacleProb = ParseFloat("RESCUE_SIM_OBSTACLE_PROB", cfg.Sim.ObstacleProb)
	cfg.Sim.DangerProb = ParseFloat("RESCUE_SIM_DANGER_PROB", cfg.Sim.DangerProb)
	cfg.Sim.InitialSurvivors = ParseInt("RESCUE_SIM_SURVIVORS", cfg.Sim.InitialSurvivors)
	cfg.Sim.HiddenSurvivors = ParseInt("RESCUE_SIM_HIDDEN_SURVIVORS", cfg.Sim.HiddenSurvivors)
	cfg.Sim.DetectionRadius = ParseInt("RESCUE_SIM_DETECTION_RADIUS", cfg.Sim.DetectionRadius)
	cfg.Sim.SpawnDelay = ParseInt("RESCUE_SIM_SPAWN_DELAY", cfg.Sim.SpawnDelay)
	cfg.Sim.MaxDrones = ParseInt("RESCUE_SIM_MAX_DRONES", cfg.Sim.MaxDrones)
	cfg.Sim.MaxSteps = ParseInt("RESCUE_SIM_MAX_STEPS", cfg.Sim.MaxSteps)
	cfg.Sim.AllowDiagonal = ParseBool("RESCUE_SIM_ALLOW_DIAGONAL", cfg.Sim.AllowDiagonal)
	cfg.Sim.DangerDecayProb = ParseFloat("RESCUE_SIM_DANGER_DECAY_PROB", cfg.Sim.DangerDecayProb)

	cfg.Telemetry.Enabled = ParseBool("RESCUE_OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.ExporterType = ParseString("RESCUE_OTEL_EXPORTER", cfg.Telemetry.ExporterType)
	cfg.Telemetry.Endpoint = ParseString("RESCUE_OTEL_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = ParseFloat("RESCUE_OTEL_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
}
