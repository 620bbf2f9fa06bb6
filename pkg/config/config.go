// Package config loads the dispatcher's process configuration from
// environment variables.
package config

import (
	"os"
	"strconv"
)

// Config holds the dispatcher's runtime configuration.
type Config struct {
	RoutinesDir      string
	LogLevel         string
	MetricsAddr      string
	JaegerEndpoint   string
	EnumerateBound   int
	EnumerateSeed    int64
	GeneratorRetries int
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	return &Config{
		RoutinesDir:      getEnv("ROUTINES_DIR", "./routines"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsAddr:      getEnv("METRICS_ADDR", ":9090"),
		JaegerEndpoint:   getEnv("JAEGER_ENDPOINT", ""),
		EnumerateBound:   getEnvInt("ENUMERATE_BOUND", 10),
		EnumerateSeed:    getEnvInt64("ENUMERATE_SEED", 1),
		GeneratorRetries: getEnvInt("GENERATOR_RETRIES", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
