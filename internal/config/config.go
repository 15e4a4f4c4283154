// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir     string  // Base directory for the results database (always absolute)
	LogLevel    string  // debug, info, warn, error
	PrepBasis   string  // tomographic preparation basis: "SIC" or "Pauli"
	Repetitions int     // total sampling budget; 0 selects exact tomography
	RankCutoff  float64 // singular-value cutoff for the model fit
	Workers     int     // worker pool size; 0 defaults to the CPU count
	Seed        int64   // simulator sampling seed
	DevMode     bool
}

// Load reads configuration from the environment, with .env file support.
func Load() (*Config, error) {
	// .env is optional; real deployments use environment variables
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}

	repetitions, err := getEnvInt("REPETITIONS", 0)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvInt("WORKERS", 0)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvInt("SEED", 0)
	if err != nil {
		return nil, err
	}
	rankCutoff, err := getEnvFloat("RANK_CUTOFF", 1e-8)
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir:     absDataDir,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		PrepBasis:   getEnv("PREP_BASIS", "SIC"),
		Repetitions: repetitions,
		RankCutoff:  rankCutoff,
		Workers:     workers,
		Seed:        int64(seed),
		DevMode:     getEnv("DEV_MODE", "false") == "true",
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
